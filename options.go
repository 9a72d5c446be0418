// Copyright 2025 samber.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// https://github.com/samber/ro/blob/main/licenses/LICENSE.apache.md
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package broadcast

import "github.com/sirupsen/logrus"

// EngineOption configures a Engine at construction time. There are no
// files, wire formats, or environment variables in this package's scope;
// functional options are the idiomatic Go substitute for that ambient
// configuration concern.
type EngineOption func(*engineConfig)

type engineConfig struct {
	wakeLimit int
	logger    *logrus.Logger
}

// WithWakeLimit overrides the default per-poll-cycle wake budget (see
// Engine.SetWakeLimit).
func WithWakeLimit(n int) EngineOption {
	return func(c *engineConfig) {
		c.wakeLimit = n
	}
}

// WithLogger replaces the package-level logger (see SetLogger) when the
// Engine is constructed. The replacement is process-wide and stays in
// effect after the Engine finishes. Passing nil is a no-op.
func WithLogger(l *logrus.Logger) EngineOption {
	return func(c *engineConfig) {
		c.logger = l
	}
}

func buildEngineConfig(opts []EngineOption) engineConfig {
	cfg := engineConfig{wakeLimit: defaultWakeLimit}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
