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

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// pkgLogger holds the current package-level logger behind an atomic.Value
// so it can be swapped concurrently with in-flight Engine/Receiver calls,
// mirroring ro.go's SetOnUnhandledError/GetOnUnhandledError pair.
var pkgLogger atomic.Value // *logrus.Logger

func init() {
	l := logrus.New()
	l.SetLevel(logrus.WarnLevel)
	pkgLogger.Store(l)
}

// SetLogger replaces the package-level logger used for Engine phase tracing
// and the default ErrInvariantViolation handler. Passing nil restores a
// fresh default logger at warn level.
func SetLogger(l *logrus.Logger) {
	if l == nil {
		l = logrus.New()
		l.SetLevel(logrus.WarnLevel)
	}
	pkgLogger.Store(l)
}

// Logger returns the currently configured package-level logger.
func Logger() *logrus.Logger {
	return pkgLogger.Load().(*logrus.Logger)
}
