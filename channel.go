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

// Package broadcast implements a demand-pulled, lock-free, lossy-under-
// backpressure broadcast channel: a single Engine drains one upstream
// Source and republishes immutable buffer snapshots that any number of
// independent Receivers consume at their own pace, falling behind (and
// losing old entries to the configured BufferPolicy) rather than ever
// blocking the Engine or each other.
package broadcast

// Wrap drains upstream through a Engine governed by policy, returning the
// Handle used to mint Receivers and the Engine itself, which the caller
// must drive by calling Run on a goroutine of their own choosing (the Go
// substitute for scheduling a task onto an executor).
//
// policy may be nil, in which case the buffer grows without bound; pass
// NewLengthPolicy, NewAgePolicy, NewWeightPolicy, or a NewCompositePolicy
// of these to bound it.
func Wrap[T any](upstream Source[T], policy BufferPolicy[T], opts ...EngineOption) (*Handle[T], *Engine[T]) {
	if policy == nil {
		policy = unboundedPolicy[T]{}
	}

	cfg := buildEngineConfig(opts)
	if cfg.logger != nil {
		SetLogger(cfg.logger)
	}

	s := newShared[T]()
	e := newEngine[T](s, upstream, policy)
	e.SetWakeLimit(cfg.wakeLimit)

	return newHandle[T](s), e
}

// NewChannel is a convenience constructor for the common case of a
// producer-driven channel: it mints a Sender/Source pair internally via
// NewSender and wires it straight into Wrap.
func NewChannel[T any](senderCapacity int, policy BufferPolicy[T], opts ...EngineOption) (*Sender[T], *Handle[T], *Engine[T]) {
	sender, source := NewSender[T](senderCapacity)
	handle, engine := Wrap[T](source, policy, opts...)
	return sender, handle, engine
}

type unboundedPolicy[T any] struct{}

func (unboundedPolicy[T]) ShouldEvictTail(T) EvictDecision { return Retain }
func (unboundedPolicy[T]) OnAdmit(item T) T                { return item }
func (unboundedPolicy[T]) OnEvict(T)                       {}
