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
	"errors"
	"sync/atomic"
)

// ErrChannelDead is returned by operations that discover the channel has
// already died (upstream ended, Handle closed, or Engine dropped). It is
// never raised as a panic: Receivers encode this as end-of-stream, and
// Sender.Send returns it as a plain error value once Sender.Close has been
// called. Send does not check the channel itself, so it does not return
// ErrChannelDead after a Handle.Close or Engine.Close.
var ErrChannelDead = errors.New("broadcast: channel is dead")

// ErrSendOverflow is the sentinel Sender.Send's error satisfies (via Is)
// when the ring buffer is full. Send actually returns a
// *SendOverflowError[T], which carries the item that could not be admitted
// back to the caller per spec.md §6/§7's "overflow returns the item"
// contract; match ErrSendOverflow with errors.Is when the item itself
// isn't needed, or errors.As(*SendOverflowError[T]) to recover it.
var ErrSendOverflow = errors.New("broadcast: send buffer is full")

// SendOverflowError is returned by Sender.Send when the ring buffer is
// full, carrying the item that could not be admitted back to the caller so
// it can be retried or dropped without the caller having to retain its own
// copy ahead of time.
type SendOverflowError[T any] struct {
	Item T
}

func (e *SendOverflowError[T]) Error() string {
	return ErrSendOverflow.Error()
}

func (e *SendOverflowError[T]) Is(target error) bool {
	return target == ErrSendOverflow
}

// ErrInvariantViolation is reported when a Receiver discovers a
// non-contiguous id in a snapshot, which should be impossible given the
// Engine's admission discipline. It fails the affected Receiver alone
// (fail-stop locally, surfaced as end-of-stream) and is logged at error
// severity via OnInvariantViolation.
var ErrInvariantViolation = errors.New("broadcast: non-contiguous snapshot observed")

// invariantViolationHandler holds the current handler invoked when
// ErrInvariantViolation is detected, via atomic.Value to allow concurrent
// readers and writers without data races, mirroring the teacher's
// atomically-swappable package-level hook pattern (see ro.go's
// onUnhandledError).
var invariantViolationHandler atomic.Value // func(error)

func init() {
	invariantViolationHandler.Store(defaultOnInvariantViolation)
}

// SetOnInvariantViolation overrides the handler invoked when a Receiver
// detects ErrInvariantViolation. Passing nil restores the default, which
// logs at error severity via the package logger (see log.go).
func SetOnInvariantViolation(fn func(err error)) {
	if fn == nil {
		fn = defaultOnInvariantViolation
	}
	invariantViolationHandler.Store(fn)
}

// GetOnInvariantViolation returns the currently configured handler.
func GetOnInvariantViolation() func(err error) {
	return invariantViolationHandler.Load().(func(error))
}

func onInvariantViolation(err error) {
	GetOnInvariantViolation()(err)
}

func defaultOnInvariantViolation(err error) {
	Logger().WithError(err).Error("broadcast: invariant violation")
}
