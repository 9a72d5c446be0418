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

	"github.com/samber/broadcast/internal/xring"
)

// Sender is a thin producer-side adapter for callers who don't already
// have a Source to hand to Wrap: anything that can call Send from one
// goroutine gets a ready-made Source for NewChannel's Engine to drain.
//
// The ring holds at most capacity items that the Engine has not yet
// drained; while it is full, Send returns a *SendOverflowError[T] instead
// of queueing.
type Sender[T any] struct {
	source *senderSource[T]
}

// NewSender creates a Sender and its paired Source, ready to be handed to
// Wrap (NewChannel calls NewSender and Wrap itself). capacity bounds how many unsent items may queue up before
// Send starts returning a *SendOverflowError[T].
func NewSender[T any](capacity int) (*Sender[T], Source[T]) {
	src := &senderSource[T]{queue: xring.New[T](capacity)}
	return &Sender[T]{source: src}, src
}

// Send enqueues item for the Engine to admit. It never blocks: if the ring
// is already full, it returns the item back to the caller wrapped in a
// *SendOverflowError[T] (spec.md §6/§7: "overflow returns the item"), so
// the caller can retry or drop it without having retained a copy of their
// own.
func (s *Sender[T]) Send(item T) error {
	if s.source.closed.Load() {
		return ErrChannelDead
	}
	if !s.source.queue.Push(item) {
		return &SendOverflowError[T]{Item: item}
	}
	s.source.wakeEngine()
	return nil
}

// Close signals end-of-stream to the Engine once the ring drains. No
// further Sends are accepted afterward.
func (s *Sender[T]) Close() {
	s.source.closed.Store(true)
	s.source.wakeEngine()
}

// senderSource adapts Ring into a Source[T], the Go analogue of the
// original sender's SenderStream/AtomicWaker pairing: a single-slot waker
// registered by the Engine on Pending, invoked by the producer on the next
// successful Send or Close.
type senderSource[T any] struct {
	queue  *xring.Ring[T]
	closed atomic.Bool
	waker  atomic.Pointer[func()]
}

func (s *senderSource[T]) Next(wake func()) (T, SourceState) {
	if item, ok := s.queue.Pop(); ok {
		return item, SourceReady
	}

	if s.closed.Load() {
		var zero T
		return zero, SourceEnded
	}

	s.waker.Store(&wake)

	// A Send may have landed between the Pop above and registering wake;
	// check once more so a concurrent producer's wakeEngine call (which
	// may have fired against the previous, now-stale waker) is never the
	// last word.
	if item, ok := s.queue.Pop(); ok {
		return item, SourceReady
	}

	var zero T
	return zero, SourcePending
}

func (s *senderSource[T]) wakeEngine() {
	if w := s.waker.Swap(nil); w != nil {
		(*w)()
	}
}
