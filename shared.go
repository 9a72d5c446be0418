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
	"sync"
	"sync/atomic"
)

// shared is the lock-free rendezvous point between one Engine and any
// number of Receivers. The Engine is the sole writer of the snapshot
// pointer and of the tip/tail hints; everything else (subscribe, poll,
// register a wake) may be called from any number of goroutines
// concurrently without blocking.
type shared[T any] struct {
	snap atomic.Pointer[snapshot[T]]

	tipHint  atomic.Uint64
	tailHint atomic.Uint64

	subscriberCount atomic.Int64
	dead            atomic.Bool

	mu        sync.Mutex
	wakeQueue []wakeHandle

	// engineNotify is the Engine's single-slot notifier: register_wake
	// pings it with a non-blocking send, and the Engine's Run loop blocks
	// receiving from it between poll cycles. A full (size-1) channel means
	// a wake is already pending, so the Engine will observe it regardless.
	engineNotify chan struct{}
}

func newShared[T any]() *shared[T] {
	s := &shared[T]{
		engineNotify: make(chan struct{}, 1),
	}
	s.snap.Store(emptySnapshot[T]())
	s.tailHint.Store(1)
	s.tipHint.Store(1)
	return s
}

// loadSnapshot always returns the latest published snapshot. Lock-free and
// wait-free: a single atomic pointer load.
func (s *shared[T]) loadSnapshot() *snapshot[T] {
	return s.snap.Load()
}

// swapSnapshot atomically replaces the current snapshot and refreshes the
// subscribe hints: tip becomes back.ID+1, tail becomes front.ID (or the
// next id to be assigned when the buffer is empty). Only the Engine calls
// this.
func (s *shared[T]) swapSnapshot(next *snapshot[T], nextMessageID uint64) {
	s.snap.Store(next)

	if back, ok := next.back(); ok {
		s.tipHint.Store(back.ID + 1)
	} else {
		s.tipHint.Store(nextMessageID)
	}

	if front, ok := next.front(); ok {
		s.tailHint.Store(front.ID)
	} else {
		s.tailHint.Store(nextMessageID)
	}
}

func (s *shared[T]) tipHintValue() uint64  { return s.tipHint.Load() }
func (s *shared[T]) tailHintValue() uint64 { return s.tailHint.Load() }

func (s *shared[T]) isDead() bool { return s.dead.Load() }

// setDead idempotently marks the channel dead and pings the Engine notifier
// so a concurrently-running Engine observes it and runs its teardown path.
func (s *shared[T]) setDead() {
	s.dead.Store(true)
	s.notifyEngine()
}

func (s *shared[T]) incrementSubscriberCount() {
	s.subscriberCount.Add(1)
}

func (s *shared[T]) decrementSubscriberCount() {
	s.subscriberCount.Add(-1)
}

func (s *shared[T]) subscriberCountValue() int64 {
	return s.subscriberCount.Load()
}

// registerWake enqueues a wake registration for the Engine to service. If
// the channel is already dead, the callback is invoked immediately instead
// of being queued. This never blocks and never loses a wakeup.
func (s *shared[T]) registerWake(h wakeHandle) {
	if s.isDead() {
		h.invoke()
		return
	}

	s.mu.Lock()
	s.wakeQueue = append(s.wakeQueue, h)
	s.mu.Unlock()

	s.notifyEngine()
}

// drainWakeQueue pops every currently queued handle for the Engine to
// process in its Phase 4.
func (s *shared[T]) drainWakeQueue() []wakeHandle {
	s.mu.Lock()
	drained := s.wakeQueue
	s.wakeQueue = nil
	s.mu.Unlock()
	return drained
}

// notifyEngine pings the Engine's single-slot notifier. It never blocks: if
// a wake is already pending, this is a no-op, since the Engine will observe
// at least one more poll cycle regardless.
func (s *shared[T]) notifyEngine() {
	select {
	case s.engineNotify <- struct{}{}:
	default:
	}
}
