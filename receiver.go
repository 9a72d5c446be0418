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
	"context"
)

// PollState describes the outcome of a single Receiver.Poll call.
type PollState uint8

const (
	// PollPending means no new item is available yet; the supplied wake
	// will be invoked exactly once when polling again may make progress.
	PollPending PollState = iota
	// PollItem means Item holds the next entry in sequence.
	PollItem
	// PollLagged means entries were evicted before this Receiver could
	// read them. Item is invalid; Skipped reports how many were missed.
	// The Receiver is resynchronized to the new buffer front and the next
	// Poll resumes from there.
	PollLagged
	// PollEnded means the channel has died: upstream ended, the Handle was
	// closed, or the Engine was dropped. No further items will ever
	// arrive.
	PollEnded
)

// PollResult is the raw, non-blocking result of a Receiver.Poll call. Most
// callers want the convenience Recv wrapper instead.
type PollResult[T any] struct {
	State   PollState
	Item    T
	Skipped uint64
}

// Receiver consumes a Engine's published snapshots at its own pace. It
// tracks only a next-message-id cursor and is otherwise stateless: cloning
// the cursor (see Handle.Clone) creates an entirely independent
// Receiver with no shared mutable state.
//
// A Receiver is demand-pulled: unlike a channel receive, nothing is pushed
// to it. It must be polled (directly via Poll, or via the Recv
// convenience wrapper) to make progress, and a slow Receiver can only ever
// lag the buffer, never block the Engine or other Receivers.
type Receiver[T any] struct {
	shared        *shared[T]
	nextMessageID uint64 // 0 means "resolve lazily from tip on first poll"
	wakeCh        chan struct{}
}

func newReceiver[T any](s *shared[T]) *Receiver[T] {
	return &Receiver[T]{
		shared: s,
		wakeCh: make(chan struct{}, 1),
	}
}

// resolveStart pins nextMessageID to the current tip hint if no starting
// position has been set yet. Handle.Subscribe and Handle.SubscribeAtTail
// set the position at construction, so this only takes effect for a
// Receiver built without one; such a Receiver skips every item admitted
// before its first Poll.
func (r *Receiver[T]) resolveStart() {
	if r.nextMessageID == 0 {
		r.nextMessageID = r.shared.tipHintValue()
	}
}

// Poll is the raw, non-blocking read. It never allocates a goroutine and
// never blocks: when no new item is ready, it registers wake with the
// Engine and returns PollPending immediately.
//
// Death is checked first and unconditionally: once the channel is dead, a
// Receiver reports End-of-Stream immediately rather than draining whatever
// unread entries still happen to sit in the buffer (spec.md §4.4 step 1;
// the original's receiver.rs short-circuits the same way before ever
// touching the snapshot).
func (r *Receiver[T]) Poll(wake func()) PollResult[T] {
	r.resolveStart()

	if r.shared.isDead() {
		return PollResult[T]{State: PollEnded}
	}

	snap := r.shared.loadSnapshot()
	if res, ok := r.tryRead(snap); ok {
		return res
	}

	r.shared.registerWake(wakeHandle{target: r.nextMessageID, wake: wake})

	// Re-check after registering: the Engine may have published between our
	// read above and the registration landing, in which case we'd
	// otherwise park on a wake that will never come (it already happened).
	snap = r.shared.loadSnapshot()
	if res, ok := r.tryRead(snap); ok {
		return res
	}
	if r.shared.isDead() {
		return PollResult[T]{State: PollEnded}
	}

	return PollResult[T]{State: PollPending}
}

// tryRead attempts to produce a result from snap without consulting
// liveness. ok is false only when nextMessageID has not been admitted yet
// (the caller must park or report end-of-stream).
func (r *Receiver[T]) tryRead(snap *snapshot[T]) (PollResult[T], bool) {
	offset, located, belowFront := snap.find(r.nextMessageID)
	if located {
		entry := snap.entries[offset]
		if entry.ID != r.nextMessageID {
			onInvariantViolation(ErrInvariantViolation)
			return PollResult[T]{State: PollEnded}, true
		}
		r.nextMessageID++
		return PollResult[T]{State: PollItem, Item: entry.Item}, true
	}

	if belowFront {
		front, ok := snap.front()
		if !ok {
			return PollResult[T]{}, false
		}
		skipped := front.ID - r.nextMessageID
		r.nextMessageID = front.ID
		return PollResult[T]{State: PollLagged, Skipped: skipped}, true
	}

	return PollResult[T]{}, false
}

// Recv blocks until the next item, a lag notification, end-of-stream, or
// ctx cancellation, whichever comes first. It is the convenience surface
// built on top of Poll, the same way the teacher's blocking helpers wrap
// its raw Poll-shaped primitives.
func (r *Receiver[T]) Recv(ctx context.Context) PollResult[T] {
	for {
		res := r.Poll(r.selfWake)
		if res.State != PollPending {
			return res
		}

		select {
		case <-ctx.Done():
			return PollResult[T]{State: PollPending}
		case <-r.wakeCh:
		}
	}
}

func (r *Receiver[T]) selfWake() {
	select {
	case r.wakeCh <- struct{}{}:
	default:
	}
}
