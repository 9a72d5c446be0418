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

	"github.com/sirupsen/logrus"
)

// SourceState is the outcome of a single Source.Next call.
type SourceState uint8

const (
	// SourceReady means the returned item is valid and admitted.
	SourceReady SourceState = iota
	// SourcePending means no item is available yet; wake will be called
	// when the Engine should try again.
	SourcePending
	// SourceEnded means the upstream will never yield another item.
	SourceEnded
)

// Source is any demand-pulled upstream sequence the Engine can drain. It is
// the one interface external code must implement to feed Wrap.
type Source[T any] interface {
	// Next attempts to pull the next item. When it returns SourcePending,
	// wake is retained by the Source and must be called exactly once, at
	// or after the point more data (or end-of-stream) becomes available,
	// to get the Engine polled again.
	Next(wake func()) (item T, state SourceState)
}

const defaultWakeLimit = 32

// Engine is the always-running driver that absorbs Source and republishes
// buffer snapshots for Receivers. It never blocks and never synchronizes
// with Receivers outside of shared's lock-free primitives. Call Run to
// drive it to completion on a goroutine of your choosing; that is the
// Go equivalent of scheduling the Engine as a task on a host executor.
type Engine[T any] struct {
	shared        *shared[T]
	upstream      Source[T]
	nextMessageID uint64
	parked        []wakeHandle
	policy        BufferPolicy[T]
	wakeLimit     int
	log           *logrus.Entry
}

func newEngine[T any](s *shared[T], upstream Source[T], policy BufferPolicy[T]) *Engine[T] {
	return &Engine[T]{
		shared:        s,
		upstream:      upstream,
		nextMessageID: 1,
		policy:        policy,
		wakeLimit:     defaultWakeLimit,
		log:           Logger().WithField("component", "engine"),
	}
}

// SetWakeLimit tunes the maximum number of WakeHandles invoked per poll
// cycle. Larger numbers are more efficient but can lead to a single cycle
// monopolizing its goroutine under a subscriber wake storm. Minimum 1.
func (e *Engine[T]) SetWakeLimit(n int) {
	if n < 1 {
		n = 1
	}
	e.wakeLimit = n
}

// Run drives the Engine until the channel dies (upstream ends, the Handle
// is closed, or ctx is cancelled), then returns. It is the Go substitute
// for the spec's externally-polled Future: each loop iteration here is one
// poll cycle, and blocking on the notifier channel is the substitute for
// returning Poll::Pending to an executor (see SPEC_FULL.md §1).
func (e *Engine[T]) Run(ctx context.Context) error {
	for {
		terminal, moreWork := e.pollOnce()
		if terminal {
			return nil
		}
		if moreWork {
			// Wake-limit discipline: more queued work remains than this
			// cycle's budget allowed. Loop immediately instead of waiting
			// for a fresh notification, the substitute for the spec's
			// "self-reschedule by calling its own waker".
			continue
		}

		select {
		case <-ctx.Done():
			e.shared.setDead()
			e.drainEverything()
			return ctx.Err()
		case <-e.shared.engineNotify:
		}
	}
}

// Close marks the channel dead and wakes every outstanding Receiver. It is
// the Go substitute for the spec's Engine-drop semantics, for callers that
// tear down an Engine without ever calling Run (or want to stop it
// early without waiting on ctx cancellation to propagate).
func (e *Engine[T]) Close() {
	e.shared.setDead()
	e.drainEverything()
}

// pollOnce runs one four-phase cycle. terminal reports that the Engine has
// reached Ready (upstream ended or the channel died) and must not be
// polled again. moreWork reports that the wake-limit was hit and the
// caller should re-invoke pollOnce immediately rather than wait for a
// notification.
func (e *Engine[T]) pollOnce() (terminal bool, moreWork bool) {
	// Phase 0 — death check.
	if e.shared.isDead() {
		e.log.Trace("channel is dead, tearing down")
		e.drainEverything()
		return true, false
	}

	// Phase 1 — arm interest. In the threaded Go model the Run loop already
	// listens on shared.engineNotify for every subsequent registerWake, so
	// there is nothing further to (re-)arm per cycle.

	// Phase 2 — absorb upstream.
	dirty, ended := e.absorbUpstream()
	if ended {
		e.log.Debug("upstream ended")
		e.shared.setDead()
		e.drainEverything()
		return true, false
	}

	// Phase 3 — flush parked on dirty.
	var work []wakeHandle
	work = append(work, e.shared.drainWakeQueue()...)
	if dirty {
		work = append(work, e.parked...)
		e.parked = e.parked[:0]
	}

	// Phase 4 — service wake queue, bounded by wakeLimit.
	tip := e.nextMessageID - 1
	serviced := 0
	for i, h := range work {
		if serviced >= e.wakeLimit {
			e.requeue(work[i:])
			return false, true
		}
		if h.target > tip {
			e.parked = append(e.parked, h)
		} else {
			h.invoke()
			serviced++
		}
	}

	return false, false
}

// absorbUpstream repeatedly pulls from upstream until it yields Pending or
// End. Admitted items are accumulated into a private working copy of the
// buffer, cloned lazily from the current snapshot on the first admission of
// this cycle, so a cycle that admits nothing never swaps the snapshot.
func (e *Engine[T]) absorbUpstream() (dirty bool, ended bool) {
	var working []Entry[T]
	cloned := false

	for {
		item, state := e.upstream.Next(e.shared.notifyEngine)

		switch state {
		case SourceReady:
			if !cloned {
				cur := e.shared.loadSnapshot()
				working = make([]Entry[T], cur.len())
				copy(working, cur.entries)
				cloned = true
			}

			for len(working) > 0 && e.policy.ShouldEvictTail(working[0].Item) == Pop {
				popped := working[0]
				working = working[1:]
				e.policy.OnEvict(popped.Item)
			}

			id := e.nextMessageID
			e.nextMessageID++

			item = e.policy.OnAdmit(item)
			working = append(working, Entry[T]{ID: id, Item: item})

		case SourcePending:
			if cloned {
				e.shared.swapSnapshot(&snapshot[T]{entries: working}, e.nextMessageID)
			}
			return cloned, false

		case SourceEnded:
			if cloned {
				e.shared.swapSnapshot(&snapshot[T]{entries: working}, e.nextMessageID)
			}
			return cloned, true
		}
	}
}

// requeue preserves work left over after hitting the wake-limit so the
// next poll cycle picks it back up regardless of whether that cycle turns
// out dirty.
func (e *Engine[T]) requeue(remaining []wakeHandle) {
	e.shared.mu.Lock()
	e.shared.wakeQueue = append(remaining, e.shared.wakeQueue...)
	e.shared.mu.Unlock()
	e.shared.notifyEngine()
}

// drainEverything invokes every WakeHandle currently parked or queued. Used
// both for the death-check teardown path (Phase 0) and for Close/ctx
// cancellation, which are this port's substitute for Engine Drop.
func (e *Engine[T]) drainEverything() {
	for _, h := range e.parked {
		h.invoke()
	}
	e.parked = nil

	for _, h := range e.shared.drainWakeQueue() {
		h.invoke()
	}
}
