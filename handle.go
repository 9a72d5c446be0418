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

// Handle is the subscription factory side of a channel: the one object
// every producer and consumer shares to mint new Receivers and to observe
// or tear down the channel. It holds no buffered state of its own; all of
// that lives in shared, which Handle merely exposes safely.
type Handle[T any] struct {
	shared *shared[T]
}

func newHandle[T any](s *shared[T]) *Handle[T] {
	return &Handle[T]{shared: s}
}

// Subscribe mints a Receiver starting at the current tip: it will observe
// only items admitted from this point forward, never anything already
// buffered. This is the default subscription mode (see DESIGN.md's Open
// Question decision on tip-only default subscribe).
func (h *Handle[T]) Subscribe() *Receiver[T] {
	h.shared.incrementSubscriberCount()
	r := newReceiver[T](h.shared)
	r.nextMessageID = h.shared.tipHintValue()
	return r
}

// SubscribeAtTail mints a Receiver starting at the oldest currently
// retained id: its first Poll returns that entry (if any are buffered)
// rather than parking until something new arrives.
func (h *Handle[T]) SubscribeAtTail() *Receiver[T] {
	h.shared.incrementSubscriberCount()
	r := newReceiver[T](h.shared)
	r.nextMessageID = h.shared.tailHintValue()
	return r
}

// Clone returns an independent Receiver resuming from exactly where r is,
// without disturbing r. The clone may subsequently lag differently than
// the original, since the two no longer share any state.
func (h *Handle[T]) Clone(r *Receiver[T]) *Receiver[T] {
	h.shared.incrementSubscriberCount()
	r.resolveStart()
	clone := newReceiver[T](h.shared)
	clone.nextMessageID = r.nextMessageID
	return clone
}

// Release drops a Receiver obtained from this Handle, decrementing the
// live subscriber count. Receivers carry no other resources to release;
// this exists purely for accounting (SubscriberCount) and is optional.
func (h *Handle[T]) Release(*Receiver[T]) {
	h.shared.decrementSubscriberCount()
}

// SubscriberCount reports the number of Receivers currently minted and not
// yet Released. It is a best-effort hint, not a guarantee: nothing stops a
// caller from holding a Receiver without ever calling Release.
func (h *Handle[T]) SubscriberCount() int64 {
	return h.shared.subscriberCountValue()
}

// Close tears down the channel: every parked and future Receiver observes
// PollEnded, and the Engine (if running) exits its Run loop on its next
// cycle. Close is idempotent and may be called concurrently with any
// other Handle or Receiver method.
func (h *Handle[T]) Close() {
	h.shared.setDead()
}

// Dead reports whether the channel has already been torn down, either via
// Close, upstream ending, or the Engine being dropped.
func (h *Handle[T]) Dead() bool {
	return h.shared.isDead()
}

// SubscriberCountHandle is a weak, Handle-independent way to keep asking
// "how many subscribers?" after the Handle that minted it may have gone
// out of scope. It holds only the same underlying shared reference, so it
// costs nothing beyond one pointer and needs no GC-weak-reference support.
type SubscriberCountHandle[T any] struct {
	shared *shared[T]
}

// SubscriberCountHandle returns a weak handle usable after h itself is no
// longer reachable. It reports (0, false) once the channel has been torn
// down, distinguishing "no subscribers" from "channel is gone".
func (h *Handle[T]) SubscriberCountHandle() SubscriberCountHandle[T] {
	return SubscriberCountHandle[T]{shared: h.shared}
}

// Count returns the live subscriber count, or false if the channel has
// already died.
func (c SubscriberCountHandle[T]) Count() (int64, bool) {
	if c.shared.isDead() {
		return 0, false
	}
	return c.shared.subscriberCountValue(), true
}
