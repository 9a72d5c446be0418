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
	"time"

	"github.com/samber/broadcast/internal/xtime"
)

// EvictDecision is the answer a BufferPolicy gives when asked whether the
// current tail of the buffer should be evicted.
type EvictDecision uint8

const (
	// Retain keeps the tail as-is.
	Retain EvictDecision = iota
	// Pop removes the tail item, triggering an OnEvict callback.
	Pop
)

// BufferPolicy decides whether the oldest buffered item should be evicted
// when a new item is about to be admitted, and receives before/after
// notifications for its own bookkeeping. Policies expose no failure; they
// are pure state transitions, called only from the Engine's single-writer
// context.
type BufferPolicy[T any] interface {
	// ShouldEvictTail is called by the Engine before admitting a new item,
	// repeatedly while it answers Pop and the buffer is non-empty.
	ShouldEvictTail(tail T) EvictDecision

	// OnAdmit is called once as an item enters the buffer. It may return a
	// mutated item (e.g. stamped with an arrival time); the mutation is
	// visible to every downstream Receiver.
	OnAdmit(item T) T

	// OnEvict is called once per eviction, after removal, for bookkeeping.
	// Mutations made here are not observable.
	OnEvict(popped T)
}

// NewLengthPolicy returns a BufferPolicy that evicts the tail whenever the
// buffer holds at least limit items.
func NewLengthPolicy[T any](limit int) BufferPolicy[T] {
	if limit < 0 {
		limit = 0
	}
	return &lengthPolicy[T]{limit: limit}
}

type lengthPolicy[T any] struct {
	limit int
	count int
}

func (p *lengthPolicy[T]) ShouldEvictTail(T) EvictDecision {
	if p.count >= p.limit {
		return Pop
	}
	return Retain
}

func (p *lengthPolicy[T]) OnAdmit(item T) T {
	p.count++
	return item
}

func (p *lengthPolicy[T]) OnEvict(T) {
	p.count--
}

// NewAgePolicy returns a BufferPolicy that evicts the tail once its
// projected timestamp is older than ageLimit. getTimestamp is called once
// per ShouldEvictTail check against the current tail item.
func NewAgePolicy[T any](ageLimit time.Duration, getTimestamp func(T) time.Time) BufferPolicy[T] {
	return &agePolicy[T]{ageLimit: ageLimit, getTimestamp: getTimestamp}
}

type agePolicy[T any] struct {
	ageLimit     time.Duration
	getTimestamp func(T) time.Time
}

func (p *agePolicy[T]) ShouldEvictTail(tail T) EvictDecision {
	if time.Since(p.getTimestamp(tail)) > p.ageLimit {
		return Pop
	}
	return Retain
}

func (p *agePolicy[T]) OnAdmit(item T) T { return item }
func (p *agePolicy[T]) OnEvict(T)        {}

// NewWeightPolicy returns a BufferPolicy that evicts the tail while the
// accumulated weight exceeds limit. The limit is soft: a single oversized
// item may still be admitted above the threshold, since the check happens
// against the tail before the new item is pushed.
func NewWeightPolicy[T any](limit uint64, getWeight func(T) uint64) BufferPolicy[T] {
	return &weightPolicy[T]{limit: limit, getWeight: getWeight}
}

type weightPolicy[T any] struct {
	limit     uint64
	weight    uint64
	getWeight func(T) uint64
}

func (p *weightPolicy[T]) ShouldEvictTail(T) EvictDecision {
	if p.weight > p.limit {
		return Pop
	}
	return Retain
}

func (p *weightPolicy[T]) OnAdmit(item T) T {
	p.weight = saturatingAddUint64(p.weight, p.getWeight(item))
	return item
}

func (p *weightPolicy[T]) OnEvict(popped T) {
	p.weight = saturatingSubUint64(p.weight, p.getWeight(popped))
}

func saturatingAddUint64(a, b uint64) uint64 {
	sum := a + b
	if sum < a {
		return ^uint64(0)
	}
	return sum
}

func saturatingSubUint64(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

// NewCompositePolicy wraps upper above lower: upper is evaluated first, and
// either policy answering Pop causes the composite to answer Pop.
// Notifications fan out to both in a fixed order, upper first. Composites
// can be nested by wrapping further composites.
func NewCompositePolicy[T any](upper, lower BufferPolicy[T]) BufferPolicy[T] {
	return &compositePolicy[T]{upper: upper, lower: lower}
}

type compositePolicy[T any] struct {
	upper, lower BufferPolicy[T]
}

func (p *compositePolicy[T]) ShouldEvictTail(tail T) EvictDecision {
	if p.upper.ShouldEvictTail(tail) == Pop {
		return Pop
	}
	return p.lower.ShouldEvictTail(tail)
}

func (p *compositePolicy[T]) OnAdmit(item T) T {
	item = p.upper.OnAdmit(item)
	item = p.lower.OnAdmit(item)
	return item
}

func (p *compositePolicy[T]) OnEvict(popped T) {
	p.upper.OnEvict(popped)
	p.lower.OnEvict(popped)
}

// Stamp wraps an item with a monotonic arrival timestamp, set by
// NewStampPolicy.OnAdmit. It is the vehicle for BufferPolicy.OnAdmit's
// documented ability to mutate an admitted item (spec: "e.g. stamp arrival
// time"). ArrivalNano counts nanoseconds from this package's
// initialisation, not from the Unix epoch, so time.Unix(0, ArrivalNano)
// is not the arrival wall-clock time.
type Stamp[T any] struct {
	Item        T
	ArrivalNano int64
}

// NewStampPolicy returns a no-op eviction policy whose only job is to stamp
// each admitted item with the current monotonic time. Compose it above a
// real eviction policy with NewCompositePolicy to get both behaviors.
func NewStampPolicy[T any]() BufferPolicy[Stamp[T]] {
	return &stampPolicy[T]{}
}

type stampPolicy[T any] struct{}

func (p *stampPolicy[T]) ShouldEvictTail(Stamp[T]) EvictDecision { return Retain }

func (p *stampPolicy[T]) OnAdmit(item Stamp[T]) Stamp[T] {
	item.ArrivalNano = xtime.NowNanoMonotonic()
	return item
}

func (p *stampPolicy[T]) OnEvict(Stamp[T]) {}
