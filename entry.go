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

import "github.com/samber/lo"

// Entry pairs a monotonically increasing message id with the item admitted
// at that id. Ids start at 1 and strictly increase by one per admitted
// upstream item; they are never reused within one channel's lifetime.
type Entry[T any] struct {
	ID   uint64
	Item T
}

// snapshot is an immutable, ordered view of the buffered entries. The id
// sequence has no gaps: for any i<j, snapshot[j].ID == snapshot[i].ID + (j-i).
// It is published by the Engine via an atomic pointer swap and read by any
// number of Receivers without synchronization.
type snapshot[T any] struct {
	entries []Entry[T]
}

func emptySnapshot[T any]() *snapshot[T] {
	return &snapshot[T]{}
}

func (s *snapshot[T]) len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

func (s *snapshot[T]) front() (Entry[T], bool) {
	if s.len() == 0 {
		var zero Entry[T]
		return zero, false
	}
	return s.entries[0], true
}

func (s *snapshot[T]) back() (Entry[T], bool) {
	if s.len() == 0 {
		var zero Entry[T]
		return zero, false
	}
	return s.entries[len(s.entries)-1], true
}

// find locates id within the snapshot using direct offset arithmetic. Ids
// are contiguous within a snapshot, so this is O(1) instead of a binary
// search over the entries.
//
// Returns:
//   - (offset, located=true) when id is present at that offset.
//   - (0, false, belowFront=true) when id has already fallen off the front
//     (the caller has lagged).
//   - (id-front.ID, false, belowFront=false) when id has not been admitted
//     yet (the caller should park); (0, false, false) when the snapshot is
//     empty.
func (s *snapshot[T]) find(id uint64) (offset int, located bool, belowFront bool) {
	front, ok := s.front()
	if !ok {
		return 0, false, false
	}

	if id < front.ID {
		return 0, false, true
	}

	off := int(id - front.ID)
	if off >= s.len() {
		return off, false, false
	}

	return off, true, false
}

// CollectItems strips the ids off a batch of entries, for callers who only
// want the plain values (e.g. after reading a run of Entry results off a
// tail subscription).
func CollectItems[T any](entries []Entry[T]) []T {
	return lo.Map(entries, func(e Entry[T], _ int) T {
		return e.Item
	})
}
