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

import "sync"

// controlledSource is a Source[T] test double fully driven by the test:
// items queued via push are handed out in order, Next parks (recording the
// supplied wake) once the queue drains, and end closes the stream once
// everything queued has been consumed.
type controlledSource[T any] struct {
	mu     sync.Mutex
	items  []T
	ended  bool
	waker  func()
	polled int
}

func newControlledSource[T any]() *controlledSource[T] {
	return &controlledSource[T]{}
}

func (c *controlledSource[T]) Next(wake func()) (T, SourceState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.polled++

	if len(c.items) > 0 {
		item := c.items[0]
		c.items = c.items[1:]
		return item, SourceReady
	}

	if c.ended {
		var zero T
		return zero, SourceEnded
	}

	c.waker = wake
	var zero T
	return zero, SourcePending
}

// push enqueues item and wakes a parked Engine, if any.
func (c *controlledSource[T]) push(item T) {
	c.mu.Lock()
	c.items = append(c.items, item)
	w := c.waker
	c.waker = nil
	c.mu.Unlock()

	if w != nil {
		w()
	}
}

// end marks the source exhausted once currently queued items are drained.
func (c *controlledSource[T]) end() {
	c.mu.Lock()
	c.ended = true
	w := c.waker
	c.waker = nil
	c.mu.Unlock()

	if w != nil {
		w()
	}
}
