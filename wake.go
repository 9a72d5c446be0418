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

// waker re-schedules whatever host executor is driving a parked task. In
// Go this is a plain callback: a Receiver's convenience Recv loop supplies
// one that pings an internal channel; a caller driving Poll by hand may
// supply anything that makes sense for their own executor.
type waker func()

// wakeHandle pairs the message id a Receiver is waiting to see with the
// callback that reschedules it. A wakeHandle is single-use: once invoked it
// is discarded by whichever container currently owns it (the wake queue or
// the Engine's parked list).
//
// Repeated polls of a still-parked Receiver register a fresh wakeHandle for
// the same target id each time; the Engine does not dedupe these by a
// keyed registration (the simpler of the two valid options the design
// allows — see DESIGN.md). It just tolerates the occasional redundant wake.
type wakeHandle struct {
	target uint64
	wake   waker
}

func (h wakeHandle) invoke() {
	if h.wake != nil {
		h.wake()
	}
}
