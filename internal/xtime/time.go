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

package xtime

import (
	"time"
)

var startTime = time.Now()

// NowNanoMonotonic returns a monotonic nanosecond counter relative to package
// init. It is cheaper than repeated time.Now() calls on the Engine's hot
// admission path, where a BufferPolicy may stamp every entry.
func NowNanoMonotonic() int64 {
	return time.Since(startTime).Nanoseconds()
}
