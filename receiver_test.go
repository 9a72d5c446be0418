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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReceiverDefaultSubscribeStartsAtTip(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	src := newControlledSource[string]()
	s := newShared[string]()
	e := newEngine[string](s, src, unboundedPolicy[string]{})

	src.push("old")
	e.pollOnce()

	r := newReceiver[string](s)
	res := r.Poll(func() {})
	is.Equal(PollPending, res.State)

	src.push("new")
	e.pollOnce()

	res = r.Poll(func() {})
	is.Equal(PollItem, res.State)
	is.Equal("new", res.Item)
}

func TestReceiverSubscribeAtTailSeesBuffered(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	src := newControlledSource[string]()
	s := newShared[string]()
	e := newEngine[string](s, src, unboundedPolicy[string]{})

	src.push("a")
	src.push("b")
	e.pollOnce()

	r := newReceiver[string](s)
	r.nextMessageID = s.tailHintValue()

	res := r.Poll(func() {})
	is.Equal(PollItem, res.State)
	is.Equal("a", res.Item)

	res = r.Poll(func() {})
	is.Equal(PollItem, res.State)
	is.Equal("b", res.Item)

	res = r.Poll(func() {})
	is.Equal(PollPending, res.State)
}

func TestReceiverLaggedReportsSkippedAndResyncs(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	src := newControlledSource[int]()
	s := newShared[int]()
	e := newEngine[int](s, src, NewLengthPolicy[int](2))

	r := newReceiver[int](s)
	r.nextMessageID = 1

	for i := 0; i < 10; i++ {
		src.push(i)
	}
	e.pollOnce()

	res := r.Poll(func() {})
	is.Equal(PollLagged, res.State)
	is.Equal(uint64(8), res.Skipped)

	res = r.Poll(func() {})
	is.Equal(PollItem, res.State)
	is.Equal(8, res.Item)
}

func TestReceiverEndOfStreamAfterChannelDead(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	s := newShared[int]()
	s.setDead()

	r := newReceiver[int](s)
	res := r.Poll(func() {})
	is.Equal(PollEnded, res.State)
}

func TestReceiverPendingRegistersWakeAndWakesOnAdmission(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	src := newControlledSource[int]()
	s := newShared[int]()
	e := newEngine[int](s, src, unboundedPolicy[int]{})

	r := newReceiver[int](s)
	r.nextMessageID = 1

	woken := make(chan struct{}, 1)
	res := r.Poll(func() {
		select {
		case woken <- struct{}{}:
		default:
		}
	})
	is.Equal(PollPending, res.State)

	src.push(42)
	e.pollOnce()

	select {
	case <-woken:
	case <-time.After(time.Second):
		t.Fatal("wake callback was never invoked after admission")
	}

	res = r.Poll(func() {})
	is.Equal(PollItem, res.State)
	is.Equal(42, res.Item)
}

func TestReceiverRecvBlocksUntilItemThenReturns(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	src := newControlledSource[int]()
	s := newShared[int]()
	e := newEngine[int](s, src, unboundedPolicy[int]{})

	r := newReceiver[int](s)
	r.nextMessageID = 1

	resultCh := make(chan PollResult[int], 1)
	go func() {
		resultCh <- r.Recv(context.Background())
	}()

	time.Sleep(10 * time.Millisecond)
	src.push(7)
	e.pollOnce()

	select {
	case res := <-resultCh:
		is.Equal(PollItem, res.State)
		is.Equal(7, res.Item)
	case <-time.After(2 * time.Second):
		t.Fatal("Recv never returned")
	}
}

func TestReceiverRecvRespectsContextCancellation(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	s := newShared[int]()
	r := newReceiver[int](s)
	r.nextMessageID = 1

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	res := r.Recv(ctx)
	is.Equal(PollPending, res.State)
}
