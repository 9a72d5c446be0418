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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSenderSendOverflowReturnsError(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	sender, source := NewSender[int](2)

	is.NoError(sender.Send(1))
	is.NoError(sender.Send(2))

	err := sender.Send(3)
	is.ErrorIs(err, ErrSendOverflow)

	var overflow *SendOverflowError[int]
	is.True(errors.As(err, &overflow))
	is.Equal(3, overflow.Item)

	item, state := source.Next(func() {})
	is.Equal(SourceReady, state)
	is.Equal(1, item)
}

func TestSenderSourcePendingThenReadyAfterSend(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	sender, source := NewSender[int](4)

	woke := false
	_, state := source.Next(func() { woke = true })
	is.Equal(SourcePending, state)
	is.False(woke)

	is.NoError(sender.Send(5))
	is.True(woke)

	item, state := source.Next(func() {})
	is.Equal(SourceReady, state)
	is.Equal(5, item)
}

func TestSenderCloseSignalsEndAfterDrain(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	sender, source := NewSender[int](4)
	is.NoError(sender.Send(1))
	sender.Close()

	item, state := source.Next(func() {})
	is.Equal(SourceReady, state)
	is.Equal(1, item)

	_, state = source.Next(func() {})
	is.Equal(SourceEnded, state)
}

func TestSenderSendAfterCloseReturnsChannelDead(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	sender, _ := NewSender[int](4)
	sender.Close()

	is.ErrorIs(sender.Send(1), ErrChannelDead)
}

func TestSenderWakesEngineOnSend(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	sender, source := NewSender[int](4)

	woke := make(chan struct{}, 1)
	_, state := source.Next(func() {
		select {
		case woke <- struct{}{}:
		default:
		}
	})
	is.Equal(SourcePending, state)

	is.NoError(sender.Send(99))

	select {
	case <-woke:
	default:
		t.Fatal("expected Send to invoke the registered waker")
	}
}
