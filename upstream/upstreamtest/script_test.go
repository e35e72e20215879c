// Copyright 2021 The appstatus Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package upstreamtest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gogama/appstatus/upstream"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScript(t *testing.T) {
	assert.Panics(t, func() { NewScript() })
}

func TestScript(t *testing.T) {
	t.Run("plays steps then repeats last", func(t *testing.T) {
		s := NewScript(
			Settle(0, upstream.Retry{Delay: time.Second}),
			Settle(time.Millisecond, upstream.Success{ID: "a", Status: "OK"}),
		)
		ctx := context.Background()
		o, err := s.Query(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, upstream.Retry{Delay: time.Second}, o)
		for i := 0; i < 3; i++ {
			o, err = s.Query(ctx, "a")
			require.NoError(t, err)
			assert.Equal(t, upstream.Success{ID: "a", Status: "OK"}, o)
		}
		assert.Equal(t, 4, s.Calls())
		assert.Equal(t, 0, s.Active())
		assert.Equal(t, 0, s.Canceled())
		assert.Equal(t, []string{"a", "a", "a", "a"}, s.IDs())
	})
	t.Run("error step", func(t *testing.T) {
		s := NewScript(Fail(0, errors.New("nope")))
		o, err := s.Query(context.Background(), "x")
		assert.Nil(t, o)
		assert.EqualError(t, err, "nope")
		assert.Equal(t, 0, s.Canceled())
	})
	t.Run("canceled during delay", func(t *testing.T) {
		s := NewScript(Settle(time.Hour, upstream.Failure{}))
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
		defer cancel()
		o, err := s.Query(ctx, "x")
		assert.Nil(t, o)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, 1, s.Canceled())
	})
	t.Run("pending", func(t *testing.T) {
		s := NewScript(Pending())
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error)
		go func() {
			_, err := s.Query(ctx, "x")
			done <- err
		}()
		require.Eventually(t, func() bool { return s.Active() == 1 }, time.Second, time.Millisecond)
		cancel()
		assert.ErrorIs(t, <-done, context.Canceled)
		assert.Equal(t, 0, s.Active())
		assert.Equal(t, 1, s.Canceled())
	})
}

func TestRun(t *testing.T) {
	Run(t, func(t *testing.T) upstream.Source {
		return NewScript(
			Settle(time.Millisecond, upstream.Success{ID: "contract", Status: "OK"}),
			Settle(0, upstream.Retry{Delay: time.Second}),
			Settle(2*time.Millisecond, upstream.Failure{}),
		)
	})
}
