// Copyright 2021 The appstatus Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package simulator

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/gogama/appstatus/upstream"
	"github.com/gogama/appstatus/upstream/upstreamtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulator(t *testing.T) {
	t.Run("contract", func(t *testing.T) {
		upstreamtest.Run(t, func(t *testing.T) upstream.Source {
			return &Simulator{
				RetryDelay: time.Millisecond,
				MinLatency: time.Millisecond,
				MaxLatency: 3 * time.Millisecond,
			}
		})
	})
	t.Run("outcomes", func(t *testing.T) {
		s := New(int64(7))
		s.RetryDelay = 123 * time.Millisecond
		s.MinLatency = time.Millisecond
		s.MaxLatency = 2 * time.Millisecond
		s.Status = "Approved"

		counts := map[upstream.Kind]int{}
		for i := 0; i < 300; i++ {
			start := time.Now()
			o, err := s.Query(context.Background(), "app-1")
			d := time.Since(start)
			require.NoError(t, err)
			kind := upstream.KindOf(o)
			counts[kind]++
			switch o := o.(type) {
			case upstream.Retry:
				assert.Equal(t, 123*time.Millisecond, o.Delay)
				assert.Less(t, d, 50*time.Millisecond)
			case upstream.Success:
				assert.Equal(t, upstream.Success{ID: "app-1", Status: "Approved"}, o)
				assert.GreaterOrEqual(t, d, time.Millisecond)
			case upstream.Failure:
				assert.GreaterOrEqual(t, d, time.Millisecond)
			default:
				t.Fatalf("unexpected outcome %#v", o)
			}
		}
		assert.Len(t, counts, 3)
		for kind, n := range counts {
			assert.Greater(t, n, 60, "kind %s drawn only %d times", kind, n)
		}
	})
	t.Run("same seed", func(t *testing.T) {
		a, b := New(42), New(rand.NewSource(42))
		for _, s := range []*Simulator{a, b} {
			s.MinLatency, s.MaxLatency = 1, 1
		}
		for i := 0; i < 20; i++ {
			oa, errA := a.Query(context.Background(), "x")
			ob, errB := b.Query(context.Background(), "x")
			assert.Equal(t, oa, ob)
			assert.Equal(t, errA, errB)
		}
	})
	t.Run("canceled", func(t *testing.T) {
		s := New(1)
		s.MinLatency, s.MaxLatency = time.Hour, time.Hour
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		for i := 0; i < 20; i++ {
			o, err := s.Query(ctx, "x")
			if err != nil {
				assert.ErrorIs(t, err, context.Canceled)
				assert.Nil(t, o)
			} else {
				assert.IsType(t, upstream.Retry{}, o)
			}
		}
	})
	t.Run("defaults", func(t *testing.T) {
		var s Simulator
		lo, hi := s.latency()
		assert.Equal(t, DefaultMinLatency, lo)
		assert.Equal(t, DefaultMaxLatency, hi)

		s = Simulator{MinLatency: 5, MaxLatency: 2}
		lo, hi = s.latency()
		assert.Equal(t, time.Duration(5), lo)
		assert.Equal(t, time.Duration(5), hi)

		assert.Equal(t, &Simulator{}, New(nil))
		assert.Panics(t, func() { New("seed") })
	})
	t.Run("latency range", func(t *testing.T) {
		s := New(3)
		s.MinLatency, s.MaxLatency = 10*time.Millisecond, 20*time.Millisecond
		for i := 0; i < 100; i++ {
			category, d := s.draw()
			assert.GreaterOrEqual(t, category, 0)
			assert.Less(t, category, 3)
			assert.GreaterOrEqual(t, d, 10*time.Millisecond)
			assert.LessOrEqual(t, d, 20*time.Millisecond)
		}
	})
}
