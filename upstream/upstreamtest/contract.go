// Copyright 2021 The appstatus Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package upstreamtest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gogama/appstatus/upstream"
)

// Factory creates a fresh upstream.Source for each test invocation.
//
// The source should answer within a few seconds, so implementations
// with configurable latency should be configured to be quick.
type Factory func(t *testing.T) upstream.Source

// Run exercises the upstream.Source contract.
func Run(t *testing.T, factory Factory) {
	t.Run("Outcome", func(t *testing.T) {
		src := factory(t)
		for i := 0; i < 10; i++ {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			o, err := src.Query(ctx, "contract")
			cancel()
			if err != nil {
				continue
			}
			if upstream.KindOf(o) == upstream.KindUnknown {
				t.Fatalf("Query returned outcome %#v with nil error", o)
			}
			if s, ok := o.(upstream.Success); ok && s.ID == "" {
				t.Errorf("Query returned success without id")
			}
		}
	})

	t.Run("AlreadyCanceled", func(t *testing.T) {
		src := factory(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		start := time.Now()
		_, _ = src.Query(ctx, "contract")
		if d := time.Since(start); d > 500*time.Millisecond {
			t.Errorf("Query took %s after cancellation, want prompt return", d)
		}
	})

	t.Run("CanceledWhileRunning", func(t *testing.T) {
		src := factory(t)
		for i := 0; i < 5; i++ {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
			start := time.Now()
			_, _ = src.Query(ctx, "contract")
			d := time.Since(start)
			cancel()
			if d > 500*time.Millisecond {
				t.Errorf("Query took %s with a 5ms deadline, want prompt return", d)
			}
		}
	})

	t.Run("Concurrent", func(t *testing.T) {
		src := factory(t)
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				o, err := src.Query(ctx, "contract")
				if err == nil && upstream.KindOf(o) == upstream.KindUnknown {
					t.Errorf("Query returned outcome %#v with nil error", o)
				}
			}()
		}
		wg.Wait()
	})
}
