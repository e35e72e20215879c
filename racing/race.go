// Copyright 2021 The appstatus Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package racing

import (
	"context"
	"fmt"
	"time"

	"github.com/gogama/appstatus/retry"
	"github.com/gogama/appstatus/upstream"
)

// A Kind identifies what a Result reports.
type Kind int

const (
	// Settled reports that a query finished, with an outcome or an
	// error.
	Settled Kind = iota
	// Ready reports that a retry wait finished and the source may be
	// queried again.
	Ready
)

// String returns "Settled" or "Ready".
func (k Kind) String() string {
	switch k {
	case Settled:
		return "Settled"
	case Ready:
		return "Ready"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// A Result is reported by a finished race operation.
type Result struct {
	// Source is the index of the source the operation belongs to.
	Source int
	// Kind tells whether a query settled or a retry wait finished.
	Kind Kind
	// Outcome is the query outcome. It is only meaningful when Kind is
	// Settled.
	Outcome upstream.Outcome
	// Err is the query error. It is only meaningful when Kind is
	// Settled.
	Err error
	// Duration is how long the operation took.
	Duration time.Duration
}

// A Race is a growing set of pending operations, each belonging to one
// of a fixed number of sources.
//
// A source must have at most one pending operation at a time: a query
// may be started for a source only when it has no pending query or
// retry wait, and a retry wait only after the source's query settled.
// Under that rule sending a result never blocks, even after the caller
// has stopped calling Next.
//
// A Race is meant to be driven by a single goroutine.
type Race struct {
	results chan Result
	sources int
}

// New constructs a race for the given number of sources.
func New(sources int) *Race {
	if sources < 0 {
		panic("appstatus/racing: negative source count")
	}
	return &Race{
		results: make(chan Result, sources),
		sources: sources,
	}
}

// Query starts a query of application id against src, which is the
// i-th source, on a new goroutine. The query reports a Settled result.
//
// If the query panics, the panic is recovered and reported as the
// query error.
func (r *Race) Query(ctx context.Context, i int, src upstream.Source, id string) {
	r.check(i)
	go func() {
		start := time.Now()
		res := Result{Source: i, Kind: Settled}
		defer func() {
			if x := recover(); x != nil {
				res.Outcome = nil
				res.Err = fmt.Errorf("appstatus/racing: source %d panicked: %v", i, x)
			}
			res.Duration = time.Since(start)
			r.results <- res
		}()
		res.Outcome, res.Err = src.Query(ctx, id)
	}()
}

// After starts a retry wait of duration d for the i-th source on a new
// goroutine. The wait reports a Ready result when d has elapsed. If
// ctx is done first, the wait ends without reporting anything.
func (r *Race) After(ctx context.Context, i int, d time.Duration) {
	r.check(i)
	go func() {
		start := time.Now()
		if err := retry.Sleep(ctx, d); err != nil {
			return
		}
		r.results <- Result{Source: i, Kind: Ready, Duration: time.Since(start)}
	}()
}

// Next waits for the first pending operation to report, and returns
// its result. If ctx is done first, Next returns ctx.Err().
func (r *Race) Next(ctx context.Context) (Result, error) {
	select {
	case res := <-r.results:
		return res, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func (r *Race) check(i int) {
	if i < 0 || i >= r.sources {
		panic("appstatus/racing: source index out of range")
	}
}
