// Copyright 2021 The appstatus Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package simulator provides a random upstream source which behaves
// like a flaky remote status service. It is useful for demonstrations,
// load tests, and exercising the status orchestrator end to end.
package simulator

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/gogama/appstatus/retry"
	"github.com/gogama/appstatus/upstream"
)

const (
	// DefaultRetryDelay is the delay carried by the Retry outcomes of a
	// simulator with no RetryDelay set.
	DefaultRetryDelay = 4 * time.Second
	// DefaultMinLatency is the shortest latency of a simulator with no
	// latency set.
	DefaultMinLatency = 1 * time.Second
	// DefaultMaxLatency is the longest latency of a simulator with no
	// latency set.
	DefaultMaxLatency = 2 * time.Second
	// DefaultStatus is the application status reported by a simulator
	// with no Status set.
	DefaultStatus = "OK"
)

// shared is the process-wide generator used by simulators with no
// generator of their own. It is never reset.
var shared = struct {
	lock sync.Mutex
	rand *rand.Rand
}{
	rand: retry.NewRand(time.Now()),
}

// A Simulator is an upstream.Source which answers each query with a
// random outcome, chosen with equal probability among:
//
// • an immediate upstream.Retry carrying RetryDelay;
//
// • an upstream.Failure after a random latency;
//
// • an upstream.Success for the queried id, reporting Status, after a
// random latency.
//
// The latency is drawn uniformly from [MinLatency, MaxLatency]. If the
// query context is done while waiting, Query returns the context
// error.
//
// The zero value is ready to use and takes its random numbers from a
// process-wide generator. Use New for a simulator with its own
// generator.
type Simulator struct {
	// RetryDelay is the delay carried by Retry outcomes. If zero,
	// DefaultRetryDelay is used.
	RetryDelay time.Duration
	// MinLatency and MaxLatency bound the latency of Success and
	// Failure outcomes. If both are zero, DefaultMinLatency and
	// DefaultMaxLatency are used.
	MinLatency time.Duration
	MaxLatency time.Duration
	// Status is the application status reported on success. If empty,
	// DefaultStatus is used.
	Status string

	lock *sync.Mutex
	rand *rand.Rand
}

// New constructs a Simulator with its own random number generator,
// created from seed by retry.NewRand. A nil seed gives a simulator
// sharing the process-wide generator, like the zero value.
func New(seed interface{}) *Simulator {
	r := retry.NewRand(seed)
	if r == nil {
		return &Simulator{}
	}
	return &Simulator{lock: &sync.Mutex{}, rand: r}
}

// Query answers with a random outcome.
func (s *Simulator) Query(ctx context.Context, id string) (upstream.Outcome, error) {
	category, latency := s.draw()
	if category == 0 {
		delay := s.RetryDelay
		if delay == 0 {
			delay = DefaultRetryDelay
		}
		return upstream.Retry{Delay: delay}, nil
	}

	if err := retry.Sleep(ctx, latency); err != nil {
		return nil, err
	}

	if category == 1 {
		return upstream.Failure{}, nil
	}

	st := s.Status
	if st == "" {
		st = DefaultStatus
	}
	return upstream.Success{ID: id, Status: st}, nil
}

func (s *Simulator) latency() (time.Duration, time.Duration) {
	lo, hi := s.MinLatency, s.MaxLatency
	if lo == 0 && hi == 0 {
		return DefaultMinLatency, DefaultMaxLatency
	}
	if hi < lo {
		hi = lo
	}
	return max(lo, 0), max(hi, 0)
}

// draw picks a category in [0, 3) and a latency.
func (s *Simulator) draw() (int, time.Duration) {
	lo, hi := s.latency()

	lock, r := s.lock, s.rand
	if r == nil {
		lock, r = &shared.lock, shared.rand
	}
	lock.Lock()
	defer lock.Unlock()

	category := r.Intn(3)
	latency := lo
	if hi > lo {
		latency += time.Duration(r.Int63n(int64(hi-lo) + 1))
	}
	return category, latency
}
