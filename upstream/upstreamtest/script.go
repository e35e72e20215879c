// Copyright 2021 The appstatus Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package upstreamtest provides scripted upstream sources for testing
// code built on package upstream, and a contract test suite which every
// upstream.Source implementation should pass.
package upstreamtest

import (
	"context"
	"sync"
	"time"

	"github.com/gogama/appstatus/retry"
	"github.com/gogama/appstatus/upstream"
)

// A Step is one scripted query: wait After, then answer with Outcome
// and Err. A blocking step never answers; it returns only once the
// query context is done.
type Step struct {
	After   time.Duration
	Outcome upstream.Outcome
	Err     error
	Block   bool
}

// Settle returns a step which answers with o after d.
func Settle(d time.Duration, o upstream.Outcome) Step {
	return Step{After: d, Outcome: o}
}

// Fail returns a step which ends in err after d.
func Fail(d time.Duration, err error) Step {
	return Step{After: d, Err: err}
}

// Pending returns a step which never answers.
func Pending() Step {
	return Step{Block: true}
}

// A Script is an upstream.Source which answers the n-th query with the
// n-th step. Once the steps are used up, the last step repeats.
//
// Every step honors cancellation: if the query context is done before
// the step answers, the query returns the context error and is counted
// as canceled.
type Script struct {
	steps    []Step
	lock     sync.Mutex
	calls    int
	active   int
	canceled int
	ids      []string
}

// NewScript constructs a script from at least one step.
func NewScript(steps ...Step) *Script {
	if len(steps) == 0 {
		panic("appstatus/upstreamtest: no steps")
	}
	return &Script{steps: append([]Step(nil), steps...)}
}

// Query plays the next step.
func (s *Script) Query(ctx context.Context, id string) (upstream.Outcome, error) {
	s.lock.Lock()
	step := s.steps[min(s.calls, len(s.steps)-1)]
	s.calls++
	s.active++
	s.ids = append(s.ids, id)
	s.lock.Unlock()

	defer func() {
		s.lock.Lock()
		s.active--
		s.lock.Unlock()
	}()

	var err error
	if step.Block {
		<-ctx.Done()
		err = ctx.Err()
	} else if step.After > 0 {
		err = retry.Sleep(ctx, step.After)
	}
	if err != nil {
		s.lock.Lock()
		s.canceled++
		s.lock.Unlock()
		return nil, err
	}

	return step.Outcome, step.Err
}

// Calls returns the number of queries started so far.
func (s *Script) Calls() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.calls
}

// Active returns the number of queries currently running.
func (s *Script) Active() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.active
}

// Canceled returns the number of queries which ended because their
// context was done.
func (s *Script) Canceled() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.canceled
}

// IDs returns the application ids queried so far, in call order.
func (s *Script) IDs() []string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]string(nil), s.ids...)
}
