// Copyright 2021 The appstatus Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"math/rand"
	"sync"
	"time"

	"github.com/gogama/appstatus/request"
	"github.com/gogama/appstatus/upstream"
)

// A Waiter specifies how long to wait before re-issuing a query to an
// upstream source which answered with a Retry outcome.
//
// Implementations of Waiter must be safe for concurrent use by multiple
// goroutines.
//
// When the status orchestrator calls Wait, e.Source identifies the
// source which asked to be retried and e.Retries holds the number of
// retries completed so far in the execution.
type Waiter interface {
	Wait(e *request.Execution, r upstream.Retry) time.Duration
}

// The WaiterFunc type is an adapter to allow the use of ordinary
// functions as retry waiters.
type WaiterFunc func(e *request.Execution, r upstream.Retry) time.Duration

// Wait returns f(e, r).
func (f WaiterFunc) Wait(e *request.Execution, r upstream.Retry) time.Duration {
	return f(e, r)
}

// DefaultWaiter is the default retry wait policy. It waits for the
// delay requested by the upstream source. If the source requested no
// delay, it uses a jittered exponential backoff with a base wait of 50
// milliseconds and a maximum wait of 1 second.
var DefaultWaiter = Requested(NewExpWaiter(50*time.Millisecond, 1*time.Second, time.Now()))

// Requested constructs a Waiter that waits exactly the delay requested
// by the upstream source. If the requested delay is not positive, the
// fallback waiter decides instead; a nil fallback means no wait.
func Requested(fallback Waiter) Waiter {
	return requested{fallback}
}

type requested struct {
	fallback Waiter
}

func (w requested) Wait(e *request.Execution, r upstream.Retry) time.Duration {
	if r.Delay > 0 || w.fallback == nil {
		return max(r.Delay, 0)
	}
	return w.fallback.Wait(e, r)
}

// NewFixedWaiter constructs a Waiter that always returns the given
// duration, ignoring the delay requested by the source.
func NewFixedWaiter(d time.Duration) Waiter {
	return fixedWaiter(d)
}

type fixedWaiter time.Duration

func (w fixedWaiter) Wait(_ *request.Execution, _ upstream.Retry) time.Duration {
	return time.Duration(w)
}

// NewExpWaiter constructs a Waiter implementing an exponential backoff
// formula with optional jitter. The exponent is the number of retries
// already done in the execution, e.Retries.
//
// The formula implemented is the "Full Jitter" approach described in:
// https://aws.amazon.com/blogs/architecture/exponential-backoff-and-jitter.
//
// Parameters base and max control the exponential calculation of the
// ceiling:
//
//	ceil := min(base * 2**retries, max)
//
// Base and max must be positive values, and max must be at least equal
// to base.
//
// Parameter jitter is used to generate a random number between 0 and
// ceil. To make a waiter that does not jitter and simply returns
// ceil, pass nil for jitter. Otherwise pass any value accepted by
// NewRand.
func NewExpWaiter(base, max time.Duration, jitter interface{}) Waiter {
	if base < 1 {
		panic("appstatus/retry: base must be positive")
	}
	if max < base {
		panic("appstatus/retry: max must be at least base")
	}
	return &jitterExpWaiter{
		base: base,
		max:  max,
		rand: NewRand(jitter),
	}
}

type jitterExpWaiter struct {
	base time.Duration
	max  time.Duration
	rand *rand.Rand
	lock sync.Mutex
}

func (w *jitterExpWaiter) Wait(e *request.Execution, _ upstream.Retry) time.Duration {
	exp := int64(1) << e.Retries
	if exp < 1 {
		exp = 1<<63 - 1
	}

	ceil := int64(w.base) * exp
	if ceil < int64(w.base) || int64(w.max) < ceil || ceil/exp != int64(w.base) {
		ceil = int64(w.max)
	}

	duration := ceil
	if w.rand != nil {
		w.lock.Lock()
		defer w.lock.Unlock()
		duration = w.rand.Int63n(ceil)
	}

	return time.Duration(duration)
}

// NewRand converts a jitter value into a random number generator.
//
// The jitter may be nil, in which case NewRand returns nil; a seed
// value given as a time.Time, int, or int64; a rand.Source; or a
// *rand.Rand, which is returned as is. Any other value, including a
// typed nil *rand.Rand, causes a panic.
//
// The returned generator is not safe for concurrent use.
func NewRand(jitter interface{}) *rand.Rand {
	var s rand.Source
	switch j := jitter.(type) {
	case nil:
		return nil
	case time.Time:
		s = rand.NewSource(j.UnixNano())
	case int:
		s = rand.NewSource(int64(j))
	case int64:
		s = rand.NewSource(j)
	case *rand.Rand:
		if j == nil {
			panic("appstatus/retry: jitter may not be a typed nil")
		}
		return j
	case rand.Source:
		s = j
	default:
		panic("appstatus/retry: invalid jitter type")
	}
	return rand.New(s)
}
