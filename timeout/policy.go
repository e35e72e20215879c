// Copyright 2021 The appstatus Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"time"

	"github.com/gogama/appstatus/request"
)

// A Policy defines a timeout policy which may be plugged into the
// status orchestrator (appstatus.Client) to direct how long a whole
// application status request may take, across every round of upstream
// queries and every retry wait.
//
// Implementations of Policy must be safe for concurrent use by multiple
// goroutines.
type Policy interface {
	// Timeout returns the overall budget for the execution.
	//
	// Parameter e contains the execution state at the time the
	// execution starts: the application id and execution id are set,
	// but no query has been issued. The return value must be positive.
	Timeout(e *request.Execution) time.Duration
}

// DefaultTimeout is the overall budget used by DefaultPolicy.
const DefaultTimeout = 15 * time.Second

// DefaultPolicy is the default timeout policy. It allows each
// application status request DefaultTimeout to complete.
var DefaultPolicy Policy = Fixed(DefaultTimeout)

// Fixed constructs a timeout policy that gives every execution the
// same budget d. The value d must be positive.
func Fixed(d time.Duration) Policy {
	if d <= 0 {
		panic("appstatus/timeout: timeout must be positive")
	}
	return fixed(d)
}

type fixed time.Duration

func (p fixed) Timeout(_ *request.Execution) time.Duration {
	return time.Duration(p)
}

// The PolicyFunc type is an adapter to allow the use of ordinary
// functions as timeout policies.
type PolicyFunc func(e *request.Execution) time.Duration

// Timeout returns f(e).
func (f PolicyFunc) Timeout(e *request.Execution) time.Duration {
	return f(e)
}
