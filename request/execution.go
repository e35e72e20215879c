// Copyright 2021 The appstatus Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"context"
	"errors"
	"time"

	"github.com/gogama/appstatus/status"
	"github.com/gogama/appstatus/upstream"
)

// An Execution represents the state of a single application status
// request.
//
// Timeout policies, retry waiters, and event handlers may set values
// on an Execution using its SetValue method and read them back using
// the Value method. However, they should treat the structure's
// exported field values as immutable and leave them unmodified, as the
// execution state is vital to the correct functioning of the
// orchestrator.
type Execution struct {
	// ID is the application id whose status is requested.
	ID string

	// ExecutionID uniquely identifies this request execution. It is
	// set before the BeforeExecutionStart event and never changes.
	ExecutionID string

	// Sources is the number of upstream sources racing in this
	// execution.
	Sources int

	// Start is the start time of the execution. It is assigned a
	// non-zero value when the execution starts, and this value remains
	// constant thereafter.
	Start time.Time

	// Deadline is the time by which the execution must end. It is set
	// when the execution starts, from the timeout policy.
	Deadline time.Time

	// End is the end time of the execution. It contains the zero value
	// until the execution ends, when it is set to the current time.
	End time.Time

	// Round is the zero-based number of the most recent round of
	// upstream queries. A round is one set of concurrent queries
	// issued to every source that was idle at the time.
	Round int

	// LastRequestTime is the time the most recent round of queries was
	// issued. It is zero until the first round is issued.
	LastRequestTime time.Time

	// Retries is the number of retries done so far, across all
	// sources. It is incremented each time a source's retry wait
	// finishes and the source becomes eligible to be queried again.
	Retries int

	// Racing is the count of upstream queries currently in flight.
	Racing int

	// Source is the zero-based index of the source that the current
	// event relates to, or -1 if the event is not about one source.
	Source int

	// SourceName is the name of Source, as reported by upstream.Name,
	// or empty if Source is -1.
	SourceName string

	// Outcome is the outcome of the most recently settled query. It is
	// nil if the query ended in error, was abandoned, or if no query
	// has settled yet.
	Outcome upstream.Outcome

	// Err is the error from the most recently settled query, or the
	// reason it was abandoned.
	//
	// Once the execution has ended, Outcome and Err hold the result of
	// the query which decided it. If instead the execution ended
	// because its context was done, Outcome is nil and Err is the
	// context error, context.DeadlineExceeded when the deadline passed.
	Err error

	// QueryDuration is how long the most recently settled query took.
	QueryDuration time.Duration

	// Abandoned is true during an AfterQuery event for a query which
	// was still in flight when the execution ended. Its Err is then the
	// reason it was abandoned.
	Abandoned bool

	// Wait is the duration of the most recently scheduled retry wait.
	Wait time.Duration

	// Status is the final status of the execution. It is nil until the
	// execution ends.
	Status status.Status

	// Event handlers may interact with this via the Value and SetValue
	// methods.
	data context.Context
}

// Duration returns the duration of the execution.
//
// If the execution has not yet started, the duration is zero. If the
// execution has Ended, the duration returned is equal to End minus
// Start. Otherwise, it is equal to the current time minus Start. The
// return value is thus monotonically increasing over the life of
// the execution, and becomes static when the execution has ended.
func (e *Execution) Duration() time.Duration {
	if !e.Started() {
		return time.Duration(0)
	} else if !e.Ended() {
		return time.Since(e.Start)
	}

	return e.End.Sub(e.Start)
}

// Remaining returns the time left before the deadline. It is zero if
// no deadline is set or if the deadline has passed.
func (e *Execution) Remaining() time.Duration {
	if e.Deadline.IsZero() {
		return 0
	}
	if d := time.Until(e.Deadline); d > 0 {
		return d
	}
	return 0
}

// Started indicates whether the execution has started.
func (e *Execution) Started() bool {
	return !e.Start.IsZero()
}

// Ended indicates whether the execution has ended.
//
// If the return value is true, End is a non-zero time, Status is
// non-nil, and there will be no further changes to the execution.
func (e *Execution) Ended() bool {
	return !e.End.IsZero()
}

// DeadlineExceeded indicates whether Err reports that the execution
// deadline passed.
func (e *Execution) DeadlineExceeded() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// SetValue allows event handlers to store arbitrary data in the
// execution.
//
// The key must follow the same rules as the key parameter in
// context.WithValue, namely it:
//
// • it may not be nil;
//
// • it must be comparable;
//
// • it should not be of type string or any other built-in type to avoid
// collisions between different event handlers putting data into the
// same execution.
func (e *Execution) SetValue(key, value interface{}) {
	ctx := e.data
	if ctx == nil {
		ctx = context.Background()
	}

	e.data = context.WithValue(ctx, key, value)
}

// Value returns the data value associated with this execution for key,
// or nil if there is no value associated with key.
func (e *Execution) Value(key interface{}) interface{} {
	ctx := e.data
	if ctx == nil {
		return nil
	}

	return ctx.Value(key)
}
