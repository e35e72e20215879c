// Copyright 2021 The appstatus Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package appstatus

// An Event identifies the event type when installing or running a
// Handler. Install event handlers in a Client to extend it with custom
// functionality, such as logging or metrics.
type Event int

const (
	// BeforeExecutionStart identifies the event that occurs before the
	// execution starts.
	//
	// When Client fires BeforeExecutionStart, the execution is
	// non-nil but the only fields that have been set are the
	// application id, the execution id, and the source count.
	BeforeExecutionStart Event = iota
	// BeforeRound identifies the event that occurs before each round
	// of upstream queries is issued.
	//
	// When Client fires BeforeRound, the execution's round number and
	// last request time have been updated for the new round.
	BeforeRound
	// BeforeQuery identifies the event that occurs before each
	// individual upstream query is issued.
	//
	// When Client fires BeforeQuery, the execution's source fields
	// identify the source about to be queried.
	BeforeQuery
	// AfterQuery identifies the event that occurs after an upstream
	// query ends, whether it settled or was abandoned.
	//
	// When Client fires AfterQuery for a settled query, the execution's
	// outcome and error fields hold the query result. When a query is
	// abandoned because the execution ended, AfterQuery fires with a nil
	// outcome and the error set either to racing.Redundant, if another
	// source reached a definitive outcome, or to the context error.
	AfterQuery
	// BeforeRetryWait identifies the event that occurs after a source
	// answered with a retry outcome and before its retry wait starts.
	//
	// When Client fires BeforeRetryWait, the execution's wait field is
	// set to the duration of the wait.
	BeforeRetryWait
	// AfterRetryWait identifies the event that occurs when a source's
	// retry wait finishes and the source becomes eligible to be queried
	// again.
	//
	// When Client fires AfterRetryWait, the execution's retry counter
	// has been incremented.
	AfterRetryWait
	// AfterDeadline identifies the event that occurs when the
	// execution deadline passes before any source reached a definitive
	// outcome.
	//
	// AfterDeadline fires before the AfterQuery events of the queries
	// that are abandoned due to the deadline.
	AfterDeadline
	// AfterExecutionEnd identifies the event that occurs after the
	// execution ends.
	//
	// When Client fires AfterExecutionEnd, the execution's end time and
	// final status are set.
	AfterExecutionEnd
	// eventSentinel provides the total number of events typed as an
	// Event.
	eventSentinel

	// numEvents provides the total number of events types as an int.
	numEvents = int(eventSentinel)
)

var eventNames = []string{
	"BeforeExecutionStart",
	"BeforeRound",
	"BeforeQuery",
	"AfterQuery",
	"BeforeRetryWait",
	"AfterRetryWait",
	"AfterDeadline",
	"AfterExecutionEnd",
}

// Events returns a slice containing all events which can occur in an
// application status request execution by Client, in the order in
// which they would first occur.
func Events() []Event {
	return []Event{
		BeforeExecutionStart,
		BeforeRound,
		BeforeQuery,
		AfterQuery,
		BeforeRetryWait,
		AfterRetryWait,
		AfterDeadline,
		AfterExecutionEnd,
	}
}

// Name returns the name of the event.
func (evt Event) Name() string {
	return eventNames[int(evt)]
}

// String returns the name of the event.
func (evt Event) String() string {
	return evt.Name()
}
