// Copyright 2021 The appstatus Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package upstream

import "time"

// An Outcome is the result of one query to an upstream Source.
//
// The set of Outcome implementations is closed: every Outcome is a
// Success, a Failure, or a Retry value.
type Outcome interface {
	isOutcome()
}

// Success is an authoritative, terminal application status.
type Success struct {
	ID     string
	Status string
}

// Failure is an authoritative, terminal error.
type Failure struct{}

// Retry is a transient outcome. The caller should wait Delay and then
// re-issue the same query to the same source.
type Retry struct {
	Delay time.Duration
}

func (Success) isOutcome() {}
func (Failure) isOutcome() {}
func (Retry) isOutcome()   {}

// A Kind classifies an Outcome for logging and metrics.
type Kind string

const (
	KindSuccess Kind = "success"
	KindFailure Kind = "failure"
	KindRetry   Kind = "retry"
	// KindUnknown is the kind of a nil Outcome, or of a pointer to
	// one of the Outcome types. Outcomes are values.
	KindUnknown Kind = "unknown"
)

// Kinds returns every Kind, in declaration order.
func Kinds() []Kind {
	return []Kind{KindSuccess, KindFailure, KindRetry, KindUnknown}
}

// KindOf returns the kind of o.
func KindOf(o Outcome) Kind {
	switch o.(type) {
	case Success:
		return KindSuccess
	case Failure:
		return KindFailure
	case Retry:
		return KindRetry
	default:
		return KindUnknown
	}
}
