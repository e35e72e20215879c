// Copyright 2021 The appstatus Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package observability records metrics about application status
// requests. A Recorder receives one record per upstream query and one
// per request; Install wires a Recorder into an appstatus.HandlerGroup.
//
// Package prom provides a Prometheus Recorder and package noop one that
// discards everything.
package observability

import (
	"time"

	"github.com/gogama/appstatus"
	"github.com/gogama/appstatus/request"
	"github.com/gogama/appstatus/upstream"
)

// Result labels the way an upstream query ended, beyond the outcome
// kinds of package upstream.
type Result string

const (
	ResultSuccess   Result = Result(upstream.KindSuccess)
	ResultFailure   Result = Result(upstream.KindFailure)
	ResultRetry     Result = Result(upstream.KindRetry)
	ResultError     Result = "error"
	ResultAbandoned Result = "abandoned"
)

// Query describes one ended upstream query.
type Query struct {
	Source string
	Result Result
}

// Execution describes one ended application status request.
type Execution struct {
	// Result is "success" or "failure".
	Result string
	// Retries is the number of retries done.
	Retries int
	// DeadlineExceeded is true if the request ran out of time.
	DeadlineExceeded bool
}

type Recorder interface {
	RecordQuery(query Query, latency time.Duration)
	RecordExecution(execution Execution, duration time.Duration)
}

// Install pushes handlers onto g which report to rec.
func Install(g *appstatus.HandlerGroup, rec Recorder) {
	if g == nil {
		panic("appstatus/observability: nil handler group")
	}
	if rec == nil {
		panic("appstatus/observability: nil recorder")
	}

	g.PushBack(appstatus.AfterQuery, appstatus.HandlerFunc(func(_ appstatus.Event, e *request.Execution) {
		rec.RecordQuery(Query{Source: e.SourceName, Result: QueryResult(e)}, e.QueryDuration)
	}))
	g.PushBack(appstatus.AfterExecutionEnd, appstatus.HandlerFunc(func(_ appstatus.Event, e *request.Execution) {
		x := Execution{Retries: e.Retries, DeadlineExceeded: e.DeadlineExceeded()}
		if e.Status != nil {
			x.Result = e.Status.Kind()
		}
		rec.RecordExecution(x, e.Duration())
	}))
}

// QueryResult classifies the query which most recently ended in e.
func QueryResult(e *request.Execution) Result {
	switch {
	case e.Abandoned:
		return ResultAbandoned
	case e.Err != nil:
		return ResultError
	}
	if kind := upstream.KindOf(e.Outcome); kind != upstream.KindUnknown {
		return Result(kind)
	}
	return ResultError
}
