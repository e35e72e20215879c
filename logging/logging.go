// Copyright 2021 The appstatus Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package logging writes structured logs of application status
// requests through a logr.Logger, by installing event handlers into an
// appstatus.HandlerGroup.
//
// Request-level lines are written at verbosity 0 and per-query lines
// at verbosity 1. Every line carries the application id and the
// execution id, so the lines of concurrent requests can be told apart.
package logging

import (
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/gogama/appstatus"
	"github.com/gogama/appstatus/request"
	"github.com/gogama/appstatus/status"
	"github.com/gogama/appstatus/upstream"
)

// DefaultDeadlineInterval is how often a Handler installed by Install
// reports exceeded deadlines for the same application.
const DefaultDeadlineInterval = time.Minute

// A Handler is an appstatus.Handler which logs execution events.
type Handler struct {
	// Logger receives the log lines.
	Logger logr.Logger
	// Limiter, if not nil, throttles "Deadline exceeded" errors so
	// that each application is reported at most once per
	// DeadlineInterval.
	Limiter          *Limiter
	DeadlineInterval time.Duration
}

// Install creates a Handler logging to logger, with deadline reports
// throttled per application, and pushes it onto every event chain of
// g. It returns the installed handler.
func Install(g *appstatus.HandlerGroup, logger logr.Logger) *Handler {
	if g == nil {
		panic("appstatus/logging: nil handler group")
	}

	h := &Handler{
		Logger:           logger,
		Limiter:          NewLimiter(0),
		DeadlineInterval: DefaultDeadlineInterval,
	}
	for _, evt := range appstatus.Events() {
		g.PushBack(evt, h)
	}
	return h
}

// Handle logs one event.
func (h *Handler) Handle(evt appstatus.Event, e *request.Execution) {
	log := h.Logger.WithValues("id", e.ID, "executionId", e.ExecutionID)
	if e.Source >= 0 {
		log = log.WithValues("source", e.SourceName)
	}

	switch evt {
	case appstatus.BeforeExecutionStart:
		log.V(1).Info("Request started", "sources", e.Sources)
	case appstatus.BeforeRound:
		if e.Round == 0 {
			log.Info("Getting application status")
		} else {
			log.Info("Getting application status", "retry", e.Retries, "round", e.Round)
		}
	case appstatus.BeforeQuery:
		log.V(1).Info("Issuing request", "round", e.Round)
	case appstatus.AfterQuery:
		kind := upstream.KindOf(e.Outcome)
		if e.Err != nil {
			log.V(1).Info("Request ended", "error", e.Err.Error(), "duration", e.QueryDuration)
		} else {
			log.V(1).Info("Request ended", "outcome", string(kind), "duration", e.QueryDuration)
		}
	case appstatus.BeforeRetryWait:
		log.Info(fmt.Sprintf("Retrying in %.3f sec", e.Wait.Seconds()))
	case appstatus.AfterRetryWait:
		log.Info("Retry count", "retries", e.Retries)
	case appstatus.AfterDeadline:
		if h.Limiter == nil || h.Limiter.Allow(e.ID, time.Now(), h.DeadlineInterval) {
			log.Error(e.Err, "Deadline exceeded", "retries", e.Retries, "duration", e.Duration())
		}
	case appstatus.AfterExecutionEnd:
		kv := []any{"result", kindOf(e.Status), "retries", e.Retries, "duration", e.Duration()}
		if s, ok := e.Status.(status.Success); ok {
			kv = append(kv, "status", s.Status)
		}
		log.Info("Application status resolved", kv...)
	}
}

func kindOf(st status.Status) string {
	if st == nil {
		return ""
	}
	return st.Kind()
}
