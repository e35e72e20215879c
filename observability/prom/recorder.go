// Copyright 2021 The appstatus Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package prom provides an observability.Recorder backed by Prometheus
// metrics.
package prom

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gogama/appstatus/observability"
)

type Recorder struct {
	queriesTotal    *prometheus.CounterVec
	queryDuration   *prometheus.HistogramVec
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	retriesTotal    prometheus.Counter
}

// NewRecorder creates the metrics and registers them with registerer.
// It panics if registration fails.
func NewRecorder(registerer prometheus.Registerer) *Recorder {
	r := &Recorder{
		queriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "appstatus_upstream_queries_total",
				Help: "Number of ended upstream queries by source/result.",
			},
			[]string{"source", "result"},
		),

		queryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "appstatus_upstream_query_duration_seconds",
				Help:    "Duration of settled upstream queries in seconds by source/result.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source", "result"},
		),

		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "appstatus_requests_total",
				Help: "Number of application status requests by result/deadline_exceeded.",
			},
			[]string{"result", "deadline_exceeded"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "appstatus_request_duration_seconds",
				Help:    "Duration of application status requests in seconds by result.",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 15, 20},
			},
			[]string{"result"},
		),

		retriesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "appstatus_retries_total",
				Help: "Total number of retries done across all requests.",
			},
		),
	}

	registerer.MustRegister(
		r.queriesTotal,
		r.queryDuration,
		r.requestsTotal,
		r.requestDuration,
		r.retriesTotal,
	)

	return r
}

var _ observability.Recorder = (*Recorder)(nil)

func (r *Recorder) RecordQuery(query observability.Query, latency time.Duration) {
	result := string(query.Result)
	r.queriesTotal.WithLabelValues(query.Source, result).Inc()
	// Abandoned queries never settled, so they have no duration.
	if query.Result != observability.ResultAbandoned {
		r.queryDuration.WithLabelValues(query.Source, result).Observe(latency.Seconds())
	}
}

func (r *Recorder) RecordExecution(execution observability.Execution, duration time.Duration) {
	r.requestsTotal.WithLabelValues(execution.Result, strconv.FormatBool(execution.DeadlineExceeded)).Inc()
	r.requestDuration.WithLabelValues(execution.Result).Observe(duration.Seconds())
	r.retriesTotal.Add(float64(execution.Retries))
}
