// Copyright 2021 The appstatus Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package prom

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/gogama/appstatus"
	"github.com/gogama/appstatus/observability"
	"github.com/gogama/appstatus/upstream"
	"github.com/gogama/appstatus/upstream/upstreamtest"

	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	t.Run("register", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		NewRecorder(reg)
		assert.Panics(t, func() { NewRecorder(reg) }, "duplicate registration")
	})
	t.Run("queries", func(t *testing.T) {
		r := NewRecorder(prometheus.NewRegistry())

		r.RecordQuery(observability.Query{Source: "a", Result: observability.ResultRetry}, 10*time.Millisecond)
		r.RecordQuery(observability.Query{Source: "a", Result: observability.ResultRetry}, 20*time.Millisecond)
		r.RecordQuery(observability.Query{Source: "b", Result: observability.ResultAbandoned}, 0)

		assert.Equal(t, 2.0, testutil.ToFloat64(r.queriesTotal.WithLabelValues("a", "retry")))
		assert.Equal(t, 1.0, testutil.ToFloat64(r.queriesTotal.WithLabelValues("b", "abandoned")))
		assert.Equal(t, 1, testutil.CollectAndCount(r.queryDuration), "abandoned queries have no duration")
	})
	t.Run("executions", func(t *testing.T) {
		r := NewRecorder(prometheus.NewRegistry())

		r.RecordExecution(observability.Execution{Result: "success", Retries: 2}, time.Second)
		r.RecordExecution(observability.Execution{Result: "failure", Retries: 3, DeadlineExceeded: true}, 15*time.Second)

		assert.Equal(t, 1.0, testutil.ToFloat64(r.requestsTotal.WithLabelValues("success", "false")))
		assert.Equal(t, 1.0, testutil.ToFloat64(r.requestsTotal.WithLabelValues("failure", "true")))
		assert.Equal(t, 5.0, testutil.ToFloat64(r.retriesTotal))
		assert.Equal(t, 2, testutil.CollectAndCount(r.requestDuration))
	})
	t.Run("installed", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		r := NewRecorder(reg)
		g := &appstatus.HandlerGroup{}
		observability.Install(g, r)
		cl := appstatus.Client{
			Sources: []upstream.Source{
				upstream.Named("main", upstreamtest.NewScript(upstreamtest.Settle(time.Millisecond, upstream.Failure{}))),
			},
			Handlers: g,
		}

		cl.GetApplicationStatus("x")
		cl.GetApplicationStatus("y")

		assert.Equal(t, 2.0, testutil.ToFloat64(r.queriesTotal.WithLabelValues("main", "failure")))
		assert.Equal(t, 2.0, testutil.ToFloat64(r.requestsTotal.WithLabelValues("failure", "false")))
		assert.Equal(t, 0.0, testutil.ToFloat64(r.retriesTotal))
		n, err := testutil.GatherAndCount(reg, "appstatus_requests_total", "appstatus_upstream_queries_total")
		assert.NoError(t, err)
		assert.Equal(t, 2, n)
	})
}
