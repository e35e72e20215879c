// Copyright 2021 The appstatus Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gogama/appstatus"
	"github.com/gogama/appstatus/racing"
	"github.com/gogama/appstatus/request"
	"github.com/gogama/appstatus/timeout"
	"github.com/gogama/appstatus/upstream"
	"github.com/gogama/appstatus/upstream/upstreamtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestInstall(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.PanicsWithValue(t, "appstatus/observability: nil handler group", func() {
			Install(nil, newMockRecorder(t))
		})
		assert.PanicsWithValue(t, "appstatus/observability: nil recorder", func() {
			Install(&appstatus.HandlerGroup{}, nil)
		})
	})
	t.Run("success", func(t *testing.T) {
		rec := newMockRecorder(t)
		g := &appstatus.HandlerGroup{}
		Install(g, rec)
		cl := appstatus.Client{
			Sources: []upstream.Source{
				upstream.Named("fast", upstreamtest.NewScript(
					upstreamtest.Settle(0, upstream.Retry{Delay: time.Millisecond}),
					upstreamtest.Settle(time.Millisecond, upstream.Success{ID: "1", Status: "OK"}),
				)),
				upstream.Named("slow", upstreamtest.NewScript(upstreamtest.Pending())),
			},
			Handlers: g,
		}
		rec.On("RecordQuery", Query{Source: "fast", Result: ResultRetry}, mock.Anything).Once()
		rec.On("RecordQuery", Query{Source: "fast", Result: ResultSuccess}, mock.MatchedBy(func(d time.Duration) bool {
			return d >= time.Millisecond
		})).Once()
		rec.On("RecordQuery", Query{Source: "slow", Result: ResultAbandoned}, time.Duration(0)).Once()
		rec.On("RecordExecution", Execution{Result: "success", Retries: 1}, mock.Anything).Once()

		cl.GetApplicationStatus("1")

		rec.AssertExpectations(t)
	})
	t.Run("deadline", func(t *testing.T) {
		rec := newMockRecorder(t)
		g := &appstatus.HandlerGroup{}
		Install(g, rec)
		cl := appstatus.Client{
			Sources:       []upstream.Source{upstreamtest.NewScript(upstreamtest.Pending())},
			TimeoutPolicy: timeout.Fixed(5 * time.Millisecond),
			Handlers:      g,
		}
		rec.On("RecordQuery", Query{Source: "source-0", Result: ResultAbandoned}, time.Duration(0)).Once()
		rec.On("RecordExecution", Execution{Result: "failure", DeadlineExceeded: true}, mock.MatchedBy(func(d time.Duration) bool {
			return d >= 5*time.Millisecond
		})).Once()

		cl.GetApplicationStatus("1")

		rec.AssertExpectations(t)
	})
}

func TestQueryResult(t *testing.T) {
	testCases := []struct {
		name     string
		e        request.Execution
		expected Result
	}{
		{"success", request.Execution{Outcome: upstream.Success{}}, ResultSuccess},
		{"failure", request.Execution{Outcome: upstream.Failure{}}, ResultFailure},
		{"retry", request.Execution{Outcome: upstream.Retry{}}, ResultRetry},
		{"nil outcome", request.Execution{}, ResultError},
		{"error", request.Execution{Err: errors.New("boom")}, ResultError},
		{"redundant", request.Execution{Err: racing.Redundant, Abandoned: true}, ResultAbandoned},
		{"deadline", request.Execution{Err: context.DeadlineExceeded, Abandoned: true}, ResultAbandoned},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, QueryResult(&testCase.e))
		})
	}
}

type mockRecorder struct {
	mock.Mock
}

func newMockRecorder(t *testing.T) *mockRecorder {
	m := &mockRecorder{}
	m.Test(t)
	return m
}

func (m *mockRecorder) RecordQuery(query Query, latency time.Duration) {
	m.Called(query, latency)
}

func (m *mockRecorder) RecordExecution(execution Execution, duration time.Duration) {
	m.Called(execution, duration)
}
