// Copyright 2021 The appstatus Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package appstatus

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gogama/appstatus/racing"
	"github.com/gogama/appstatus/request"
	"github.com/gogama/appstatus/retry"
	"github.com/gogama/appstatus/status"
	"github.com/gogama/appstatus/timeout"
	"github.com/gogama/appstatus/upstream"
)

var emptyHandlers = HandlerGroup{}

// A Client is a status orchestrator. It answers application status
// requests by racing every configured upstream source, retrying
// sources which ask to be retried, and returning the first definitive
// answer within a fixed deadline.
//
// The zero value client has no sources and answers every request with
// a status.Failure. It uses timeout.DefaultPolicy (15 seconds) as the
// timeout policy, retry.DefaultWaiter as the retry waiter, and an
// empty handler group (no event handlers/plug-ins).
//
// Client is safe for concurrent use by multiple goroutines, provided
// its fields are not changed while requests are executing. Each
// request keeps its own state, so concurrent requests, even for the
// same application id, run independent races.
type Client struct {
	// Sources are the upstream sources queried for each request.
	// Every source is queried concurrently. The same source may appear
	// more than once.
	Sources []upstream.Source
	// TimeoutPolicy sets the overall deadline of each request.
	//
	// If TimeoutPolicy is nil, timeout.DefaultPolicy is used.
	TimeoutPolicy timeout.Policy
	// RetryWaiter decides how long to wait before re-querying a source
	// which answered with upstream.Retry.
	//
	// If RetryWaiter is nil, retry.DefaultWaiter is used.
	RetryWaiter retry.Waiter
	// Handlers allows custom handler chains to be invoked when
	// designated events occur during execution of a request.
	//
	// If Handlers is nil, no custom handlers will be run.
	Handlers *HandlerGroup
}

// GetApplicationStatus returns the status of application id. It is
// equivalent to GetApplicationStatusContext with a background context.
func (c *Client) GetApplicationStatus(id string) status.Status {
	return c.GetApplicationStatusContext(context.Background(), id)
}

// GetApplicationStatusContext returns the status of application id.
//
// Every source is queried concurrently. The first source to answer
// with upstream.Success or upstream.Failure decides the result, and
// every other query still in flight is abandoned. A source answering
// with upstream.Retry is queried again after the retry wait, while the
// other sources keep racing. A query ending in error, or with a nil
// outcome, counts as a failure.
//
// The request ends no later than the deadline set by the timeout
// policy, or the deadline of ctx if that is earlier. If the deadline
// passes, or ctx is canceled, before a definitive answer arrives, the
// result is a status.Failure holding the time of the most recent round
// of queries and the number of retries done so far. Retry waits which
// have not finished by then are not counted.
//
// The returned status is never nil and no error is ever returned: all
// failures resolve to status.Failure.
//
// If two sources reach a definitive answer at the same moment, which
// one decides the result depends on goroutine scheduling.
func (c *Client) GetApplicationStatusContext(ctx context.Context, id string) status.Status {
	if ctx == nil {
		panic("appstatus: nil context")
	}

	e := request.Execution{
		ID:          id,
		ExecutionID: uuid.NewString(),
		Sources:     len(c.Sources),
		Source:      -1,
	}

	timeoutPolicy := c.TimeoutPolicy
	if timeoutPolicy == nil {
		timeoutPolicy = timeout.DefaultPolicy
	}

	retryWaiter := c.RetryWaiter
	if retryWaiter == nil {
		retryWaiter = retry.DefaultWaiter
	}

	handlers := c.Handlers
	if handlers == nil {
		handlers = &emptyHandlers
	}
	handlers.run(BeforeExecutionStart, &e)
	e.Start = time.Now()
	e.Deadline = e.Start.Add(timeoutPolicy.Timeout(&e))
	if d, ok := ctx.Deadline(); ok && d.Before(e.Deadline) {
		e.Deadline = d
	}

	ctx, cancel := context.WithDeadline(ctx, e.Deadline)
	defer cancel()

	x := execution{
		e:        &e,
		sources:  c.Sources,
		names:    make([]string, len(c.Sources)),
		inFlight: make([]bool, len(c.Sources)),
		handlers: handlers,
		waiter:   retryWaiter,
		cancel:   cancel,
	}
	for i, src := range c.Sources {
		x.names[i] = upstream.Name(src, i)
	}
	e.Status = x.run(ctx)

	e.End = time.Now()
	handlers.run(AfterExecutionEnd, &e)
	return e.Status
}

// execution holds the private state of one request.
type execution struct {
	e        *request.Execution
	sources  []upstream.Source
	names    []string
	inFlight []bool
	handlers *HandlerGroup
	waiter   retry.Waiter
	cancel   context.CancelFunc
}

func (x *execution) run(ctx context.Context) status.Status {
	e := x.e
	if len(x.sources) == 0 {
		return x.finish(nil, status.NewFailure(e.LastRequestTime, e.Retries))
	}

	race := racing.New(len(x.sources))
	idle := make([]int, len(x.sources))
	for i := range idle {
		idle[i] = i
	}

	for round := 0; ; {
		if err := ctx.Err(); err != nil {
			return x.expire(err)
		}

		if len(idle) > 0 {
			e.Round = round
			round++
			e.LastRequestTime = time.Now()
			x.at(-1)
			x.handlers.run(BeforeRound, e)
			for _, i := range idle {
				x.at(i)
				x.handlers.run(BeforeQuery, e)
				x.inFlight[i] = true
				e.Racing++
				race.Query(ctx, i, x.sources[i], e.ID)
			}
			idle = idle[:0]
		}

		res, err := race.Next(ctx)
		if err != nil {
			return x.expire(err)
		} else if err = ctx.Err(); err != nil {
			// Arrived together with the deadline: discard.
			return x.expire(err)
		}

		x.at(res.Source)
		if res.Kind == racing.Ready {
			e.Retries++
			x.handlers.run(AfterRetryWait, e)
			idle = append(idle, res.Source)
			continue
		}

		x.inFlight[res.Source] = false
		e.Racing--
		e.Outcome, e.Err, e.QueryDuration, e.Abandoned = res.Outcome, res.Err, res.Duration, false
		x.handlers.run(AfterQuery, e)
		if res.Err != nil {
			return x.finish(racing.Redundant, status.NewFailure(e.LastRequestTime, e.Retries))
		}

		switch o := res.Outcome.(type) {
		case upstream.Success:
			return x.finish(racing.Redundant, status.Success{ID: o.ID, Status: o.Status})
		case upstream.Retry:
			e.Wait = x.waiter.Wait(e, o)
			x.handlers.run(BeforeRetryWait, e)
			race.After(ctx, res.Source, e.Wait)
		default:
			// Failure, or an outcome outside the contract.
			return x.finish(racing.Redundant, status.NewFailure(e.LastRequestTime, e.Retries))
		}
	}
}

// expire ends the execution because ctx is done.
func (x *execution) expire(err error) status.Status {
	e := x.e
	x.cancel()
	x.at(-1)
	e.Outcome, e.Err = nil, err
	if errors.Is(err, context.DeadlineExceeded) {
		x.handlers.run(AfterDeadline, e)
	}
	st := status.NewFailure(e.LastRequestTime, e.Retries)
	x.abandon(err)
	x.at(-1)
	e.Outcome, e.Err = nil, err
	return st
}

// finish ends the execution with a definitive status. Queries still in
// flight are abandoned with the given reason.
func (x *execution) finish(reason error, st status.Status) status.Status {
	e := x.e
	x.cancel()
	outcome, err := e.Outcome, e.Err
	x.abandon(reason)
	x.at(-1)
	e.Outcome, e.Err = outcome, err
	return st
}

func (x *execution) abandon(reason error) {
	e := x.e
	for i, flying := range x.inFlight {
		if !flying {
			continue
		}
		x.inFlight[i] = false
		e.Racing--
		x.at(i)
		e.Outcome, e.Err, e.QueryDuration, e.Abandoned = nil, reason, 0, true
		x.handlers.run(AfterQuery, e)
	}
	e.Abandoned = false
}

func (x *execution) at(i int) {
	if i < 0 {
		x.e.Source, x.e.SourceName = -1, ""
		return
	}
	x.e.Source, x.e.SourceName = i, x.names[i]
}
