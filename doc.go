// Copyright 2021 The appstatus Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package appstatus answers "what is the status of application X?" by
racing several unreliable upstream sources and returning the first
definitive answer within a fixed deadline.

Create a Client with the sources to race, then ask for a status.

	client := &appstatus.Client{
		Sources: []upstream.Source{primary, secondary},
	}
	st := client.GetApplicationStatus("42")
	switch st := st.(type) {
	case status.Success:
		fmt.Println(st.ID, st.Status)
	case status.Failure:
		fmt.Println("no answer; retries:", st.RetriesCount)
	}

Every source is queried concurrently. The first source to answer with
upstream.Success or upstream.Failure decides the result. A source
answering upstream.Retry is queried again after its requested delay,
while the other sources keep racing. If no definitive answer arrives
before the deadline, the result is a status.Failure.

For control over the overall deadline, set a timeout policy using
package timeout:

	client := &appstatus.Client{
		Sources:       sources,
		TimeoutPolicy: timeout.Fixed(5*time.Second),
	}

For control over retry timing, set a retry waiter using package retry:

	client := &appstatus.Client{
		Sources:     sources,
		RetryWaiter: retry.Requested(retry.NewExpWaiter(100*time.Millisecond, 2*time.Second, time.Now())),
	}

To hook into the fine-grained details of the client's execution logic,
install a handler into the appropriate handler chain:

	handlers := &appstatus.HandlerGroup{}
	handlers.PushBack(appstatus.BeforeRound, appstatus.HandlerFunc(
		func(_ appstatus.Event, e *request.Execution) {
			log.Printf("Round %d for %s", e.Round, e.ID)
		}),
	)
	client := &appstatus.Client{
		Sources:  sources,
		Handlers: handlers,
	}

Packages logging and observability install ready-made handlers for
structured logging and metrics.

Package appstatus provides basic interfaces for the client's methods
(Getter, ContextGetter), a combined interface (StatusGetter), and the
Inflate utility function which turns a ContextGetter into a
StatusGetter.
*/
package appstatus
