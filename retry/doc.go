// Copyright 2021 The appstatus Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package retry provides policies for deciding how long to wait before
// re-issuing a query to an upstream source which answered with
// upstream.Retry, and the cancellable wait used while doing so.
//
// The interface Waiter defines a retry wait policy. The default,
// DefaultWaiter, honors the delay requested by the upstream source and
// falls back to a jittered exponential backoff when the source gives
// no delay:
//
//	waiter := retry.Requested(retry.NewExpWaiter(100*time.Millisecond, 2*time.Second, time.Now()))
//	client := &appstatus.Client{
//		Sources:     sources,
//		RetryWaiter: waiter,
//	}
//
// Every wait is done with Sleep, which returns early when the request
// context is done, so a retry wait can never outlive the request
// deadline.
package retry
