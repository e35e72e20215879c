// Copyright 2021 The appstatus Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpsource

import (
	"errors"
	"syscall"
)

// transience classifies transport errors by whether querying the same
// source again has some prospect of success.
type transience int

const (
	// permanent means a new query will very likely fail the same way.
	permanent transience = iota
	// timedOut means the client gave up waiting. The source may be
	// going through a period of slowness.
	timedOut
	// refused means nothing was listening, as happens while the source
	// is starting or restarting (ECONNREFUSED).
	refused
	// reset means the source dropped an active connection, typically
	// because it went down mid-response or sits behind a load
	// balancer (ECONNRESET).
	reset
)

// classify returns the transience of err, looking through wrapped
// causes. A nil error is permanent. Temporary() is never consulted.
func classify(err error) transience {
	if err == nil {
		return permanent
	}

	var t timeouter
	if errors.As(err, &t) && t.Timeout() {
		return timedOut
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ECONNRESET:
			return reset
		case syscall.ECONNREFUSED:
			return refused
		}
	}

	return permanent
}

type timeouter interface {
	Timeout() bool
}
