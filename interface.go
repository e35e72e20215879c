// Copyright 2021 The appstatus Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package appstatus

import (
	"context"

	"github.com/gogama/appstatus/status"
)

// Getter is the interface that wraps the basic GetApplicationStatus
// method.
//
// GetApplicationStatus returns the status of an application within a
// bounded time, and never fails: failures are reported as a
// status.Failure. Client implements the Getter interface.
type Getter interface {
	GetApplicationStatus(id string) status.Status
}

// ContextGetter is the interface that wraps the basic
// GetApplicationStatusContext method.
//
// GetApplicationStatusContext behaves like GetApplicationStatus but
// also ends when ctx is done. Client implements the ContextGetter
// interface.
//
// Any ContextGetter can be converted into a StatusGetter via the
// Inflate function.
type ContextGetter interface {
	GetApplicationStatusContext(ctx context.Context, id string) status.Status
}

// StatusGetter is the interface that groups the GetApplicationStatus
// and GetApplicationStatusContext methods.
type StatusGetter interface {
	Getter
	ContextGetter
}

// Inflate converts any non-nil ContextGetter into a StatusGetter.
func Inflate(g ContextGetter) StatusGetter {
	if g == nil {
		panic("appstatus: nil getter")
	}

	if sg, ok := g.(StatusGetter); ok {
		return sg
	}

	return inflated{g}
}

type inflated struct {
	getter ContextGetter
}

func (i inflated) GetApplicationStatus(id string) status.Status {
	return i.getter.GetApplicationStatusContext(context.Background(), id)
}

func (i inflated) GetApplicationStatusContext(ctx context.Context, id string) status.Status {
	return i.getter.GetApplicationStatusContext(ctx, id)
}
