// Copyright 2021 The appstatus Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package upstream

import (
	"context"
	"strconv"
)

// A Source is an upstream service which can be queried for the status
// of an application.
//
// Query sends one query for application id and returns its Outcome.
// The status orchestrator calls Query on a dedicated goroutine, so a
// Query may block, but it must return promptly once ctx is done. The
// value returned after ctx is done is ignored.
//
// A non-nil error means the query failed and is treated by the
// orchestrator in the same way as a Failure outcome. Returning a nil
// Outcome together with a nil error violates the contract, and is
// also treated as a Failure.
//
// Implementations of Source must be safe for concurrent use by
// multiple goroutines.
type Source interface {
	Query(ctx context.Context, id string) (Outcome, error)
}

// The SourceFunc type is an adapter to allow the use of ordinary
// functions as upstream sources.
type SourceFunc func(ctx context.Context, id string) (Outcome, error)

// Query calls f(ctx, id).
func (f SourceFunc) Query(ctx context.Context, id string) (Outcome, error) {
	return f(ctx, id)
}

// A Namer is a Source which knows its own name.
type Namer interface {
	Name() string
}

// Name returns the name of the i-th source src. If src implements
// Namer and returns a non-empty name, that name is used. Otherwise the
// name is "source-<i>".
func Name(src Source, i int) string {
	if n, ok := src.(Namer); ok {
		if name := n.Name(); name != "" {
			return name
		}
	}
	return "source-" + strconv.Itoa(i)
}

// Named wraps src so that it reports name from its Name method.
func Named(name string, src Source) Source {
	if src == nil {
		panic("appstatus/upstream: nil source")
	}
	return named{name: name, Source: src}
}

type named struct {
	Source
	name string
}

func (n named) Name() string {
	return n.name
}
