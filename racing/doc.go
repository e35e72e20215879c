// Copyright 2021 The appstatus Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package racing provides the race primitive used by the status
orchestrator to run upstream queries concurrently.

A Race is a set of pending operations, each belonging to one upstream
source, which grows as new operations are added. Two kinds of
operation may be added to a race:

• a query, started with Race.Query, which runs an upstream.Source
  query on its own goroutine and reports its outcome; and

• a retry wait, started with Race.After, which waits out a retry
  delay on its own goroutine and reports that the source is ready to
  be queried again.

Race.Next blocks until the first pending operation reports, or until
the context is done. Operations which report at the same time are
received in the order the runtime delivers them; no ordering between
sources is promised.

Every operation of a race shares the context passed to it, typically
the request context with its deadline. When the context is done, every
pending query and retry wait stops as soon as practical, and results
which arrive afterward are dropped into the race's buffer without
blocking, so no goroutine leaks once the caller stops reading.

Once a query has reached a definitive outcome, every other query still
in flight is redundant. The orchestrator reports such queries to its
event handlers with the error Redundant.
*/
package racing
