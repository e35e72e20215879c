// Copyright 2021 The appstatus Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package request contains the core type Execution, which describes the
state of one application status request as it is executed by the
status orchestrator.

Each call to appstatus.Client.GetApplicationStatus creates a fresh
Execution. The Execution is updated as the request progresses: when a
new round of upstream queries is issued, when a query settles, when a
retry wait starts or ends, and finally when the request ends with a
final status.

Execution is the input type for callbacks invoked during the request:
the timeout policy, the retry waiter, and event handlers. You will
typically not allocate Execution instances yourself, but will instead
work with the ones handed out by the orchestrator.

Nothing in an Execution is shared between two requests, even for the
same application id.
*/
package request
