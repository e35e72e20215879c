// Copyright 2021 The appstatus Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package upstream defines the contract between the status orchestrator
and the upstream services it queries.

An upstream Source answers a query for an application id with one of
three Outcome values:

• Success, an authoritative application status;

• Failure, an authoritative failure with no payload; or

• Retry, a transient condition asking the caller to wait a delay and
  then send the same query to the same source again.

Implementations live in the subpackages: simulator provides the
random reference source, httpsource speaks to a remote service over
HTTP, and upstreamtest provides scripted sources and a contract test
suite for Source implementations.
*/
package upstream
