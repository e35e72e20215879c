// Copyright 2021 The appstatus Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package httpsource connects the status orchestrator to upstream sources
reachable over HTTP.

A Source queries a remote status service:

	GET {BaseURL}/applications/{id}/status

and maps the response to an upstream outcome:

	200 OK, body {"id":...,"status":...}   upstream.Success
	429 Too Many Requests                  upstream.Retry
	503 Service Unavailable                upstream.Retry
	any other status                       upstream.Failure

The delay of a Retry comes from the Retry-After response header, given
either in seconds or as an HTTP date. Transport errors which are likely
transient (timeouts, refused and reset connections) also produce a
Retry.

NewHandler does the reverse: it serves any upstream.Source using the
same protocol, so that one process can act as the upstream of another.
*/
package httpsource
