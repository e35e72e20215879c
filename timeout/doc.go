// Copyright 2021 The appstatus Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package timeout defines policies for setting the overall deadline of
// an application status request. A generic interface for timeout
// policies is provided, Policy, along with a policy generating function
// and the built-in default policy.
package timeout
