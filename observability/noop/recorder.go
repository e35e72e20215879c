// Copyright 2021 The appstatus Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package noop provides an observability.Recorder that records nothing.
package noop

import (
	"time"

	"github.com/gogama/appstatus/observability"
)

type Recorder struct{}

var _ observability.Recorder = Recorder{}

func (Recorder) RecordQuery(observability.Query, time.Duration) {}

func (Recorder) RecordExecution(observability.Execution, time.Duration) {}
