// Copyright 2021 The appstatus Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package appstatus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvents(t *testing.T) {
	assert.Len(t, eventNames, numEvents)
	assert.Len(t, Events(), numEvents)
	events := Events()
	for i, evt := range events {
		assert.Equal(t, Event(i), evt)
	}
}

func TestEvent_Name(t *testing.T) {
	assert.Equal(t, "BeforeExecutionStart", BeforeExecutionStart.Name())
	assert.Equal(t, "BeforeRound", BeforeRound.Name())
	assert.Equal(t, "BeforeQuery", BeforeQuery.Name())
	assert.Equal(t, "AfterQuery", AfterQuery.Name())
	assert.Equal(t, "BeforeRetryWait", BeforeRetryWait.Name())
	assert.Equal(t, "AfterRetryWait", AfterRetryWait.Name())
	assert.Equal(t, "AfterDeadline", AfterDeadline.Name())
	assert.Equal(t, "AfterExecutionEnd", AfterExecutionEnd.Name())
	assert.Equal(t, "AfterQuery", AfterQuery.String())
}
