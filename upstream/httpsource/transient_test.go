// Copyright 2021 The appstatus Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpsource

import (
	"errors"
	"fmt"
	"net/url"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, permanent, classify(nil))
	assert.Equal(t, permanent, classify(errors.New("foo")))
	assert.Equal(t, permanent, classify(wrapper{}))
	assert.Equal(t, permanent, classify(&url.Error{Op: "Get", Err: errors.New("bar")}))
	assert.Equal(t, timedOut, classify(syscall.ETIMEDOUT))
	assert.Equal(t, timedOut, classify(timeoutError{}))
	assert.Equal(t, timedOut, classify(&url.Error{Op: "Get", Err: timeoutError{}}))
	assert.Equal(t, timedOut, classify(wrapper{wrapper{timeoutError{}}}))
	assert.Equal(t, timedOut, classify(timeoutWrapper{true, syscall.ECONNRESET}))
	assert.Equal(t, reset, classify(syscall.ECONNRESET))
	assert.Equal(t, reset, classify(timeoutWrapper{false, syscall.ECONNRESET}))
	assert.Equal(t, refused, classify(&url.Error{Op: "Get", Err: wrapper{syscall.ECONNREFUSED}}))
}

type timeoutError struct{}

func (timeoutError) Error() string {
	return "i/o timeout"
}

func (timeoutError) Timeout() bool {
	return true
}

type wrapper struct {
	cause error
}

func (err wrapper) Error() string {
	return fmt.Sprintf("wrapper - wraps %v", err.cause)
}

func (err wrapper) Unwrap() error {
	return err.cause
}

type timeoutWrapper struct {
	timeout bool
	cause   error
}

func (err timeoutWrapper) Error() string {
	return fmt.Sprintf("timeoutWrapper - timeout %t, wraps %v", err.timeout, err.cause)
}

func (err timeoutWrapper) Timeout() bool {
	return err.timeout
}

func (err timeoutWrapper) Unwrap() error {
	return err.cause
}
