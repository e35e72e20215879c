// Copyright 2021 The appstatus Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package status defines the final application status values returned
// by the status orchestrator, appstatus.Client.
//
// A Status is exactly one of Success or Failure. Use a type switch to
// tell them apart:
//
//	switch s := st.(type) {
//	case status.Success:
//		fmt.Println(s.ID, s.Status)
//	case status.Failure:
//		fmt.Println("failed after", s.RetriesCount, "retries")
//	}
package status

import (
	"encoding/json"
	"time"
)

// A Status is the terminal result of one application status request.
//
// The set of Status implementations is closed: every Status is either
// a Success or a Failure.
type Status interface {
	// Kind returns "success" or "failure".
	Kind() string
	isStatus()
}

// Success is returned when an upstream source answered with an
// authoritative application status.
type Success struct {
	// ID is the application identifier reported by the upstream source.
	ID string
	// Status is the application status reported by the upstream source.
	Status string
}

// Failure is returned when an upstream source answered with an
// authoritative failure, or when no definitive answer arrived before
// the deadline.
type Failure struct {
	// LastRequestTime is the time the most recent round of upstream
	// requests was issued. It is nil only if no request was ever issued.
	LastRequestTime *time.Time
	// RetriesCount is the number of retries performed across all
	// upstream sources.
	RetriesCount int
}

// Kind returns "success".
func (Success) Kind() string { return "success" }

// Kind returns "failure".
func (Failure) Kind() string { return "failure" }

func (Success) isStatus() {}
func (Failure) isStatus() {}

// MarshalJSON encodes the success with a "result" discriminator.
func (s Success) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Result string `json:"result"`
		ID     string `json:"id"`
		Status string `json:"status"`
	}{s.Kind(), s.ID, s.Status})
}

// MarshalJSON encodes the failure with a "result" discriminator. The
// last request time is omitted if nil.
func (f Failure) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Result          string     `json:"result"`
		LastRequestTime *time.Time `json:"lastRequestTime,omitempty"`
		RetriesCount    int        `json:"retriesCount"`
	}{f.Kind(), f.LastRequestTime, f.RetriesCount})
}

// NewFailure constructs a Failure. A zero lastRequestTime means no
// request was ever issued and produces a nil LastRequestTime.
func NewFailure(lastRequestTime time.Time, retriesCount int) Failure {
	f := Failure{RetriesCount: retriesCount}
	if !lastRequestTime.IsZero() {
		t := lastRequestTime
		f.LastRequestTime = &t
	}
	return f
}
