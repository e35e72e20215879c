// Copyright 2021 The appstatus Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package logging

import (
	"sync"
	"time"
)

const defaultLimiterSize = 10_000

// A Limiter decides whether a log line identified by a fingerprint may
// be written now, allowing each fingerprint at most once per interval.
// It remembers at most a fixed number of fingerprints.
//
// Limiter is safe for concurrent use by multiple goroutines.
type Limiter struct {
	size    int
	lock    sync.Mutex
	entries map[string]time.Time
}

// NewLimiter constructs a Limiter remembering up to size fingerprints.
// A non-positive size selects a default of 10,000.
func NewLimiter(size int) *Limiter {
	if size <= 0 {
		size = defaultLimiterSize
	}
	return &Limiter{
		size:    size,
		entries: make(map[string]time.Time, min(size, 1024)),
	}
}

// Allow reports whether fingerprint may be logged at time now. If it
// may, the fingerprint is blocked until now plus interval. A
// non-positive interval always allows.
func (l *Limiter) Allow(fingerprint string, now time.Time, interval time.Duration) bool {
	if interval <= 0 {
		return true
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	if next, ok := l.entries[fingerprint]; ok && now.Before(next) {
		return false
	}
	l.entries[fingerprint] = now.Add(interval)

	if len(l.entries) > l.size {
		l.prune(now)
	}
	return true
}

func (l *Limiter) prune(now time.Time) {
	for fp, next := range l.entries {
		if !now.Before(next) {
			delete(l.entries, fp)
		}
	}
	for fp := range l.entries {
		if len(l.entries) <= l.size {
			break
		}
		delete(l.entries, fp)
	}
}
