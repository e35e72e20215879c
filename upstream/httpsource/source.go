// Copyright 2021 The appstatus Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpsource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gogama/appstatus/upstream"
)

// DefaultRetryDelay is the retry delay used when the remote service
// asks to be retried without a usable Retry-After header, or when a
// transient transport error occurs.
const DefaultRetryDelay = 1 * time.Second

// maxBodySize caps how much of a response body is read.
const maxBodySize = 1 << 20

// An HTTPDoer implements a Do method in the same manner as the GoLang
// standard library http.Client from the net/http package.
type HTTPDoer interface {
	// Do sends an HTTP request and returns an HTTP response following
	// policy (such as redirects, cookies, auth) configured on the
	// HTTPDoer.
	Do(r *http.Request) (*http.Response, error)
}

// A Source is an upstream.Source backed by a remote HTTP status
// service.
//
// Source is safe for concurrent use by multiple goroutines, provided
// its fields are not changed while queries are running.
type Source struct {
	// BaseURL is the root URL of the remote service, for example
	// "http://status.example.com/v1".
	BaseURL string
	// HTTPDoer sends the HTTP requests. If nil, http.DefaultClient is
	// used.
	HTTPDoer HTTPDoer
	// DefaultRetryDelay is used when no Retry-After delay is available.
	// If zero, the package-level DefaultRetryDelay is used.
	DefaultRetryDelay time.Duration
	// SourceName is reported by Name. If empty, the orchestrator names
	// the source by its position.
	SourceName string
}

// Name returns s.SourceName.
func (s *Source) Name() string {
	return s.SourceName
}

// body is the JSON payload of a successful status response.
type body struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Query sends one status request for application id.
func (s *Source) Query(ctx context.Context, id string) (upstream.Outcome, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url(id), nil)
	if err != nil {
		return nil, fmt.Errorf("appstatus/httpsource: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	doer := s.HTTPDoer
	if doer == nil {
		doer = http.DefaultClient
	}

	resp, err := doer.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if classify(err) != permanent {
			return upstream.Retry{Delay: s.retryDelay()}, nil
		}
		return nil, fmt.Errorf("appstatus/httpsource: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		_ = resp.Body.Close()
	}()

	switch resp.StatusCode {
	case http.StatusOK:
		var b body
		if err = json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&b); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("appstatus/httpsource: decoding status of %q: %w", id, err)
		}
		if b.ID == "" {
			b.ID = id
		}
		return upstream.Success{ID: b.ID, Status: b.Status}, nil
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		d, ok := RetryAfter(resp.Header, time.Now())
		if !ok {
			d = s.retryDelay()
		}
		return upstream.Retry{Delay: d}, nil
	default:
		return upstream.Failure{}, nil
	}
}

func (s *Source) url(id string) string {
	return strings.TrimSuffix(s.BaseURL, "/") + "/applications/" + url.PathEscape(id) + "/status"
}

func (s *Source) retryDelay() time.Duration {
	if s.DefaultRetryDelay > 0 {
		return s.DefaultRetryDelay
	}
	return DefaultRetryDelay
}

// RetryAfter parses the Retry-After header of h, given either as a
// number of seconds or as an HTTP date, relative to now. A date in the
// past gives zero. The boolean result is false if the header is absent
// or malformed.
func RetryAfter(h http.Header, now time.Time) (time.Duration, bool) {
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return 0, false
	}

	if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
		if secs < 0 || secs > int64(time.Duration(1<<63-1)/time.Second) {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}

	t, err := http.ParseTime(v)
	if err != nil {
		return 0, false
	}
	return max(t.Sub(now), 0), true
}
