// Copyright 2021 The appstatus Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpsource

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gogama/appstatus/upstream"
)

// NewHandler returns an http.Handler serving src with the protocol
// understood by Source:
//
// • upstream.Success is served as 200 OK with a JSON body;
//
// • upstream.Retry is served as 503 Service Unavailable with a
// Retry-After header in whole seconds, rounded up;
//
// • upstream.Failure is served as 500 Internal Server Error;
//
// • a query error is served as 502 Bad Gateway.
//
// Each query runs with the context of the incoming request, so it is
// canceled if the client goes away.
func NewHandler(src upstream.Source) http.Handler {
	if src == nil {
		panic("appstatus/httpsource: nil source")
	}

	mux := http.NewServeMux()
	mux.Handle("GET /applications/{id}/status", handler{src})
	return mux
}

type handler struct {
	src upstream.Source
}

func (h handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	o, err := h.src.Query(r.Context(), id)
	if r.Context().Err() != nil {
		// Nobody is listening any more.
		return
	}

	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	switch o := o.(type) {
	case upstream.Success:
		writeJSON(w, http.StatusOK, body{ID: o.ID, Status: o.Status})
	case upstream.Retry:
		w.Header().Set("Retry-After", strconv.FormatInt(ceilSeconds(o.Delay), 10))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "retry later"})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "status unavailable"})
	}
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return int64((d + time.Second - 1) / time.Second)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
