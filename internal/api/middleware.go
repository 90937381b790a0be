// Platepick - Restaurant Discovery and Recommendation Service
// Copyright 2026 Platepick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/platepick/platepick

package api

import (
	"net/http"
	"time"

	"github.com/platepick/platepick/internal/logging"
	"github.com/platepick/platepick/internal/metrics"
)

// requestIDHeader is the inbound/outbound request ID header.
const requestIDHeader = "X-Request-ID"

// RequestID accepts a caller-supplied X-Request-ID or generates one, sets
// it on the response and stores it in the request context for logging.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > 128 {
			id = logging.GenerateRequestID()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logging.ContextWithRequestID(r.Context(), id)))
	})
}

// statusRecorder captures the response status for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// PrometheusMetrics records request counts and latency per route pattern.
// The pattern passed in keeps label cardinality bounded; raw URLs with
// IDs in them never become label values.
func PrometheusMetrics(pattern string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			metrics.RecordAPIRequest(r.Method, pattern, rec.status, time.Since(start))
		})
	}
}

// AccessLog emits one debug line per request.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger := logging.Ctx(r.Context())
		logger.Debug().
			Str("method", r.Method).
			Str("path", sanitizeLogValue(r.URL.Path)).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
