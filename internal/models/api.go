// Platepick - Restaurant Discovery and Recommendation Service
// Copyright 2026 Platepick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/platepick/platepick

// Package models defines the wire types shared by all HTTP endpoints.
package models

import "time"

// APIResponse is the standard response wrapper for every endpoint.
//
// Status is "success" or "error". Data carries the payload on success;
// Error is populated only on failure.
//
//	{
//	  "status": "success",
//	  "data": {"restaurants": [...]},
//	  "metadata": {"timestamp": "2026-08-28T12:00:00Z", "query_time_ms": 4}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries per-response observability fields.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	RequestID   string    `json:"request_id,omitempty"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError is the structured error body.
//
// Error codes used by the API:
//   - VALIDATION_ERROR: malformed request parameters or body
//   - INVALID_FILTER: state or city not present in the corpus
//   - EMPTY_SELECTION: a valid filter matched no restaurants
//   - MALFORMED_RATING: rating out of range or outside the sample
//   - NOT_FOUND: resource doesn't exist
//   - SESSION_EXPIRED: the rating session's TTL elapsed
//   - UPSTREAM_ERROR: the business directory lookup failed
//   - INTERNAL_ERROR: unexpected server failure
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// PageInfo is the pagination block attached to paged payloads.
type PageInfo struct {
	Page       int      `json:"page"`
	Size       int      `json:"size"`
	TotalItems int      `json:"total_items"`
	TotalPages int      `json:"total_pages"`
	Labels     []string `json:"labels,omitempty"`
}
