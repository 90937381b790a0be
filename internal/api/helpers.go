// Platepick - Restaurant Discovery and Recommendation Service
// Copyright 2026 Platepick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/platepick/platepick

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/platepick/platepick/internal/logging"
	"github.com/platepick/platepick/internal/models"
	"github.com/platepick/platepick/internal/validation"
)

// sanitizeLogValue replaces control characters so request-derived strings
// cannot forge log entries.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response with caching headers and an ETag.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Vary", "Accept-Encoding")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("ETag", generateETag(data))
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondSuccess wraps data in the standard success envelope.
func respondSuccess(w http.ResponseWriter, r *http.Request, status int, data interface{}, started time.Time) {
	respondJSON(w, status, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			RequestID:   logging.RequestIDFromContext(r.Context()),
			QueryTimeMS: time.Since(started).Milliseconds(),
		},
	})
}

// generateETag creates an ETag from the body using FNV-1a.
func generateETag(data []byte) string {
	hash := uint32(2166136261)
	for _, b := range data {
		hash ^= uint32(b)
		hash *= 16777619
	}
	return strconv.FormatUint(uint64(hash), 16)
}

// respondError sends a structured error response.
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Error().
			Str("code", sanitizeLogValue(code)).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API error")
	}

	respondJSON(w, status, &models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now()},
		Error: &models.APIError{
			Code:    code,
			Message: message,
		},
	})
}

// validateRequest validates a struct, returning the API error shape.
func validateRequest(v interface{}) *models.APIError {
	verr := validation.ValidateStruct(v)
	if verr == nil {
		return nil
	}
	apiErr := verr.ToAPIError()
	return &models.APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}
}

// getIntParam extracts an integer query parameter with a default.
func getIntParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}
