// Platepick - Restaurant Discovery and Recommendation Service
// Copyright 2026 Platepick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/platepick/platepick

package api

import (
	"errors"
	"net/http"

	"github.com/platepick/platepick/internal/recommend"
	"github.com/platepick/platepick/internal/session"
)

// respondDomainError maps domain errors onto HTTP status and error codes.
// Unknown errors become 500 INTERNAL_ERROR without leaking detail.
func respondDomainError(w http.ResponseWriter, err error) {
	var filterErr *recommend.InvalidFilterError
	if errors.As(err, &filterErr) {
		respondError(w, http.StatusBadRequest, "INVALID_FILTER", filterErr.Error(), nil)
		return
	}

	var selErr *recommend.EmptySelectionError
	if errors.As(err, &selErr) {
		respondError(w, http.StatusNotFound, "EMPTY_SELECTION", selErr.Error(), nil)
		return
	}

	var ratingErr *recommend.MalformedRatingError
	if errors.As(err, &ratingErr) {
		respondError(w, http.StatusBadRequest, "MALFORMED_RATING", ratingErr.Error(), nil)
		return
	}

	switch {
	case errors.Is(err, session.ErrNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", "session not found", nil)
	case errors.Is(err, session.ErrExpired):
		respondError(w, http.StatusGone, "SESSION_EXPIRED", "rating session expired", nil)
	default:
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", err)
	}
}
