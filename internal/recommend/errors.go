// Platepick - Restaurant Discovery and Recommendation Service
// Copyright 2026 Platepick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/platepick/platepick

package recommend

import "fmt"

// The engine's error taxonomy. All are recoverable at the call boundary:
// the engine never terminates the hosting process. Callers match with
// errors.As and map to API error codes.

// InvalidFilterError indicates a state or city value absent from the corpus.
// The caller must re-prompt with a valid filter.
type InvalidFilterError struct {
	Field string // "state" or "city"
	Value string
}

func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("invalid filter: %s %q not present in corpus", e.Field, e.Value)
}

// EmptySelectionError indicates a valid filter that matched no restaurants.
// Recoverable: the caller surfaces an empty selection, not a crash.
type EmptySelectionError struct {
	State string
	City  string
}

func (e *EmptySelectionError) Error() string {
	if e.City != "" {
		return fmt.Sprintf("no restaurants match state %q, city %q", e.State, e.City)
	}
	return fmt.Sprintf("no restaurants match state %q", e.State)
}

// MalformedRatingError indicates a rating that references a restaurant
// outside the filtered corpus or carries a score outside [MinRating,
// MaxRating]. Rejected before profile building.
type MalformedRatingError struct {
	BusinessID string
	Score      int
	Reason     string
}

func (e *MalformedRatingError) Error() string {
	return fmt.Sprintf("malformed rating for %q (score %d): %s", e.BusinessID, e.Score, e.Reason)
}
