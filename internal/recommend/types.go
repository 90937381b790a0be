// Platepick - Restaurant Discovery and Recommendation Service
// Copyright 2026 Platepick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/platepick/platepick

package recommend

import "time"

// Rating bounds for user-supplied scores. RatingMidpoint is the neutral
// score: ratings above it reinforce a restaurant's tags in the preference
// profile, ratings below it penalize them.
const (
	MinRating      = 1
	MaxRating      = 5
	RatingMidpoint = 3
)

// Restaurant is a single corpus entry. Restaurants are immutable after
// corpus load and owned by the corpus store; the engine never mutates them.
type Restaurant struct {
	// BusinessID uniquely identifies the restaurant in the corpus.
	BusinessID string `json:"business_id"`

	// Name is the display name.
	Name string `json:"name"`

	// State and City locate the restaurant; filter matching is
	// case-sensitive and exact, as in the source snapshot.
	State string `json:"state"`
	City  string `json:"city"`

	// Address is the street address.
	Address string `json:"address"`

	// Latitude and Longitude are WGS84 coordinates, zero when unknown.
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	// Categories are the cuisine/category tags.
	Categories []string `json:"categories"`

	// Stars is the aggregate star rating from the review history (0-5).
	Stars float64 `json:"stars"`

	// ReviewCount is the number of reviews behind Stars.
	ReviewCount int `json:"review_count"`
}

// Ratings maps restaurant BusinessID to a user-supplied score in
// [MinRating, MaxRating]. Keys are unique; iteration order is irrelevant.
type Ratings map[string]int

// Request is a single recommendation request. Requests are independent and
// stateless with respect to other users.
type Request struct {
	// UserID is an opaque caller-supplied identifier, used only for
	// logging and cache keying, never for historical personalization.
	UserID string `json:"user_id"`

	// State restricts the candidate corpus. Required.
	State string `json:"state"`

	// City optionally narrows the candidate corpus further.
	City string `json:"city,omitempty"`

	// Ratings is the session's rating set. May be empty (cold start).
	Ratings Ratings `json:"ratings,omitempty"`

	// K is the number of recommendations to return.
	// Defaults to Config.Limits.DefaultK if zero, capped at MaxK.
	K int `json:"k,omitempty"`

	// RequestID is a unique identifier for tracing.
	RequestID string `json:"request_id,omitempty"`
}

// ScoredRestaurant is a restaurant with its combined recommendation score.
type ScoredRestaurant struct {
	// Restaurant is the corpus entry.
	Restaurant Restaurant `json:"restaurant"`

	// Score is the combined recommendation score, higher is better.
	Score float64 `json:"score"`

	// Signals is the per-signal score breakdown (tag, quality, city).
	Signals map[string]float64 `json:"signals,omitempty"`
}

// Response is an ordered recommendation result. It is produced once per
// request and never mutated afterwards; a new request replaces it wholesale.
type Response struct {
	// Restaurants is ordered by Score descending; ties broken by Stars
	// descending, then BusinessID ascending.
	Restaurants []ScoredRestaurant `json:"restaurants"`

	// TotalCandidates is the number of candidates considered after
	// geographic filtering and exclusion of rated restaurants.
	TotalCandidates int `json:"total_candidates"`

	// Metadata contains timing and diagnostic information.
	Metadata ResponseMetadata `json:"metadata"`
}

// ResponseMetadata contains timing and diagnostic information.
type ResponseMetadata struct {
	// RequestID is the unique request identifier.
	RequestID string `json:"request_id"`

	// UserID is the user the recommendations are for.
	UserID string `json:"user_id"`

	// State and City echo the geographic filter.
	State string `json:"state"`
	City  string `json:"city,omitempty"`

	// ColdStart reports whether the quality-only fallback was used.
	ColdStart bool `json:"cold_start"`

	// LatencyMS is the total recommendation latency in milliseconds.
	LatencyMS int64 `json:"latency_ms"`

	// CacheHit indicates whether the result was served from cache.
	CacheHit bool `json:"cache_hit"`

	// Timestamp is when the response was generated.
	Timestamp time.Time `json:"timestamp"`
}

// CorpusProvider is the read-only view of the corpus the engine depends on.
// It is implemented by the corpus store; the indirection keeps this package
// free of database imports.
type CorpusProvider interface {
	// HasState reports whether the state exists in the corpus.
	HasState(state string) bool

	// HasCity reports whether the city exists within the state.
	HasCity(state, city string) bool

	// RestaurantsIn returns the restaurants matching the filter.
	// city may be empty to select the whole state. The returned slice
	// must not be mutated.
	RestaurantsIn(state, city string) []Restaurant

	// Restaurant looks up a single restaurant by BusinessID.
	Restaurant(businessID string) (Restaurant, bool)
}
