// Platepick - Restaurant Discovery and Recommendation Service
// Copyright 2026 Platepick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/platepick/platepick

// Package recommend implements the rating-based restaurant recommendation
// engine.
//
// The engine takes a sparse set of 1-5 star ratings collected over a sampled
// subset of restaurants, builds a preference profile from them, and scores
// the geographically filtered corpus against that profile. Scoring blends
// three signals with configurable weights:
//
//   - tag similarity between a restaurant's categories and the profile
//   - the restaurant's aggregate star rating (quality)
//   - affinity for the cities of positively rated restaurants
//
// An empty rating set is not an error: scoring degrades to quality-only
// ranking so cold-start users still get a ranked list.
//
// # Thread Safety
//
// The engine holds no per-request mutable state beyond an RWMutex-guarded
// result cache, so it is safe for concurrent use. The corpus provider is
// expected to be immutable after load.
package recommend
