// Platepick - Restaurant Discovery and Recommendation Service
// Copyright 2026 Platepick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/platepick/platepick

package recommend

import "strings"

// PreferenceProfile is the ephemeral aggregate built from one rating set.
// Tag and city weights are signed: positive for tags of restaurants rated
// above the midpoint, negative below. Lifetime is one recommendation
// request.
type PreferenceProfile struct {
	tags    map[string]float64
	cities  map[string]float64
	tagMax  float64 // largest absolute tag weight
	cityMax float64 // largest absolute city weight
}

// buildProfile derives a preference profile from validated ratings.
// Each rated restaurant contributes (score - midpoint) to every one of its
// tags and to its city. A rating at the midpoint contributes nothing.
func buildProfile(ratings Ratings, lookup func(string) (Restaurant, bool)) *PreferenceProfile {
	p := &PreferenceProfile{
		tags:   make(map[string]float64),
		cities: make(map[string]float64),
	}

	for businessID, score := range ratings {
		r, ok := lookup(businessID)
		if !ok {
			continue
		}

		weight := float64(score - RatingMidpoint)
		if weight == 0 {
			continue
		}

		for _, tag := range r.Categories {
			p.tags[normalizeTag(tag)] += weight
		}
		if r.City != "" {
			p.cities[r.City] += weight
		}
	}

	for _, w := range p.tags {
		if abs(w) > p.tagMax {
			p.tagMax = abs(w)
		}
	}
	for _, w := range p.cities {
		if abs(w) > p.cityMax {
			p.cityMax = abs(w)
		}
	}

	return p
}

// Empty reports whether the profile carries no signal (cold start, or all
// ratings at the midpoint).
func (p *PreferenceProfile) Empty() bool {
	return p.tagMax == 0 && p.cityMax == 0
}

// TagMatch scores a candidate's categories against the profile in [-1, 1].
// The sum of the profile weights of the candidate's tags is normalized by
// the strongest single preference and clamped, so one full-strength liked
// tag saturates the signal and disliked tags pull it negative. That keeps
// the tag signal dominant over the bounded quality signal, preserving the
// direction of the user's ratings in the final order.
func (p *PreferenceProfile) TagMatch(categories []string) float64 {
	if p.tagMax == 0 || len(categories) == 0 {
		return 0
	}

	var total float64
	for _, tag := range categories {
		total += p.tags[normalizeTag(tag)]
	}
	return clamp(total/p.tagMax, -1, 1)
}

// CityMatch scores a candidate's city against the profile in [-1, 1].
func (p *PreferenceProfile) CityMatch(city string) float64 {
	if p.cityMax == 0 || city == "" {
		return 0
	}
	return clamp(p.cities[city]/p.cityMax, -1, 1)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// jaccardSimilarity computes Jaccard similarity between two tag sets.
// Kept exported within the package for the similar-restaurants path.
func jaccardSimilarity(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	setA := make(map[string]struct{}, len(a))
	for _, s := range a {
		setA[normalizeTag(s)] = struct{}{}
	}

	setB := make(map[string]struct{}, len(b))
	for _, s := range b {
		setB[normalizeTag(s)] = struct{}{}
	}

	intersection := 0
	for s := range setA {
		if _, ok := setB[s]; ok {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
