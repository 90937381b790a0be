// Platepick - Restaurant Discovery and Recommendation Service
// Copyright 2026 Platepick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/platepick/platepick

package recommend

import (
	"hash/fnv"
	"math/rand"
	"sort"
)

// Sampler selects the bounded subset of restaurants a user is asked to
// rate. Sampling is a pure read over the corpus: the same (seed, state,
// city, size) always yields the same sample.
type Sampler struct {
	corpus CorpusProvider
	cfg    SamplerConfig
	seed   int64
}

// NewSampler creates a sampler over the given corpus.
func NewSampler(corpus CorpusProvider, cfg SamplerConfig, seed int64) *Sampler {
	if cfg.DefaultSize <= 0 {
		cfg.DefaultSize = 10
	}
	if cfg.MaxSize < cfg.DefaultSize {
		cfg.MaxSize = cfg.DefaultSize
	}
	if seed == 0 {
		seed = 42
	}
	return &Sampler{corpus: corpus, cfg: cfg, seed: seed}
}

// Sample returns a seeded-random subset of the restaurants matching the
// state/city filter. Filter matching is exact and case-sensitive. An
// unknown state or city fails with *InvalidFilterError; a valid filter
// matching nothing fails with *EmptySelectionError. size <= 0 selects the
// configured default.
func (s *Sampler) Sample(state, city string, size int) ([]Restaurant, error) {
	if !s.corpus.HasState(state) {
		return nil, &InvalidFilterError{Field: "state", Value: state}
	}
	if city != "" && !s.corpus.HasCity(state, city) {
		return nil, &InvalidFilterError{Field: "city", Value: city}
	}

	filtered := s.corpus.RestaurantsIn(state, city)
	if len(filtered) == 0 {
		return nil, &EmptySelectionError{State: state, City: city}
	}

	if size <= 0 {
		size = s.cfg.DefaultSize
	}
	if size > s.cfg.MaxSize {
		size = s.cfg.MaxSize
	}

	// Shuffle a sorted copy so the sample is independent of corpus
	// iteration order, then keyed on (seed, state, city) for stability.
	sample := make([]Restaurant, len(filtered))
	copy(sample, filtered)
	sort.Slice(sample, func(i, j int) bool {
		return sample[i].BusinessID < sample[j].BusinessID
	})

	rng := rand.New(rand.NewSource(s.filterSeed(state, city))) //nolint:gosec // deterministic sampling, not crypto
	rng.Shuffle(len(sample), func(i, j int) {
		sample[i], sample[j] = sample[j], sample[i]
	})

	if len(sample) > size {
		sample = sample[:size]
	}
	return sample, nil
}

// filterSeed derives a per-filter seed so different filters get different
// but stable samples.
func (s *Sampler) filterSeed(state, city string) int64 {
	h := fnv.New64a()
	h.Write([]byte(state))
	h.Write([]byte{0})
	h.Write([]byte(city))
	return s.seed ^ int64(h.Sum64()) //nolint:gosec // intentional truncation
}
