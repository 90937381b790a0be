// Platepick - Restaurant Discovery and Recommendation Service
// Copyright 2026 Platepick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/platepick/platepick

package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSampler() *Sampler {
	return NewSampler(testCorpus(), SamplerConfig{DefaultSize: 3, MaxSize: 5}, 42)
}

func TestSampleSubsetOfFilter(t *testing.T) {
	s := newTestSampler()

	sample, err := s.Sample("Arizona", "Phoenix", 10)
	require.NoError(t, err)
	require.NotEmpty(t, sample)

	// Every sampled restaurant matches the filter exactly.
	for _, r := range sample {
		assert.Equal(t, "Arizona", r.State)
		assert.Equal(t, "Phoenix", r.City)
	}
}

func TestSampleDeterministic(t *testing.T) {
	s := newTestSampler()

	a, err := s.Sample("Arizona", "Phoenix", 3)
	require.NoError(t, err)
	b, err := s.Sample("Arizona", "Phoenix", 3)
	require.NoError(t, err)
	assert.Equal(t, a, b, "same filter and seed must yield the same sample")
}

func TestSampleSizeBounds(t *testing.T) {
	s := newTestSampler()

	// size <= 0 uses the configured default.
	sample, err := s.Sample("Arizona", "", 0)
	require.NoError(t, err)
	assert.Len(t, sample, 3)

	// size above MaxSize is capped.
	sample, err = s.Sample("Arizona", "", 100)
	require.NoError(t, err)
	assert.Len(t, sample, 5)
}

func TestSampleUnknownState(t *testing.T) {
	s := newTestSampler()

	_, err := s.Sample("Nevada", "", 3)
	var filterErr *InvalidFilterError
	require.ErrorAs(t, err, &filterErr)
	assert.Equal(t, "state", filterErr.Field)
}

func TestSampleUnknownCity(t *testing.T) {
	s := newTestSampler()

	_, err := s.Sample("Arizona", "Flagstaff", 3)
	var filterErr *InvalidFilterError
	require.ErrorAs(t, err, &filterErr)
	assert.Equal(t, "city", filterErr.Field)
}

func TestSampleEmptySelection(t *testing.T) {
	corpus := &stubCorpus{restaurants: []Restaurant{
		{BusinessID: "r1", State: "Ohio", City: "Columbus", Stars: 4.0},
	}}
	s := NewSampler(corpus, SamplerConfig{DefaultSize: 3, MaxSize: 5}, 42)

	// HasState/HasCity pass but the filter matches nothing only when the
	// provider disagrees with itself; simulate by filtering a city that
	// exists with a provider returning nothing for it.
	_, err := s.Sample("Ohio", "Columbus", 3)
	require.NoError(t, err)

	empty := &emptyCorpus{stubCorpus: corpus}
	s = NewSampler(empty, SamplerConfig{DefaultSize: 3, MaxSize: 5}, 42)
	_, err = s.Sample("Ohio", "Columbus", 3)
	var selErr *EmptySelectionError
	require.ErrorAs(t, err, &selErr)
}

// emptyCorpus reports geography as present but returns no rows, as a
// corpus would after a reload that removed the filtered restaurants.
type emptyCorpus struct {
	*stubCorpus
}

func (e *emptyCorpus) RestaurantsIn(state, city string) []Restaurant { return nil }

func TestSampleDiffersAcrossFilters(t *testing.T) {
	corpus := &stubCorpus{}
	for i := 0; i < 26; i++ {
		id := string(rune('a' + i))
		corpus.restaurants = append(corpus.restaurants,
			Restaurant{BusinessID: "p" + id, State: "Arizona", City: "Phoenix", Stars: 3.0},
			Restaurant{BusinessID: "t" + id, State: "Arizona", City: "Tempe", Stars: 3.0},
		)
	}
	s := NewSampler(corpus, SamplerConfig{DefaultSize: 5, MaxSize: 10}, 42)

	phoenix, err := s.Sample("Arizona", "Phoenix", 5)
	require.NoError(t, err)
	tempe, err := s.Sample("Arizona", "Tempe", 5)
	require.NoError(t, err)
	assert.NotEqual(t, phoenix, tempe)
}
