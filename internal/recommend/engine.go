// Platepick - Restaurant Discovery and Recommendation Service
// Copyright 2026 Platepick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/platepick/platepick

package recommend

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/platepick/platepick/internal/metrics"
)

// Engine turns a session's ratings into a ranked recommendation list.
// It is safe for concurrent use; the corpus is shared read-only and the
// only mutable state is the guarded result cache.
type Engine struct {
	config *Config
	logger zerolog.Logger
	corpus CorpusProvider

	// Metrics counters
	requestCount atomic.Int64
	cacheHits    atomic.Int64
	cacheMisses  atomic.Int64
	errorCount   atomic.Int64

	// Result cache. Recomputation on concurrent misses is acceptable:
	// the engine is pure and idempotent.
	cache   map[uint64]cacheEntry
	cacheMu sync.RWMutex
}

// cacheEntry holds a cached recommendation response.
type cacheEntry struct {
	response  *Response
	expiresAt time.Time
}

// Stats reports engine counters for observability.
type Stats struct {
	RequestCount int64 `json:"request_count"`
	CacheHits    int64 `json:"cache_hits"`
	CacheMisses  int64 `json:"cache_misses"`
	ErrorCount   int64 `json:"error_count"`
}

// NewEngine creates a recommendation engine over the given corpus.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, corpus CorpusProvider, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if corpus == nil {
		return nil, fmt.Errorf("corpus provider not set")
	}

	return &Engine{
		config: cfg,
		logger: logger.With().Str("component", "recommend").Logger(),
		corpus: corpus,
		cache:  make(map[uint64]cacheEntry),
	}, nil
}

// Recommend generates recommendations for one rating session.
//
// The corpus is restricted to the requested state (and city, if set)
// before scoring; rated restaurants are excluded from their own result.
// An empty rating set is a cold start and degrades to quality-only
// ranking. An empty candidate set yields an empty response, not an error.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	e.requestCount.Add(1)

	req = e.prepareRequest(req)
	logger := e.logger.With().
		Str("request_id", req.RequestID).
		Str("user_id", req.UserID).
		Str("state", req.State).
		Logger()
	logger.Debug().Int("ratings", len(req.Ratings)).Msg("processing recommendation request")

	if err := e.validateFilter(req); err != nil {
		e.errorCount.Add(1)
		return nil, err
	}

	if resp := e.checkCache(cacheKey(req)); resp != nil {
		e.cacheHits.Add(1)
		metrics.CacheHits.Inc()
		resp.Metadata.CacheHit = true
		resp.Metadata.LatencyMS = time.Since(start).Milliseconds()
		logger.Debug().Msg("cache hit")
		return resp, nil
	}
	e.cacheMisses.Add(1)
	metrics.CacheMisses.Inc()

	candidates := e.corpus.RestaurantsIn(req.State, req.City)
	if err := e.validateRatings(req.Ratings, candidates); err != nil {
		e.errorCount.Add(1)
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	profile := buildProfile(req.Ratings, e.corpus.Restaurant)
	scored := e.rankCandidates(profile, req.Ratings, candidates)

	total := len(scored)
	if len(scored) > req.K {
		scored = scored[:req.K]
	}

	resp := &Response{
		Restaurants:     scored,
		TotalCandidates: total,
		Metadata: ResponseMetadata{
			RequestID: req.RequestID,
			UserID:    req.UserID,
			State:     req.State,
			City:      req.City,
			ColdStart: profile.Empty(),
			LatencyMS: time.Since(start).Milliseconds(),
			Timestamp: time.Now(),
		},
	}
	e.storeCache(cacheKey(req), resp)

	logger.Debug().
		Int("candidates", total).
		Int("returned", len(scored)).
		Bool("cold_start", resp.Metadata.ColdStart).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("recommendation complete")

	return resp, nil
}

// prepareRequest applies defaults and generates a request ID if needed.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareRequest(req Request) Request {
	if req.RequestID == "" {
		req.RequestID = fmt.Sprintf("rec-%d", time.Now().UnixNano())
	}
	if req.K <= 0 {
		req.K = e.config.Limits.DefaultK
	}
	if req.K > e.config.Limits.MaxK {
		req.K = e.config.Limits.MaxK
	}
	return req
}

// validateFilter rejects geography absent from the corpus early instead of
// silently producing an empty slice.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) validateFilter(req Request) error {
	if !e.corpus.HasState(req.State) {
		return &InvalidFilterError{Field: "state", Value: req.State}
	}
	if req.City != "" && !e.corpus.HasCity(req.State, req.City) {
		return &InvalidFilterError{Field: "city", Value: req.City}
	}
	return nil
}

// validateRatings rejects out-of-range scores and ratings that reference
// restaurants outside the filtered geography, before profile building.
func (e *Engine) validateRatings(ratings Ratings, candidates []Restaurant) error {
	if len(ratings) == 0 {
		return nil
	}

	inFilter := make(map[string]struct{}, len(candidates))
	for i := range candidates {
		inFilter[candidates[i].BusinessID] = struct{}{}
	}

	for businessID, score := range ratings {
		if score < MinRating || score > MaxRating {
			return &MalformedRatingError{
				BusinessID: businessID,
				Score:      score,
				Reason:     fmt.Sprintf("score outside [%d, %d]", MinRating, MaxRating),
			}
		}
		if _, ok := inFilter[businessID]; !ok {
			return &MalformedRatingError{
				BusinessID: businessID,
				Score:      score,
				Reason:     "restaurant not in the filtered corpus",
			}
		}
	}
	return nil
}

// rankCandidates scores every unrated candidate against the profile and
// returns the fully ordered, deduplicated result. Exposed separately from
// Recommend so the assembly step is independently testable.
func (e *Engine) rankCandidates(profile *PreferenceProfile, ratings Ratings, candidates []Restaurant) []ScoredRestaurant {
	weights := e.config.Weights.Normalize()

	scored := make([]ScoredRestaurant, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))

	for i := range candidates {
		r := candidates[i]
		if _, rated := ratings[r.BusinessID]; rated {
			continue // no self-recommendation
		}
		if _, dup := seen[r.BusinessID]; dup {
			continue
		}
		seen[r.BusinessID] = struct{}{}

		tag := profile.TagMatch(r.Categories)
		quality := r.Stars / float64(MaxRating)
		city := profile.CityMatch(r.City)

		scored = append(scored, ScoredRestaurant{
			Restaurant: r,
			Score:      weights.TagSimilarity*tag + weights.Quality*quality + weights.CityAffinity*city,
			Signals: map[string]float64{
				"tag_similarity": tag,
				"quality":        quality,
				"city_affinity":  city,
			},
		})
	}

	// Deterministic total order: score desc, stars desc, id asc.
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if scored[i].Restaurant.Stars != scored[j].Restaurant.Stars {
			return scored[i].Restaurant.Stars > scored[j].Restaurant.Stars
		}
		return scored[i].Restaurant.BusinessID < scored[j].Restaurant.BusinessID
	})

	return scored
}

// Similar returns restaurants most similar to the given one by category
// overlap within the same state, for "more like this" displays.
func (e *Engine) Similar(businessID string, k int) ([]ScoredRestaurant, error) {
	source, ok := e.corpus.Restaurant(businessID)
	if !ok {
		return nil, &InvalidFilterError{Field: "business_id", Value: businessID}
	}
	if k <= 0 {
		k = e.config.Limits.DefaultK
	}

	candidates := e.corpus.RestaurantsIn(source.State, "")
	scored := make([]ScoredRestaurant, 0, len(candidates))
	for i := range candidates {
		r := candidates[i]
		if r.BusinessID == source.BusinessID {
			continue
		}
		sim := jaccardSimilarity(source.Categories, r.Categories)
		if sim == 0 {
			continue
		}
		scored = append(scored, ScoredRestaurant{
			Restaurant: r,
			Score:      sim,
			Signals:    map[string]float64{"tag_similarity": sim},
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if scored[i].Restaurant.Stars != scored[j].Restaurant.Stars {
			return scored[i].Restaurant.Stars > scored[j].Restaurant.Stars
		}
		return scored[i].Restaurant.BusinessID < scored[j].Restaurant.BusinessID
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// Stats returns the engine's request counters.
func (e *Engine) Stats() Stats {
	return Stats{
		RequestCount: e.requestCount.Load(),
		CacheHits:    e.cacheHits.Load(),
		CacheMisses:  e.cacheMisses.Load(),
		ErrorCount:   e.errorCount.Load(),
	}
}

// Config returns a copy of the current configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// cacheKey hashes the full request, including every rating pair, so a
// changed rating set never returns a stale result.
//
//nolint:gocritic // hugeParam: req passed by value for simplicity
func cacheKey(req Request) uint64 {
	ids := make([]string, 0, len(req.Ratings))
	for id := range req.Ratings {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	h := fnv.New64a()
	for _, part := range []string{req.UserID, req.State, req.City, strconv.Itoa(req.K)} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	for _, id := range ids {
		h.Write([]byte(id))
		h.Write([]byte{'='})
		h.Write([]byte(strconv.Itoa(req.Ratings[id])))
		h.Write([]byte{0})
	}
	return h.Sum64()
}

// checkCache returns a copy of a valid cached response, or nil.
func (e *Engine) checkCache(key uint64) *Response {
	if !e.config.Cache.Enabled {
		return nil
	}

	e.cacheMu.RLock()
	defer e.cacheMu.RUnlock()

	entry, ok := e.cache[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil
	}

	// Copy to avoid concurrent modification of the cached slice header.
	restaurants := make([]ScoredRestaurant, len(entry.response.Restaurants))
	copy(restaurants, entry.response.Restaurants)
	return &Response{
		Restaurants:     restaurants,
		TotalCandidates: entry.response.TotalCandidates,
		Metadata:        entry.response.Metadata,
	}
}

// storeCache stores a response, evicting expired entries at capacity.
func (e *Engine) storeCache(key uint64, resp *Response) {
	if !e.config.Cache.Enabled {
		return
	}

	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()

	if len(e.cache) >= e.config.Cache.MaxEntries {
		now := time.Now()
		for k, entry := range e.cache {
			if now.After(entry.expiresAt) {
				delete(e.cache, k)
			}
		}
	}

	e.cache[key] = cacheEntry{
		response:  resp,
		expiresAt: time.Now().Add(e.config.Cache.TTL),
	}
}
