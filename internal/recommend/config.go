// Platepick - Restaurant Discovery and Recommendation Service
// Copyright 2026 Platepick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/platepick/platepick

package recommend

import (
	"fmt"
	"time"
)

// Config contains all configuration for the recommendation engine.
// The weighting scheme is deliberately a tunable policy, not a constant.
type Config struct {
	// Weights defines the relative contribution of each scoring signal.
	// Weights are normalized at runtime, so they don't need to sum to 1.0.
	Weights SignalWeights `json:"weights" koanf:"weights"`

	// Sampler contains rating-sampler parameters.
	Sampler SamplerConfig `json:"sampler" koanf:"sampler"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits" koanf:"limits"`

	// Cache contains result-cache parameters.
	Cache CacheConfig `json:"cache" koanf:"cache"`

	// Seed is the random seed for deterministic sampling.
	// If zero, a fixed default seed is used.
	Seed int64 `json:"seed" koanf:"seed"`
}

// SignalWeights defines the relative contribution of each scoring signal.
type SignalWeights struct {
	// TagSimilarity weights the match between a candidate's categories
	// and the preference profile.
	TagSimilarity float64 `json:"tag_similarity" koanf:"tag_similarity"`

	// Quality weights the candidate's aggregate star rating. Must be
	// non-zero so restaurants sharing no tags with the profile can still
	// surface (prevents zero-result cold starts).
	Quality float64 `json:"quality" koanf:"quality"`

	// CityAffinity weights candidates in cities the user rated highly.
	CityAffinity float64 `json:"city_affinity" koanf:"city_affinity"`
}

// Normalize returns a copy with weights normalized to sum to 1.0.
func (w SignalWeights) Normalize() SignalWeights {
	sum := w.TagSimilarity + w.Quality + w.CityAffinity
	if sum == 0 {
		const equalWeight = 1.0 / 3.0
		return SignalWeights{TagSimilarity: equalWeight, Quality: equalWeight, CityAffinity: equalWeight}
	}
	return SignalWeights{
		TagSimilarity: w.TagSimilarity / sum,
		Quality:       w.Quality / sum,
		CityAffinity:  w.CityAffinity / sum,
	}
}

// SamplerConfig contains rating-sampler parameters.
type SamplerConfig struct {
	// DefaultSize is the sample size used when the caller passes size <= 0.
	// Default: 10.
	DefaultSize int `json:"default_size" koanf:"default_size"`

	// MaxSize caps the sample size. Default: 30.
	MaxSize int `json:"max_size" koanf:"max_size"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// DefaultK is the default number of recommendations to return.
	// Default: 50 (enough rows to support pagination).
	DefaultK int `json:"default_k" koanf:"default_k"`

	// MaxK is the maximum allowed K value. Default: 200.
	MaxK int `json:"max_k" koanf:"max_k"`
}

// CacheConfig contains result-cache parameters.
type CacheConfig struct {
	// Enabled controls whether result caching is active. Default: true.
	Enabled bool `json:"enabled" koanf:"enabled"`

	// TTL is the cache entry time-to-live. Default: 5m.
	TTL time.Duration `json:"ttl" koanf:"ttl"`

	// MaxEntries is the maximum number of cached entries. Default: 4096.
	MaxEntries int `json:"max_entries" koanf:"max_entries"`
}

// DefaultConfig returns a Config with sensible production defaults.
// The default weights keep the tag signal dominant: a strongly liked tag
// (profile weight +-0.6 after normalization) always outranks the maximum
// 0.3 quality spread, which preserves the preference direction of ratings.
func DefaultConfig() *Config {
	return &Config{
		Weights: SignalWeights{
			TagSimilarity: 0.6,
			Quality:       0.3,
			CityAffinity:  0.1,
		},
		Sampler: SamplerConfig{
			DefaultSize: 10,
			MaxSize:     30,
		},
		Limits: LimitsConfig{
			DefaultK: 50,
			MaxK:     200,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        5 * time.Minute,
			MaxEntries: 4096,
		},
		Seed: 42,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Weights.TagSimilarity < 0 {
		return fmt.Errorf("weights.tag_similarity must be non-negative, got %f", c.Weights.TagSimilarity)
	}
	if c.Weights.Quality <= 0 {
		return fmt.Errorf("weights.quality must be positive, got %f", c.Weights.Quality)
	}
	if c.Weights.CityAffinity < 0 {
		return fmt.Errorf("weights.city_affinity must be non-negative, got %f", c.Weights.CityAffinity)
	}
	if c.Sampler.DefaultSize < 1 {
		return fmt.Errorf("sampler.default_size must be positive, got %d", c.Sampler.DefaultSize)
	}
	if c.Sampler.MaxSize < c.Sampler.DefaultSize {
		return fmt.Errorf("sampler.max_size must be >= sampler.default_size, got %d < %d",
			c.Sampler.MaxSize, c.Sampler.DefaultSize)
	}
	if c.Limits.DefaultK < 1 {
		return fmt.Errorf("limits.default_k must be positive, got %d", c.Limits.DefaultK)
	}
	if c.Limits.MaxK < c.Limits.DefaultK {
		return fmt.Errorf("limits.max_k must be >= limits.default_k, got %d < %d",
			c.Limits.MaxK, c.Limits.DefaultK)
	}
	if c.Cache.Enabled {
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache.ttl must be positive, got %v", c.Cache.TTL)
		}
		if c.Cache.MaxEntries < 1 {
			return fmt.Errorf("cache.max_entries must be positive, got %d", c.Cache.MaxEntries)
		}
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// All nested structs contain only value types.
	out := *c
	return &out
}
