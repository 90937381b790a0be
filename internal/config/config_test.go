// Platepick - Restaurant Discovery and Recommendation Service
// Copyright 2026 Platepick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/platepick/platepick

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, 10, cfg.API.DefaultPageSize)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
}

func TestLoadFromDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.InDelta(t, 0.6, cfg.Recommend.Weights.TagSimilarity, 1e-9)
}

func TestLoadFromYAMLFile(t *testing.T) {
	yaml := `
server:
  port: 9090
corpus:
  path: /tmp/test-corpus.csv
recommend:
  weights:
    tag_similarity: 0.5
    quality: 0.4
    city_affinity: 0.1
security:
  cors_origins:
    - https://app.example.com
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/tmp/test-corpus.csv", cfg.Corpus.Path)
	assert.InDelta(t, 0.5, cfg.Recommend.Weights.TagSimilarity, 1e-9)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Security.CORSOrigins)

	// File values still merge over untouched defaults.
	assert.Equal(t, 10, cfg.API.DefaultPageSize)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("HTTP_PORT", "7070")
	t.Setenv("CORPUS_PATH", "/tmp/env-corpus.parquet")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "/tmp/env-corpus.parquet", cfg.Corpus.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Security.CORSOrigins)
}

func TestEnvTransformFunc(t *testing.T) {
	assert.Equal(t, "server.port", envTransformFunc("HTTP_PORT"))
	assert.Equal(t, "corpus.path", envTransformFunc("PLATEPICK_CORPUS_PATH"))
	assert.Equal(t, "server.host", envTransformFunc("platepick_server_host"))
	assert.Empty(t, envTransformFunc("PATH"), "unrelated variables are dropped")
	assert.Empty(t, envTransformFunc("HOME"))
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port out of range", func(c *Config) { c.Server.Port = 0 }},
		{"missing corpus path", func(c *Config) { c.Corpus.Path = "" }},
		{"zero session ttl", func(c *Config) { c.Session.TTL = 0 }},
		{"page size inversion", func(c *Config) { c.API.MaxPageSize = 1 }},
		{"bad recommend config", func(c *Config) { c.Recommend.Limits.DefaultK = 0 }},
		{"zero rate limit", func(c *Config) { c.Security.RateLimitReqs = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
