// Platepick - Restaurant Discovery and Recommendation Service
// Copyright 2026 Platepick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/platepick/platepick

// Package config defines the application configuration and loads it in
// three layers: struct defaults, an optional YAML file, then environment
// variables. Later layers win.
package config

import (
	"fmt"
	"time"

	"github.com/platepick/platepick/internal/business"
	"github.com/platepick/platepick/internal/recommend"
)

// Config is the full application configuration.
type Config struct {
	Server    ServerConfig     `json:"server" koanf:"server"`
	API       APIConfig        `json:"api" koanf:"api"`
	Corpus    CorpusConfig     `json:"corpus" koanf:"corpus"`
	Recommend recommend.Config `json:"recommend" koanf:"recommend"`
	Session   SessionConfig    `json:"session" koanf:"session"`
	Business  business.Config  `json:"business" koanf:"business"`
	Security  SecurityConfig   `json:"security" koanf:"security"`
	Logging   LoggingConfig    `json:"logging" koanf:"logging"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host            string        `json:"host" koanf:"host"`
	Port            int           `json:"port" koanf:"port"`
	ReadTimeout     time.Duration `json:"read_timeout" koanf:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout" koanf:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" koanf:"shutdown_timeout"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// APIConfig configures pagination bounds for list endpoints.
type APIConfig struct {
	DefaultPageSize int `json:"default_page_size" koanf:"default_page_size"`
	MaxPageSize     int `json:"max_page_size" koanf:"max_page_size"`
}

// CorpusConfig configures the restaurant snapshot.
type CorpusConfig struct {
	// Path is the snapshot file, CSV or Parquet.
	Path string `json:"path" koanf:"path"`
}

// SessionConfig configures the rating-session store.
type SessionConfig struct {
	// Path is the Badger directory. Empty runs in-memory.
	Path string `json:"path" koanf:"path"`

	// TTL is how long a rating session stays usable.
	TTL time.Duration `json:"ttl" koanf:"ttl"`
}

// SecurityConfig configures rate limiting and CORS.
type SecurityConfig struct {
	RateLimitReqs     int           `json:"rate_limit_reqs" koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `json:"rate_limit_window" koanf:"rate_limit_window"`
	RateLimitDisabled bool          `json:"rate_limit_disabled" koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `json:"cors_origins" koanf:"cors_origins"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `json:"level" koanf:"level"`
	Format string `json:"format" koanf:"format"`
	Caller bool   `json:"caller" koanf:"caller"`
}

// defaultConfig returns the layer-zero defaults.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		API: APIConfig{
			DefaultPageSize: 10,
			MaxPageSize:     100,
		},
		Corpus: CorpusConfig{
			Path: "/data/corpus.csv",
		},
		Recommend: *recommend.DefaultConfig(),
		Session: SessionConfig{
			Path: "/data/sessions",
			TTL:  2 * time.Hour,
		},
		Business: business.Config{
			Timeout:         10 * time.Second,
			BreakerTimeout:  30 * time.Second,
			BreakerFailures: 5,
		},
		Security: SecurityConfig{
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.API.DefaultPageSize < 1 {
		return fmt.Errorf("api.default_page_size must be positive, got %d", c.API.DefaultPageSize)
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("api.max_page_size must be >= api.default_page_size, got %d < %d",
			c.API.MaxPageSize, c.API.DefaultPageSize)
	}
	if c.Corpus.Path == "" {
		return fmt.Errorf("corpus.path is required")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive, got %v", c.Session.TTL)
	}
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("security.rate_limit_reqs must be positive, got %d", c.Security.RateLimitReqs)
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("security.rate_limit_window must be positive, got %v", c.Security.RateLimitWindow)
		}
	}
	if err := c.Recommend.Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	return nil
}
