// Platepick - Restaurant Discovery and Recommendation Service
// Copyright 2026 Platepick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/platepick/platepick

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the config file locations searched in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/platepick/config.yaml",
	"/etc/platepick/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load builds the configuration from defaults, an optional YAML file and
// environment variables, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the first config file that exists, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths lists config paths parsed as comma-separated slices
// when they arrive through environment variables.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps flat environment variable names to config paths.
var envMappings = map[string]string{
	"http_host":         "server.host",
	"http_port":         "server.port",
	"shutdown_timeout":  "server.shutdown_timeout",
	"corpus_path":       "corpus.path",
	"session_path":      "session.path",
	"session_ttl":       "session.ttl",
	"business_base_url": "business.base_url",
	"business_api_key":  "business.api_key",
	"recommend_seed":    "recommend.seed",
	"rate_limit_reqs":   "security.rate_limit_reqs",
	"rate_limit_window": "security.rate_limit_window",
	"cors_origins":      "security.cors_origins",
	"log_level":         "logging.level",
	"log_format":        "logging.format",
}

// envTransformFunc maps environment variable names to koanf paths.
// Known flat names use the mapping table; PLATEPICK_-prefixed names map
// structurally (PLATEPICK_RECOMMEND_CACHE_TTL -> recommend.cache.ttl is
// not derivable from underscores alone, so nested sections use the
// table or a config file). Unknown variables are dropped.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	if rest, ok := strings.CutPrefix(key, "platepick_"); ok {
		if mapped, found := envMappings[rest]; found {
			return mapped
		}
		// Single-level sections: platepick_server_port -> server.port.
		return strings.Replace(rest, "_", ".", 1)
	}
	return ""
}
