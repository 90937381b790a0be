// Platepick - Restaurant Discovery and Recommendation Service
// Copyright 2026 Platepick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/platepick/platepick

// Package corpus loads the restaurant snapshot and serves it as an
// immutable in-memory catalog. The snapshot is read once at startup
// through DuckDB, which handles CSV and Parquet without a schema
// definition on our side. After Load returns, the store never mutates;
// all lookups are lock-free reads.
package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // duckdb driver
	"github.com/rs/zerolog"

	"github.com/platepick/platepick/internal/recommend"
)

// loadTimeout bounds the snapshot scan at startup.
const loadTimeout = 2 * time.Minute

// Store is the immutable restaurant catalog. It implements
// recommend.CorpusProvider.
type Store struct {
	restaurants []recommend.Restaurant
	byID        map[string]int
	states      []string            // sorted
	cities      map[string][]string // state -> sorted cities
	byFilter    map[string][]int    // "state\x00city" and "state\x00" -> indexes
	loadedAt    time.Time
}

// Load reads a snapshot file into a new Store. The format is picked by
// extension: .parquet uses read_parquet, anything else read_csv_auto.
func Load(ctx context.Context, path string, logger zerolog.Logger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("corpus path not set")
	}

	ctx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}
	defer db.Close() //nolint:errcheck // in-memory scratch database

	quoted := "'" + strings.ReplaceAll(path, "'", "''") + "'"
	reader := "read_csv_auto(" + quoted + ", header=true)"
	if strings.EqualFold(filepath.Ext(path), ".parquet") {
		reader = "read_parquet(" + quoted + ")"
	}

	// DuckDB normalizes the snapshot regardless of source column types;
	// the projection is the store's schema contract.
	query := fmt.Sprintf(`
		SELECT
			CAST(business_id AS VARCHAR),
			CAST(name AS VARCHAR),
			CAST(state AS VARCHAR),
			CAST(city AS VARCHAR),
			COALESCE(CAST(address AS VARCHAR), ''),
			COALESCE(CAST(latitude AS DOUBLE), 0),
			COALESCE(CAST(longitude AS DOUBLE), 0),
			COALESCE(CAST(categories AS VARCHAR), ''),
			COALESCE(CAST(stars AS DOUBLE), 0),
			COALESCE(CAST(review_count AS BIGINT), 0)
		FROM %s
		WHERE business_id IS NOT NULL AND state IS NOT NULL AND city IS NOT NULL
	`, reader)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	var restaurants []recommend.Restaurant
	for rows.Next() {
		var r recommend.Restaurant
		var categories string
		var reviewCount int64
		if err := rows.Scan(&r.BusinessID, &r.Name, &r.State, &r.City,
			&r.Address, &r.Latitude, &r.Longitude,
			&categories, &r.Stars, &reviewCount); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		r.Categories = splitCategories(categories)
		r.ReviewCount = int(reviewCount)
		restaurants = append(restaurants, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("snapshot scan failed: %w", err)
	}
	if len(restaurants) == 0 {
		return nil, fmt.Errorf("snapshot %s contains no restaurants", path)
	}

	store := New(restaurants)
	logger.Info().
		Str("path", path).
		Int("restaurants", store.Len()).
		Int("states", len(store.states)).
		Msg("corpus loaded")
	return store, nil
}

// New builds a Store from an in-memory slice. Duplicate business IDs keep
// the first occurrence. The slice is copied; callers keep ownership.
func New(restaurants []recommend.Restaurant) *Store {
	s := &Store{
		restaurants: make([]recommend.Restaurant, 0, len(restaurants)),
		byID:        make(map[string]int, len(restaurants)),
		cities:      make(map[string][]string),
		byFilter:    make(map[string][]int),
		loadedAt:    time.Now(),
	}

	citySet := make(map[string]map[string]struct{})
	for i := range restaurants {
		r := restaurants[i]
		if _, dup := s.byID[r.BusinessID]; dup {
			continue
		}
		idx := len(s.restaurants)
		s.restaurants = append(s.restaurants, r)
		s.byID[r.BusinessID] = idx

		stateKey := filterKey(r.State, "")
		s.byFilter[stateKey] = append(s.byFilter[stateKey], idx)
		cityKey := filterKey(r.State, r.City)
		s.byFilter[cityKey] = append(s.byFilter[cityKey], idx)

		if citySet[r.State] == nil {
			citySet[r.State] = make(map[string]struct{})
		}
		citySet[r.State][r.City] = struct{}{}
	}

	for state, set := range citySet {
		s.states = append(s.states, state)
		cities := make([]string, 0, len(set))
		for city := range set {
			cities = append(cities, city)
		}
		sort.Strings(cities)
		s.cities[state] = cities
	}
	sort.Strings(s.states)

	return s
}

// Len returns the number of restaurants in the catalog.
func (s *Store) Len() int { return len(s.restaurants) }

// LoadedAt returns when the snapshot was loaded.
func (s *Store) LoadedAt() time.Time { return s.loadedAt }

// States returns all states in the catalog, sorted.
func (s *Store) States() []string {
	out := make([]string, len(s.states))
	copy(out, s.states)
	return out
}

// Cities returns the sorted cities of a state, or nil for an unknown one.
func (s *Store) Cities(state string) []string {
	cities, ok := s.cities[state]
	if !ok {
		return nil
	}
	out := make([]string, len(cities))
	copy(out, cities)
	return out
}

// HasState reports whether the state exists in the catalog. Matching is
// exact and case-sensitive, mirroring the snapshot values.
func (s *Store) HasState(state string) bool {
	_, ok := s.cities[state]
	return ok
}

// HasCity reports whether the city exists within the state.
func (s *Store) HasCity(state, city string) bool {
	_, ok := s.byFilter[filterKey(state, city)]
	return ok && city != ""
}

// RestaurantsIn returns the restaurants matching the state and optional
// city filter. The result is a fresh slice; callers may reorder it.
func (s *Store) RestaurantsIn(state, city string) []recommend.Restaurant {
	indexes := s.byFilter[filterKey(state, city)]
	if len(indexes) == 0 {
		return nil
	}
	out := make([]recommend.Restaurant, 0, len(indexes))
	for _, idx := range indexes {
		out = append(out, s.restaurants[idx])
	}
	return out
}

// Restaurant returns the restaurant with the given business ID.
func (s *Store) Restaurant(businessID string) (recommend.Restaurant, bool) {
	idx, ok := s.byID[businessID]
	if !ok {
		return recommend.Restaurant{}, false
	}
	return s.restaurants[idx], true
}

func filterKey(state, city string) string {
	return state + "\x00" + city
}

// splitCategories parses the snapshot's comma-separated category column.
func splitCategories(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
