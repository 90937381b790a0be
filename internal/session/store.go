// Platepick - Restaurant Discovery and Recommendation Service
// Copyright 2026 Platepick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/platepick/platepick

// Package session persists rating sessions in BadgerDB. A session records
// which restaurants a user was asked to rate and the ratings they have
// submitted so far; it survives server restarts and expires on a TTL.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/platepick/platepick/internal/recommend"
)

const sessionKeyPrefix = "rating_session:"

// Sentinel errors for session lookup.
var (
	ErrNotFound = errors.New("session not found")
	ErrExpired  = errors.New("session expired")
)

// Session is one user's rating round: the sampled restaurants they were
// shown and the ratings collected against them.
type Session struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	State     string            `json:"state"`
	City      string            `json:"city,omitempty"`
	SampledID []string          `json:"sampled_ids"`
	Ratings   recommend.Ratings `json:"ratings"`
	Confirmed bool              `json:"confirmed"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// Expired reports whether the session's TTL has elapsed.
func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}

// sampled reports whether the business ID was part of the session's sample.
func (s *Session) sampled(businessID string) bool {
	for _, id := range s.SampledID {
		if id == businessID {
			return true
		}
	}
	return false
}

// Store is a BadgerDB-backed session store.
type Store struct {
	db  *badger.DB
	ttl time.Duration
}

// Open opens a Badger database at path and wraps it in a Store. An empty
// path opens an in-memory database, which loses sessions on restart.
func Open(path string, ttl time.Duration) (*Store, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}
	return NewStore(db, ttl), nil
}

// NewStore wraps an existing Badger database. The caller owns db unless
// the Store was created through Open.
func NewStore(db *badger.DB, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Store{db: db, ttl: ttl}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Start creates a session for the sampled restaurants and persists it.
func (s *Store) Start(ctx context.Context, userID, state, city string, sampled []recommend.Restaurant) (*Session, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id required")
	}
	if len(sampled) == 0 {
		return nil, fmt.Errorf("no sampled restaurants")
	}

	ids := make([]string, len(sampled))
	for i := range sampled {
		ids[i] = sampled[i].BusinessID
	}

	now := time.Now()
	sess := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		State:     state,
		City:      city,
		SampledID: ids,
		Ratings:   make(recommend.Ratings),
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.update(func(txn *badger.Txn) error {
		return putTxn(txn, sess)
	}); err != nil {
		return nil, err
	}
	return sess, nil
}

// Get retrieves a session by ID. Expired sessions return ErrExpired.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	var sess *Session

	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		sess, err = getTxn(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// PutRatings merges ratings into the session. Every rating must target a
// restaurant from the session's sample and carry an in-range score;
// violations fail with *recommend.MalformedRatingError and nothing is
// stored. Re-rating a sampled restaurant overwrites the previous score.
// Read, merge and write happen in one transaction, so concurrent calls
// against the same session never drop a merge.
func (s *Store) PutRatings(ctx context.Context, id string, ratings recommend.Ratings) (*Session, error) {
	var sess *Session

	err := s.update(func(txn *badger.Txn) error {
		var err error
		sess, err = getTxn(txn, id)
		if err != nil {
			return err
		}

		for businessID, score := range ratings {
			if score < recommend.MinRating || score > recommend.MaxRating {
				return &recommend.MalformedRatingError{
					BusinessID: businessID,
					Score:      score,
					Reason:     fmt.Sprintf("score outside [%d, %d]", recommend.MinRating, recommend.MaxRating),
				}
			}
			if !sess.sampled(businessID) {
				return &recommend.MalformedRatingError{
					BusinessID: businessID,
					Score:      score,
					Reason:     "restaurant was not part of the rating sample",
				}
			}
		}

		for businessID, score := range ratings {
			sess.Ratings[businessID] = score
		}
		sess.UpdatedAt = time.Now()
		return putTxn(txn, sess)
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// Confirm marks the session's ratings as final. Confirming twice is a
// no-op; further PutRatings calls still work, the flag just records that
// the user finished the rating round at least once.
func (s *Store) Confirm(ctx context.Context, id string) (*Session, error) {
	var sess *Session

	err := s.update(func(txn *badger.Txn) error {
		var err error
		sess, err = getTxn(txn, id)
		if err != nil || sess.Confirmed {
			return err
		}
		sess.Confirmed = true
		sess.UpdatedAt = time.Now()
		return putTxn(txn, sess)
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(sessionKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// update runs fn in a read-write transaction, retrying when Badger's
// optimistic concurrency control aborts it with ErrConflict.
func (s *Store) update(fn func(txn *badger.Txn) error) error {
	for {
		err := s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
}

// getTxn reads and decodes a session inside txn.
func getTxn(txn *badger.Txn, id string) (*Session, error) {
	item, err := txn.Get([]byte(sessionKeyPrefix + id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var sess Session
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &sess)
	}); err != nil {
		return nil, err
	}
	if sess.Expired() {
		return nil, ErrExpired
	}
	return &sess, nil
}

// putTxn persists the session inside txn with the remaining TTL as the
// Badger entry TTL, so Badger reclaims expired sessions without a sweeper.
func putTxn(txn *badger.Txn, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return ErrExpired
	}

	entry := badger.NewEntry([]byte(sessionKeyPrefix+sess.ID), data).WithTTL(ttl)
	return txn.SetEntry(entry)
}
