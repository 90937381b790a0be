// Platepick - Restaurant Discovery and Recommendation Service
// Copyright 2026 Platepick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/platepick/platepick

package business

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reviewsHTML = `<!DOCTYPE html>
<html><body>
<div class="review">
  <span class="review-user">Alice</span>
  <span class="review-rating" data-rating="4.5"></span>
  <span class="review-date">2026-08-01</span>
  <p class="review-text">Great tacos, would return.</p>
</div>
<div class="review">
  <span class="review-user">Bob</span>
  <span class="review-rating" data-rating="not-a-number"></span>
  <span class="review-date">2026-07-15</span>
  <p class="review-text">Slow service.</p>
</div>
<div class="review"></div>
</body></html>`

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{BaseURL: srv.URL, APIKey: "test-key"}, zerolog.Nop())
	require.NoError(t, err)
	return c
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(Config{}, zerolog.Nop())
	require.Error(t, err)
}

func TestInfo(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/v3/businesses/b1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "b1",
			"name": "Taqueria Uno",
			"display_phone": "(602) 555-0100",
			"url": "https://example.com/b1",
			"photos": ["https://img.example.com/1.jpg"],
			"hours": [{"day": 0, "start": "1100", "end": "2200", "is_overnight": false}],
			"is_closed": false
		}`))
	}))

	info, err := c.Info(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "Taqueria Uno", info.Name)
	assert.Equal(t, "(602) 555-0100", info.Phone)
	require.Len(t, info.Hours, 1)
	assert.Equal(t, 0, info.Hours[0].Day)
	assert.Equal(t, "1100", info.Hours[0].Start)
}

func TestInfoUpstreamError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))

	_, err := c.Info(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestInfoEmptyID(t *testing.T) {
	c := newTestClient(t, http.NotFoundHandler())
	_, err := c.Info(context.Background(), "")
	require.Error(t, err)
}

func TestReviews(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/biz/b1/reviews", r.URL.Path)
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(reviewsHTML))
	}))

	reviews, err := c.Reviews(context.Background(), "b1")
	require.NoError(t, err)
	require.Len(t, reviews, 2, "empty review blocks are skipped")

	assert.Equal(t, "Alice", reviews[0].User)
	assert.InDelta(t, 4.5, reviews[0].Rating, 1e-9)
	assert.Equal(t, "2026-08-01", reviews[0].TimeCreated)
	assert.Equal(t, "Great tacos, would return.", reviews[0].Text)

	// Unparseable rating degrades to zero, not an error.
	assert.Equal(t, "Bob", reviews[1].User)
	assert.Zero(t, reviews[1].Rating)
}

func TestParseReviewsEmptyPage(t *testing.T) {
	reviews, err := parseReviews(strings.NewReader("<html><body></body></html>"))
	require.NoError(t, err)
	assert.Empty(t, reviews)
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{
		BaseURL:         srv.URL,
		BreakerFailures: 2,
		BreakerTimeout:  time.Minute,
	}, zerolog.Nop())
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = c.Info(context.Background(), "b1")
		require.Error(t, err)
	}

	// Third call fails fast without reaching the upstream.
	_, err = c.Info(context.Background(), "b1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker is open")

	// The reviews breaker is independent and still closed.
	_, err = c.Reviews(context.Background(), "b1")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "circuit breaker is open")
}
