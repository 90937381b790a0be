// Platepick - Restaurant Discovery and Recommendation Service
// Copyright 2026 Platepick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/platepick/platepick

package business

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
)

// Config configures the upstream directory client.
type Config struct {
	// BaseURL is the upstream directory root, e.g. https://directory.example.com.
	BaseURL string `json:"base_url" koanf:"base_url"`

	// APIKey is sent as a bearer token on JSON endpoints.
	APIKey string `json:"api_key" koanf:"api_key"`

	// Timeout bounds a single upstream request. Default: 10s.
	Timeout time.Duration `json:"timeout" koanf:"timeout"`

	// BreakerTimeout is how long an open breaker stays open. Default: 30s.
	BreakerTimeout time.Duration `json:"breaker_timeout" koanf:"breaker_timeout"`

	// BreakerFailures is the consecutive-failure count that opens a
	// breaker. Default: 5.
	BreakerFailures uint32 `json:"breaker_failures" koanf:"breaker_failures"`
}

// Client fetches restaurant detail from the upstream directory. Info and
// review lookups fail independently: each has its own circuit breaker.
type Client struct {
	cfg       Config
	http      *http.Client
	logger    zerolog.Logger
	infoCB    *gobreaker.CircuitBreaker[*BusinessInfo]
	reviewsCB *gobreaker.CircuitBreaker[[]Review]
}

// NewClient creates an upstream directory client.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewClient(cfg Config, logger zerolog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("business.base_url not set")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid business.base_url: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = 30 * time.Second
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}

	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger.With().Str("component", "business").Logger(),
	}
	c.infoCB = gobreaker.NewCircuitBreaker[*BusinessInfo](c.breakerSettings("business-info"))
	c.reviewsCB = gobreaker.NewCircuitBreaker[[]Review](c.breakerSettings("business-reviews"))
	return c, nil
}

func (c *Client) breakerSettings(name string) gobreaker.Settings {
	return gobreaker.Settings{
		Name:    name,
		Timeout: c.cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= c.cfg.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	}
}

// Info fetches the detail record for one restaurant from the upstream
// JSON endpoint.
func (c *Client) Info(ctx context.Context, businessID string) (*BusinessInfo, error) {
	if businessID == "" {
		return nil, fmt.Errorf("business_id required")
	}

	return c.infoCB.Execute(func() (*BusinessInfo, error) {
		endpoint := fmt.Sprintf("%s/v3/businesses/%s", c.cfg.BaseURL, url.PathEscape(businessID))
		body, err := c.fetch(ctx, endpoint)
		if err != nil {
			return nil, err
		}
		defer body.Close() //nolint:errcheck // read-only response body

		var info BusinessInfo
		if err := json.NewDecoder(body).Decode(&info); err != nil {
			return nil, fmt.Errorf("failed to decode business info: %w", err)
		}
		if info.BusinessID == "" {
			info.BusinessID = businessID
		}
		return &info, nil
	})
}

// Reviews fetches and parses the reviews page for one restaurant.
func (c *Client) Reviews(ctx context.Context, businessID string) ([]Review, error) {
	if businessID == "" {
		return nil, fmt.Errorf("business_id required")
	}

	return c.reviewsCB.Execute(func() ([]Review, error) {
		endpoint := fmt.Sprintf("%s/biz/%s/reviews", c.cfg.BaseURL, url.PathEscape(businessID))
		body, err := c.fetch(ctx, endpoint)
		if err != nil {
			return nil, err
		}
		defer body.Close() //nolint:errcheck // read-only response body

		reviews, err := parseReviews(body)
		if err != nil {
			return nil, fmt.Errorf("failed to parse reviews for %s: %w", businessID, err)
		}
		return reviews, nil
	})
}

// fetch issues one GET and returns the body for 200 responses.
func (c *Client) fetch(ctx context.Context, endpoint string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	req.Header.Set("Accept", "application/json, text/html")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close() //nolint:errcheck,gosec // error path
		return nil, fmt.Errorf("upstream returned status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// parseReviews extracts reviews from the upstream HTML. Each review sits
// in a .review element with .review-user, .review-rating (data-rating),
// .review-date and .review-text children. Malformed entries are skipped
// rather than failing the page.
func parseReviews(r io.Reader) ([]Review, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	var reviews []Review
	doc.Find(".review").Each(func(_ int, sel *goquery.Selection) {
		review := Review{
			User:        strings.TrimSpace(sel.Find(".review-user").First().Text()),
			TimeCreated: strings.TrimSpace(sel.Find(".review-date").First().Text()),
			Text:        strings.TrimSpace(sel.Find(".review-text").First().Text()),
		}
		if raw, ok := sel.Find(".review-rating").First().Attr("data-rating"); ok {
			if rating, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
				review.Rating = rating
			}
		}
		if review.User == "" && review.Text == "" {
			return
		}
		reviews = append(reviews, review)
	})
	return reviews, nil
}
