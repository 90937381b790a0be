// Platepick - Restaurant Discovery and Recommendation Service
// Copyright 2026 Platepick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/platepick/platepick

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/platepick/platepick/internal/business"
	"github.com/platepick/platepick/internal/config"
	"github.com/platepick/platepick/internal/corpus"
	"github.com/platepick/platepick/internal/logging"
	"github.com/platepick/platepick/internal/metrics"
	"github.com/platepick/platepick/internal/models"
	"github.com/platepick/platepick/internal/paginate"
	"github.com/platepick/platepick/internal/recommend"
	"github.com/platepick/platepick/internal/session"
)

// Handler implements all HTTP endpoints.
type Handler struct {
	cfg      *config.Config
	corpus   *corpus.Store
	sampler  *recommend.Sampler
	engine   *recommend.Engine
	sessions *session.Store
	business *business.Client // nil when no upstream is configured
}

// NewHandler wires the endpoint handlers. business may be nil; the
// business endpoints then answer 503.
func NewHandler(cfg *config.Config, store *corpus.Store, sampler *recommend.Sampler,
	engine *recommend.Engine, sessions *session.Store, biz *business.Client) *Handler {
	return &Handler{
		cfg:      cfg,
		corpus:   store,
		sampler:  sampler,
		engine:   engine,
		sessions: sessions,
		business: biz,
	}
}

// Health reports liveness and corpus dimensions.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	respondSuccess(w, r, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"restaurants": h.corpus.Len(),
		"states":      len(h.corpus.States()),
		"loaded_at":   h.corpus.LoadedAt(),
	}, started)
}

// States lists the states available for filtering.
func (h *Handler) States(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	respondSuccess(w, r, http.StatusOK, map[string]interface{}{
		"states": h.corpus.States(),
	}, started)
}

// Cities lists the cities of one state.
func (h *Handler) Cities(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	state := chi.URLParam(r, "state")

	cities := h.corpus.Cities(state)
	if cities == nil {
		respondDomainError(w, &recommend.InvalidFilterError{Field: "state", Value: state})
		return
	}

	respondSuccess(w, r, http.StatusOK, map[string]interface{}{
		"state":  state,
		"cities": cities,
	}, started)
}

// createSessionRequest is the POST /sessions body.
type createSessionRequest struct {
	UserID string `json:"user_id" validate:"required,max=128"`
	State  string `json:"state" validate:"required,max=64"`
	City   string `json:"city" validate:"omitempty,max=64"`
	Size   int    `json:"size" validate:"gte=0,lte=100"`
}

// sessionResponse is the wire shape of a rating session.
type sessionResponse struct {
	SessionID   string                 `json:"session_id"`
	UserID      string                 `json:"user_id"`
	State       string                 `json:"state"`
	City        string                 `json:"city,omitempty"`
	Restaurants []recommend.Restaurant `json:"restaurants,omitempty"`
	Ratings     recommend.Ratings      `json:"ratings"`
	ExpiresAt   time.Time              `json:"expires_at"`
}

func (h *Handler) sessionPayload(sess *session.Session, sampled []recommend.Restaurant) sessionResponse {
	return sessionResponse{
		SessionID:   sess.ID,
		UserID:      sess.UserID,
		State:       sess.State,
		City:        sess.City,
		Restaurants: sampled,
		Ratings:     sess.Ratings,
		ExpiresAt:   sess.ExpiresAt,
	}
}

// CreateSession samples restaurants for the filter and opens a rating
// session over them.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body", nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	sampled, err := h.sampler.Sample(req.State, req.City, req.Size)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	sess, err := h.sessions.Start(r.Context(), req.UserID, req.State, req.City, sampled)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	metrics.SessionsStarted.Inc()

	logger := logging.Ctx(r.Context())
	logger.Info().
		Str("session_id", sess.ID).
		Str("state", sanitizeLogValue(req.State)).
		Int("sampled", len(sampled)).
		Msg("rating session started")

	respondSuccess(w, r, http.StatusCreated, h.sessionPayload(sess, sampled), started)
}

// GetSession returns a session with its sampled restaurants resolved.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	sess, err := h.sessions.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	sampled := make([]recommend.Restaurant, 0, len(sess.SampledID))
	for _, id := range sess.SampledID {
		if restaurant, ok := h.corpus.Restaurant(id); ok {
			sampled = append(sampled, restaurant)
		}
	}

	respondSuccess(w, r, http.StatusOK, h.sessionPayload(sess, sampled), started)
}

// ratingsRequest is the PUT /sessions/{id}/ratings body.
type ratingsRequest struct {
	Ratings recommend.Ratings `json:"ratings" validate:"required,min=1"`
}

// PutRatings merges submitted ratings into the session.
func (h *Handler) PutRatings(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req ratingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body", nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	sess, err := h.sessions.PutRatings(r.Context(), chi.URLParam(r, "sessionID"), req.Ratings)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	metrics.SessionRatings.Add(float64(len(req.Ratings)))

	respondSuccess(w, r, http.StatusOK, h.sessionPayload(sess, nil), started)
}

// recommendationsResponse is one page of recommendations.
type recommendationsResponse struct {
	Restaurants     []recommend.ScoredRestaurant `json:"restaurants"`
	Page            models.PageInfo              `json:"page"`
	TotalCandidates int                          `json:"total_candidates"`
	ColdStart       bool                         `json:"cold_start"`
	CacheHit        bool                         `json:"cache_hit"`
}

// Recommendations computes recommendations for a session and returns the
// requested page. Recommendations cover the whole state by default;
// scope=city restricts them to the session's city filter.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	sess, err := h.sessions.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	city := ""
	if r.URL.Query().Get("scope") == "city" {
		city = sess.City
	}

	page := getIntParam(r, "page", 1)
	size := getIntParam(r, "size", h.cfg.API.DefaultPageSize)
	if size < 1 {
		size = h.cfg.API.DefaultPageSize
	}
	if size > h.cfg.API.MaxPageSize {
		size = h.cfg.API.MaxPageSize
	}

	resp, err := h.engine.Recommend(r.Context(), recommend.Request{
		UserID:    sess.UserID,
		State:     sess.State,
		City:      city,
		Ratings:   sess.Ratings,
		RequestID: logging.RequestIDFromContext(r.Context()),
	})
	metrics.RecordRecommendation(resp != nil && resp.Metadata.ColdStart,
		totalCandidates(resp), time.Since(started), err)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	// Requesting recommendations closes the rating round. The flag is
	// advisory; losing it on a storage error is not worth failing the
	// request over.
	if _, err := h.sessions.Confirm(r.Context(), sess.ID); err != nil {
		logger := logging.Ctx(r.Context())
		logger.Warn().Err(err).Str("session_id", sess.ID).
			Msg("Failed to confirm session")
	}

	paged := paginate.WithLabels(
		paginate.Of(resp.Restaurants, page, size),
		func(sr recommend.ScoredRestaurant) string { return sr.Restaurant.City },
	)

	respondSuccess(w, r, http.StatusOK, recommendationsResponse{
		Restaurants: paged.Items,
		Page: models.PageInfo{
			Page:       paged.Number,
			Size:       paged.Size,
			TotalItems: paged.TotalItems,
			TotalPages: paged.TotalPages,
			Labels:     paged.Labels,
		},
		TotalCandidates: resp.TotalCandidates,
		ColdStart:       resp.Metadata.ColdStart,
		CacheHit:        resp.Metadata.CacheHit,
	}, started)
}

func totalCandidates(resp *recommend.Response) int {
	if resp == nil {
		return 0
	}
	return resp.TotalCandidates
}

// Similar lists restaurants with overlapping categories.
func (h *Handler) Similar(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	businessID := chi.URLParam(r, "businessID")

	similar, err := h.engine.Similar(businessID, getIntParam(r, "k", 10))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondSuccess(w, r, http.StatusOK, map[string]interface{}{
		"business_id": businessID,
		"similar":     similar,
	}, started)
}

// BusinessInfo proxies the upstream detail record for one restaurant.
func (h *Handler) BusinessInfo(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	businessID := chi.URLParam(r, "businessID")

	if _, ok := h.corpus.Restaurant(businessID); !ok {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "restaurant not found", nil)
		return
	}
	if h.business == nil {
		respondError(w, http.StatusServiceUnavailable, "UPSTREAM_ERROR", "business lookups not configured", nil)
		return
	}

	info, err := h.business.Info(r.Context(), businessID)
	metrics.RecordBusinessLookup("info", time.Since(started), err)
	if err != nil {
		respondError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "business lookup failed", err)
		return
	}

	respondSuccess(w, r, http.StatusOK, info, started)
}

// BusinessReviews proxies the upstream reviews for one restaurant.
func (h *Handler) BusinessReviews(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	businessID := chi.URLParam(r, "businessID")

	if _, ok := h.corpus.Restaurant(businessID); !ok {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "restaurant not found", nil)
		return
	}
	if h.business == nil {
		respondError(w, http.StatusServiceUnavailable, "UPSTREAM_ERROR", "business lookups not configured", nil)
		return
	}

	reviews, err := h.business.Reviews(r.Context(), businessID)
	metrics.RecordBusinessLookup("reviews", time.Since(started), err)
	if err != nil {
		respondError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "review lookup failed", err)
		return
	}

	respondSuccess(w, r, http.StatusOK, map[string]interface{}{
		"business_id": businessID,
		"reviews":     reviews,
	}, started)
}
