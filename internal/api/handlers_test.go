// Platepick - Restaurant Discovery and Recommendation Service
// Copyright 2026 Platepick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/platepick/platepick

package api

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platepick/platepick/internal/config"
	"github.com/platepick/platepick/internal/corpus"
	"github.com/platepick/platepick/internal/models"
	"github.com/platepick/platepick/internal/recommend"
	"github.com/platepick/platepick/internal/session"
)

func testRestaurants() []recommend.Restaurant {
	out := []recommend.Restaurant{
		{BusinessID: "r1", Name: "Taqueria Uno", State: "Arizona", City: "Phoenix", Categories: []string{"Mexican", "Tacos"}, Stars: 4.0, ReviewCount: 120},
		{BusinessID: "r2", Name: "Sushi Two", State: "Arizona", City: "Phoenix", Categories: []string{"Japanese", "Sushi"}, Stars: 4.5, ReviewCount: 80},
		{BusinessID: "r3", Name: "Cantina Tres", State: "Arizona", City: "Phoenix", Categories: []string{"Mexican", "Bar"}, Stars: 3.0, ReviewCount: 45},
		{BusinessID: "r4", Name: "Sushi Yon", State: "Arizona", City: "Tempe", Categories: []string{"Japanese", "Ramen"}, Stars: 5.0, ReviewCount: 200},
	}
	// Enough Phoenix rows for pagination.
	for i := 0; i < 20; i++ {
		out = append(out, recommend.Restaurant{
			BusinessID: fmt.Sprintf("px%02d", i),
			Name:       fmt.Sprintf("Phoenix Spot %d", i),
			State:      "Arizona",
			City:       "Phoenix",
			Categories: []string{"American"},
			Stars:      3.0 + float64(i%4)*0.5,
		})
	}
	return out
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		API:       config.APIConfig{DefaultPageSize: 10, MaxPageSize: 50},
		Recommend: *recommend.DefaultConfig(),
		Security:  config.SecurityConfig{RateLimitDisabled: true, CORSOrigins: []string{"*"}},
	}

	store := corpus.New(testRestaurants())
	engine, err := recommend.NewEngine(&cfg.Recommend, store, zerolog.Nop())
	require.NoError(t, err)
	sampler := recommend.NewSampler(store, cfg.Recommend.Sampler, cfg.Recommend.Seed)

	sessions, err := session.Open("", time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sessions.Close() })

	handler := NewHandler(cfg, store, sampler, engine, sessions, nil)
	srv := httptest.NewServer(NewRouter(cfg, handler).Setup())
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body interface{}) (*http.Response, *models.APIResponse) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var envelope models.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return resp, &envelope
}

func dataMap(t *testing.T, envelope *models.APIResponse) map[string]interface{} {
	t.Helper()
	m, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok, "data is not an object: %T", envelope.Data)
	return m
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, envelope := doJSON(t, http.MethodGet, srv.URL+"/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", envelope.Status)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	data := dataMap(t, envelope)
	assert.Equal(t, "ok", data["status"])
	assert.EqualValues(t, 24, data["restaurants"])
}

func TestStatesAndCities(t *testing.T) {
	srv := newTestServer(t)

	_, envelope := doJSON(t, http.MethodGet, srv.URL+"/api/v1/corpus/states", nil)
	data := dataMap(t, envelope)
	assert.Equal(t, []interface{}{"Arizona"}, data["states"])

	_, envelope = doJSON(t, http.MethodGet, srv.URL+"/api/v1/corpus/states/Arizona/cities", nil)
	data = dataMap(t, envelope)
	assert.Equal(t, []interface{}{"Phoenix", "Tempe"}, data["cities"])
}

func TestCitiesUnknownState(t *testing.T) {
	srv := newTestServer(t)

	resp, envelope := doJSON(t, http.MethodGet, srv.URL+"/api/v1/corpus/states/Nevada/cities", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "INVALID_FILTER", envelope.Error.Code)
}

func createSession(t *testing.T, srv *httptest.Server, body map[string]interface{}) (string, *models.APIResponse) {
	t.Helper()
	resp, envelope := doJSON(t, http.MethodPost, srv.URL+"/api/v1/sessions", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, "error: %+v", envelope.Error)
	data := dataMap(t, envelope)
	id, _ := data["session_id"].(string)
	require.NotEmpty(t, id)
	return id, envelope
}

func TestCreateSession(t *testing.T) {
	srv := newTestServer(t)

	_, envelope := createSession(t, srv, map[string]interface{}{
		"user_id": "u1", "state": "Arizona", "city": "Phoenix", "size": 5,
	})
	data := dataMap(t, envelope)
	restaurants, ok := data["restaurants"].([]interface{})
	require.True(t, ok)
	assert.Len(t, restaurants, 5)

	for _, item := range restaurants {
		r := item.(map[string]interface{})
		assert.Equal(t, "Phoenix", r["city"])
	}
}

func TestCreateSessionValidation(t *testing.T) {
	srv := newTestServer(t)

	resp, envelope := doJSON(t, http.MethodPost, srv.URL+"/api/v1/sessions",
		map[string]interface{}{"state": "Arizona"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)

	resp, envelope = doJSON(t, http.MethodPost, srv.URL+"/api/v1/sessions",
		map[string]interface{}{"user_id": "u1", "state": "Nevada"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "INVALID_FILTER", envelope.Error.Code)
}

func TestGetSessionMissing(t *testing.T) {
	srv := newTestServer(t)

	resp, envelope := doJSON(t, http.MethodGet, srv.URL+"/api/v1/sessions/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "NOT_FOUND", envelope.Error.Code)
}

func TestPutRatings(t *testing.T) {
	srv := newTestServer(t)
	id, envelope := createSession(t, srv, map[string]interface{}{
		"user_id": "u1", "state": "Arizona", "size": 5,
	})

	data := dataMap(t, envelope)
	sampled := data["restaurants"].([]interface{})
	first := sampled[0].(map[string]interface{})["business_id"].(string)

	resp, envelope := doJSON(t, http.MethodPut, srv.URL+"/api/v1/sessions/"+id+"/ratings",
		map[string]interface{}{"ratings": map[string]int{first: 5}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ratings := dataMap(t, envelope)["ratings"].(map[string]interface{})
	assert.EqualValues(t, 5, ratings[first])
}

func TestPutRatingsRejectsOutsideSample(t *testing.T) {
	srv := newTestServer(t)
	id, _ := createSession(t, srv, map[string]interface{}{
		"user_id": "u1", "state": "Arizona", "city": "Tempe",
	})

	// r1 is in Phoenix, never part of a Tempe sample.
	resp, envelope := doJSON(t, http.MethodPut, srv.URL+"/api/v1/sessions/"+id+"/ratings",
		map[string]interface{}{"ratings": map[string]int{"r1": 4}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "MALFORMED_RATING", envelope.Error.Code)
}

func TestRecommendationsFlow(t *testing.T) {
	srv := newTestServer(t)
	id, envelope := createSession(t, srv, map[string]interface{}{
		"user_id": "u1", "state": "Arizona", "size": 5,
	})

	sampled := dataMap(t, envelope)["restaurants"].([]interface{})
	rated := sampled[0].(map[string]interface{})["business_id"].(string)

	_, _ = doJSON(t, http.MethodPut, srv.URL+"/api/v1/sessions/"+id+"/ratings",
		map[string]interface{}{"ratings": map[string]int{rated: 5}})

	resp, envelope := doJSON(t, http.MethodPost,
		srv.URL+"/api/v1/sessions/"+id+"/recommendations?page=1&size=10", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "error: %+v", envelope.Error)

	data := dataMap(t, envelope)
	restaurants := data["restaurants"].([]interface{})
	assert.Len(t, restaurants, 10)
	for _, item := range restaurants {
		sr := item.(map[string]interface{})["restaurant"].(map[string]interface{})
		assert.NotEqual(t, rated, sr["business_id"], "rated restaurants are excluded")
	}

	page := data["page"].(map[string]interface{})
	assert.EqualValues(t, 1, page["page"])
	assert.EqualValues(t, 23, page["total_items"], "24 restaurants minus the rated one")
	assert.EqualValues(t, 3, page["total_pages"])
	assert.NotEmpty(t, page["labels"])
	assert.Equal(t, false, data["cold_start"])
}

func TestRecommendationsPageOutOfRange(t *testing.T) {
	srv := newTestServer(t)
	id, _ := createSession(t, srv, map[string]interface{}{
		"user_id": "u1", "state": "Arizona",
	})

	resp, envelope := doJSON(t, http.MethodPost,
		srv.URL+"/api/v1/sessions/"+id+"/recommendations?page=99&size=10", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := dataMap(t, envelope)
	assert.Empty(t, data["restaurants"])
	page := data["page"].(map[string]interface{})
	assert.EqualValues(t, 99, page["page"])
	assert.EqualValues(t, 3, page["total_pages"])
}

func TestRecommendationsColdStart(t *testing.T) {
	srv := newTestServer(t)
	id, _ := createSession(t, srv, map[string]interface{}{
		"user_id": "u1", "state": "Arizona",
	})

	resp, envelope := doJSON(t, http.MethodPost,
		srv.URL+"/api/v1/sessions/"+id+"/recommendations", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, dataMap(t, envelope)["cold_start"])
}

func TestSimilar(t *testing.T) {
	srv := newTestServer(t)

	resp, envelope := doJSON(t, http.MethodGet, srv.URL+"/api/v1/businesses/r2/similar?k=5", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	similar := dataMap(t, envelope)["similar"].([]interface{})
	require.NotEmpty(t, similar)
	top := similar[0].(map[string]interface{})["restaurant"].(map[string]interface{})
	assert.Equal(t, "r4", top["business_id"])
}

func TestBusinessEndpointsWithoutUpstream(t *testing.T) {
	srv := newTestServer(t)

	resp, envelope := doJSON(t, http.MethodGet, srv.URL+"/api/v1/businesses/r1", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "UPSTREAM_ERROR", envelope.Error.Code)

	resp, envelope = doJSON(t, http.MethodGet, srv.URL+"/api/v1/businesses/unknown", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "NOT_FOUND", envelope.Error.Code)
}
