package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infralogger "github.com/jonesrussell/north-cloud/link-review/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/link-review/internal/api"
	"github.com/jonesrussell/north-cloud/link-review/internal/config"
	"github.com/jonesrussell/north-cloud/link-review/internal/domain"
	"github.com/jonesrussell/north-cloud/link-review/internal/review"
	"github.com/jonesrussell/north-cloud/link-review/internal/store"
	"github.com/jonesrussell/north-cloud/link-review/internal/telemetry"
)

type stubSource struct {
	err error
}

func (s stubSource) Name() string { return "stub" }

func (s stubSource) Fetch(context.Context) ([]domain.LinkRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []domain.LinkRecord{{ID: 1, Link: "https://a.example", Category: domain.CategoryOther, Status: domain.StatusUnverified}}, nil
}

func newServer(t *testing.T, src stubSource) http.Handler {
	t.Helper()
	cfg := &config.Config{}
	config.SetDefaults(cfg)

	tp := telemetry.NewProvider(prometheus.NewRegistry())
	svc := review.NewService(src, store.NewMemoryOverrides(), store.NewMemoryHistory(nil), infralogger.NewNop(),
		review.WithTelemetry(tp))
	return api.NewServer(cfg, api.Deps{
		Service:   svc,
		Telemetry: tp,
		Logger:    infralogger.NewNop(),
	}).Router()
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
	return w
}

func TestHealth_ReportsSource(t *testing.T) {
	w := get(newServer(t, stubSource{}), "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status string `json:"status"`
		Checks map[string]struct {
			Status string `json:"status"`
		} `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "healthy", body.Checks["source"].Status)
	assert.NotContains(t, body.Checks, "event_stream")
}

func TestHealth_SourceDownDegrades(t *testing.T) {
	w := get(newServer(t, stubSource{err: errors.New("refused")}), "/health")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)
}

func TestHealth_EventStreamDownDegrades(t *testing.T) {
	cfg := &config.Config{}
	config.SetDefaults(cfg)
	tp := telemetry.NewProvider(prometheus.NewRegistry())
	svc := review.NewService(stubSource{}, store.NewMemoryOverrides(), store.NewMemoryHistory(nil), infralogger.NewNop())

	h := api.NewServer(cfg, api.Deps{
		Service:     svc,
		StreamCheck: func() error { return errors.New("connection refused") },
		Telemetry:   tp,
		Logger:      infralogger.NewNop(),
	}).Router()

	w := get(h, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status string `json:"status"`
		Checks map[string]struct {
			Status string `json:"status"`
		} `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "healthy", body.Checks["source"].Status)
	assert.Equal(t, "degraded", body.Checks["event_stream"].Status)
}

func TestRoutes(t *testing.T) {
	h := newServer(t, stubSource{})

	links := get(h, "/api/v1/links")
	require.Equal(t, http.StatusOK, links.Code)
	assert.Equal(t, "no-store", links.Header().Get("Cache-Control"))

	metrics := get(h, "/metrics")
	require.Equal(t, http.StatusOK, metrics.Code)
	assert.Contains(t, metrics.Body.String(), "link_review_source_fetches_total")
	assert.Contains(t, metrics.Body.String(), `link_review_http_requests_total{code="200",method="GET",route="/api/v1/links"} 1`)

	assert.Equal(t, http.StatusServiceUnavailable, get(h, "/api/v1/events").Code)
}
