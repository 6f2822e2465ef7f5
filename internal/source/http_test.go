package source_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/link-review/infrastructure/circuitbreaker"
	infraerrors "github.com/jonesrussell/north-cloud/link-review/infrastructure/errors"
	infralogger "github.com/jonesrussell/north-cloud/link-review/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/link-review/internal/domain"
	"github.com/jonesrussell/north-cloud/link-review/internal/source"
)

func TestHTTPSource_LegacyBackendShape(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 5, "link": "https://judi.example", "jenis": "Judi", "kepercayaan": 88,
			 "status": "verified", "tanggal": "2026-09-30T08:00:00", "lastModified": "2026-10-01T09:00:00",
			 "modifiedBy": "admin", "reasoning": "", "image": "", "flagged": false},
			{"id": 6, "url": "https://scam.example", "category": "Fraud", "confidence": 64, "flagged": true}
		]`))
	}))
	t.Cleanup(srv.Close)

	src := source.NewHTTP(srv.URL, infralogger.NewNop())
	recs, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, int64(5), recs[0].ID)
	assert.Equal(t, domain.CategoryGambling, recs[0].Category)
	assert.Equal(t, 88, recs[0].Confidence)
	assert.Equal(t, domain.Date("2026-09-30"), recs[0].DetectedDate)
	assert.Equal(t, domain.Date("2026-10-01"), recs[0].LastModifiedDate)
	assert.Equal(t, "-", recs[0].Reasoning)

	assert.Equal(t, "https://scam.example", recs[1].Link)
	assert.Equal(t, domain.CategoryFraud, recs[1].Category)
	assert.True(t, recs[1].Flagged)
}

func TestHTTPSource_Envelope(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"links": [{"id": 1, "link": "https://a.example"}], "count": 1}`))
	}))
	t.Cleanup(srv.Close)

	recs, err := source.NewHTTP(srv.URL, infralogger.NewNop()).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)
}

func TestHTTPSource_Errors(t *testing.T) {
	t.Parallel()

	tests := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusInternalServerError) },
		"not json":     func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("<html>")) },
		"missing id":   func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`[{"link":"x"}]`)) },
		"duplicate id": func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`[{"id":1},{"id":1}]`)) },
	}
	for name, h := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(h)
			t.Cleanup(srv.Close)

			_, err := source.NewHTTP(srv.URL, infralogger.NewNop()).Fetch(context.Background())
			require.Error(t, err)
		})
	}
}

func TestHTTPSource_BreakerFailsFastWithoutRetrying(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	breaker := circuitbreaker.New(circuitbreaker.Config{FailureThreshold: 2, OpenTimeout: time.Hour})
	src := source.NewHTTP(srv.URL, infralogger.NewNop(), source.WithBreaker(breaker), source.WithHTTPTimeout(time.Second))

	for range 2 {
		_, err := src.Fetch(context.Background())
		require.Error(t, err)
	}
	assert.Equal(t, int32(2), calls.Load(), "one request per fetch, no retries")

	_, err := src.Fetch(context.Background())
	require.ErrorIs(t, err, circuitbreaker.ErrOpen)
	assert.Equal(t, int32(2), calls.Load())
}

func TestHTTPSource_CarriesUpstreamStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"crawler database is restarting"}`))
	}))
	t.Cleanup(srv.Close)

	_, err := source.NewHTTP(srv.URL, infralogger.NewNop()).Fetch(context.Background())

	code, ok := infraerrors.StatusCode(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, err.Error(), "crawler database is restarting")
}
