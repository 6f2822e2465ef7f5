package telemetry_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/link-review/internal/telemetry"
)

func TestProvider_RecordsAndServes(t *testing.T) {
	t.Parallel()

	p := telemetry.NewProvider(prometheus.NewRegistry())
	p.RecordCommand("apply_patch", telemetry.OutcomeAccepted)
	p.RecordCommand("apply_patch", telemetry.OutcomeAccepted)
	p.RecordAuditEvent("status")
	p.RecordSourceFetch("csv", 10*time.Millisecond, 42, nil)
	p.RecordSourceFetch("csv", time.Millisecond, 0, errors.New("boom"))

	assert.InDelta(t, 2, testutil.ToFloat64(p.Metrics.Commands.WithLabelValues("apply_patch", "accepted")), 0)
	assert.InDelta(t, 42, testutil.ToFloat64(p.Metrics.SourceRecords), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(p.Metrics.SourceFetches.WithLabelValues("csv", "error")), 0)

	srv := httptest.NewServer(p.Handler())
	defer srv.Close()

	res, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "link_review_commands_total"))
}

func TestProvider_NilIsNoop(t *testing.T) {
	t.Parallel()

	var p *telemetry.Provider
	p.RecordCommand("x", "y")
	p.RecordAssistant("ok")
	p.SetOverriddenRecords(3)
	_, span := p.StartSpan(context.Background(), "noop")
	span.End()
}
