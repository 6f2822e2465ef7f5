package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jonesrussell/north-cloud/link-review/infrastructure/circuitbreaker"
	infraerrors "github.com/jonesrussell/north-cloud/link-review/infrastructure/errors"
	infrahttp "github.com/jonesrussell/north-cloud/link-review/infrastructure/http"
	infralogger "github.com/jonesrussell/north-cloud/link-review/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/link-review/internal/domain"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	maxResponseBytes   = 32 << 20
)

// HTTPSource fetches records from a JSON upstream. It never retries; a
// circuit breaker fails fast while the upstream keeps failing.
type HTTPSource struct {
	url     string
	client  *http.Client
	breaker *circuitbreaker.Breaker
	now     func() time.Time
	log     infralogger.Logger
}

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithHTTPTimeout bounds each request. Zero keeps the default.
func WithHTTPTimeout(d time.Duration) HTTPOption {
	return func(s *HTTPSource) {
		if d > 0 {
			s.client.Timeout = d
		}
	}
}

// WithHTTPClient replaces the transport client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPSource) { s.client = c }
}

// WithBreaker replaces the default circuit breaker.
func WithBreaker(b *circuitbreaker.Breaker) HTTPOption {
	return func(s *HTTPSource) { s.breaker = b }
}

// NewHTTP builds an HTTPSource for url.
func NewHTTP(url string, log infralogger.Logger, opts ...HTTPOption) *HTTPSource {
	s := &HTTPSource{
		url:    url,
		client: infrahttp.NewClient(defaultHTTPTimeout),
		now:    time.Now,
		log:    log,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.breaker == nil {
		s.breaker = circuitbreaker.New(circuitbreaker.Config{
			OnStateChange: func(from, to circuitbreaker.State) {
				s.log.Warn("Record source circuit breaker changed state",
					infralogger.String("from", from.String()),
					infralogger.String("to", to.String()),
					infralogger.String("url", s.url),
				)
			},
		})
	}
	return s
}

// Name identifies the adapter.
func (s *HTTPSource) Name() string { return DriverHTTP }

// Fetch GETs the upstream and decodes its records.
func (s *HTTPSource) Fetch(ctx context.Context) ([]domain.LinkRecord, error) {
	var body []byte
	err := s.breaker.Execute(func() error {
		var fetchErr error
		body, fetchErr = s.get(ctx)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}
	return decodeUpstream(body, domain.DateOf(s.now()))
}

func (s *HTTPSource) get(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", s.url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if err = infraerrors.FromResponse(resp.StatusCode, body); err != nil {
		return nil, fmt.Errorf("request %s: %w", s.url, err)
	}
	return body, nil
}

// upstreamRecord accepts both this service's field names and the legacy
// crawler backend's.
type upstreamRecord struct {
	ID               int64    `json:"id"`
	Link             string   `json:"link"`
	URL              string   `json:"url"`
	Category         string   `json:"category"`
	Jenis            string   `json:"jenis"`
	Confidence       *float64 `json:"confidence"`
	Kepercayaan      *float64 `json:"kepercayaan"`
	Kepedean         *float64 `json:"kepedean"`
	Status           string   `json:"status"`
	DetectedDate     string   `json:"detectedDate"`
	Tanggal          string   `json:"tanggal"`
	LastModifiedDate string   `json:"lastModifiedDate"`
	LastModified     string   `json:"lastModified"`
	Reasoning        string   `json:"reasoning"`
	AdminReasoning   string   `json:"adminReasoning"`
	Image            string   `json:"image"`
	Flagged          bool     `json:"flagged"`
}

var errBadPayload = errors.New("upstream payload is neither an array nor an object with links")

func decodeUpstream(body []byte, today domain.Date) ([]domain.LinkRecord, error) {
	var items []upstreamRecord
	trimmed := bytes.TrimSpace(body)
	switch {
	case bytes.HasPrefix(trimmed, []byte("[")):
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decode records: %w", err)
		}
	case bytes.HasPrefix(trimmed, []byte("{")):
		var envelope struct {
			Links []upstreamRecord `json:"links"`
			Data  []upstreamRecord `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("decode records: %w", err)
		}
		items = envelope.Links
		if items == nil {
			items = envelope.Data
		}
		if items == nil {
			return nil, errBadPayload
		}
	default:
		return nil, errBadPayload
	}

	out := make([]domain.LinkRecord, 0, len(items))
	seen := make(map[int64]struct{}, len(items))
	for i, it := range items {
		if it.ID <= 0 {
			return nil, fmt.Errorf("record %d: invalid id %d", i, it.ID)
		}
		if _, dup := seen[it.ID]; dup {
			return nil, fmt.Errorf("record %d: duplicate id %d", i, it.ID)
		}
		seen[it.ID] = struct{}{}
		out = append(out, it.toRecord(today))
	}
	return out, nil
}

func (u upstreamRecord) toRecord(today domain.Date) domain.LinkRecord {
	return domain.LinkRecord{
		ID:               u.ID,
		Link:             first(u.Link, u.URL),
		Category:         parseCategoryOr(first(u.Category, u.Jenis), domain.CategoryGambling),
		Confidence:       upstreamConfidence(u.Confidence, u.Kepercayaan, u.Kepedean),
		Status:           parseStatusOr(u.Status),
		DetectedDate:     parseDateOr(first(u.DetectedDate, u.Tanggal), today),
		LastModifiedDate: parseDateOr(first(u.LastModifiedDate, u.LastModified), today),
		Reasoning:        orDefault(u.Reasoning, defaultReasoning),
		AdminReasoning:   u.AdminReasoning,
		Image:            u.Image,
		Flagged:          u.Flagged,
	}
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func upstreamConfidence(values ...*float64) int {
	for _, v := range values {
		if v != nil {
			return clampPercent(*v)
		}
	}
	return DefaultConfidence
}
