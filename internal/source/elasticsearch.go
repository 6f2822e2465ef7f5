package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"

	infralogger "github.com/jonesrussell/north-cloud/link-review/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/link-review/internal/domain"
)

const (
	defaultIndex      = "link_classifications"
	defaultMaxRecords = 10000
)

// linkDocument is a classified link as indexed by the crawler pipeline.
type linkDocument struct {
	LinkID     int64           `json:"link_id"`
	URL        string          `json:"url"`
	Label      string          `json:"label"`
	Keywords   json.RawMessage `json:"keywords"`
	Confidence *float64        `json:"confidence"`
	Status     string          `json:"status"`
	Reasoning  string          `json:"reasoning"`
	Image      string          `json:"image"`
	Flagged    bool            `json:"flagged"`
	DetectedAt string          `json:"detected_at"`
	UpdatedAt  string          `json:"updated_at"`
}

// ElasticsearchSource reads classified links from an index.
type ElasticsearchSource struct {
	client      *es.Client
	index       string
	maxRecords  int
	categorizer *Categorizer
	now         func() time.Time
	log         infralogger.Logger
}

// NewElasticsearch builds an ElasticsearchSource. Empty index and
// non-positive maxRecords take defaults.
func NewElasticsearch(client *es.Client, index string, maxRecords int, categorizer *Categorizer, log infralogger.Logger) *ElasticsearchSource {
	if index == "" {
		index = defaultIndex
	}
	if maxRecords <= 0 {
		maxRecords = defaultMaxRecords
	}
	return &ElasticsearchSource{
		client:      client,
		index:       index,
		maxRecords:  maxRecords,
		categorizer: categorizer,
		now:         time.Now,
		log:         log,
	}
}

// Name identifies the adapter.
func (s *ElasticsearchSource) Name() string { return DriverElasticsearch }

// Fetch searches the index ordered by link id.
func (s *ElasticsearchSource) Fetch(ctx context.Context) ([]domain.LinkRecord, error) {
	query := map[string]any{
		"size":  s.maxRecords,
		"query": map[string]any{"match_all": map[string]any{}},
		"sort":  []any{map[string]any{"link_id": map[string]any{"order": "asc", "unmapped_type": "long"}}},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch returned error [%d]: %s", res.StatusCode, string(body))
	}

	var esResponse struct {
		Hits struct {
			Hits []struct {
				ID     string       `json:"_id"`
				Source linkDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err = json.NewDecoder(res.Body).Decode(&esResponse); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	today := domain.DateOf(s.now())
	out := make([]domain.LinkRecord, 0, len(esResponse.Hits.Hits))
	seen := make(map[int64]struct{}, len(esResponse.Hits.Hits))
	for _, hit := range esResponse.Hits.Hits {
		id := hit.Source.LinkID
		if id <= 0 {
			id, _ = strconv.ParseInt(hit.ID, 10, 64)
		}
		if _, dup := seen[id]; id <= 0 || dup {
			s.log.Warn("Skipping document without a usable link id",
				infralogger.String("index", s.index),
				infralogger.String("doc_id", hit.ID),
			)
			continue
		}
		seen[id] = struct{}{}
		out = append(out, s.toRecord(id, hit.Source, today))
	}
	return out, nil
}

func (s *ElasticsearchSource) toRecord(id int64, doc linkDocument, today domain.Date) domain.LinkRecord {
	category, ok := domain.ParseCategory(doc.Label)
	if !ok {
		category = s.categorizer.FromKeywords(keywordList(doc.Keywords))
	}

	confidence := DefaultConfidence
	if doc.Confidence != nil {
		v := *doc.Confidence
		if v > 0 && v <= 1 {
			v *= 100
		}
		confidence = clampPercent(v)
	}

	return domain.LinkRecord{
		ID:               id,
		Link:             doc.URL,
		Category:         category,
		Confidence:       confidence,
		Status:           parseStatusOr(doc.Status),
		DetectedDate:     parseDateOr(doc.DetectedAt, today),
		LastModifiedDate: parseDateOr(doc.UpdatedAt, today),
		Reasoning:        orDefault(doc.Reasoning, defaultReasoning),
		Image:            doc.Image,
		Flagged:          doc.Flagged,
	}
}

// keywordList accepts keywords indexed as an array or as one
// comma-separated string.
func keywordList(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, ",")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}
