package source

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jonesrussell/north-cloud/link-review/internal/domain"
)

// Export defaults, matching what the crawling pipeline leaves blank.
const (
	DefaultConfidence = 90
	defaultReasoning  = "-"
)

type column int

const (
	colID column = iota
	colLink
	colCategory
	colConfidence
	colStatus
	colDetected
	colLastModified
	colReasoning
	colAdminReasoning
	colImage
	colFlagged
)

// headerAliases maps normalized export headers to columns. Indonesian
// headers come from legacy crawler exports.
var headerAliases = map[string]column{
	"id":               colID,
	"link":             colLink,
	"url":              colLink,
	"category":         colCategory,
	"jenis":            colCategory,
	"label":            colCategory,
	"confidence":       colConfidence,
	"kepedean":         colConfidence,
	"kepercayaan":      colConfidence,
	"status":           colStatus,
	"detecteddate":     colDetected,
	"tanggal":          colDetected,
	"lastmodified":     colLastModified,
	"lastmodifieddate": colLastModified,
	"reasoning":        colReasoning,
	"adminreasoning":   colAdminReasoning,
	"reasoningadmin":   colAdminReasoning,
	"image":            colImage,
	"flagged":          colFlagged,
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(h)
}

// tableMapper turns a header row plus data rows into LinkRecords. It is
// shared by the CSV and XLSX adapters.
type tableMapper struct {
	index map[column]int
}

func newTableMapper(header []string) (*tableMapper, error) {
	m := &tableMapper{index: make(map[column]int)}
	for i, h := range header {
		col, ok := headerAliases[normalizeHeader(h)]
		if !ok {
			continue
		}
		if _, dup := m.index[col]; !dup {
			m.index[col] = i
		}
	}
	if _, ok := m.index[colLink]; !ok {
		return nil, fmt.Errorf("header has no link or url column: %v", header)
	}
	return m, nil
}

func (m *tableMapper) cell(row []string, col column) string {
	i, ok := m.index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// mapRows converts data rows in order. Blank rows are skipped but still
// count toward the row-number id used when the export has no id column.
func (m *tableMapper) mapRows(rows [][]string, today domain.Date) ([]domain.LinkRecord, error) {
	out := make([]domain.LinkRecord, 0, len(rows))
	seen := make(map[int64]int, len(rows))
	for i, row := range rows {
		if blankRow(row) {
			continue
		}
		rec, err := m.mapRow(i+1, row, today)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		if prev, dup := seen[rec.ID]; dup {
			return nil, fmt.Errorf("row %d: duplicate id %d (first seen on row %d)", i+1, rec.ID, prev)
		}
		seen[rec.ID] = i + 1
		out = append(out, rec)
	}
	return out, nil
}

func (m *tableMapper) mapRow(rowNum int, row []string, today domain.Date) (domain.LinkRecord, error) {
	id := int64(rowNum)
	if raw := m.cell(row, colID); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			return domain.LinkRecord{}, fmt.Errorf("invalid id %q", raw)
		}
		id = parsed
	}

	return domain.LinkRecord{
		ID:               id,
		Link:             m.cell(row, colLink),
		Category:         parseCategoryOr(m.cell(row, colCategory), domain.CategoryGambling),
		Confidence:       parseConfidence(m.cell(row, colConfidence)),
		Status:           parseStatusOr(m.cell(row, colStatus)),
		DetectedDate:     parseDateOr(m.cell(row, colDetected), today),
		LastModifiedDate: parseDateOr(m.cell(row, colLastModified), today),
		Reasoning:        orDefault(m.cell(row, colReasoning), defaultReasoning),
		AdminReasoning:   m.cell(row, colAdminReasoning),
		Image:            m.cell(row, colImage),
		Flagged:          parseFlag(m.cell(row, colFlagged)),
	}, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// parseCategoryOr maps blank to fallback and unrecognized labels to Other.
func parseCategoryOr(raw string, fallback domain.Category) domain.Category {
	if raw == "" {
		return fallback
	}
	if c, ok := domain.ParseCategory(raw); ok {
		return c
	}
	return domain.CategoryOther
}

func parseStatusOr(raw string) domain.Status {
	if s, ok := domain.ParseStatus(raw); ok {
		return s
	}
	return domain.StatusUnverified
}

// parseConfidence accepts a percentage ("87", "87.4", "87%") or a fraction
// with a decimal point ("0.87"). Anything unreadable takes the default.
func parseConfidence(raw string) int {
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "%")
	if raw == "" {
		return DefaultConfidence
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) {
		return DefaultConfidence
	}
	if v > 0 && v <= 1 && strings.Contains(raw, ".") {
		v *= 100
	}
	return clampPercent(v)
}

func clampPercent(v float64) int {
	return int(math.Round(math.Max(0, math.Min(100, v))))
}

// parseDateOr accepts YYYY-MM-DD or any RFC 3339 timestamp.
func parseDateOr(raw string, fallback domain.Date) domain.Date {
	if raw == "" {
		return fallback
	}
	if d := domain.Date(raw); d.Valid() {
		return d
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return domain.DateOf(t.UTC())
	}
	if len(raw) > len(domain.DateLayout) {
		if d := domain.Date(raw[:len(domain.DateLayout)]); d.Valid() {
			return d
		}
	}
	return fallback
}

func parseFlag(raw string) bool {
	v, err := strconv.ParseBool(raw)
	return err == nil && v
}
