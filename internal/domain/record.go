// Package domain holds the link-review data model: base link records, the
// sparse override patches layered on top of them, and audit history events.
package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Category is the closed set of moderation labels.
type Category string

// Categories.
const (
	CategoryGambling    Category = "Gambling"
	CategoryPornography Category = "Pornography"
	CategoryFraud       Category = "Fraud"
	CategoryOther       Category = "Other"
)

// Categories lists every valid category in display order.
var Categories = []Category{CategoryGambling, CategoryPornography, CategoryFraud, CategoryOther}

var categoryAliases = map[string]Category{
	"gambling":    CategoryGambling,
	"judi":        CategoryGambling,
	"pornography": CategoryPornography,
	"pornografi":  CategoryPornography,
	"porn":        CategoryPornography,
	"fraud":       CategoryFraud,
	"penipuan":    CategoryFraud,
	"scam":        CategoryFraud,
	"other":       CategoryOther,
	"lainnya":     CategoryOther,
}

// ParseCategory matches s case-insensitively against category names and the
// labels used by the crawling pipeline exports.
func ParseCategory(s string) (Category, bool) {
	c, ok := categoryAliases[strings.ToLower(strings.TrimSpace(s))]
	return c, ok
}

// Valid reports whether c is one of the closed set in canonical form.
func (c Category) Valid() bool {
	switch c {
	case CategoryGambling, CategoryPornography, CategoryFraud, CategoryOther:
		return true
	default:
		return false
	}
}

// UnmarshalJSON accepts any spelling ParseCategory understands.
func (c *Category) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("category must be a string: %w", err)
	}
	parsed, ok := ParseCategory(raw)
	if !ok {
		return fmt.Errorf("unknown category %q", raw)
	}
	*c = parsed
	return nil
}

// Status is the human verification state of a record.
type Status string

// Statuses, using the wire values of the review UI.
const (
	StatusUnverified    Status = "unverified"
	StatusVerified      Status = "verified"
	StatusFalsePositive Status = "false-positive"
)

// ParseStatus accepts the canonical values plus common export spellings.
// An empty string is a record that was never reviewed.
func ParseStatus(s string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unverified", "":
		return StatusUnverified, true
	case "verified":
		return StatusVerified, true
	case "false-positive", "false_positive", "falsepositive", "false positive":
		return StatusFalsePositive, true
	default:
		return "", false
	}
}

// Valid reports whether s is a canonical status.
func (s Status) Valid() bool {
	switch s {
	case StatusUnverified, StatusVerified, StatusFalsePositive:
		return true
	default:
		return false
	}
}

// UnmarshalJSON accepts any spelling ParseStatus understands except empty.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("status must be a string: %w", err)
	}
	parsed, ok := ParseStatus(raw)
	if !ok || strings.TrimSpace(raw) == "" {
		return fmt.Errorf("unknown status %q", raw)
	}
	*s = parsed
	return nil
}

// DateLayout is the calendar-date wire format.
const DateLayout = time.DateOnly

// Date is an ISO-8601 calendar date, e.g. "2026-10-19".
type Date string

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// Valid reports whether d parses as YYYY-MM-DD.
func (d Date) Valid() bool {
	_, err := time.Parse(DateLayout, string(d))
	return err == nil
}

// LinkRecord is a machine-classified link as seen by analysts. Base records
// come from the record source; overrides are applied with Patch.Apply.
type LinkRecord struct {
	ID               int64    `json:"id"`
	Link             string   `json:"link"`
	Category         Category `json:"category"`
	Confidence       int      `json:"confidence"`
	Status           Status   `json:"status"`
	DetectedDate     Date     `json:"detectedDate"`
	LastModifiedDate Date     `json:"lastModifiedDate"`
	Reasoning        string   `json:"reasoning"`
	AdminReasoning   string   `json:"adminReasoning,omitempty"`
	Image            string   `json:"image"`
	Flagged          bool     `json:"flagged"`
}

// Snapshot is the read-only projection of a merged record handed to the assistant.
type Snapshot struct {
	Link       string
	Category   Category
	Confidence int
	Status     Status
	Reasoning  string
}

// Snapshot projects r for the assistant.
func (r LinkRecord) Snapshot() Snapshot {
	return Snapshot{
		Link:       r.Link,
		Category:   r.Category,
		Confidence: r.Confidence,
		Status:     r.Status,
		Reasoning:  r.Reasoning,
	}
}

// HistoryEvent is one audit entry of a record's history.
type HistoryEvent struct {
	RecordID  int64     `json:"recordId"`
	Timestamp time.Time `json:"timestamp"`
	Text      string    `json:"text"`
	Actor     string    `json:"actor,omitempty"`
}

// AuditKind classifies history events for metrics and fan-out consumers.
type AuditKind string

// Audit kinds.
const (
	AuditStatus AuditKind = "status"
	AuditFlag   AuditKind = "flag"
	AuditLabel  AuditKind = "label"
	AuditNote   AuditKind = "note"
)

// AuditEvent is a committed history event plus its kind, as published to
// live feeds and event streams.
type AuditEvent struct {
	Kind AuditKind `json:"kind"`
	HistoryEvent
}
