package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// Patch is a sparse set of field overrides for one record. A nil field is
// absent: it neither sets nor clears the base value.
type Patch struct {
	Link             *string   `json:"link,omitempty"`
	Category         *Category `json:"category,omitempty"`
	Confidence       *int      `json:"confidence,omitempty"`
	Status           *Status   `json:"status,omitempty"`
	DetectedDate     *Date     `json:"detectedDate,omitempty"`
	LastModifiedDate *Date     `json:"lastModifiedDate,omitempty"`
	Reasoning        *string   `json:"reasoning,omitempty"`
	AdminReasoning   *string   `json:"adminReasoning,omitempty"`
	Image            *string   `json:"image,omitempty"`
	Flagged          *bool     `json:"flagged,omitempty"`
}

// Ptr returns a pointer to v. Convenient for building patches.
func Ptr[T any](v T) *T {
	return &v
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// pick returns next when present, otherwise prev.
func pick[T any](prev, next *T) *T {
	if next != nil {
		return clonePtr(next)
	}
	return clonePtr(prev)
}

// IsEmpty reports whether p sets no field.
func (p Patch) IsEmpty() bool {
	return len(p.Fields()) == 0
}

// Clone deep-copies p so the copy shares no pointers with it.
func (p Patch) Clone() Patch {
	return Patch{}.Merge(p)
}

// Merge layers next over p: every field next sets wins, every field next
// leaves absent keeps p's value. The result shares no pointers with either.
func (p Patch) Merge(next Patch) Patch {
	return Patch{
		Link:             pick(p.Link, next.Link),
		Category:         pick(p.Category, next.Category),
		Confidence:       pick(p.Confidence, next.Confidence),
		Status:           pick(p.Status, next.Status),
		DetectedDate:     pick(p.DetectedDate, next.DetectedDate),
		LastModifiedDate: pick(p.LastModifiedDate, next.LastModifiedDate),
		Reasoning:        pick(p.Reasoning, next.Reasoning),
		AdminReasoning:   pick(p.AdminReasoning, next.AdminReasoning),
		Image:            pick(p.Image, next.Image),
		Flagged:          pick(p.Flagged, next.Flagged),
	}
}

// Apply returns base with every field p sets overwritten. base is not modified.
func (p Patch) Apply(base LinkRecord) LinkRecord {
	out := base
	if p.Link != nil {
		out.Link = *p.Link
	}
	if p.Category != nil {
		out.Category = *p.Category
	}
	if p.Confidence != nil {
		out.Confidence = *p.Confidence
	}
	if p.Status != nil {
		out.Status = *p.Status
	}
	if p.DetectedDate != nil {
		out.DetectedDate = *p.DetectedDate
	}
	if p.LastModifiedDate != nil {
		out.LastModifiedDate = *p.LastModifiedDate
	}
	if p.Reasoning != nil {
		out.Reasoning = *p.Reasoning
	}
	if p.AdminReasoning != nil {
		out.AdminReasoning = *p.AdminReasoning
	}
	if p.Image != nil {
		out.Image = *p.Image
	}
	if p.Flagged != nil {
		out.Flagged = *p.Flagged
	}
	return out
}

// Fields lists the JSON names of the fields p sets.
func (p Patch) Fields() []string {
	var f []string
	add := func(set bool, name string) {
		if set {
			f = append(f, name)
		}
	}
	add(p.Link != nil, "link")
	add(p.Category != nil, "category")
	add(p.Confidence != nil, "confidence")
	add(p.Status != nil, "status")
	add(p.DetectedDate != nil, "detectedDate")
	add(p.LastModifiedDate != nil, "lastModifiedDate")
	add(p.Reasoning != nil, "reasoning")
	add(p.AdminReasoning != nil, "adminReasoning")
	add(p.Image != nil, "image")
	add(p.Flagged != nil, "flagged")
	return f
}

// Validate checks field values in isolation. Cross-field rules such as the
// label override reason belong to the review state machine.
func (p Patch) Validate() error {
	if p.Link != nil && strings.TrimSpace(*p.Link) == "" {
		return NewValidationError("link", "must not be blank")
	}
	if p.Category != nil && !p.Category.Valid() {
		return NewValidationError("category", "must be one of Gambling, Pornography, Fraud, Other")
	}
	if p.Confidence != nil && (*p.Confidence < 0 || *p.Confidence > 100) {
		return NewValidationError("confidence", "must be between 0 and 100")
	}
	if p.Status != nil && !p.Status.Valid() {
		return NewValidationError("status", "must be one of unverified, verified, false-positive")
	}
	if p.DetectedDate != nil && !p.DetectedDate.Valid() {
		return NewValidationError("detectedDate", "must be a YYYY-MM-DD date")
	}
	if p.LastModifiedDate != nil && !p.LastModifiedDate.Valid() {
		return NewValidationError("lastModifiedDate", "must be a YYYY-MM-DD date")
	}
	return nil
}

// DecodePatch parses a JSON object into a validated Patch. Anything other
// than an object of known fields is rejected with ErrInvalidInput.
func DecodePatch(data []byte) (Patch, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Patch{}, NewValidationError("patch", "must be a JSON object")
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()

	var p Patch
	if err := dec.Decode(&p); err != nil {
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			return Patch{}, vErr
		}
		return Patch{}, NewValidationError("patch", err.Error())
	}
	if dec.More() {
		return Patch{}, NewValidationError("patch", "unexpected data after object")
	}
	if err := p.Validate(); err != nil {
		return Patch{}, err
	}
	return p, nil
}
