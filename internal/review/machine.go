// Package review reconciles base link records with analyst overrides. It
// validates status, flag and label transitions, records their audit trail,
// and serializes commands per record id.
package review

import (
	"fmt"
	"strings"

	"github.com/jonesrussell/north-cloud/link-review/internal/domain"
)

// Audit texts.
const (
	TextVerified      = "Updated to Verified"
	TextUnverified    = "Changed to Unverified"
	TextFalsePositive = "Marked as False Positive"
	TextFlagged       = "Flagged"
	TextUnflagged     = "Unflagged"
)

const unknownCategory = "-"

var statusText = map[domain.Status]string{
	domain.StatusVerified:      TextVerified,
	domain.StatusUnverified:    TextUnverified,
	domain.StatusFalsePositive: TextFalsePositive,
}

// AuditEntry is an audit event a transition will append.
type AuditEntry struct {
	Kind domain.AuditKind
	Text string
}

// Transition is the outcome of evaluating a patch against a merged record.
type Transition struct {
	// Patch is what gets stored: the request plus lastModifiedDate when
	// anything auditable changed.
	Patch   domain.Patch
	Entries []AuditEntry
}

// ValidatePatch rejects patches the state machine would never accept,
// independent of the record's current state. A category override must carry
// a non-blank adminReasoning in the same patch.
func ValidatePatch(p domain.Patch) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Category != nil && (p.AdminReasoning == nil || strings.TrimSpace(*p.AdminReasoning) == "") {
		return domain.NewValidationError("adminReasoning", "is required when overriding the category")
	}
	return nil
}

// Evaluate derives the audit entries p causes against current, in the order
// status, flag, label. Setting a field to its current value is stored but
// not audited. adminReasoning is stored trimmed, as the audit text shows it.
// today stamps lastModifiedDate when at least one entry results.
func Evaluate(current domain.LinkRecord, p domain.Patch, today domain.Date) Transition {
	var entries []AuditEntry

	if p.Status != nil && *p.Status != current.Status {
		entries = append(entries, AuditEntry{Kind: domain.AuditStatus, Text: statusText[*p.Status]})
	}

	if p.Flagged != nil && *p.Flagged != current.Flagged {
		text := TextUnflagged
		if *p.Flagged {
			text = TextFlagged
		}
		entries = append(entries, AuditEntry{Kind: domain.AuditFlag, Text: text})
	}

	if p.Category != nil && *p.Category != current.Category {
		entries = append(entries, AuditEntry{
			Kind: domain.AuditLabel,
			Text: LabelOverrideText(current.Category, *p.Category, reason(p)),
		})
	}

	stored := p.Clone()
	if stored.AdminReasoning != nil {
		stored.AdminReasoning = domain.Ptr(reason(p))
	}
	if len(entries) > 0 {
		stored.LastModifiedDate = domain.Ptr(today)
	}
	return Transition{Patch: stored, Entries: entries}
}

// LabelOverrideText renders the audit text for a category change.
func LabelOverrideText(from, to domain.Category, reason string) string {
	old := string(from)
	if old == "" {
		old = unknownCategory
	}
	return fmt.Sprintf("Override label: %s → %s. Reason: %s", old, to, reason)
}

func reason(p domain.Patch) string {
	if p.AdminReasoning == nil {
		return ""
	}
	return strings.TrimSpace(*p.AdminReasoning)
}
