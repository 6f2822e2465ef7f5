package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/link-review/internal/domain"
)

func baseRecord() domain.LinkRecord {
	return domain.LinkRecord{
		ID:               7,
		Link:             "https://slot-gacor.example",
		Category:         domain.CategoryGambling,
		Confidence:       91,
		Status:           domain.StatusUnverified,
		DetectedDate:     "2026-10-01",
		LastModifiedDate: "2026-10-01",
		Reasoning:        "keyword density",
	}
}

func TestPatchMerge_IsIdempotent(t *testing.T) {
	t.Parallel()

	p := domain.Patch{Status: domain.Ptr(domain.StatusVerified), Flagged: domain.Ptr(true)}
	once := domain.Patch{}.Merge(p)
	twice := once.Merge(p)

	assert.Equal(t, once, twice)
	assert.Equal(t, once.Apply(baseRecord()), twice.Apply(baseRecord()))
}

func TestPatchMerge_FieldLevelLastWriteWins(t *testing.T) {
	t.Parallel()

	first := domain.Patch{
		Status:  domain.Ptr(domain.StatusVerified),
		Flagged: domain.Ptr(true),
	}
	second := domain.Patch{Status: domain.Ptr(domain.StatusFalsePositive)}

	merged := first.Merge(second).Apply(baseRecord())

	assert.Equal(t, domain.StatusFalsePositive, merged.Status)
	assert.True(t, merged.Flagged, "field absent from the later patch must survive")
}

func TestPatchMerge_SharesNoPointers(t *testing.T) {
	t.Parallel()

	status := domain.StatusVerified
	p := domain.Patch{Status: &status}
	merged := domain.Patch{}.Merge(p)

	status = domain.StatusFalsePositive
	assert.Equal(t, domain.StatusVerified, *merged.Status)
}

func TestPatchApply_DoesNotMutateBase(t *testing.T) {
	t.Parallel()

	base := baseRecord()
	out := domain.Patch{Category: domain.Ptr(domain.CategoryFraud), Confidence: domain.Ptr(10)}.Apply(base)

	assert.Equal(t, domain.CategoryGambling, base.Category)
	assert.Equal(t, domain.CategoryFraud, out.Category)
	assert.Equal(t, 10, out.Confidence)
	assert.Equal(t, base.Link, out.Link)
}

func TestPatchApply_EmptyPatchIsIdentity(t *testing.T) {
	t.Parallel()

	assert.Equal(t, baseRecord(), domain.Patch{}.Apply(baseRecord()))
	assert.True(t, domain.Patch{}.IsEmpty())
}

func TestDecodePatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		wantErr bool
		check   func(t *testing.T, p domain.Patch)
	}{
		{
			name: "status and flag",
			body: `{"status":"verified","flagged":true}`,
			check: func(t *testing.T, p domain.Patch) {
				assert.Equal(t, domain.StatusVerified, *p.Status)
				assert.True(t, *p.Flagged)
			},
		},
		{
			name: "category alias is canonicalised",
			body: `{"category":"judi","adminReasoning":"x"}`,
			check: func(t *testing.T, p domain.Patch) {
				assert.Equal(t, domain.CategoryGambling, *p.Category)
			},
		},
		{
			name: "null is absent not a tombstone",
			body: `{"flagged":null}`,
			check: func(t *testing.T, p domain.Patch) {
				assert.True(t, p.IsEmpty())
			},
		},
		{name: "empty object", body: `{}`, check: func(t *testing.T, p domain.Patch) { assert.True(t, p.IsEmpty()) }},
		{name: "array", body: `[1,2]`, wantErr: true},
		{name: "string", body: `"verified"`, wantErr: true},
		{name: "null", body: `null`, wantErr: true},
		{name: "blank", body: ``, wantErr: true},
		{name: "unknown field", body: `{"owner":"me"}`, wantErr: true},
		{name: "bad status", body: `{"status":"maybe"}`, wantErr: true},
		{name: "bad category", body: `{"category":"Spam"}`, wantErr: true},
		{name: "confidence out of range", body: `{"confidence":101}`, wantErr: true},
		{name: "bad date", body: `{"detectedDate":"19/10/2026"}`, wantErr: true},
		{name: "trailing data", body: `{} {}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, err := domain.DecodePatch([]byte(tt.body))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, domain.ErrInvalidInput), "want ErrInvalidInput, got %v", err)
				return
			}
			require.NoError(t, err)
			tt.check(t, p)
		})
	}
}
