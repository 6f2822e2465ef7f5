package source

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/north-cloud/link-review/internal/domain"
)

func TestCategorizer_Categorize(t *testing.T) {
	t.Parallel()

	c := NewCategorizer(DefaultKeywords)

	tests := []struct {
		text string
		want domain.Category
		ok   bool
	}{
		{"Situs SLOT gacor maxwin hari ini", domain.CategoryGambling, true},
		{"video bokep terbaru", domain.CategoryPornography, true},
		{"Phishing page: verify-account now", domain.CategoryFraud, true},
		{"Kasíno online", domain.CategoryGambling, true},
		{"weather forecast", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := c.Categorize(tt.text)
		assert.Equal(t, tt.ok, ok, tt.text)
		assert.Equal(t, tt.want, got, tt.text)
	}
}

func TestCategorizer_MostHitsWins(t *testing.T) {
	t.Parallel()

	c := NewCategorizer(DefaultKeywords)
	got, ok := c.Categorize("casino poker jackpot scam")
	assert.True(t, ok)
	assert.Equal(t, domain.CategoryGambling, got)
}

func TestCategorizer_FromKeywords(t *testing.T) {
	t.Parallel()

	c := NewCategorizer(DefaultKeywords)
	assert.Equal(t, domain.CategoryGambling, c.FromKeywords(""), "crawler default")
	assert.Equal(t, domain.CategoryFraud, c.FromKeywords("penipuan, transfer"))
	assert.Equal(t, domain.CategoryPornography, c.FromKeywords("video, bokep"))
	assert.Equal(t, domain.CategoryOther, c.FromKeywords("cooking, recipes"))
}

func TestCategorizer_Empty(t *testing.T) {
	t.Parallel()

	var nilCat *Categorizer
	_, ok := nilCat.Categorize("slot")
	assert.False(t, ok)

	_, ok = NewCategorizer(map[domain.Category][]string{domain.CategoryFraud: {"  "}}).Categorize("slot")
	assert.False(t, ok)
}
