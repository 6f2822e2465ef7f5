package source

import (
	"strings"
	"unicode"

	ahocorasick "github.com/cloudflare/ahocorasick"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jonesrussell/north-cloud/link-review/internal/domain"
)

// DefaultKeywords seeds the categorizer when configuration supplies none.
var DefaultKeywords = map[domain.Category][]string{
	domain.CategoryGambling: {
		"judi", "slot", "gacor", "togel", "casino", "kasino", "poker", "betting",
		"taruhan", "jackpot", "sportsbook", "maxwin", "bandar",
	},
	domain.CategoryPornography: {
		"porn", "bokep", "xxx", "bugil", "hentai", "nsfw", "sex", "camgirl", "onlyfans",
	},
	domain.CategoryFraud: {
		"penipuan", "phishing", "scam", "investasi bodong", "undian berhadiah",
		"pinjol", "giveaway", "verify account", "crypto doubling",
	},
}

// Categorizer assigns a category from free text by counting keyword hits in
// a single Aho-Corasick pass.
type Categorizer struct {
	matcher  *ahocorasick.Matcher
	keywords []string
	owners   []domain.Category
}

// NewCategorizer builds a Categorizer. Keywords are matched after folding
// case and diacritics; blank keywords are ignored.
func NewCategorizer(keywords map[domain.Category][]string) *Categorizer {
	c := &Categorizer{}
	for _, cat := range domain.Categories {
		for _, kw := range keywords[cat] {
			n := strings.TrimSpace(normalizeText(kw))
			if n == "" {
				continue
			}
			c.keywords = append(c.keywords, n)
			c.owners = append(c.owners, cat)
		}
	}
	if len(c.keywords) > 0 {
		c.matcher = ahocorasick.NewStringMatcher(c.keywords)
	}
	return c
}

// Categorize returns the category with the most distinct keyword hits in
// text. Ties go to the earlier category in domain.Categories.
func (c *Categorizer) Categorize(text string) (domain.Category, bool) {
	if c == nil || c.matcher == nil {
		return "", false
	}

	hits := c.matcher.Match([]byte(normalizeText(text)))
	if len(hits) == 0 {
		return "", false
	}

	counts := make(map[domain.Category]int, len(domain.Categories))
	for _, i := range hits {
		if i < len(c.owners) {
			counts[c.owners[i]]++
		}
	}

	var best domain.Category
	for _, cat := range domain.Categories {
		if counts[cat] > counts[best] {
			best = cat
		}
	}
	return best, best != ""
}

// FromKeywords mirrors the crawler's keyword column: a comma-separated list
// whose first entry is usually the label itself. Blank input is Gambling,
// the crawler's default target.
func (c *Categorizer) FromKeywords(keywords string) domain.Category {
	if strings.TrimSpace(keywords) == "" {
		return domain.CategoryGambling
	}
	first, _, _ := strings.Cut(keywords, ",")
	if cat, ok := domain.ParseCategory(first); ok {
		return cat
	}
	if cat, ok := c.Categorize(keywords); ok {
		return cat
	}
	return domain.CategoryOther
}

var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func normalizeText(text string) string {
	if folded, _, err := transform.String(foldDiacritics, text); err == nil {
		text = folded
	}
	text = strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(text) + 2)
	b.WriteByte(' ')
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	b.WriteByte(' ')
	return b.String()
}
