package assistant

import (
	"fmt"
	"strings"

	"github.com/jonesrussell/north-cloud/link-review/internal/domain"
)

const systemPrompt = "You are an assistant for analysts reviewing websites flagged for " +
	"gambling, pornography and fraud. Answer briefly and professionally. " +
	"Base your answer on the case context; say so when it is insufficient."

// BuildPrompt renders the case context and the analyst's question.
func BuildPrompt(question string, snap domain.Snapshot) string {
	var b strings.Builder
	b.WriteString("Case context:\n")
	fmt.Fprintf(&b, "- URL: %s\n", snap.Link)
	fmt.Fprintf(&b, "- Detected category: %s\n", snap.Category)
	fmt.Fprintf(&b, "- Confidence: %d%%\n", snap.Confidence)
	fmt.Fprintf(&b, "- Status: %s\n", snap.Status)
	fmt.Fprintf(&b, "- Automated reasoning: %s\n", snap.Reasoning)
	b.WriteString("\nAnalyst question:\n")
	b.WriteString(strings.TrimSpace(question))
	b.WriteString("\n")
	return b.String()
}
