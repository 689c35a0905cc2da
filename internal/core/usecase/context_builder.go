package usecase

import (
	"fmt"
	"strings"

	"github.com/dealsense/sales-intel/internal/core/domain"
)

const defaultContextBudget = 48000

// buildDocumentContext concatenates the extracted text of every ready
// document under a per-document header. The result is trimmed to at most
// budget runes so long uploads cannot blow past the model's context window;
// trimming cuts from the tail, keeping the earliest documents whole.
func buildDocumentContext(docs []domain.Document, budget int) string {
	if budget <= 0 {
		budget = defaultContextBudget
	}

	var b strings.Builder
	for _, doc := range docs {
		text := strings.TrimSpace(doc.Text)
		if text == "" {
			continue
		}
		fmt.Fprintf(&b, "=== DOCUMENT: %s ===\n%s\n\n", doc.Filename, text)
	}

	return trimToRunes(b.String(), budget)
}

func trimToRunes(s string, budget int) string {
	if budget <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= budget {
		return s
	}
	return string(runes[:budget])
}
