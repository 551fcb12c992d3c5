package locator

import (
	"strings"

	"scantab/internal/domain"
)

// FilterTokens applies the locator-side token hygiene contract: text is
// trimmed, whitespace-only tokens are dropped, and tokens below minConfidence
// are discarded. The relative order of surviving tokens is preserved.
func FilterTokens(tokens []domain.Token, minConfidence float64) []domain.Token {
	out := make([]domain.Token, 0, len(tokens))
	for _, tok := range tokens {
		tok.Text = strings.TrimSpace(tok.Text)
		if tok.Text == "" || tok.Confidence < minConfidence {
			continue
		}
		out = append(out, tok)
	}
	return out
}
