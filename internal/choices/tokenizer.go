// Package choices implements the choice-recognition engine: tokenization,
// fuzzy token-distance matching of candidate values against an utterance, and
// ordinal/numeric fallback recognition.
package choices

import (
	"strings"
	"unicode"

	"github.com/BTreeMap/DialogPipe/internal/models"
)

// TokenizerFunc splits an utterance into tokens. A custom tokenizer can be
// supplied through FindValuesOptions.
type TokenizerFunc func(text string) []models.Token

// Tokenize is the default tokenizer. It splits on whitespace, punctuation and
// symbol runes, keeps letter/number runs together, and treats runes outside
// the basic multilingual plane (emoji and friends) as standalone tokens.
// Offsets are rune offsets into the original utterance; punctuation-only
// input yields zero tokens.
func Tokenize(text string) []models.Token {
	var tokens []models.Token
	runes := []rune(text)

	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		tok := string(runes[start : end+1])
		tokens = append(tokens, models.Token{
			Start:      start,
			End:        end,
			Text:       tok,
			Normalized: strings.ToLower(tok),
		})
		start = -1
	}

	for i, r := range runes {
		switch {
		case r > 0xFFFF:
			// astral-plane runes stand alone so emoji match one-to-one
			flush(i - 1)
			tok := string(r)
			tokens = append(tokens, models.Token{Start: i, End: i, Text: tok, Normalized: tok})
		case isBreakingRune(r):
			flush(i - 1)
		default:
			if start < 0 {
				start = i
			}
		}
	}
	flush(len(runes) - 1)
	return tokens
}

func isBreakingRune(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsControl(r) || unicode.IsSymbol(r)
}
