package choices

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/BTreeMap/DialogPipe/internal/models"
)

// DefaultMaxTokenDistance is the maximum number of utterance tokens that may
// be skipped between two matched candidate tokens.
const DefaultMaxTokenDistance = 2

// FindValuesOptions controls the fuzzy value search.
type FindValuesOptions struct {
	// AllowPartialMatches emits results even when only some of a candidate's
	// tokens were found in the utterance.
	AllowPartialMatches bool
	// MaxTokenDistance overrides DefaultMaxTokenDistance when > 0.
	MaxTokenDistance int
	// Tokenizer overrides the default tokenizer.
	Tokenizer TokenizerFunc
	// Locale is carried for callers that localize candidate lists upstream.
	Locale string
}

func (o *FindValuesOptions) maxTokenDistance() int {
	if o != nil && o.MaxTokenDistance > 0 {
		return o.MaxTokenDistance
	}
	return DefaultMaxTokenDistance
}

func (o *FindValuesOptions) tokenizer() TokenizerFunc {
	if o != nil && o.Tokenizer != nil {
		return o.Tokenizer
	}
	return Tokenize
}

// tokenMatch is a candidate match expressed in token-index space. Start and
// End index into the utterance's token slice, not the utterance itself.
type tokenMatch struct {
	start int
	end   int
	found models.FoundValue
}

// FindValues scores and ranks candidate strings against an utterance.
//
// An utterance that case-insensitively equals a candidate's full value short
// circuits to a single perfect match. Otherwise candidates are searched
// longest-first so more specific strings claim tokens before their prefixes,
// scored by completeness times accuracy, and selected greedily in descending
// score order with overlapping spans and repeated candidate indexes rejected.
// Accepted matches are returned ordered by their start offset.
func FindValues(utterance string, values []models.SortedValue, opts *FindValuesOptions) []models.ModelResult[models.FoundValue] {
	trimmed := strings.TrimSpace(utterance)
	for _, v := range values {
		if strings.EqualFold(trimmed, strings.TrimSpace(v.Value)) {
			slog.Debug("choices.FindValues: exact match short circuit", "value", v.Value, "index", v.Index)
			runeLen := len([]rune(utterance))
			end := runeLen - 1
			if end < 0 {
				end = 0
			}
			return []models.ModelResult[models.FoundValue]{{
				Text:       utterance,
				Start:      0,
				End:        end,
				TypeName:   "value",
				Resolution: models.FoundValue{Value: v.Value, Index: v.Index, Score: 1.0},
			}}
		}
	}

	tokenize := opts.tokenizer()
	maxDistance := opts.maxTokenDistance()
	allowPartial := opts != nil && opts.AllowPartialMatches

	tokens := tokenize(utterance)
	if len(tokens) == 0 {
		return nil
	}

	// Longer values claim tokens first.
	sorted := make([]models.SortedValue, len(values))
	copy(sorted, values)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Value) > len(sorted[j].Value)
	})

	var matches []tokenMatch
	for _, entry := range sorted {
		vTokens := tokenize(strings.TrimSpace(entry.Value))
		if len(vTokens) == 0 {
			continue
		}
		for startPos := 0; startPos < len(tokens); startPos++ {
			if m, ok := matchValue(tokens, vTokens, entry, startPos, maxDistance, allowPartial); ok {
				matches = append(matches, m)
			}
		}
	}
	if len(matches) == 0 {
		slog.Debug("choices.FindValues: no matches", "utterance", utterance, "candidates", len(values))
		return nil
	}

	// Best scores first; the stable sort keeps earlier (longer) candidates
	// ahead on ties.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].found.Score > matches[j].found.Score
	})

	var accepted []tokenMatch
	usedIndexes := make(map[int]bool)
	for _, m := range matches {
		if usedIndexes[m.found.Index] {
			continue
		}
		overlaps := false
		for _, a := range accepted {
			if m.start <= a.end && m.end >= a.start {
				overlaps = true
				break
			}
		}
		if overlaps {
			continue
		}
		usedIndexes[m.found.Index] = true
		accepted = append(accepted, m)
	}

	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].start < accepted[j].start
	})

	runes := []rune(utterance)
	results := make([]models.ModelResult[models.FoundValue], 0, len(accepted))
	for _, m := range accepted {
		start := tokens[m.start].Start
		end := tokens[m.end].End
		results = append(results, models.ModelResult[models.FoundValue]{
			Text:       string(runes[start : end+1]),
			Start:      start,
			End:        end,
			TypeName:   "value",
			Resolution: m.found,
		})
	}
	slog.Debug("choices.FindValues: matches selected", "emitted", len(matches), "accepted", len(results))
	return results
}

// matchValue scans forward through the utterance tokens from startPos looking
// for the candidate's tokens in order. A candidate token matches when an equal
// normalized token appears within maxDistance positions of the scan pointer;
// skipped positions accumulate as deviation and lower the score.
func matchValue(tokens, vTokens []models.Token, entry models.SortedValue, startPos, maxDistance int, allowPartial bool) (tokenMatch, bool) {
	matched := 0
	totalDeviation := 0
	start := -1
	end := -1
	pos := startPos
	for _, vToken := range vTokens {
		idx := indexOfToken(tokens, vToken.Normalized, pos, allowPartial)
		if idx < 0 {
			continue
		}
		distance := 0
		if matched > 0 {
			distance = idx - pos
		}
		if distance > maxDistance {
			continue
		}
		matched++
		totalDeviation += distance
		pos = idx + 1
		if start < 0 {
			start = idx
		}
		end = idx
	}
	if matched == 0 || (matched < len(vTokens) && !allowPartial) {
		return tokenMatch{}, false
	}
	completeness := float64(matched) / float64(len(vTokens))
	accuracy := float64(matched) / float64(matched+totalDeviation)
	return tokenMatch{
		start: start,
		end:   end,
		found: models.FoundValue{
			Value: entry.Value,
			Index: entry.Index,
			Score: completeness * accuracy,
		},
	}, true
}

// indexOfToken locates the next utterance token equal to the candidate token.
// When partial matches are enabled a truncated utterance token ("bro") also
// matches the candidate token it prefixes ("brown").
func indexOfToken(tokens []models.Token, normalized string, startPos int, allowPartial bool) int {
	for i := startPos; i < len(tokens); i++ {
		if tokens[i].Normalized == normalized {
			return i
		}
		if allowPartial && tokens[i].Normalized != "" && strings.HasPrefix(normalized, tokens[i].Normalized) {
			return i
		}
	}
	return -1
}
