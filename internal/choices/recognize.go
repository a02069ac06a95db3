package choices

import (
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strconv"
	"unicode/utf8"

	"github.com/BTreeMap/DialogPipe/internal/models"
)

// ordinalWords maps ordinal vocabulary to 1-based positions. Negative values
// count back from the end of the list ("last" is -1).
var ordinalWords = map[string]int{
	"first": 1, "1st": 1,
	"second": 2, "2nd": 2,
	"third": 3, "3rd": 3,
	"fourth": 4, "4th": 4,
	"fifth": 5, "5th": 5,
	"sixth": 6, "6th": 6,
	"seventh": 7, "7th": 7,
	"eighth": 8, "8th": 8,
	"ninth": 9, "9th": 9,
	"tenth": 10, "10th": 10,
	"last": -1, "final": -1,
}

var numberWords = map[string]float64{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4,
	"five": 5, "six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
}

// RecognizeOrdinals finds ordinal words ("second", "3rd", "last") in an
// utterance. Resolutions are 1-based positions; negative positions count back
// from the end of the candidate list.
func RecognizeOrdinals(utterance string) []models.ModelResult[int] {
	var results []models.ModelResult[int]
	for _, token := range Tokenize(utterance) {
		if v, ok := ordinalWords[token.Normalized]; ok {
			results = append(results, models.ModelResult[int]{
				Text:       token.Text,
				Start:      token.Start,
				End:        token.End,
				TypeName:   "ordinal",
				Resolution: v,
			})
		}
	}
	return results
}

// numeralPattern matches integer and decimal literals. It runs over the raw
// utterance because the tokenizer splits "2.5" at the dot.
var numeralPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// RecognizeNumbers finds bare numerals and cardinal number words in an
// utterance. Offsets are rune offsets, decimals stay whole.
func RecognizeNumbers(utterance string) []models.ModelResult[float64] {
	var results []models.ModelResult[float64]
	for _, loc := range numeralPattern.FindAllStringIndex(utterance, -1) {
		text := utterance[loc[0]:loc[1]]
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			continue
		}
		start := utf8.RuneCountInString(utterance[:loc[0]])
		results = append(results, models.ModelResult[float64]{
			Text:       text,
			Start:      start,
			End:        start + utf8.RuneCountInString(text) - 1,
			TypeName:   "number",
			Resolution: v,
		})
	}
	for _, token := range Tokenize(utterance) {
		if v, ok := numberWords[token.Normalized]; ok {
			results = append(results, models.ModelResult[float64]{
				Text:       token.Text,
				Start:      token.Start,
				End:        token.End,
				TypeName:   "number",
				Resolution: v,
			})
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Start < results[j].Start
	})
	return results
}

// RecognizeChoices matches an utterance against a choice list. The fuzzy text
// path runs first; only when it yields nothing does recognition fall back to
// ordinal words and then bare numerals, each resolved as a 1-based position
// into the list. The fuzzy path and the positional fallback are mutually
// exclusive per call, never merged.
func RecognizeChoices(utterance string, list []models.Choice, opts *FindChoicesOptions) []models.ModelResult[models.FoundChoice] {
	if matched := FindChoices(utterance, list, opts); len(matched) > 0 {
		return matched
	}
	slog.Debug("choices.RecognizeChoices: no fuzzy matches, trying positional fallback", "utterance", utterance)

	var positional []models.ModelResult[models.FoundChoice]
	if ordinals := RecognizeOrdinals(utterance); len(ordinals) > 0 {
		for _, o := range ordinals {
			if r, ok := choiceAtPosition(o.Resolution, list, o.Text, o.Start, o.End); ok {
				positional = append(positional, r)
			}
		}
	} else {
		for _, n := range RecognizeNumbers(utterance) {
			if n.Resolution != math.Trunc(n.Resolution) {
				continue
			}
			if r, ok := choiceAtPosition(int(n.Resolution), list, n.Text, n.Start, n.End); ok {
				positional = append(positional, r)
			}
		}
	}

	// De-duplicate by span and by target index, first occurrence wins.
	var results []models.ModelResult[models.FoundChoice]
	usedIndexes := make(map[int]bool)
	for _, candidate := range positional {
		if usedIndexes[candidate.Resolution.Index] {
			continue
		}
		overlaps := false
		for _, r := range results {
			if candidate.Start <= r.End && candidate.End >= r.Start {
				overlaps = true
				break
			}
		}
		if overlaps {
			continue
		}
		usedIndexes[candidate.Resolution.Index] = true
		results = append(results, candidate)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Start < results[j].Start
	})
	return results
}

// choiceAtPosition converts a recognized 1-based position (negative counts
// back from the end) into a perfect-score choice match, rejecting positions
// outside the list.
func choiceAtPosition(position int, list []models.Choice, text string, start, end int) (models.ModelResult[models.FoundChoice], bool) {
	index := position - 1
	if position < 0 {
		index = len(list) + position
	}
	if index < 0 || index >= len(list) {
		return models.ModelResult[models.FoundChoice]{}, false
	}
	return models.ModelResult[models.FoundChoice]{
		Text:     text,
		Start:    start,
		End:      end,
		TypeName: "choice",
		Resolution: models.FoundChoice{
			Value: list[index].Value,
			Index: index,
			Score: 1.0,
		},
	}, true
}
