package choices

import (
	"testing"

	"github.com/BTreeMap/DialogPipe/internal/models"
)

func values(strs ...string) []models.SortedValue {
	out := make([]models.SortedValue, len(strs))
	for i, s := range strs {
		out[i] = models.SortedValue{Value: s, Index: i}
	}
	return out
}

func TestFindValuesExactMatchShortCircuits(t *testing.T) {
	results := FindValues("red", values("red", "green", "blue"), nil)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.Resolution.Value != "red" || r.Resolution.Index != 0 {
		t.Errorf("unexpected resolution %+v", r.Resolution)
	}
	if r.Resolution.Score != 1.0 {
		t.Errorf("expected perfect score, got %v", r.Resolution.Score)
	}
	if r.Start != 0 || r.End != 2 {
		t.Errorf("expected span [0,2], got [%d,%d]", r.Start, r.End)
	}
}

func TestFindValuesExactMatchIgnoresCaseAndPadding(t *testing.T) {
	results := FindValues("  RED  ", values("red", "green"), nil)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Resolution.Index != 0 {
		t.Errorf("expected index 0, got %d", results[0].Resolution.Index)
	}
}

func TestFindValuesMatchesWithinLargerUtterance(t *testing.T) {
	results := FindValues("the red one please", values("red", "green", "blue"), nil)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.Resolution.Value != "red" {
		t.Errorf("expected red, got %q", r.Resolution.Value)
	}
	if r.Text != "red" {
		t.Errorf("expected matched text %q, got %q", "red", r.Text)
	}
	if r.Start != 4 || r.End != 6 {
		t.Errorf("expected span [4,6], got [%d,%d]", r.Start, r.End)
	}
}

func TestFindValuesMultiTokenValue(t *testing.T) {
	results := FindValues("I want the dark red one", values("dark red", "dark blue"), nil)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.Resolution.Value != "dark red" {
		t.Errorf("expected %q, got %q", "dark red", r.Resolution.Value)
	}
	if r.Text != "dark red" {
		t.Errorf("expected matched text %q, got %q", "dark red", r.Text)
	}
	if r.Resolution.Score != 1.0 {
		t.Errorf("expected perfect score for adjacent tokens, got %v", r.Resolution.Score)
	}
}

func TestFindValuesGapLowersScore(t *testing.T) {
	adjacent := FindValues("dark red", values("dark red"), nil)
	gapped := FindValues("dark and bold red", values("dark red"), nil)
	if len(adjacent) != 1 || len(gapped) != 1 {
		t.Fatalf("expected 1 result each, got %d and %d", len(adjacent), len(gapped))
	}
	if gapped[0].Resolution.Score >= adjacent[0].Resolution.Score {
		t.Errorf("expected gapped score %v below adjacent score %v",
			gapped[0].Resolution.Score, adjacent[0].Resolution.Score)
	}
}

func TestFindValuesRespectsMaxTokenDistance(t *testing.T) {
	// Three tokens between "dark" and "red" exceeds the default distance of 2.
	results := FindValues("dark one two three red", values("dark red"), nil)
	if len(results) != 0 {
		t.Errorf("expected no full match past the token distance, got %d", len(results))
	}
}

func TestFindValuesPartialMatches(t *testing.T) {
	opts := &FindValuesOptions{AllowPartialMatches: true}
	results := FindValues("bro cow", values("brown", "cow"), opts)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d: %+v", len(results), results)
	}
	if results[0].Resolution.Value != "brown" {
		t.Errorf("expected first match brown, got %q", results[0].Resolution.Value)
	}
	if results[1].Resolution.Value != "cow" {
		t.Errorf("expected second match cow, got %q", results[1].Resolution.Value)
	}
}

func TestFindValuesNoPartialMatchesByDefault(t *testing.T) {
	results := FindValues("bro", values("brown"), nil)
	if len(results) != 0 {
		t.Errorf("expected no matches without partial matching, got %d", len(results))
	}
}

func TestFindValuesEachCandidateMatchedOnce(t *testing.T) {
	results := FindValues("red red red", values("red"), nil)
	if len(results) != 1 {
		t.Fatalf("expected a single match per candidate, got %d", len(results))
	}
	if results[0].Start != 0 {
		t.Errorf("expected earliest occurrence to win, got start %d", results[0].Start)
	}
}

func TestFindValuesResultsOrderedByStart(t *testing.T) {
	results := FindValues("blue and red", values("red", "blue"), nil)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Resolution.Value != "blue" || results[1].Resolution.Value != "red" {
		t.Errorf("expected results ordered by start offset, got %q then %q",
			results[0].Resolution.Value, results[1].Resolution.Value)
	}
	if results[0].Start >= results[1].Start {
		t.Errorf("expected ascending starts, got %d then %d", results[0].Start, results[1].Start)
	}
}

func TestFindValuesLongerValueClaimsTokensFirst(t *testing.T) {
	results := FindValues("dark red", []models.SortedValue{
		{Value: "red", Index: 0},
		{Value: "dark red", Index: 1},
	}, nil)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Resolution.Index != 1 {
		t.Errorf("expected the longer candidate to win, got index %d", results[0].Resolution.Index)
	}
}

func TestFindValuesEmptyUtterance(t *testing.T) {
	if results := FindValues("", values("red"), nil); len(results) != 0 {
		t.Errorf("expected no results for empty utterance, got %d", len(results))
	}
}

func TestFindValuesCustomTokenizer(t *testing.T) {
	called := false
	opts := &FindValuesOptions{
		Tokenizer: func(text string) []models.Token {
			called = true
			return Tokenize(text)
		},
	}
	FindValues("the red one", values("red"), opts)
	if !called {
		t.Error("expected custom tokenizer to be used")
	}
}
