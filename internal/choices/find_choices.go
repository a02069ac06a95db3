package choices

import (
	"log/slog"

	"github.com/BTreeMap/DialogPipe/internal/models"
)

// FindChoicesOptions controls choice matching on top of the value search.
type FindChoicesOptions struct {
	FindValuesOptions
	// NoValue excludes each choice's primary value from the searched synonyms.
	NoValue bool
	// NoAction excludes each choice's action title from the searched synonyms.
	NoAction bool
}

func (o *FindChoicesOptions) valuesOptions() *FindValuesOptions {
	if o == nil {
		return nil
	}
	return &o.FindValuesOptions
}

// FindChoices expands each choice into its searchable synonym strings, runs
// the fuzzy value search over them, and maps matches back to the owning
// choices. Multiple synonyms of one choice share the choice's index, so a
// choice is matched at most once.
func FindChoices(utterance string, list []models.Choice, opts *FindChoicesOptions) []models.ModelResult[models.FoundChoice] {
	var synonyms []models.SortedValue
	for i := range list {
		choice := &list[i]
		if opts == nil || !opts.NoValue {
			synonyms = append(synonyms, models.SortedValue{Value: choice.Value, Index: i})
		}
		if (opts == nil || !opts.NoAction) && choice.Action != nil && choice.Action.Title != "" {
			synonyms = append(synonyms, models.SortedValue{Value: choice.Action.Title, Index: i})
		}
		for _, synonym := range choice.Synonyms {
			synonyms = append(synonyms, models.SortedValue{Value: synonym, Index: i})
		}
	}
	slog.Debug("choices.FindChoices: searching synonyms", "choices", len(list), "synonyms", len(synonyms))

	found := FindValues(utterance, synonyms, opts.valuesOptions())
	results := make([]models.ModelResult[models.FoundChoice], 0, len(found))
	for _, match := range found {
		choice := &list[match.Resolution.Index]
		resolution := models.FoundChoice{
			Value: choice.Value,
			Index: match.Resolution.Index,
			Score: match.Resolution.Score,
		}
		if match.Resolution.Value != choice.Value {
			resolution.Synonym = match.Resolution.Value
		}
		results = append(results, models.ModelResult[models.FoundChoice]{
			Text:       match.Text,
			Start:      match.Start,
			End:        match.End,
			TypeName:   "choice",
			Resolution: resolution,
		})
	}
	return results
}
