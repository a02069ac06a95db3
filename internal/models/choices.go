// Package models defines the core data structures for DialogPipe.
//
// This file holds the choice-recognition types shared between the matching
// engine and the prompts that consume it.
package models

// Choice is a candidate answer a user can pick, with optional synonyms and an
// optional action whose title is matchable and renderable as a button.
type Choice struct {
	Value    string      `json:"value"`
	Action   *CardAction `json:"action,omitempty"`
	Synonyms []string    `json:"synonyms,omitempty"`
}

// Token is one normalized unit of an utterance. Start and End are rune
// offsets into the original utterance; End addresses the last rune of the
// token, so a single-rune token has Start == End.
type Token struct {
	Start      int    `json:"start"`
	End        int    `json:"end"`
	Text       string `json:"text"`
	Normalized string `json:"normalized"`
}

// ModelResult wraps a typed recognition outcome together with the span of the
// original utterance it was recognized over.
type ModelResult[T any] struct {
	Text       string `json:"text"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	TypeName   string `json:"typeName"`
	Resolution T      `json:"resolution"`
}

// FoundValue is the resolution produced by FindValues. Score is in [0, 1];
// 1.0 means a perfect match over the whole utterance.
type FoundValue struct {
	Value string  `json:"value"`
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// FoundChoice is the resolution produced by FindChoices and RecognizeChoices.
// Synonym carries the synonym text that actually matched, when the match was
// not against the choice's primary value.
type FoundChoice struct {
	Value   string  `json:"value"`
	Index   int     `json:"index"`
	Score   float64 `json:"score"`
	Synonym string  `json:"synonym,omitempty"`
}

// SortedValue is a searchable candidate string tagged with the index of the
// item it belongs to.
type SortedValue struct {
	Value string `json:"value"`
	Index int    `json:"index"`
}
