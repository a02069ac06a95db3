package prompts

import (
	"context"

	"github.com/BTreeMap/DialogPipe/internal/choices"
	"github.com/BTreeMap/DialogPipe/internal/messaging"
)

// NumberPrompt asks for a number and recognizes digit strings, decimals, and
// small number words anywhere in the reply. The first recognition wins when
// the reply contains several.
type NumberPrompt struct {
	*Prompt[float64]
}

// NewNumberPrompt creates a number prompt with an optional validator.
func NewNumberPrompt(id string, validator PromptValidator[float64]) *NumberPrompt {
	p := &NumberPrompt{}
	p.Prompt = newPrompt(id, p.render, p.recognize, validator)
	return p
}

func (p *NumberPrompt) render(ctx context.Context, tc *messaging.TurnContext, state map[string]any, opts *PromptOptions, isRetry bool) error {
	return sendPrompt(ctx, tc, opts, isRetry)
}

func (p *NumberPrompt) recognize(ctx context.Context, tc *messaging.TurnContext, state map[string]any, opts *PromptOptions) (PromptRecognizerResult[float64], error) {
	var text string
	if tc.Message != nil {
		text = tc.Message.Text
	}
	results := choices.RecognizeNumbers(text)
	if len(results) == 0 {
		return PromptRecognizerResult[float64]{}, nil
	}
	return PromptRecognizerResult[float64]{Succeeded: true, Value: results[0].Resolution}, nil
}
