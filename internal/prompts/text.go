package prompts

import (
	"context"
	"strings"

	"github.com/BTreeMap/DialogPipe/internal/messaging"
)

// TextPrompt asks for free text and succeeds on any non-empty input.
// Validators typically enforce length or content rules on top.
type TextPrompt struct {
	*Prompt[string]
}

// NewTextPrompt creates a text prompt with an optional validator.
func NewTextPrompt(id string, validator PromptValidator[string]) *TextPrompt {
	p := &TextPrompt{}
	p.Prompt = newPrompt(id, p.render, p.recognize, validator)
	return p
}

func (p *TextPrompt) render(ctx context.Context, tc *messaging.TurnContext, state map[string]any, opts *PromptOptions, isRetry bool) error {
	return sendPrompt(ctx, tc, opts, isRetry)
}

func (p *TextPrompt) recognize(ctx context.Context, tc *messaging.TurnContext, state map[string]any, opts *PromptOptions) (PromptRecognizerResult[string], error) {
	var text string
	if tc.Message != nil {
		text = tc.Message.Text
	}
	if strings.TrimSpace(text) == "" {
		return PromptRecognizerResult[string]{}, nil
	}
	return PromptRecognizerResult[string]{Succeeded: true, Value: text}, nil
}
