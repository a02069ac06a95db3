package prompts

import (
	"context"

	"github.com/BTreeMap/DialogPipe/internal/choices"
	"github.com/BTreeMap/DialogPipe/internal/messaging"
	"github.com/BTreeMap/DialogPipe/internal/models"
)

// ConfirmPrompt asks a yes/no question, rendering the two options in the
// channel-appropriate style and accepting a wide set of affirmative and
// negative phrasings.
type ConfirmPrompt struct {
	*Prompt[bool]
	caps  *ChannelCapabilities
	style ListStyle
}

// NewConfirmPrompt creates a confirm prompt with an optional validator.
func NewConfirmPrompt(id string, validator PromptValidator[bool]) *ConfirmPrompt {
	p := &ConfirmPrompt{
		caps:  NewChannelCapabilities(),
		style: ListStyleAuto,
	}
	p.Prompt = newPrompt(id, p.render, p.recognize, validator)
	return p
}

// SetStyle overrides the default choice rendering style.
func (p *ConfirmPrompt) SetStyle(style ListStyle) { p.style = style }

// SetCapabilities replaces the channel capability table consulted by the
// automatic style.
func (p *ConfirmPrompt) SetCapabilities(caps *ChannelCapabilities) { p.caps = caps }

// confirmChoices are the two options a confirm prompt recognizes against.
func confirmChoices() []models.Choice {
	return []models.Choice{
		{Value: "Yes", Synonyms: []string{"yes", "yep", "yeah", "ya", "sure", "ok", "okay", "y", "true", "confirm"}},
		{Value: "No", Synonyms: []string{"no", "nope", "nah", "n", "false", "cancel"}},
	}
}

func (p *ConfirmPrompt) render(ctx context.Context, tc *messaging.TurnContext, state map[string]any, opts *PromptOptions, isRetry bool) error {
	msg := opts.Prompt
	if isRetry && opts.RetryPrompt != nil {
		msg = opts.RetryPrompt
	}
	style := p.style
	if opts.Style != ListStyleDefault {
		style = opts.Style
	}
	out, err := appendChoices(msg, tc.ChannelID(), tc.IsGroupConversation(), confirmChoices(), style, p.caps)
	if err != nil {
		return err
	}
	return tc.SendMessage(ctx, out)
}

func (p *ConfirmPrompt) recognize(ctx context.Context, tc *messaging.TurnContext, state map[string]any, opts *PromptOptions) (PromptRecognizerResult[bool], error) {
	var text string
	if tc.Message != nil {
		text = tc.Message.Text
	}
	results := choices.RecognizeChoices(text, confirmChoices(), nil)
	if len(results) == 0 {
		return PromptRecognizerResult[bool]{}, nil
	}
	return PromptRecognizerResult[bool]{Succeeded: true, Value: results[0].Resolution.Index == 0}, nil
}
