package prompts

import (
	"context"

	"github.com/BTreeMap/DialogPipe/internal/choices"
	"github.com/BTreeMap/DialogPipe/internal/messaging"
	"github.com/BTreeMap/DialogPipe/internal/models"
)

// ChoicePrompt asks the user to pick from a fixed list, rendering the list in
// the channel-appropriate style and recognizing replies by name, synonym,
// ordinal ("the second one") or number ("2").
type ChoicePrompt struct {
	*Prompt[models.FoundChoice]
	caps          *ChannelCapabilities
	style         ListStyle
	recognizerOpt *choices.FindChoicesOptions
}

// NewChoicePrompt creates a choice prompt with an optional validator.
func NewChoicePrompt(id string, validator PromptValidator[models.FoundChoice]) *ChoicePrompt {
	p := &ChoicePrompt{
		caps:  NewChannelCapabilities(),
		style: ListStyleAuto,
	}
	p.Prompt = newPrompt(id, p.render, p.recognize, validator)
	return p
}

// SetStyle overrides the default choice rendering style.
func (p *ChoicePrompt) SetStyle(style ListStyle) { p.style = style }

// SetCapabilities replaces the channel capability table consulted by the
// automatic style.
func (p *ChoicePrompt) SetCapabilities(caps *ChannelCapabilities) { p.caps = caps }

// SetRecognizerOptions configures the matching behavior used on replies.
func (p *ChoicePrompt) SetRecognizerOptions(opts *choices.FindChoicesOptions) { p.recognizerOpt = opts }

func (p *ChoicePrompt) render(ctx context.Context, tc *messaging.TurnContext, state map[string]any, opts *PromptOptions, isRetry bool) error {
	msg := opts.Prompt
	if isRetry && opts.RetryPrompt != nil {
		msg = opts.RetryPrompt
	}
	style := p.style
	if opts.Style != ListStyleDefault {
		style = opts.Style
	}
	out, err := appendChoices(msg, tc.ChannelID(), tc.IsGroupConversation(), opts.Choices, style, p.caps)
	if err != nil {
		return err
	}
	return tc.SendMessage(ctx, out)
}

func (p *ChoicePrompt) recognize(ctx context.Context, tc *messaging.TurnContext, state map[string]any, opts *PromptOptions) (PromptRecognizerResult[models.FoundChoice], error) {
	var text string
	if tc.Message != nil {
		text = tc.Message.Text
	}
	results := choices.RecognizeChoices(text, opts.Choices, p.recognizerOpt)
	if len(results) == 0 {
		return PromptRecognizerResult[models.FoundChoice]{}, nil
	}
	return PromptRecognizerResult[models.FoundChoice]{Succeeded: true, Value: results[0].Resolution}, nil
}
