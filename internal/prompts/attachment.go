package prompts

import (
	"context"

	"github.com/BTreeMap/DialogPipe/internal/messaging"
	"github.com/BTreeMap/DialogPipe/internal/models"
)

// AttachmentPrompt asks for one or more attachments and succeeds when the
// reply carries any.
type AttachmentPrompt struct {
	*Prompt[[]models.Attachment]
}

// NewAttachmentPrompt creates an attachment prompt with an optional validator.
func NewAttachmentPrompt(id string, validator PromptValidator[[]models.Attachment]) *AttachmentPrompt {
	p := &AttachmentPrompt{}
	p.Prompt = newPrompt(id, p.render, p.recognize, validator)
	return p
}

func (p *AttachmentPrompt) render(ctx context.Context, tc *messaging.TurnContext, state map[string]any, opts *PromptOptions, isRetry bool) error {
	return sendPrompt(ctx, tc, opts, isRetry)
}

func (p *AttachmentPrompt) recognize(ctx context.Context, tc *messaging.TurnContext, state map[string]any, opts *PromptOptions) (PromptRecognizerResult[[]models.Attachment], error) {
	if tc.Message == nil || len(tc.Message.Attachments) == 0 {
		return PromptRecognizerResult[[]models.Attachment]{}, nil
	}
	return PromptRecognizerResult[[]models.Attachment]{Succeeded: true, Value: tc.Message.Attachments}, nil
}
