// Package prompts implements two-phase ask/recognize/validate/retry dialogs
// built on the dialog stack machine, plus the channel-adaptive rendering of
// choice lists they use.
package prompts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/BTreeMap/DialogPipe/internal/dialog"
	"github.com/BTreeMap/DialogPipe/internal/messaging"
	"github.com/BTreeMap/DialogPipe/internal/models"
)

// Keys for prompt frame state
const (
	persistedOptionsKey = "options"
	persistedStateKey   = "state"
	attemptCountKey     = "attemptCount"
)

// PromptOptions configures one activation of a prompt.
type PromptOptions struct {
	// Prompt is the message asked when the prompt starts.
	Prompt *models.Message `json:"prompt,omitempty"`

	// RetryPrompt is asked after a rejected answer; when nil the original
	// prompt is re-asked.
	RetryPrompt *models.Message `json:"retryPrompt,omitempty"`

	// Choices are the candidate answers for choice-style prompts.
	Choices []models.Choice `json:"choices,omitempty"`

	// Style overrides the prompt's configured list style for this activation.
	Style ListStyle `json:"style,omitempty"`

	// Validations carries caller data through to the validator.
	Validations any `json:"validations,omitempty"`
}

// PromptRecognizerResult is a typed, possibly-failed recognition outcome.
// Failure is a value, never an error.
type PromptRecognizerResult[T any] struct {
	Succeeded bool
	Value     T
}

// PromptValidatorContext is handed to a validator on every recognition
// attempt. The validator may mutate Recognized.Value before accepting, may
// send its own messages through Turn, and may accept even when recognition
// failed (soft defaults).
type PromptValidatorContext[T any] struct {
	Recognized *PromptRecognizerResult[T]
	Turn       *messaging.TurnContext
	Options    *PromptOptions
	State      map[string]any
	// AttemptCount is the number of recognition attempts so far, this one
	// included. The engine imposes no cap; validators that want one end the
	// retry loop by accepting a default.
	AttemptCount int
}

// PromptValidator is a caller-supplied gate on prompt acceptance.
type PromptValidator[T any] func(ctx context.Context, pvc *PromptValidatorContext[T]) (bool, error)

// renderFunc renders the ask (or the retry re-ask) for a prompt subtype.
type renderFunc func(ctx context.Context, tc *messaging.TurnContext, state map[string]any, opts *PromptOptions, isRetry bool) error

// recognizeFunc maps the turn's inbound message to a typed result.
type recognizeFunc[T any] func(ctx context.Context, tc *messaging.TurnContext, state map[string]any, opts *PromptOptions) (PromptRecognizerResult[T], error)

// Prompt is the generic two-phase prompt machine: begin renders the ask and
// suspends; every continuation recognizes, validates, and either ends with
// the accepted value or re-renders and stays suspended on the same frame.
// Retries are unbounded.
type Prompt[T any] struct {
	dialog.BaseDialog
	onPrompt    renderFunc
	onRecognize recognizeFunc[T]
	validator   PromptValidator[T]
}

func newPrompt[T any](id string, onPrompt renderFunc, onRecognize recognizeFunc[T], validator PromptValidator[T]) *Prompt[T] {
	return &Prompt[T]{
		BaseDialog:  dialog.NewBaseDialog(id),
		onPrompt:    onPrompt,
		onRecognize: onRecognize,
		validator:   validator,
	}
}

// BeginDialog renders the prompt and suspends awaiting input.
func (p *Prompt[T]) BeginDialog(ctx context.Context, dc *dialog.DialogContext, options any) (models.DialogTurnResult, error) {
	opts, err := ensurePromptOptions(options)
	if err != nil {
		return models.DialogTurnResult{Status: models.DialogTurnStatusEmpty},
			fmt.Errorf("prompt %s: %w", p.ID(), err)
	}

	instance := dc.ActiveDialog()
	state := map[string]any{attemptCountKey: 0}
	instance.State[persistedStateKey] = state
	instance.State[persistedOptionsKey] = opts

	slog.Debug("Prompt.BeginDialog: rendering prompt", "id", p.ID(), "turnID", dc.Turn.TurnID)
	if err := p.onPrompt(ctx, dc.Turn, state, opts, false); err != nil {
		return models.DialogTurnResult{Status: models.DialogTurnStatusEmpty},
			fmt.Errorf("prompt %s failed to render: %w", p.ID(), err)
	}
	return dialog.EndOfTurn, nil
}

// ContinueDialog recognizes the inbound message, applies the validator, and
// either accepts (ending the frame with the value) or re-renders the retry
// prompt and remains suspended on the same frame.
func (p *Prompt[T]) ContinueDialog(ctx context.Context, dc *dialog.DialogContext) (models.DialogTurnResult, error) {
	instance := dc.ActiveDialog()
	state := promptState(instance)
	opts := promptOptions(instance)

	recognized, err := p.onRecognize(ctx, dc.Turn, state, opts)
	if err != nil {
		return models.DialogTurnResult{Status: models.DialogTurnStatusEmpty},
			fmt.Errorf("prompt %s recognizer failed: %w", p.ID(), err)
	}

	attempts := stateInt(state, attemptCountKey) + 1
	state[attemptCountKey] = attempts

	accepted := recognized.Succeeded
	if p.validator != nil {
		pvc := &PromptValidatorContext[T]{
			Recognized:   &recognized,
			Turn:         dc.Turn,
			Options:      opts,
			State:        state,
			AttemptCount: attempts,
		}
		accepted, err = p.validator(ctx, pvc)
		if err != nil {
			return models.DialogTurnResult{Status: models.DialogTurnStatusEmpty},
				fmt.Errorf("prompt %s validator failed: %w", p.ID(), err)
		}
	}

	if accepted {
		slog.Debug("Prompt.ContinueDialog: input accepted", "id", p.ID(), "attempts", attempts, "turnID", dc.Turn.TurnID)
		return dc.EndDialog(ctx, recognized.Value)
	}

	slog.Debug("Prompt.ContinueDialog: input rejected, retrying", "id", p.ID(), "attempts", attempts, "turnID", dc.Turn.TurnID)
	// A validator that already spoke suppresses the automatic retry message.
	if !dc.Turn.Responded() {
		if err := p.onPrompt(ctx, dc.Turn, state, opts, true); err != nil {
			return models.DialogTurnResult{Status: models.DialogTurnStatusEmpty},
				fmt.Errorf("prompt %s failed to render retry: %w", p.ID(), err)
		}
	}
	return dialog.EndOfTurn, nil
}

// ResumeDialog handles a dialog pushed on top of the prompt ending: the
// prompt re-asks and stays suspended instead of misreading the event as an
// answer.
func (p *Prompt[T]) ResumeDialog(ctx context.Context, dc *dialog.DialogContext, reason models.DialogReason, result any) (models.DialogTurnResult, error) {
	if err := p.RepromptDialog(ctx, dc.Turn, dc.ActiveDialog()); err != nil {
		return models.DialogTurnResult{Status: models.DialogTurnStatusEmpty}, err
	}
	return dialog.EndOfTurn, nil
}

// RepromptDialog re-renders the original ask.
func (p *Prompt[T]) RepromptDialog(ctx context.Context, tc *messaging.TurnContext, instance *models.DialogInstance) error {
	state := promptState(instance)
	opts := promptOptions(instance)
	return p.onPrompt(ctx, tc, state, opts, false)
}

// ensurePromptOptions coerces begin options into *PromptOptions.
func ensurePromptOptions(options any) (*PromptOptions, error) {
	switch o := options.(type) {
	case nil:
		return &PromptOptions{}, nil
	case *PromptOptions:
		return o, nil
	case PromptOptions:
		return &o, nil
	default:
		return nil, fmt.Errorf("%w: expected PromptOptions, got %T", models.ErrInvalidOptions, options)
	}
}

// promptState returns the frame's prompt-private state map.
func promptState(instance *models.DialogInstance) map[string]any {
	if raw, ok := instance.State[persistedStateKey]; ok {
		if state, ok := raw.(map[string]any); ok {
			return state
		}
	}
	state := make(map[string]any)
	instance.State[persistedStateKey] = state
	return state
}

// promptOptions rebuilds the activation's options from the frame state,
// round-tripping through JSON after a reload turned them generic.
func promptOptions(instance *models.DialogInstance) *PromptOptions {
	raw, ok := instance.State[persistedOptionsKey]
	if !ok {
		return &PromptOptions{}
	}
	if opts, ok := raw.(*PromptOptions); ok {
		return opts
	}
	data, err := json.Marshal(raw)
	if err != nil {
		slog.Warn("prompts: unreadable persisted options, using empty", "error", err)
		return &PromptOptions{}
	}
	var opts PromptOptions
	if err := json.Unmarshal(data, &opts); err != nil {
		slog.Warn("prompts: unreadable persisted options, using empty", "error", err)
		return &PromptOptions{}
	}
	return &opts
}

// stateInt reads an integer from prompt state, tolerating the float64 form
// integers take after a JSON round trip.
func stateInt(state map[string]any, key string) int {
	switch v := state[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	}
	return 0
}

// sendPrompt sends the activation's ask (or retry) message when one is
// configured.
func sendPrompt(ctx context.Context, tc *messaging.TurnContext, opts *PromptOptions, isRetry bool) error {
	msg := opts.Prompt
	if isRetry && opts.RetryPrompt != nil {
		msg = opts.RetryPrompt
	}
	if msg == nil {
		return nil
	}
	return tc.SendMessage(ctx, msg)
}
