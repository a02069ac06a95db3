package dialog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/BTreeMap/DialogPipe/internal/messaging"
	"github.com/BTreeMap/DialogPipe/internal/models"
)

// DialogContext is the per-turn cursor over one conversation's dialog stack.
// It pairs the registry with the loaded stack and implements the push/pop
// protocol. Exactly one DialogContext owns a conversation's state per turn.
type DialogContext struct {
	// Dialogs is the registry the context resolves ids against.
	Dialogs *DialogSet

	// Turn is the turn this context operates within.
	Turn *messaging.TurnContext

	state  *models.DialogState
	parent *DialogContext
}

// NewDialogContext creates a context over an already-loaded dialog state.
// Hosts normally obtain contexts through DialogSet.CreateContext instead.
func NewDialogContext(dialogs *DialogSet, tc *messaging.TurnContext, state *models.DialogState) *DialogContext {
	if state.DialogStack == nil {
		state.DialogStack = []*models.DialogInstance{}
	}
	return &DialogContext{Dialogs: dialogs, Turn: tc, state: state}
}

// State returns the dialog state the context operates on.
func (dc *DialogContext) State() *models.DialogState {
	return dc.state
}

// Stack returns the current dialog stack, bottom first.
func (dc *DialogContext) Stack() []*models.DialogInstance {
	return dc.state.DialogStack
}

// ActiveDialog returns the top frame of the stack, or nil when the stack is
// empty. Only the active frame ever receives continuations.
func (dc *DialogContext) ActiveDialog() *models.DialogInstance {
	if len(dc.state.DialogStack) == 0 {
		return nil
	}
	return dc.state.DialogStack[len(dc.state.DialogStack)-1]
}

// Parent returns the outer context when this context drives a component's
// inner stack, or nil at the outermost level.
func (dc *DialogContext) Parent() *DialogContext {
	return dc.parent
}

// BeginDialog pushes a new instance of the identified dialog onto the stack
// with empty state and invokes its begin behavior with the given options.
func (dc *DialogContext) BeginDialog(ctx context.Context, dialogID string, options any) (models.DialogTurnResult, error) {
	d, ok := dc.Dialogs.Find(dialogID)
	if !ok {
		slog.Error("DialogContext.BeginDialog: unknown dialog", "id", dialogID, "turnID", dc.Turn.TurnID)
		return models.DialogTurnResult{Status: models.DialogTurnStatusEmpty},
			fmt.Errorf("%w: %s", models.ErrDialogNotFound, dialogID)
	}
	slog.Debug("DialogContext.BeginDialog: pushing dialog", "id", dialogID, "turnID", dc.Turn.TurnID, "depth", len(dc.state.DialogStack))
	instance := &models.DialogInstance{
		ID:    dialogID,
		State: make(map[string]any),
	}
	dc.state.DialogStack = append(dc.state.DialogStack, instance)
	return d.BeginDialog(ctx, dc, options)
}

// Prompt is sugar for beginning a prompt dialog with the given options.
func (dc *DialogContext) Prompt(ctx context.Context, dialogID string, options any) (models.DialogTurnResult, error) {
	return dc.BeginDialog(ctx, dialogID, options)
}

// ContinueDialog routes raw user input to the active frame. An empty stack
// reports DialogTurnStatusEmpty without error.
func (dc *DialogContext) ContinueDialog(ctx context.Context) (models.DialogTurnResult, error) {
	instance := dc.ActiveDialog()
	if instance == nil {
		slog.Debug("DialogContext.ContinueDialog: empty stack", "turnID", dc.Turn.TurnID)
		return models.DialogTurnResult{Status: models.DialogTurnStatusEmpty}, nil
	}
	d, ok := dc.Dialogs.Find(instance.ID)
	if !ok {
		slog.Error("DialogContext.ContinueDialog: active dialog not registered", "id", instance.ID, "turnID", dc.Turn.TurnID)
		return models.DialogTurnResult{Status: models.DialogTurnStatusEmpty},
			fmt.Errorf("%w: %s", models.ErrDialogNotFound, instance.ID)
	}
	slog.Debug("DialogContext.ContinueDialog: continuing active dialog", "id", instance.ID, "turnID", dc.Turn.TurnID)
	return d.ContinueDialog(ctx, dc)
}

// EndDialog pops the active frame and resumes the new top of the stack with
// the popped dialog's result. When the stack empties it surfaces a Complete
// result carrying the value instead.
func (dc *DialogContext) EndDialog(ctx context.Context, result any) (models.DialogTurnResult, error) {
	if err := dc.endActiveDialog(ctx, models.DialogReasonEndCalled); err != nil {
		return models.DialogTurnResult{Status: models.DialogTurnStatusEmpty}, err
	}

	instance := dc.ActiveDialog()
	if instance == nil {
		slog.Debug("DialogContext.EndDialog: stack empty, turn complete", "turnID", dc.Turn.TurnID)
		return models.DialogTurnResult{Status: models.DialogTurnStatusComplete, Result: result}, nil
	}
	d, ok := dc.Dialogs.Find(instance.ID)
	if !ok {
		slog.Error("DialogContext.EndDialog: parent dialog not registered", "id", instance.ID, "turnID", dc.Turn.TurnID)
		return models.DialogTurnResult{Status: models.DialogTurnStatusEmpty},
			fmt.Errorf("%w: %s", models.ErrDialogNotFound, instance.ID)
	}
	slog.Debug("DialogContext.EndDialog: resuming parent", "id", instance.ID, "turnID", dc.Turn.TurnID)
	return d.ResumeDialog(ctx, dc, models.DialogReasonEndCalled, result)
}

// ReplaceDialog pops the active frame without emitting a completion signal
// and immediately pushes the identified dialog, preserving stack depth across
// a dialog restart.
func (dc *DialogContext) ReplaceDialog(ctx context.Context, dialogID string, options any) (models.DialogTurnResult, error) {
	if err := dc.endActiveDialog(ctx, models.DialogReasonReplaceCalled); err != nil {
		return models.DialogTurnResult{Status: models.DialogTurnStatusEmpty}, err
	}
	slog.Debug("DialogContext.ReplaceDialog: replacing with", "id", dialogID, "turnID", dc.Turn.TurnID)
	return dc.BeginDialog(ctx, dialogID, options)
}

// CancelAllDialogs pops every frame on the stack, invoking per-frame cleanup,
// and reports Cancelled. An already-empty stack reports Empty.
func (dc *DialogContext) CancelAllDialogs(ctx context.Context) (models.DialogTurnResult, error) {
	if len(dc.state.DialogStack) == 0 {
		return models.DialogTurnResult{Status: models.DialogTurnStatusEmpty}, nil
	}
	slog.Debug("DialogContext.CancelAllDialogs: cancelling stack", "depth", len(dc.state.DialogStack), "turnID", dc.Turn.TurnID)
	for len(dc.state.DialogStack) > 0 {
		if err := dc.endActiveDialog(ctx, models.DialogReasonCancelCalled); err != nil {
			return models.DialogTurnResult{Status: models.DialogTurnStatusEmpty}, err
		}
	}
	return models.DialogTurnResult{Status: models.DialogTurnStatusCancelled}, nil
}

// RepromptDialog asks the active dialog to re-render whatever it is waiting
// on. A missing active dialog is a no-op.
func (dc *DialogContext) RepromptDialog(ctx context.Context) error {
	instance := dc.ActiveDialog()
	if instance == nil {
		slog.Debug("DialogContext.RepromptDialog: empty stack, nothing to reprompt", "turnID", dc.Turn.TurnID)
		return nil
	}
	d, ok := dc.Dialogs.Find(instance.ID)
	if !ok {
		return fmt.Errorf("%w: %s", models.ErrDialogNotFound, instance.ID)
	}
	return d.RepromptDialog(ctx, dc.Turn, instance)
}

// endActiveDialog pops exactly one frame, running the dialog's cleanup first
// when the definition is still registered.
func (dc *DialogContext) endActiveDialog(ctx context.Context, reason models.DialogReason) error {
	instance := dc.ActiveDialog()
	if instance == nil {
		return nil
	}
	if d, ok := dc.Dialogs.Find(instance.ID); ok {
		if err := d.EndDialog(ctx, dc.Turn, instance, reason); err != nil {
			return fmt.Errorf("cleanup of dialog %s failed: %w", instance.ID, err)
		}
	}
	dc.state.DialogStack = dc.state.DialogStack[:len(dc.state.DialogStack)-1]
	return nil
}
