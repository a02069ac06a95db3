package dialog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/BTreeMap/DialogPipe/internal/messaging"
	"github.com/BTreeMap/DialogPipe/internal/models"
)

// persistedDialogsKey is where a component stores its inner stack inside the
// single outer frame's state.
const persistedDialogsKey = "dialogs"

// ComponentDialog packages a private inner dialog set behind a single outer
// frame: however deep the inner stack nests, the outer caller sees one frame.
// The inner stack is persisted inside that frame's state, so components
// survive turns exactly like plain dialogs.
type ComponentDialog struct {
	BaseDialog
	dialogs         *DialogSet
	initialDialogID string
}

// NewComponentDialog creates an empty component.
func NewComponentDialog(id string) *ComponentDialog {
	return &ComponentDialog{
		BaseDialog: NewBaseDialog(id),
		dialogs:    NewDialogSet(nil),
	}
}

// AddDialog registers a dialog in the component's private set. The first
// added dialog becomes the component's initial dialog unless overridden with
// SetInitialDialogID.
func (c *ComponentDialog) AddDialog(d Dialog) error {
	if err := c.dialogs.Add(d); err != nil {
		return err
	}
	if c.initialDialogID == "" {
		c.initialDialogID = d.ID()
	}
	return nil
}

// InitialDialogID returns the id of the dialog the component starts with.
func (c *ComponentDialog) InitialDialogID() string {
	return c.initialDialogID
}

// SetInitialDialogID overrides which inner dialog the component starts with.
func (c *ComponentDialog) SetInitialDialogID(id string) {
	c.initialDialogID = id
}

// BeginDialog starts the component's initial inner dialog on a fresh inner
// stack stored inside the outer frame.
func (c *ComponentDialog) BeginDialog(ctx context.Context, dc *DialogContext, options any) (models.DialogTurnResult, error) {
	if c.initialDialogID == "" {
		return models.DialogTurnResult{Status: models.DialogTurnStatusEmpty},
			fmt.Errorf("component %s has no dialogs: %w", c.ID(), models.ErrDialogNotFound)
	}
	instance := dc.ActiveDialog()
	innerState := &models.DialogState{}
	instance.State[persistedDialogsKey] = innerState

	innerDC := c.innerContext(dc.Turn, innerState, dc)
	slog.Debug("ComponentDialog.BeginDialog: starting inner dialog", "id", c.ID(), "initial", c.initialDialogID, "turnID", dc.Turn.TurnID)
	result, err := innerDC.BeginDialog(ctx, c.initialDialogID, options)
	if err != nil {
		return result, err
	}
	return c.forwardInnerResult(ctx, dc, result)
}

// ContinueDialog routes raw user input into the inner stack.
func (c *ComponentDialog) ContinueDialog(ctx context.Context, dc *DialogContext) (models.DialogTurnResult, error) {
	instance := dc.ActiveDialog()
	innerState := c.innerState(instance)
	instance.State[persistedDialogsKey] = innerState

	innerDC := c.innerContext(dc.Turn, innerState, dc)
	result, err := innerDC.ContinueDialog(ctx)
	if err != nil {
		return result, err
	}
	return c.forwardInnerResult(ctx, dc, result)
}

// ResumeDialog handles the unusual case of a dialog pushed on top of the
// component ending: rather than ending prematurely, the component re-prompts
// its inner stack and stays suspended.
func (c *ComponentDialog) ResumeDialog(ctx context.Context, dc *DialogContext, reason models.DialogReason, result any) (models.DialogTurnResult, error) {
	if err := c.RepromptDialog(ctx, dc.Turn, dc.ActiveDialog()); err != nil {
		return models.DialogTurnResult{Status: models.DialogTurnStatusEmpty}, err
	}
	return EndOfTurn, nil
}

// RepromptDialog forwards the re-render request to the inner active dialog.
func (c *ComponentDialog) RepromptDialog(ctx context.Context, tc *messaging.TurnContext, instance *models.DialogInstance) error {
	innerState := c.innerState(instance)
	instance.State[persistedDialogsKey] = innerState
	innerDC := NewDialogContext(c.dialogs, tc, innerState)
	return innerDC.RepromptDialog(ctx)
}

// EndDialog cancels the inner stack when the component itself is cancelled,
// so nested frames get their cleanup too.
func (c *ComponentDialog) EndDialog(ctx context.Context, tc *messaging.TurnContext, instance *models.DialogInstance, reason models.DialogReason) error {
	if reason != models.DialogReasonCancelCalled {
		return nil
	}
	innerState := c.innerState(instance)
	innerDC := NewDialogContext(c.dialogs, tc, innerState)
	_, err := innerDC.CancelAllDialogs(ctx)
	return err
}

// forwardInnerResult translates the inner stack's outcome to the outer stack:
// when the inner stack empties with a result, the component ends its own
// outer frame with that value; otherwise it stays suspended.
func (c *ComponentDialog) forwardInnerResult(ctx context.Context, dc *DialogContext, result models.DialogTurnResult) (models.DialogTurnResult, error) {
	if result.Status == models.DialogTurnStatusComplete {
		slog.Debug("ComponentDialog: inner stack complete, ending component", "id", c.ID(), "turnID", dc.Turn.TurnID)
		return dc.EndDialog(ctx, result.Result)
	}
	if result.Status == models.DialogTurnStatusCancelled {
		return dc.EndDialog(ctx, nil)
	}
	return EndOfTurn, nil
}

func (c *ComponentDialog) innerContext(tc *messaging.TurnContext, state *models.DialogState, parent *DialogContext) *DialogContext {
	inner := NewDialogContext(c.dialogs, tc, state)
	inner.parent = parent
	return inner
}

// innerState rebuilds the component's typed inner stack from the outer
// frame's state. After a JSON reload the stored value is a generic map, so it
// round-trips through JSON back into a DialogState; anything unreadable
// degrades to an empty inner stack.
func (c *ComponentDialog) innerState(instance *models.DialogInstance) *models.DialogState {
	raw, ok := instance.State[persistedDialogsKey]
	if !ok {
		return &models.DialogState{}
	}
	if state, ok := raw.(*models.DialogState); ok {
		return state
	}
	data, err := json.Marshal(raw)
	if err != nil {
		slog.Warn("ComponentDialog: unreadable inner state, starting empty", "id", c.ID(), "error", err)
		return &models.DialogState{}
	}
	var state models.DialogState
	if err := json.Unmarshal(data, &state); err != nil {
		slog.Warn("ComponentDialog: unreadable inner state, starting empty", "id", c.ID(), "error", err)
		return &models.DialogState{}
	}
	for _, frame := range state.DialogStack {
		if frame.State == nil {
			frame.State = make(map[string]any)
		}
	}
	return &state
}
