// Package dialog implements the dialog stack machine: a durable stack of
// suspended conversational tasks that survives across independent
// request/response turns. Dialog definitions are registered once in a
// DialogSet; a DialogContext created per turn operates the persisted stack.
package dialog

import (
	"context"

	"github.com/BTreeMap/DialogPipe/internal/messaging"
	"github.com/BTreeMap/DialogPipe/internal/models"
)

// EndOfTurn is the result a dialog returns when it has suspended and is
// waiting for the next inbound message.
var EndOfTurn = models.DialogTurnResult{Status: models.DialogTurnStatusWaiting}

// Dialog is a reusable multi-turn conversational unit identified by a stable
// id. The id is the serialization-safe registry key: the persisted stack
// records ids, never dialog objects.
type Dialog interface {
	// ID returns the dialog's registry id.
	ID() string

	// BeginDialog runs when a new instance of the dialog is pushed.
	BeginDialog(ctx context.Context, dc *DialogContext, options any) (models.DialogTurnResult, error)

	// ContinueDialog runs when the dialog is the active frame and raw user
	// input arrived.
	ContinueDialog(ctx context.Context, dc *DialogContext) (models.DialogTurnResult, error)

	// ResumeDialog runs when a child dialog ended and control returns to this
	// dialog with the child's result.
	ResumeDialog(ctx context.Context, dc *DialogContext, reason models.DialogReason, result any) (models.DialogTurnResult, error)

	// RepromptDialog re-renders whatever the dialog is waiting on.
	RepromptDialog(ctx context.Context, tc *messaging.TurnContext, instance *models.DialogInstance) error

	// EndDialog performs cleanup when the dialog's frame is popped.
	EndDialog(ctx context.Context, tc *messaging.TurnContext, instance *models.DialogInstance, reason models.DialogReason) error
}

// BaseDialog supplies id storage and default continue/resume/reprompt/end
// behavior for embedding in concrete dialogs. BeginDialog is deliberately
// absent so every concrete dialog must implement its own.
type BaseDialog struct {
	id string
}

// NewBaseDialog creates the embeddable base for a dialog with the given id.
func NewBaseDialog(id string) BaseDialog {
	return BaseDialog{id: id}
}

// ID returns the dialog's registry id.
func (b *BaseDialog) ID() string {
	return b.id
}

// ContinueDialog by default leaves the dialog suspended.
func (b *BaseDialog) ContinueDialog(ctx context.Context, dc *DialogContext) (models.DialogTurnResult, error) {
	return EndOfTurn, nil
}

// ResumeDialog by default leaves the dialog suspended.
func (b *BaseDialog) ResumeDialog(ctx context.Context, dc *DialogContext, reason models.DialogReason, result any) (models.DialogTurnResult, error) {
	return EndOfTurn, nil
}

// RepromptDialog by default does nothing.
func (b *BaseDialog) RepromptDialog(ctx context.Context, tc *messaging.TurnContext, instance *models.DialogInstance) error {
	return nil
}

// EndDialog by default does nothing.
func (b *BaseDialog) EndDialog(ctx context.Context, tc *messaging.TurnContext, instance *models.DialogInstance, reason models.DialogReason) error {
	return nil
}
