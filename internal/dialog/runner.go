package dialog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/BTreeMap/DialogPipe/internal/messaging"
	"github.com/BTreeMap/DialogPipe/internal/models"
)

// DialogRunner drives one conversation turn end to end: load the persisted
// stack, resume the active dialog or start the root one, then persist the
// stack again. It is the host-side loop the engine assumes but does not own.
type DialogRunner struct {
	dialogs      *DialogSet
	rootDialogID string
}

// NewDialogRunner creates a runner over a dialog set rooted at the given
// dialog id.
func NewDialogRunner(dialogs *DialogSet, rootDialogID string) *DialogRunner {
	return &DialogRunner{dialogs: dialogs, rootDialogID: rootDialogID}
}

// RunTurn processes one inbound message against the conversation's dialog
// stack. When the stack is empty the root dialog is started; otherwise the
// active dialog continues. The (possibly mutated) stack is saved before the
// result is returned, so a crash between turns never loses accepted input.
func (r *DialogRunner) RunTurn(ctx context.Context, tc *messaging.TurnContext) (models.DialogTurnResult, error) {
	empty := models.DialogTurnResult{Status: models.DialogTurnStatusEmpty}
	if r.rootDialogID == "" {
		slog.Error("DialogRunner.RunTurn: no root dialog configured")
		return empty, models.ErrNoRootDialog
	}
	if _, ok := r.dialogs.Find(r.rootDialogID); !ok {
		slog.Error("DialogRunner.RunTurn: root dialog not registered", "id", r.rootDialogID)
		return empty, fmt.Errorf("%w: %s", models.ErrDialogNotFound, r.rootDialogID)
	}

	dc, err := r.dialogs.CreateContext(ctx, tc)
	if err != nil {
		return empty, err
	}

	result, err := dc.ContinueDialog(ctx)
	if err != nil {
		return empty, err
	}
	if result.Status == models.DialogTurnStatusEmpty {
		slog.Debug("DialogRunner.RunTurn: empty stack, starting root dialog", "id", r.rootDialogID, "turnID", tc.TurnID)
		result, err = dc.BeginDialog(ctx, r.rootDialogID, nil)
		if err != nil {
			return empty, err
		}
	}

	if err := r.dialogs.SaveContext(ctx, dc); err != nil {
		return empty, err
	}
	slog.Debug("DialogRunner.RunTurn: turn finished", "turnID", tc.TurnID, "status", result.Status)
	return result, nil
}
