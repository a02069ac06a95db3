package dialog_test

import (
	"context"
	"errors"

	"github.com/BTreeMap/DialogPipe/internal/dialog"
	"github.com/BTreeMap/DialogPipe/internal/messaging"
	"github.com/BTreeMap/DialogPipe/internal/models"
	"github.com/BTreeMap/DialogPipe/internal/testutil"
)

var errStep = errors.New("simulated step failure")

// newTurn builds a turn context for driving a dialog context by hand.
func newTurn(text string, dt *testutil.DialogTester) *messaging.TurnContext {
	return messaging.NewTurnContext("test-conversation", models.NewMessage(text), dt.Sender)
}

// askDialog suspends with a question on begin and completes with the reply on
// the next turn.
type askDialog struct {
	dialog.BaseDialog
	question string
}

func newAskDialog(id, question string) *askDialog {
	return &askDialog{BaseDialog: dialog.NewBaseDialog(id), question: question}
}

func (d *askDialog) BeginDialog(ctx context.Context, dc *dialog.DialogContext, options any) (models.DialogTurnResult, error) {
	if err := dc.Turn.SendText(ctx, d.question); err != nil {
		return models.DialogTurnResult{Status: models.DialogTurnStatusEmpty}, err
	}
	return dialog.EndOfTurn, nil
}

func (d *askDialog) ContinueDialog(ctx context.Context, dc *dialog.DialogContext) (models.DialogTurnResult, error) {
	var reply string
	if dc.Turn.Message != nil {
		reply = dc.Turn.Message.Text
	}
	return dc.EndDialog(ctx, reply)
}

func (d *askDialog) RepromptDialog(ctx context.Context, tc *messaging.TurnContext, instance *models.DialogInstance) error {
	return tc.SendText(ctx, d.question)
}
