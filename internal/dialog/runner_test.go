package dialog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/BTreeMap/DialogPipe/internal/dialog"
	"github.com/BTreeMap/DialogPipe/internal/models"
	"github.com/BTreeMap/DialogPipe/internal/testutil"
)

func TestRunTurnStartsRootOnEmptyStack(t *testing.T) {
	dt := testutil.NewDialogTester(t, "ask")
	dt.MustAdd(t, newAskDialog("ask", "Name?"))

	result := dt.Send(t, "hello")
	testutil.AssertStatus(t, result, models.DialogTurnStatusWaiting)
	dt.AssertReply(t, "Name?")
}

func TestRunTurnRequiresRootDialog(t *testing.T) {
	dt := testutil.NewDialogTester(t, "ask")
	dt.MustAdd(t, newAskDialog("ask", "?"))

	runner := dialog.NewDialogRunner(dt.Dialogs, "")
	_, err := runner.RunTurn(context.Background(), newTurn("hi", dt))
	if !errors.Is(err, models.ErrNoRootDialog) {
		t.Errorf("expected ErrNoRootDialog, got %v", err)
	}
}

func TestRunTurnRejectsUnregisteredRoot(t *testing.T) {
	dt := testutil.NewDialogTester(t, "ask")
	dt.MustAdd(t, newAskDialog("ask", "?"))

	runner := dialog.NewDialogRunner(dt.Dialogs, "missing")
	_, err := runner.RunTurn(context.Background(), newTurn("hi", dt))
	if !errors.Is(err, models.ErrDialogNotFound) {
		t.Errorf("expected ErrDialogNotFound, got %v", err)
	}
}

func TestRunTurnRestartsAfterCompletion(t *testing.T) {
	dt := testutil.NewDialogTester(t, "ask")
	dt.MustAdd(t, newAskDialog("ask", "Name?"))

	dt.Send(t, "hi")
	result := dt.Send(t, "Ada")
	testutil.AssertStatus(t, result, models.DialogTurnStatusComplete)

	// The next message begins a fresh activation.
	result = dt.Send(t, "hi again")
	testutil.AssertStatus(t, result, models.DialogTurnStatusWaiting)
	dt.AssertReply(t, "Name?")
}

func TestRunTurnRecoversFromCorruptedState(t *testing.T) {
	dt := testutil.NewDialogTester(t, "ask")
	dt.MustAdd(t, newAskDialog("ask", "Name?"))

	// Poison the persisted record; the engine must start fresh, not fail.
	err := dt.Store.Write(context.Background(), map[string]map[string]any{
		"dialogstate/test-conversation": {"dialogStack": "garbage"},
	})
	if err != nil {
		t.Fatalf("failed to poison record: %v", err)
	}

	result := dt.Send(t, "hello")
	testutil.AssertStatus(t, result, models.DialogTurnStatusWaiting)
	dt.AssertReply(t, "Name?")
}
