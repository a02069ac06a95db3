// Package testutil provides common test utilities and helpers for DialogPipe tests.
package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/BTreeMap/DialogPipe/internal/dialog"
	"github.com/BTreeMap/DialogPipe/internal/messaging"
	"github.com/BTreeMap/DialogPipe/internal/models"
	"github.com/BTreeMap/DialogPipe/internal/store"
)

// CaptureSender is a messaging.Sender that records everything sent instead of
// delivering it.
type CaptureSender struct {
	mu       sync.Mutex
	Texts    []string
	Messages []*models.Message
}

// NewCaptureSender creates an empty capturing sender.
func NewCaptureSender() *CaptureSender {
	return &CaptureSender{}
}

// SendMessage records a plain text send.
func (c *CaptureSender) SendMessage(ctx context.Context, to, body string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Texts = append(c.Texts, body)
	c.Messages = append(c.Messages, models.NewMessage(body))
	return nil
}

// SendTypedMessage records a full message send.
func (c *CaptureSender) SendTypedMessage(ctx context.Context, to string, msg *models.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Texts = append(c.Texts, msg.Text)
	c.Messages = append(c.Messages, msg)
	return nil
}

// LastText returns the most recent sent text, or "" when nothing was sent.
func (c *CaptureSender) LastText() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.Texts) == 0 {
		return ""
	}
	return c.Texts[len(c.Texts)-1]
}

// LastMessage returns the most recent sent message, or nil.
func (c *CaptureSender) LastMessage() *models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// Reset clears the captured sends.
func (c *CaptureSender) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Texts = nil
	c.Messages = nil
}

// DialogTester drives a registered dialog set through simulated turns with
// in-memory storage. It centralizes the wiring used across dialog and prompt
// tests.
type DialogTester struct {
	Store    *store.InMemoryStore
	Accessor *dialog.DialogStateAccessor
	Dialogs  *dialog.DialogSet
	Runner   *dialog.DialogRunner
	Sender   *CaptureSender

	conversationKey string
}

// NewDialogTester creates a tester whose root dialog is rootID. Register
// dialogs on Dialogs before sending turns.
func NewDialogTester(t *testing.T, rootID string) *DialogTester {
	t.Helper()
	st := store.NewInMemoryStore()
	accessor := dialog.NewDialogStateAccessor(st)
	set := dialog.NewDialogSet(accessor)
	return &DialogTester{
		Store:           st,
		Accessor:        accessor,
		Dialogs:         set,
		Runner:          dialog.NewDialogRunner(set, rootID),
		Sender:          NewCaptureSender(),
		conversationKey: "test-conversation",
	}
}

// MustAdd registers a dialog, failing the test on error.
func (dt *DialogTester) MustAdd(t *testing.T, d dialog.Dialog) {
	t.Helper()
	if err := dt.Dialogs.Add(d); err != nil {
		t.Fatalf("failed to register dialog: %v", err)
	}
}

// Send runs one turn with the given inbound text and returns the turn result.
func (dt *DialogTester) Send(t *testing.T, text string) models.DialogTurnResult {
	t.Helper()
	msg := models.NewMessage(text)
	tc := messaging.NewTurnContext(dt.conversationKey, msg, dt.Sender)
	result, err := dt.Runner.RunTurn(context.Background(), tc)
	if err != nil {
		t.Fatalf("turn failed for input %q: %v", text, err)
	}
	return result
}

// SendMessage runs one turn with a full inbound message.
func (dt *DialogTester) SendMessage(t *testing.T, msg *models.Message) models.DialogTurnResult {
	t.Helper()
	tc := messaging.NewTurnContext(dt.conversationKey, msg, dt.Sender)
	result, err := dt.Runner.RunTurn(context.Background(), tc)
	if err != nil {
		t.Fatalf("turn failed: %v", err)
	}
	return result
}

// AssertStatus fails the test unless the result carries the expected status.
func AssertStatus(t *testing.T, result models.DialogTurnResult, expected models.DialogTurnStatus) {
	t.Helper()
	if result.Status != expected {
		t.Errorf("expected turn status %q, got %q", expected, result.Status)
	}
}

// AssertReply fails the test unless the most recent reply equals expected.
func (dt *DialogTester) AssertReply(t *testing.T, expected string) {
	t.Helper()
	if got := dt.Sender.LastText(); got != expected {
		t.Errorf("expected reply %q, got %q", expected, got)
	}
}

// StackDepth returns the persisted dialog stack depth for the test
// conversation.
func (dt *DialogTester) StackDepth(t *testing.T) int {
	t.Helper()
	state, err := dt.Accessor.Load(context.Background(), dt.conversationKey)
	if err != nil {
		t.Fatalf("failed to load dialog state: %v", err)
	}
	return len(state.DialogStack)
}
