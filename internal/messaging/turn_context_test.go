package messaging

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/BTreeMap/DialogPipe/internal/models"
)

type recordingSender struct {
	mu    sync.Mutex
	texts []string
	typed []*models.Message
}

func (r *recordingSender) SendMessage(ctx context.Context, to, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, body)
	return nil
}

func (r *recordingSender) SendTypedMessage(ctx context.Context, to string, msg *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.typed = append(r.typed, msg)
	return nil
}

func TestTurnContextSendTextMarksResponded(t *testing.T) {
	sender := &recordingSender{}
	tc := NewTurnContext("conv", models.NewMessage("hi"), sender)

	if tc.Responded() {
		t.Error("expected fresh turn to be unresponded")
	}
	if err := tc.SendText(context.Background(), "hello"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if !tc.Responded() {
		t.Error("expected turn to be marked responded")
	}
	if len(sender.texts) != 1 || sender.texts[0] != "hello" {
		t.Errorf("unexpected sends %v", sender.texts)
	}
}

func TestTurnContextSendMessageValidates(t *testing.T) {
	sender := &recordingSender{}
	tc := NewTurnContext("conv", models.NewMessage("hi"), sender)

	err := tc.SendMessage(context.Background(), &models.Message{Type: models.MessageTypeMessage})
	if err == nil {
		t.Fatal("expected validation failure for empty message")
	}
	if tc.Responded() {
		t.Error("expected failed send to leave turn unresponded")
	}
	if len(sender.typed) != 0 {
		t.Errorf("expected nothing sent, got %d", len(sender.typed))
	}
}

func TestTurnContextNoSender(t *testing.T) {
	tc := NewTurnContext("conv", models.NewMessage("hi"), nil)
	if err := tc.SendText(context.Background(), "hello"); err == nil {
		t.Error("expected error without a sender")
	}
}

func TestTurnContextUniqueTurnIDs(t *testing.T) {
	a := NewTurnContext("conv", nil, nil)
	b := NewTurnContext("conv", nil, nil)
	if a.TurnID == "" || a.TurnID == b.TurnID {
		t.Errorf("expected distinct turn ids, got %q and %q", a.TurnID, b.TurnID)
	}
}

func TestTurnContextChannelID(t *testing.T) {
	tc := NewTurnContext("conv", nil, nil)
	if got := tc.ChannelID(); got != models.ChannelConsole {
		t.Errorf("expected console default, got %q", got)
	}

	msg := models.NewMessage("hi")
	msg.ChannelID = models.ChannelWhatsApp
	tc = NewTurnContext("conv", msg, nil)
	if got := tc.ChannelID(); got != models.ChannelWhatsApp {
		t.Errorf("expected whatsapp, got %q", got)
	}
}

func TestTurnContextGroupConversation(t *testing.T) {
	msg := models.NewMessage("hi")
	msg.Conversation = models.ConversationAccount{ID: "room", IsGroup: true}
	tc := NewTurnContext("room", msg, nil)
	if !tc.IsGroupConversation() {
		t.Error("expected group conversation")
	}
	if NewTurnContext("conv", models.NewMessage("hi"), nil).IsGroupConversation() {
		t.Error("expected direct conversation by default")
	}
}

func TestConsoleSenderRendersSuggestedActions(t *testing.T) {
	var buf strings.Builder
	sender := NewConsoleSender(&buf)

	msg := models.NewMessage("Pick one:")
	msg.SuggestedActions = &models.SuggestedActions{Actions: []models.CardAction{
		{Type: models.CardActionTypeImBack, Title: "red", Value: "red"},
		{Type: models.CardActionTypeImBack, Title: "green", Value: "green"},
	}}
	if err := sender.SendTypedMessage(context.Background(), "conv", msg); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Pick one:") {
		t.Errorf("expected prompt text in output, got %q", out)
	}
	if !strings.Contains(out, "1. red") || !strings.Contains(out, "2. green") {
		t.Errorf("expected numbered actions in output, got %q", out)
	}
}
