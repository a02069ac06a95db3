package messaging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/BTreeMap/DialogPipe/internal/models"
	"github.com/google/uuid"
)

// TurnContext is the per-turn view handed to dialogs: the inbound message,
// the conversation it belongs to, and the outbound send operation. A fresh
// TurnContext is created for every inbound message; it must not be retained
// across turns.
type TurnContext struct {
	// TurnID is a unique identifier for this turn, used for log correlation.
	TurnID string

	// ConversationKey identifies the conversation whose dialog state this
	// turn operates on. It doubles as the outbound recipient address.
	ConversationKey string

	// Message is the inbound message that triggered this turn.
	Message *models.Message

	sender    Sender
	responded bool
}

// NewTurnContext creates the context for one turn of a conversation.
func NewTurnContext(conversationKey string, msg *models.Message, sender Sender) *TurnContext {
	tc := &TurnContext{
		TurnID:          uuid.NewString(),
		ConversationKey: conversationKey,
		Message:         msg,
		sender:          sender,
	}
	slog.Debug("TurnContext created", "turnID", tc.TurnID, "conversation", conversationKey)
	return tc
}

// SendText sends a plain text reply into the conversation.
func (tc *TurnContext) SendText(ctx context.Context, text string) error {
	if tc.sender == nil {
		return fmt.Errorf("turn %s has no sender configured", tc.TurnID)
	}
	if err := tc.sender.SendMessage(ctx, tc.ConversationKey, text); err != nil {
		slog.Error("TurnContext SendText failed", "error", err, "turnID", tc.TurnID)
		return fmt.Errorf("failed to send message: %w", err)
	}
	tc.responded = true
	slog.Debug("TurnContext SendText succeeded", "turnID", tc.TurnID)
	return nil
}

// SendMessage sends a full message activity into the conversation.
func (tc *TurnContext) SendMessage(ctx context.Context, msg *models.Message) error {
	if tc.sender == nil {
		return fmt.Errorf("turn %s has no sender configured", tc.TurnID)
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("refusing to send invalid message: %w", err)
	}
	if err := tc.sender.SendTypedMessage(ctx, tc.ConversationKey, msg); err != nil {
		slog.Error("TurnContext SendMessage failed", "error", err, "turnID", tc.TurnID)
		return fmt.Errorf("failed to send message: %w", err)
	}
	tc.responded = true
	slog.Debug("TurnContext SendMessage succeeded", "turnID", tc.TurnID)
	return nil
}

// Responded reports whether anything has been sent during this turn.
func (tc *TurnContext) Responded() bool {
	return tc.responded
}

// ChannelID returns the channel the inbound message arrived on, defaulting to
// the console channel when the message carries none.
func (tc *TurnContext) ChannelID() string {
	if tc.Message != nil && tc.Message.ChannelID != "" {
		return tc.Message.ChannelID
	}
	return models.ChannelConsole
}

// IsGroupConversation reports whether the inbound message belongs to a group
// conversation.
func (tc *TurnContext) IsGroupConversation() bool {
	return tc.Message != nil && tc.Message.Conversation.IsGroup
}
