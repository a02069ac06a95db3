package messaging

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/BTreeMap/DialogPipe/internal/models"
)

// ConsoleSender is a Sender that writes replies to an io.Writer. It backs the
// interactive console host and doubles as a simple adapter example.
type ConsoleSender struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsoleSender creates a sender writing to w.
func NewConsoleSender(w io.Writer) *ConsoleSender {
	return &ConsoleSender{w: w}
}

// SendMessage writes a text reply.
func (s *ConsoleSender) SendMessage(ctx context.Context, to string, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintf(s.w, "%s\n", body)
	return err
}

// SendTypedMessage flattens a message activity to text: suggested actions are
// rendered as a numbered list and attachments as bracketed names.
func (s *ConsoleSender) SendTypedMessage(ctx context.Context, to string, msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg.Text != "" {
		if _, err := fmt.Fprintf(s.w, "%s\n", msg.Text); err != nil {
			return err
		}
	}
	if msg.SuggestedActions != nil {
		for i, action := range msg.SuggestedActions.Actions {
			if _, err := fmt.Fprintf(s.w, "  %d. %s\n", i+1, action.Title); err != nil {
				return err
			}
		}
	}
	for _, attachment := range msg.Attachments {
		if card, ok := attachment.Content.(*models.HeroCard); ok && attachment.ContentType == models.HeroCardContentType {
			if card.Text != "" {
				if _, err := fmt.Fprintf(s.w, "%s\n", card.Text); err != nil {
					return err
				}
			}
			for i, button := range card.Buttons {
				if _, err := fmt.Fprintf(s.w, "  %d. %s\n", i+1, button.Title); err != nil {
					return err
				}
			}
			continue
		}
		if _, err := fmt.Fprintf(s.w, "  [attachment: %s]\n", attachment.ContentType); err != nil {
			return err
		}
	}
	return nil
}
