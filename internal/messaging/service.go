// Package messaging provides the per-turn plumbing between channel adapters
// and the dialog engine: the outbound Sender abstraction and the TurnContext
// handed to dialogs for one request/response invocation.
package messaging

import (
	"context"

	"github.com/BTreeMap/DialogPipe/internal/models"
)

// Sender defines a pluggable outbound message delivery abstraction.
// Channel adapters (WhatsApp, SMS, web chat, a console) implement it outside
// this core; the dialog engine only ever sends through it.
type Sender interface {
	// SendMessage sends a plain text message to a recipient.
	SendMessage(ctx context.Context, to string, body string) error

	// SendTypedMessage sends a full message activity, including suggested
	// actions and attachments, to a recipient. Channels without a richer
	// surface may flatten it to text.
	SendTypedMessage(ctx context.Context, to string, msg *models.Message) error
}
