// Package models defines the core data structures for DialogPipe.
//
// It includes the message types exchanged with channel adapters and the
// dialog state records persisted between turns, which are shared across modules.
package models

import (
	"errors"
)

// MessageTypeMessage is the activity type for ordinary conversational messages.
const MessageTypeMessage = "message"

// Channel identifiers for the channels DialogPipe knows how to render for.
const (
	ChannelConsole   = "console"
	ChannelWhatsApp  = "whatsapp"
	ChannelTwilioSMS = "twilio-sms"
	ChannelWebChat   = "webchat"
	ChannelTelegram  = "telegram"
	ChannelSlack     = "slack"
	ChannelEmail     = "email"
)

// InputHint signals to the channel what kind of input the bot expects next.
type InputHint string

const (
	// InputHintAcceptingInput indicates the bot is passively ready for input.
	InputHintAcceptingInput InputHint = "acceptingInput"
	// InputHintExpectingInput indicates the bot is actively awaiting a reply.
	InputHintExpectingInput InputHint = "expectingInput"
	// InputHintIgnoringInput indicates the bot is not ready to receive input.
	InputHintIgnoringInput InputHint = "ignoringInput"
)

// CardActionTypeImBack posts the action value back as a user message.
const CardActionTypeImBack = "imBack"

// Validation constants for message content
const (
	// MaxMessageTextLength defines the maximum allowed length for message text
	MaxMessageTextLength = 4096
	// MaxActionTitleLength defines the maximum allowed length for card action titles
	MaxActionTitleLength = 100
)

// Error variables for better error handling and testability
var (
	ErrEmptyMessageText   = errors.New("message text cannot be empty")
	ErrMessageTextTooLong = errors.New("message text exceeds maximum length")
	ErrEmptyActionTitle   = errors.New("card action title cannot be empty")
	ErrActionTitleTooLong = errors.New("card action title exceeds maximum length")
)

// CardAction represents a clickable button or quick-reply offered to the user.
type CardAction struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Value string `json:"value,omitempty"`
}

// Validate checks a CardAction for renderability.
func (a *CardAction) Validate() error {
	if a.Title == "" {
		return ErrEmptyActionTitle
	}
	if len(a.Title) > MaxActionTitleLength {
		return ErrActionTitleTooLong
	}
	return nil
}

// SuggestedActions carries quick-reply actions attached to an outgoing message.
type SuggestedActions struct {
	Actions []CardAction `json:"actions"`
}

// Attachment represents a media or card payload carried by a message.
type Attachment struct {
	ContentType string `json:"contentType"`
	Name        string `json:"name,omitempty"`
	Content     any    `json:"content,omitempty"`
	ContentURL  string `json:"contentUrl,omitempty"`
}

// ConversationAccount identifies the conversation a message belongs to.
type ConversationAccount struct {
	ID      string `json:"id"`
	IsGroup bool   `json:"isGroup,omitempty"`
}

// Message is the subset of a channel activity the dialog core needs: inbound
// text or typed value from the user, and outbound text plus optional
// suggested actions or attachments.
type Message struct {
	Type             string              `json:"type"`
	Text             string              `json:"text,omitempty"`
	Speak            string              `json:"speak,omitempty"`
	Value            any                 `json:"value,omitempty"`
	InputHint        InputHint           `json:"inputHint,omitempty"`
	SuggestedActions *SuggestedActions   `json:"suggestedActions,omitempty"`
	Attachments      []Attachment        `json:"attachments,omitempty"`
	ChannelID        string              `json:"channelId,omitempty"`
	Conversation     ConversationAccount `json:"conversation,omitempty"`
}

// NewMessage creates an ordinary message activity with the given text.
func NewMessage(text string) *Message {
	return &Message{
		Type:      MessageTypeMessage,
		Text:      text,
		InputHint: InputHintAcceptingInput,
	}
}

// Validate checks outgoing message content limits.
func (m *Message) Validate() error {
	if m.Text == "" && len(m.Attachments) == 0 && m.SuggestedActions == nil {
		return ErrEmptyMessageText
	}
	if len(m.Text) > MaxMessageTextLength {
		return ErrMessageTextTooLong
	}
	if m.SuggestedActions != nil {
		for i := range m.SuggestedActions.Actions {
			if err := m.SuggestedActions.Actions[i].Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}

// HeroCard is a lightweight card with buttons, rendered as an attachment when
// a channel supports card actions but not suggested actions.
type HeroCard struct {
	Title   string       `json:"title,omitempty"`
	Text    string       `json:"text,omitempty"`
	Buttons []CardAction `json:"buttons,omitempty"`
}

// HeroCardContentType identifies hero card attachments.
const HeroCardContentType = "application/vnd.dialogpipe.card.hero"
