package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestNewMessageDefaults(t *testing.T) {
	msg := NewMessage("hello")
	if msg.Type != MessageTypeMessage {
		t.Errorf("expected message type, got %q", msg.Type)
	}
	if msg.Text != "hello" {
		t.Errorf("expected text preserved, got %q", msg.Text)
	}
	if msg.InputHint != InputHintAcceptingInput {
		t.Errorf("expected accepting-input hint, got %q", msg.InputHint)
	}
}

func TestMessageValidate(t *testing.T) {
	if err := NewMessage("hi").Validate(); err != nil {
		t.Errorf("expected valid message, got %v", err)
	}

	empty := &Message{Type: MessageTypeMessage}
	if err := empty.Validate(); !errors.Is(err, ErrEmptyMessageText) {
		t.Errorf("expected ErrEmptyMessageText, got %v", err)
	}

	long := NewMessage(strings.Repeat("x", MaxMessageTextLength+1))
	if err := long.Validate(); !errors.Is(err, ErrMessageTextTooLong) {
		t.Errorf("expected ErrMessageTextTooLong, got %v", err)
	}

	// Actions or attachments make an empty-text message valid.
	actionsOnly := &Message{
		Type:             MessageTypeMessage,
		SuggestedActions: &SuggestedActions{Actions: []CardAction{{Type: CardActionTypeImBack, Title: "go"}}},
	}
	if err := actionsOnly.Validate(); err != nil {
		t.Errorf("expected actions-only message to validate, got %v", err)
	}
}

func TestCardActionValidate(t *testing.T) {
	if err := (&CardAction{Title: "ok"}).Validate(); err != nil {
		t.Errorf("expected valid action, got %v", err)
	}
	if err := (&CardAction{}).Validate(); !errors.Is(err, ErrEmptyActionTitle) {
		t.Errorf("expected ErrEmptyActionTitle, got %v", err)
	}
	long := &CardAction{Title: strings.Repeat("x", MaxActionTitleLength+1)}
	if err := long.Validate(); !errors.Is(err, ErrActionTitleTooLong) {
		t.Errorf("expected ErrActionTitleTooLong, got %v", err)
	}
}

func TestMessageValidateRejectsBadAction(t *testing.T) {
	msg := NewMessage("pick")
	msg.SuggestedActions = &SuggestedActions{Actions: []CardAction{{Type: CardActionTypeImBack}}}
	if err := msg.Validate(); !errors.Is(err, ErrEmptyActionTitle) {
		t.Errorf("expected nested action validation, got %v", err)
	}
}

func TestDialogStateJSONRoundTrip(t *testing.T) {
	state := &DialogState{DialogStack: []*DialogInstance{
		{ID: "root", State: map[string]any{"stepIndex": 2, "values": map[string]any{"name": "Ada"}}},
		{ID: "prompt", State: map[string]any{}},
	}}

	data, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var restored DialogState
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(restored.DialogStack) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(restored.DialogStack))
	}
	if restored.DialogStack[0].ID != "root" || restored.DialogStack[1].ID != "prompt" {
		t.Errorf("frame order not preserved: %+v", restored.DialogStack)
	}
	// Integers come back as float64; the engine tolerates that.
	if n, ok := restored.DialogStack[0].State["stepIndex"].(float64); !ok || n != 2 {
		t.Errorf("expected stepIndex 2 as float64, got %v", restored.DialogStack[0].State["stepIndex"])
	}
}
