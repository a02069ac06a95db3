package prompts

import (
	"testing"

	"github.com/BTreeMap/DialogPipe/internal/models"
)

func testChoices() []models.Choice {
	return []models.Choice{
		{Value: "red"},
		{Value: "green"},
		{Value: "blue"},
	}
}

func TestAppendChoicesInline(t *testing.T) {
	msg, err := appendChoices(models.NewMessage("Pick one:"), models.ChannelConsole, false, testChoices(), ListStyleInline, NewChannelCapabilities())
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	expected := "Pick one: (1) red, (2) green, or (3) blue"
	if msg.Text != expected {
		t.Errorf("expected %q, got %q", expected, msg.Text)
	}
}

func TestAppendChoicesInlineTwoChoices(t *testing.T) {
	list := []models.Choice{{Value: "yes"}, {Value: "no"}}
	msg, err := appendChoices(models.NewMessage("Proceed?"), models.ChannelConsole, false, list, ListStyleInline, NewChannelCapabilities())
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	expected := "Proceed? (1) yes or (2) no"
	if msg.Text != expected {
		t.Errorf("expected %q, got %q", expected, msg.Text)
	}
}

func TestAppendChoicesList(t *testing.T) {
	msg, err := appendChoices(models.NewMessage("Pick one:"), models.ChannelConsole, false, testChoices(), ListStyleList, NewChannelCapabilities())
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	expected := "Pick one:\n\n1. red\n2. green\n3. blue"
	if msg.Text != expected {
		t.Errorf("expected %q, got %q", expected, msg.Text)
	}
}

func TestAppendChoicesSuggestedActions(t *testing.T) {
	msg, err := appendChoices(models.NewMessage("Pick one:"), models.ChannelConsole, false, testChoices(), ListStyleSuggestedAction, NewChannelCapabilities())
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if msg.SuggestedActions == nil || len(msg.SuggestedActions.Actions) != 3 {
		t.Fatalf("expected 3 suggested actions, got %+v", msg.SuggestedActions)
	}
	a := msg.SuggestedActions.Actions[1]
	if a.Type != models.CardActionTypeImBack || a.Title != "green" || a.Value != "green" {
		t.Errorf("unexpected synthesized action %+v", a)
	}
}

func TestAppendChoicesHeroCard(t *testing.T) {
	msg, err := appendChoices(models.NewMessage("Pick one:"), models.ChannelConsole, false, testChoices(), ListStyleHeroCard, NewChannelCapabilities())
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if len(msg.Attachments) != 1 {
		t.Fatalf("expected 1 attachment, got %d", len(msg.Attachments))
	}
	att := msg.Attachments[0]
	if att.ContentType != models.HeroCardContentType {
		t.Errorf("expected hero card content type, got %q", att.ContentType)
	}
	card, ok := att.Content.(*models.HeroCard)
	if !ok {
		t.Fatalf("expected hero card content, got %T", att.Content)
	}
	if card.Text != "Pick one:" || len(card.Buttons) != 3 {
		t.Errorf("unexpected card %+v", card)
	}
	if msg.Text != "" {
		t.Errorf("expected card to absorb the text, got %q", msg.Text)
	}
}

func TestAppendChoicesNone(t *testing.T) {
	msg, err := appendChoices(models.NewMessage("Pick one:"), models.ChannelConsole, false, testChoices(), ListStyleNone, NewChannelCapabilities())
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if msg.Text != "Pick one:" || msg.SuggestedActions != nil || len(msg.Attachments) != 0 {
		t.Errorf("expected untouched message, got %+v", msg)
	}
}

func TestAppendChoicesDoesNotMutateOriginal(t *testing.T) {
	original := models.NewMessage("Pick one:")
	if _, err := appendChoices(original, models.ChannelConsole, false, testChoices(), ListStyleList, NewChannelCapabilities()); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if original.Text != "Pick one:" {
		t.Errorf("expected original message untouched, got %q", original.Text)
	}
}

func TestAppendChoicesExplicitAction(t *testing.T) {
	list := []models.Choice{
		{Value: "ship-it", Action: &models.CardAction{Title: "Ship it"}},
	}
	msg, err := appendChoices(models.NewMessage("Ready?"), models.ChannelConsole, false, list, ListStyleSuggestedAction, NewChannelCapabilities())
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	a := msg.SuggestedActions.Actions[0]
	if a.Title != "Ship it" {
		t.Errorf("expected explicit action title, got %q", a.Title)
	}
	if a.Type != models.CardActionTypeImBack || a.Value != "ship-it" {
		t.Errorf("expected defaulted type and value, got %+v", a)
	}
}

func TestAutoStylePerChannel(t *testing.T) {
	caps := NewChannelCapabilities()
	actions := choiceActions(testChoices())

	if got := autoStyle(models.ChannelConsole, false, actions, caps); got != ListStyleSuggestedAction {
		t.Errorf("console: expected suggested actions, got %d", got)
	}
	if got := autoStyle(models.ChannelWhatsApp, false, actions, caps); got != ListStyleSuggestedAction {
		t.Errorf("whatsapp: expected suggested actions for 3 short choices, got %d", got)
	}
	// Group conversations avoid quick replies.
	if got := autoStyle(models.ChannelConsole, true, actions, caps); got == ListStyleSuggestedAction {
		t.Error("group: expected a non-quick-reply style")
	}
	// SMS cannot render actions at all; three short choices go inline.
	if got := autoStyle(models.ChannelTwilioSMS, false, actions, caps); got != ListStyleInline {
		t.Errorf("sms: expected inline, got %d", got)
	}

	// Many choices fall back to a numbered list.
	var many []models.Choice
	for _, v := range []string{"one", "two", "three", "four", "five"} {
		many = append(many, models.Choice{Value: v})
	}
	if got := autoStyle(models.ChannelTwilioSMS, false, choiceActions(many), caps); got != ListStyleList {
		t.Errorf("sms many: expected list, got %d", got)
	}
}

func TestAppendChoicesEmptyList(t *testing.T) {
	msg, err := appendChoices(models.NewMessage("Anything else?"), models.ChannelConsole, false, nil, ListStyleAuto, NewChannelCapabilities())
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if msg.Text != "Anything else?" {
		t.Errorf("expected plain message, got %q", msg.Text)
	}
	if msg.InputHint != models.InputHintExpectingInput {
		t.Errorf("expected expecting-input hint, got %q", msg.InputHint)
	}
}
