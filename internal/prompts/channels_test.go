package prompts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BTreeMap/DialogPipe/internal/models"
)

func TestChannelCapabilitiesDefaults(t *testing.T) {
	caps := NewChannelCapabilities()

	if !caps.SupportsSuggestedActions(models.ChannelConsole, 5) {
		t.Error("expected console to support suggested actions")
	}
	if caps.SupportsSuggestedActions(models.ChannelWhatsApp, 4) {
		t.Error("expected whatsapp to cap suggested actions at 3")
	}
	if caps.SupportsSuggestedActions(models.ChannelTwilioSMS, 1) {
		t.Error("expected sms to not support suggested actions")
	}
	if caps.HasMessageFeed(models.ChannelTwilioSMS) {
		t.Error("expected sms to have no message feed")
	}
	if got := caps.MaxActionTitleLength(models.ChannelWhatsApp); got != 20 {
		t.Errorf("expected whatsapp title cap 20, got %d", got)
	}
}

func TestChannelCapabilitiesUnknownChannel(t *testing.T) {
	caps := NewChannelCapabilities()
	if caps.SupportsSuggestedActions("carrier-pigeon", 1) {
		t.Error("expected unknown channel to be text only")
	}
	if caps.SupportsCardActions("carrier-pigeon", 1) {
		t.Error("expected unknown channel to be text only")
	}
	if !caps.HasMessageFeed("carrier-pigeon") {
		t.Error("expected unknown channel to default to a feed")
	}
}

func TestChannelCapabilitiesZeroCountNeverSupported(t *testing.T) {
	caps := NewChannelCapabilities()
	if caps.SupportsSuggestedActions(models.ChannelConsole, 0) {
		t.Error("expected zero actions to count as unsupported")
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "caps.yaml")
	content := `whatsapp:
  max_suggested_actions: 10
  max_card_actions: 10
  max_action_title_length: 50
  has_message_feed: true
pager:
  max_suggested_actions: 0
  max_card_actions: 0
  max_action_title_length: 40
  has_message_feed: false
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write overrides: %v", err)
	}

	caps := NewChannelCapabilities()
	if err := caps.LoadOverrides(path); err != nil {
		t.Fatalf("failed to load overrides: %v", err)
	}

	if !caps.SupportsSuggestedActions(models.ChannelWhatsApp, 10) {
		t.Error("expected whatsapp override to raise the action cap")
	}
	if got := caps.MaxActionTitleLength(models.ChannelWhatsApp); got != 50 {
		t.Errorf("expected overridden title cap 50, got %d", got)
	}
	if caps.HasMessageFeed("pager") {
		t.Error("expected new channel from overrides to be known")
	}
	if got := caps.MaxActionTitleLength("pager"); got != 40 {
		t.Errorf("expected pager title cap 40, got %d", got)
	}
	// Channels absent from the file keep their built-in entries.
	if !caps.SupportsSuggestedActions(models.ChannelConsole, 5) {
		t.Error("expected console entry untouched by overrides")
	}
}

func TestLoadOverridesMissingFile(t *testing.T) {
	caps := NewChannelCapabilities()
	if err := caps.LoadOverrides(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected an error for a missing overrides file")
	}
}

func TestLoadOverridesMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "caps.yaml")
	if err := os.WriteFile(path, []byte("{not yaml"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	caps := NewChannelCapabilities()
	if err := caps.LoadOverrides(path); err == nil {
		t.Error("expected an error for malformed YAML")
	}
}
