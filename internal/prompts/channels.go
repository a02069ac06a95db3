package prompts

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/BTreeMap/DialogPipe/internal/models"
)

// Capability describes what one channel can render.
type Capability struct {
	// MaxSuggestedActions is how many quick-reply actions the channel can
	// show, 0 meaning none.
	MaxSuggestedActions int `yaml:"max_suggested_actions"`

	// MaxCardActions is how many card buttons the channel can show, 0
	// meaning none.
	MaxCardActions int `yaml:"max_card_actions"`

	// MaxActionTitleLength caps the rendered title of an action.
	MaxActionTitleLength int `yaml:"max_action_title_length"`

	// HasMessageFeed reports whether the channel keeps a scrollback the user
	// can re-read, which makes plain lists preferable to ephemeral cards.
	HasMessageFeed bool `yaml:"has_message_feed"`
}

// ChannelCapabilities is the per-channel rendering capability table consulted
// by the automatic list style. Unknown channels get a conservative text-only
// capability.
type ChannelCapabilities struct {
	mu    sync.RWMutex
	table map[string]Capability
}

// defaultCapability is assumed for channels the table does not know.
var defaultCapability = Capability{
	MaxSuggestedActions:  0,
	MaxCardActions:       0,
	MaxActionTitleLength: models.MaxActionTitleLength,
	HasMessageFeed:       true,
}

// NewChannelCapabilities builds the built-in capability table.
func NewChannelCapabilities() *ChannelCapabilities {
	return &ChannelCapabilities{table: map[string]Capability{
		models.ChannelConsole: {
			MaxSuggestedActions:  100,
			MaxCardActions:       100,
			MaxActionTitleLength: models.MaxActionTitleLength,
			HasMessageFeed:       true,
		},
		models.ChannelWebChat: {
			MaxSuggestedActions:  100,
			MaxCardActions:       100,
			MaxActionTitleLength: models.MaxActionTitleLength,
			HasMessageFeed:       true,
		},
		models.ChannelWhatsApp: {
			MaxSuggestedActions:  3,
			MaxCardActions:       3,
			MaxActionTitleLength: 20,
			HasMessageFeed:       true,
		},
		models.ChannelTelegram: {
			MaxSuggestedActions:  100,
			MaxCardActions:       100,
			MaxActionTitleLength: 64,
			HasMessageFeed:       true,
		},
		models.ChannelSlack: {
			MaxSuggestedActions:  0,
			MaxCardActions:       100,
			MaxActionTitleLength: 75,
			HasMessageFeed:       true,
		},
		models.ChannelTwilioSMS: {
			MaxSuggestedActions:  0,
			MaxCardActions:       0,
			MaxActionTitleLength: models.MaxActionTitleLength,
			HasMessageFeed:       false,
		},
		models.ChannelEmail: {
			MaxSuggestedActions:  0,
			MaxCardActions:       0,
			MaxActionTitleLength: models.MaxActionTitleLength,
			HasMessageFeed:       true,
		},
	}}
}

// LoadOverrides merges per-channel capability overrides from a YAML file into
// the table. Channels in the file replace the built-in entry wholesale.
func (c *ChannelCapabilities) LoadOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read channel capabilities file: %w", err)
	}
	overrides := make(map[string]Capability)
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("failed to parse channel capabilities file: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for channel, cap := range overrides {
		c.table[channel] = cap
	}
	slog.Info("ChannelCapabilities.LoadOverrides: applied overrides", "path", path, "channels", len(overrides))
	return nil
}

func (c *ChannelCapabilities) lookup(channelID string) Capability {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if cap, ok := c.table[channelID]; ok {
		return cap
	}
	return defaultCapability
}

// SupportsSuggestedActions reports whether the channel can show count
// quick-reply actions.
func (c *ChannelCapabilities) SupportsSuggestedActions(channelID string, count int) bool {
	cap := c.lookup(channelID)
	return cap.MaxSuggestedActions >= count && count > 0
}

// SupportsCardActions reports whether the channel can show count card buttons.
func (c *ChannelCapabilities) SupportsCardActions(channelID string, count int) bool {
	cap := c.lookup(channelID)
	return cap.MaxCardActions >= count && count > 0
}

// MaxActionTitleLength returns the channel's action title cap.
func (c *ChannelCapabilities) MaxActionTitleLength(channelID string) int {
	return c.lookup(channelID).MaxActionTitleLength
}

// HasMessageFeed reports whether the channel keeps a readable scrollback.
func (c *ChannelCapabilities) HasMessageFeed(channelID string) bool {
	return c.lookup(channelID).HasMessageFeed
}
