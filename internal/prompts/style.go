package prompts

import (
	"fmt"
	"strings"

	"github.com/BTreeMap/DialogPipe/internal/models"
)

// ListStyle selects how a prompt presents its choices.
type ListStyle int

const (
	// ListStyleDefault defers to the prompt's configured style.
	ListStyleDefault ListStyle = iota
	// ListStyleNone sends the prompt text without rendering choices.
	ListStyleNone
	// ListStyleAuto picks a style from the channel's capabilities.
	ListStyleAuto
	// ListStyleInline embeds a numbered list in the prompt text itself.
	ListStyleInline
	// ListStyleList appends the choices as numbered lines.
	ListStyleList
	// ListStyleSuggestedAction attaches the choices as quick-reply actions.
	ListStyleSuggestedAction
	// ListStyleHeroCard renders the choices as buttons on a hero card.
	ListStyleHeroCard
)

// appendChoices builds the outgoing prompt message for a choice list,
// rendering the choices in the given style. The configured message is never
// mutated; a copy carries the rendering.
func appendChoices(msg *models.Message, channelID string, isGroup bool, list []models.Choice, style ListStyle, caps *ChannelCapabilities) (*models.Message, error) {
	var out models.Message
	if msg != nil {
		out = *msg
	} else {
		out = *models.NewMessage("")
	}
	out.InputHint = models.InputHintExpectingInput

	if len(list) == 0 || style == ListStyleNone {
		return &out, nil
	}

	actions := choiceActions(list)
	if style == ListStyleAuto || style == ListStyleDefault {
		style = autoStyle(channelID, isGroup, actions, caps)
	}

	switch style {
	case ListStyleInline:
		out.Text = strings.TrimSpace(out.Text + " " + inlineList(list))
	case ListStyleList:
		out.Text = strings.TrimSpace(out.Text + "\n\n" + numberedList(list))
	case ListStyleSuggestedAction:
		out.SuggestedActions = &models.SuggestedActions{Actions: actions}
	case ListStyleHeroCard:
		out.Attachments = append(out.Attachments, models.Attachment{
			ContentType: models.HeroCardContentType,
			Content: &models.HeroCard{
				Text:    out.Text,
				Buttons: actions,
			},
		})
		out.Text = ""
	default:
		return nil, fmt.Errorf("unknown list style %d", style)
	}
	return &out, nil
}

// choiceActions maps choices to the action each one renders as: the choice's
// explicit action when present, otherwise a synthesized imBack of its value.
func choiceActions(list []models.Choice) []models.CardAction {
	actions := make([]models.CardAction, 0, len(list))
	for _, c := range list {
		if c.Action != nil {
			action := *c.Action
			if action.Type == "" {
				action.Type = models.CardActionTypeImBack
			}
			if action.Value == "" {
				action.Value = c.Value
			}
			actions = append(actions, action)
			continue
		}
		actions = append(actions, models.CardAction{
			Type:  models.CardActionTypeImBack,
			Title: c.Value,
			Value: c.Value,
		})
	}
	return actions
}

// autoStyle picks a rendering from the channel's capabilities: quick-reply
// actions where the channel supports them for this many choices, a hero card
// on card-capable channels without a persistent message feed, an inline list
// for short sets, and numbered lines otherwise.
func autoStyle(channelID string, isGroup bool, actions []models.CardAction, caps *ChannelCapabilities) ListStyle {
	maxTitle := 0
	for _, a := range actions {
		if n := len(a.Title); n > maxTitle {
			maxTitle = n
		}
	}
	if !isGroup && caps.SupportsSuggestedActions(channelID, len(actions)) && maxTitle <= caps.MaxActionTitleLength(channelID) {
		return ListStyleSuggestedAction
	}
	if caps.SupportsCardActions(channelID, len(actions)) && maxTitle <= caps.MaxActionTitleLength(channelID) && !caps.HasMessageFeed(channelID) {
		return ListStyleHeroCard
	}
	if len(actions) <= 3 && maxTitle <= 20 {
		return ListStyleInline
	}
	return ListStyleList
}

// inlineList renders choices as "(1) a, (2) b, or (3) c".
func inlineList(list []models.Choice) string {
	var b strings.Builder
	for i, c := range list {
		if i > 0 {
			if i == len(list)-1 {
				if len(list) > 2 {
					b.WriteString(",")
				}
				b.WriteString(" or ")
			} else {
				b.WriteString(", ")
			}
		}
		fmt.Fprintf(&b, "(%d) %s", i+1, c.Value)
	}
	return b.String()
}

// numberedList renders choices one per line as "1. a".
func numberedList(list []models.Choice) string {
	var b strings.Builder
	for i, c := range list {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d. %s", i+1, c.Value)
	}
	return b.String()
}
