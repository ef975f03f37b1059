package session

import (
	"fmt"
	"strings"
)

// Mode selects the style of the suggestions.
type Mode string

const (
	ModeFriendly Mode = "friendly"
	ModeShopping Mode = "shopping"
)

// ModeConfig describes how a mode is presented and prompted.
type ModeConfig struct {
	Mode          Mode
	DisplayName   string
	Description   string
	ReactionStyle string
	FollowupStyle string
}

var modes = []ModeConfig{
	{
		Mode:          ModeFriendly,
		DisplayName:   "Friendly Mode",
		Description:   "Casual conversation with friends, family, or acquaintances",
		ReactionStyle: "emotional, expressive, warm",
		FollowupStyle: "questions, sharing personal thoughts, showing empathy",
	},
	{
		Mode:          ModeShopping,
		DisplayName:   "Shopping Mode",
		Description:   "Transactional conversations in stores, restaurants, or services",
		ReactionStyle: "confirmations, clarifications, practical responses",
		FollowupStyle: "product questions, price inquiries, decision-making",
	},
}

// Modes lists the available modes in menu order.
func Modes() []ModeConfig {
	return append([]ModeConfig(nil), modes...)
}

// Config returns the presentation of m. Unknown modes fall back to friendly.
func (m Mode) Config() ModeConfig {
	for _, mc := range modes {
		if mc.Mode == m {
			return mc
		}
	}
	return modes[0]
}

// LookupMode parses a mode name or its 1-based menu index.
func LookupMode(name string) (Mode, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, mc := range modes {
		if string(mc.Mode) == name || fmt.Sprint(i+1) == name {
			return mc.Mode, nil
		}
	}
	return "", fmt.Errorf("unknown conversation mode %q", name)
}
