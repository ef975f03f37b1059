package ui

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"node.town/speakwith/session"
)

type Kind int

const (
	// Discard means the input is ignored.
	Discard Kind = iota
	// Selected means a numbered suggestion was picked.
	Selected
	// Custom means the user wants to type their own reply next.
	Custom
	// Free means the input itself is the reply.
	Free
)

type Resolution struct {
	Kind Kind
	Text string
}

// Resolve maps one line of input onto a reply. Digits 1-3 pick reactions,
// 4-6 pick follow-ups, "c" asks for a custom reply and any other text of
// more than one character, numbers included, is taken as written.
func Resolve(input string, suggestions session.Suggestions) Resolution {
	input = strings.TrimSpace(input)
	if input == "" {
		return Resolution{Kind: Discard}
	}

	if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= 6 {
		return selectSuggestion(n, suggestions)
	}

	if strings.EqualFold(input, "c") {
		return Resolution{Kind: Custom}
	}

	if utf8.RuneCountInString(input) > 1 {
		return Resolution{Kind: Free, Text: input}
	}
	return Resolution{Kind: Discard}
}

func selectSuggestion(n int, suggestions session.Suggestions) Resolution {
	var text string
	switch {
	case n <= 3 && n <= len(suggestions.Reactions):
		text = suggestions.Reactions[n-1]
	case n >= 4 && n-4 < len(suggestions.Followups):
		text = suggestions.Followups[n-4]
	default:
		return Resolution{Kind: Discard}
	}
	return Resolution{Kind: Selected, Text: text}
}

// ResolveCustom accepts the line typed after a Custom resolution.
func ResolveCustom(input string) Resolution {
	input = strings.TrimSpace(input)
	if input == "" {
		return Resolution{Kind: Discard}
	}
	return Resolution{Kind: Free, Text: input}
}
