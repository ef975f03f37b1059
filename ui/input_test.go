package ui

import (
	"testing"

	"node.town/speakwith/session"
)

func TestResolve(t *testing.T) {
	suggestions := session.Suggestions{
		Reactions: []string{"Nice!", "Really?"},
		Followups: []string{"Where was that?", "Who else came?", "How long did it take?"},
	}

	tests := []struct {
		name     string
		input    string
		expected Resolution
	}{
		{"First reaction", "1", Resolution{Selected, "Nice!"}},
		{"Second reaction with spaces", "  2 ", Resolution{Selected, "Really?"}},
		{"Missing third reaction", "3", Resolution{Kind: Discard}},
		{"First followup", "4", Resolution{Selected, "Where was that?"}},
		{"Last followup", "6", Resolution{Selected, "How long did it take?"}},
		{"Single digit out of range", "7", Resolution{Kind: Discard}},
		{"Zero", "0", Resolution{Kind: Discard}},
		{"Number as reply", "42", Resolution{Free, "42"}},
		{"Year as reply", "1999", Resolution{Free, "1999"}},
		{"Negative number as reply", "-5", Resolution{Free, "-5"}},
		{"Padded selection", "06", Resolution{Selected, "How long did it take?"}},
		{"Custom", "c", Resolution{Kind: Custom}},
		{"Custom upper case", "C", Resolution{Kind: Custom}},
		{"Free text keeps case", "Sounds Great", Resolution{Free, "Sounds Great"}},
		{"Two characters", "ok", Resolution{Free, "ok"}},
		{"Single letter", "x", Resolution{Kind: Discard}},
		{"Empty", "", Resolution{Kind: Discard}},
		{"Whitespace", "   ", Resolution{Kind: Discard}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.input, suggestions); got != tt.expected {
				t.Errorf("Resolve(%q) = %+v, want %+v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestResolveCustom(t *testing.T) {
	if got := ResolveCustom("  I'd love to  "); got != (Resolution{Free, "I'd love to"}) {
		t.Errorf("ResolveCustom = %+v", got)
	}
	if got := ResolveCustom(" "); got.Kind != Discard {
		t.Errorf("ResolveCustom(blank) = %+v", got)
	}
}
