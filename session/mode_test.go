package session

import "testing"

func TestLookupMode(t *testing.T) {
	tests := []struct {
		input    string
		expected Mode
		wantErr  bool
	}{
		{"friendly", ModeFriendly, false},
		{"Shopping", ModeShopping, false},
		{" 1 ", ModeFriendly, false},
		{"2", ModeShopping, false},
		{"3", "", true},
		{"party", "", true},
	}

	for _, tt := range tests {
		mode, err := LookupMode(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("LookupMode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if mode != tt.expected {
			t.Errorf("LookupMode(%q) = %q, want %q", tt.input, mode, tt.expected)
		}
	}
}

func TestSuggestionsTruncate(t *testing.T) {
	s := Suggestions{
		Reactions: []string{"a", "b", "c", "d"},
		Followups: []string{"e"},
	}.Truncate()

	if len(s.Reactions) != MaxSuggestions || len(s.Followups) != 1 {
		t.Errorf("Truncate() = %v", s)
	}
}

func TestTranscriptIsEmpty(t *testing.T) {
	for text, want := range map[string]bool{"": true, "  \n": true, "hi": false, " ok ": false} {
		if got := (Transcript{Text: text}).IsEmpty(); got != want {
			t.Errorf("IsEmpty(%q) = %v, want %v", text, got, want)
		}
	}
}
