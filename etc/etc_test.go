package etc

import (
	"testing"
	"time"
)

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		in       time.Duration
		expected string
	}{
		{0, "00:00"},
		{-time.Second, "00:00"},
		{59*time.Second + 900*time.Millisecond, "00:59"},
		{61 * time.Second, "01:01"},
		{2 * time.Hour, "120:00"},
	}
	for _, tt := range tests {
		if got := FormatElapsed(tt.in); got != tt.expected {
			t.Errorf("FormatElapsed(%v) = %q, want %q", tt.in, got, tt.expected)
		}
	}
}

func TestNewFreshID(t *testing.T) {
	a, b := NewFreshID(), NewFreshID()
	if a == "" || a == b {
		t.Errorf("NewFreshID() = %q, %q", a, b)
	}
}
