package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"node.town/speakwith/etc"
	"node.town/speakwith/session"
)

// StatusLabel is the short text shown for each pipeline status.
func StatusLabel(status session.Status) string {
	switch status {
	case session.StatusRecording:
		return "Recording..."
	case session.StatusTranscribing:
		return "Processing..."
	case session.StatusGenerating:
		return "Thinking..."
	default:
		return "Ready"
	}
}

func statusView(status session.Status) string {
	style := statusStyles["busy"]
	switch status {
	case session.StatusIdle:
		style = statusStyles["idle"]
	case session.StatusRecording:
		style = statusStyles["record"]
	}
	return style.Render(StatusLabel(status))
}

func HeaderView(s session.Snapshot, now time.Time) string {
	elapsed := time.Duration(0)
	if !s.StartedAt.IsZero() {
		elapsed = now.Sub(s.StartedAt)
	}
	return lipgloss.JoinHorizontal(
		lipgloss.Center,
		titleStyle.Render("SPEAKWITH"),
		" "+s.Mode.Config().DisplayName,
		dimStyle.Render(fmt.Sprintf("  [%s]  ", etc.FormatElapsed(elapsed))),
		statusView(s.Status),
	)
}

func SummaryView(s session.Snapshot) string {
	summary := s.Summary
	if summary == "" {
		summary = "(Listening for conversation...)"
	}
	return titled("Summary", summary)
}

func TranscriptsView(s session.Snapshot) string {
	if len(s.RecentTranscripts) == 0 {
		return titled("Recent Transcript", "(No transcripts yet - listening...)")
	}

	lines := make([]string, len(s.RecentTranscripts))
	for i, t := range s.RecentTranscripts {
		offset := time.Duration(0)
		if !s.StartedAt.IsZero() {
			offset = t.Timestamp.Sub(s.StartedAt)
		}
		lines[i] = fmt.Sprintf("[%s] %q", etc.FormatElapsed(offset), t.Text)
	}
	return titled("Recent Transcript", strings.Join(lines, "\n\n"))
}

func LastResponseView(s session.Snapshot) string {
	if !s.HasUserResponse {
		return titled("Your Last Response", "(No response yet)")
	}
	return titled("Your Last Response", fmt.Sprintf("%q", s.LastUserResponse))
}

func SuggestionsView(s session.Snapshot) string {
	var b strings.Builder

	b.WriteString(reactionsHeading.Render("Quick Reactions:"))
	b.WriteString("\n")
	reactions := make([]string, len(s.Suggestions.Reactions))
	for i, r := range s.Suggestions.Reactions {
		reactions[i] = fmt.Sprintf("  [%d] %s", i+1, r)
	}
	b.WriteString(strings.Join(reactions, "  "))

	b.WriteString("\n\n")
	b.WriteString(followupsHeading.Render("Follow-ups:"))
	for i, f := range s.Suggestions.Followups {
		fmt.Fprintf(&b, "\n  [%d] %s", i+4, f)
	}

	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("  [c] Custom response"))
	return titled("Suggestions", b.String())
}

// BodyView is everything below the header.
func BodyView(s session.Snapshot, width int) string {
	panels := []struct {
		style lipgloss.Style
		view  string
	}{
		{summaryPanel, SummaryView(s)},
		{transcriptPanel, TranscriptsView(s)},
		{responsePanel, LastResponseView(s)},
		{suggestionsPanel, SuggestionsView(s)},
	}

	rendered := make([]string, len(panels))
	for i, p := range panels {
		style := p.style
		if width > 2 {
			style = style.Width(width - 2)
		}
		rendered[i] = style.Render(p.view)
	}
	return lipgloss.JoinVertical(lipgloss.Left, rendered...)
}

// View draws a full frame. A width of zero lets panels size to content.
func View(s session.Snapshot, now time.Time, width int) string {
	return HeaderView(s, now) + "\n" + BodyView(s, width)
}

func titled(title, body string) string {
	return lipgloss.NewStyle().Bold(true).Render(title) + "\n" + body
}
