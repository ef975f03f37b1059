package llm

import (
	"fmt"
	"strings"

	"node.town/speakwith/session"
)

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// SuggestionSystemPrompt describes the user and the conversation mode.
func SuggestionSystemPrompt(c session.Context) string {
	mode := c.Mode.Config()
	return fmt.Sprintf(`You are helping a person who cannot speak communicate in a conversation.

USER BACKGROUND:
%s

TODAY'S MOOD:
%s

MODE: %s (%s)

Generate natural, contextually appropriate responses the user might want to say.
- Quick reactions should be 1-5 words in this style: %s
- Follow-ups should be complete sentences that continue the conversation naturally: %s

Always respond in valid JSON format.`,
		orDefault(c.Profile.Background, "(No background provided)"),
		orDefault(c.Profile.MoodBoard, "(No mood board provided)"),
		mode.Mode,
		mode.Description,
		mode.ReactionStyle,
		mode.FollowupStyle,
	)
}

// SuggestionUserPrompt carries the conversation so far.
func SuggestionUserPrompt(c session.Context) string {
	var lines []string
	for _, t := range c.RecentTranscripts {
		lines = append(lines, fmt.Sprintf("- [Other person]: %q", t.Text))
	}

	userResponse := "(No response yet)"
	if c.HasUserResponse {
		userResponse = c.LastUserResponse
	}

	return fmt.Sprintf(`CONVERSATION SO FAR:
Summary: %s

Recent exchanges:
%s

User's last response: %q

Based on what was just said, suggest responses the user might want to say next.
Consider the flow of conversation and what would be natural to say.

Respond in JSON format:
{
  "reactions": ["reaction1", "reaction2", "reaction3"],
  "followups": ["followup1", "followup2", "followup3"]
}`,
		orDefault(c.Summary, "(Conversation just started)"),
		orDefault(strings.Join(lines, "\n"), "(No transcripts yet)"),
		userResponse,
	)
}
