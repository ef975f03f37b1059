package llm

import (
	"fmt"
	"strings"
)

const summarySystemPrompt = "You are a helpful assistant that summarizes conversations. " +
	"Keep summaries concise (2-3 sentences max). Focus on key topics " +
	"and the flow of conversation."

// SummaryPrompt asks for the previous summary to be updated with recent
// transcripts.
func SummaryPrompt(transcripts []string, previousSummary string) string {
	if previousSummary == "" {
		previousSummary = "(No previous summary)"
	}

	var formattedTranscript strings.Builder
	for _, t := range transcripts {
		formattedTranscript.WriteString(fmt.Sprintf("- %s\n", t))
	}

	return fmt.Sprintf(`Update this conversation summary with the new transcripts.

Previous summary: %s

New transcripts:
%s
Provide an updated summary in 2-3 sentences.`,
		previousSummary,
		formattedTranscript.String(),
	)
}
