package llm

import (
	"encoding/json"
	"strings"

	"node.town/speakwith/session"
)

// ParseSuggestions reads the model's JSON answer. Anything that is not an
// object with string lists, or that yields no suggestion at all, gives the
// default suggestions.
func ParseSuggestions(content string) session.Suggestions {
	content = stripCodeFence(strings.TrimSpace(content))
	if start, end := strings.Index(content, "{"), strings.LastIndex(content, "}"); start >= 0 && end > start {
		content = content[start : end+1]
	}

	var parsed session.Suggestions
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return session.DefaultSuggestions()
	}

	s := session.Suggestions{
		Reactions: clean(parsed.Reactions),
		Followups: clean(parsed.Followups),
	}.Truncate()
	if len(s.Reactions) == 0 && len(s.Followups) == 0 {
		return session.DefaultSuggestions()
	}
	return s
}

func stripCodeFence(content string) string {
	if !strings.HasPrefix(content, "```") {
		return content
	}
	lines := strings.Split(content, "\n")
	lines = lines[1:]
	if n := len(lines); n > 0 && strings.HasPrefix(strings.TrimSpace(lines[n-1]), "```") {
		lines = lines[:n-1]
	}
	return strings.Join(lines, "\n")
}

func clean(items []string) []string {
	var out []string
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
