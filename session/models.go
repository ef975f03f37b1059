package session

import (
	"strings"
	"time"
)

// Status is what the pipeline is currently busy with. It is informational only.
type Status int

const (
	StatusIdle Status = iota
	StatusRecording
	StatusTranscribing
	StatusGenerating
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRecording:
		return "recording"
	case StatusTranscribing:
		return "transcribing"
	case StatusGenerating:
		return "generating"
	default:
		return "unknown"
	}
}

// Transcript is the text recognized in one captured audio segment.
type Transcript struct {
	Text      string        // Recognized speech, may be empty for silence
	Timestamp time.Time     // When capture of the segment started
	Duration  time.Duration // Length of the captured segment
}

// IsEmpty reports whether the transcript carries no speech.
func (t Transcript) IsEmpty() bool {
	return strings.TrimSpace(t.Text) == ""
}

// MaxSuggestions bounds both the reactions and the followups.
const MaxSuggestions = 3

// Suggestions are the replies offered to the user.
type Suggestions struct {
	Reactions []string `json:"reactions"`
	Followups []string `json:"followups"`
}

// DefaultSuggestions is shown until generation first succeeds and whenever
// the model output cannot be understood.
func DefaultSuggestions() Suggestions {
	return Suggestions{
		Reactions: []string{"Yes", "No", "Tell me more"},
		Followups: []string{
			"Could you repeat that?",
			"I'm listening.",
			"Go on.",
		},
	}
}

// Clone returns a copy that shares no backing arrays with s.
func (s Suggestions) Clone() Suggestions {
	return Suggestions{
		Reactions: append([]string(nil), s.Reactions...),
		Followups: append([]string(nil), s.Followups...),
	}
}

// Truncate caps both lists at MaxSuggestions.
func (s Suggestions) Truncate() Suggestions {
	if len(s.Reactions) > MaxSuggestions {
		s.Reactions = s.Reactions[:MaxSuggestions]
	}
	if len(s.Followups) > MaxSuggestions {
		s.Followups = s.Followups[:MaxSuggestions]
	}
	return s
}

// Profile is the free-text description of the user, read once at startup.
type Profile struct {
	Background string
	MoodBoard  string
}

// Context is an immutable view of the conversation used to drive
// suggestion and summary generation.
type Context struct {
	Mode              Mode
	Profile           Profile
	Summary           string
	RecentTranscripts []Transcript
	LastUserResponse  string
	HasUserResponse   bool
}

// Snapshot is everything the display needs to draw one frame.
type Snapshot struct {
	Context
	Suggestions     Suggestions
	Status          Status
	StartedAt       time.Time
	Version         uint64
	TranscriptCount uint64
}
