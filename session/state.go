package session

import (
	"context"
	"sync"
	"time"
)

// State is the conversation state shared by every pipeline stage.
//
// Every mutation happens under one mutex, bumps a monotonically increasing
// version exactly once and wakes all waiters. Waiters compare versions
// instead of counting wake-ups, so any number of mutations that happen
// before a waiter resumes are seen as a single change.
type State struct {
	mu sync.Mutex

	mode    Mode
	profile Profile

	transcripts     []Transcript
	maxTranscripts  int
	transcriptCount uint64

	summary         string
	suggestions     Suggestions
	userResponse    string
	hasUserResponse bool
	status          Status
	startedAt       time.Time

	version uint64
	changed chan struct{}
}

// NewState creates the state for one session. maxTranscripts below one is
// treated as one.
func NewState(mode Mode, profile Profile, maxTranscripts int) *State {
	if maxTranscripts < 1 {
		maxTranscripts = 1
	}
	return &State{
		mode:           mode,
		profile:        profile,
		maxTranscripts: maxTranscripts,
		suggestions:    DefaultSuggestions(),
		status:         StatusIdle,
		startedAt:      time.Now(),
		changed:        make(chan struct{}),
	}
}

// signal must be called with mu held.
func (s *State) signal() {
	s.version++
	close(s.changed)
	s.changed = make(chan struct{})
}

// AppendTranscript adds t to the bounded history, evicting the oldest
// entries. Empty transcripts are ignored and do not count as a change.
func (s *State) AppendTranscript(t Transcript) bool {
	if t.IsEmpty() {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.transcripts = append(s.transcripts, t)
	if over := len(s.transcripts) - s.maxTranscripts; over > 0 {
		kept := make([]Transcript, s.maxTranscripts)
		copy(kept, s.transcripts[over:])
		s.transcripts = kept
	}
	s.transcriptCount++
	s.signal()
	return true
}

func (s *State) SetSuggestions(suggestions Suggestions) {
	suggestions = suggestions.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.suggestions = suggestions
	s.signal()
}

func (s *State) SetSummary(summary string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary = summary
	s.signal()
}

// SetUserResponse records the reply the user chose or typed.
func (s *State) SetUserResponse(response string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userResponse = response
	s.hasUserResponse = true
	s.signal()
}

func (s *State) SetStatus(status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.signal()
}

// Version is the number of mutations applied so far.
func (s *State) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// TranscriptCount is the total number of transcripts ever appended. Unlike
// the length of the history it keeps growing after eviction starts.
func (s *State) TranscriptCount() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcriptCount
}

func (s *State) HasTranscripts() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.transcripts) > 0
}

func (s *State) Summary() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary
}

func (s *State) Suggestions() Suggestions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.suggestions.Clone()
}

func (s *State) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Context takes a snapshot that later mutations cannot alter.
func (s *State) Context() Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contextLocked()
}

func (s *State) contextLocked() Context {
	return Context{
		Mode:              s.mode,
		Profile:           s.profile,
		Summary:           s.summary,
		RecentTranscripts: append([]Transcript(nil), s.transcripts...),
		LastUserResponse:  s.userResponse,
		HasUserResponse:   s.hasUserResponse,
	}
}

// Snapshot copies everything the display draws.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Context:         s.contextLocked(),
		Suggestions:     s.suggestions.Clone(),
		Status:          s.status,
		StartedAt:       s.startedAt,
		Version:         s.version,
		TranscriptCount: s.transcriptCount,
	}
}

// WaitForChange blocks until the version is greater than since and returns
// the version observed. It returns ctx.Err() if ctx ends first.
func (s *State) WaitForChange(ctx context.Context, since uint64) (uint64, error) {
	for {
		s.mu.Lock()
		version, changed := s.version, s.changed
		s.mu.Unlock()

		if version > since {
			return version, nil
		}

		select {
		case <-changed:
		case <-ctx.Done():
			return version, ctx.Err()
		}
	}
}

// Watch returns a Watcher that has already seen every mutation so far.
func (s *State) Watch() *Watcher {
	return &Watcher{state: s, seen: s.Version()}
}

// WatchCount returns a Watcher together with the transcript count it was
// taken at, both read under one lock.
func (s *State) WatchCount() (*Watcher, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &Watcher{state: s, seen: s.version}, s.transcriptCount
}

// Watcher is an edge-triggered view of the change signal. Each Wait
// returns once per batch of mutations that happened since the previous
// Wait returned. A Watcher belongs to a single goroutine.
type Watcher struct {
	state *State
	seen  uint64
}

func (w *Watcher) Wait(ctx context.Context) error {
	version, err := w.state.WaitForChange(ctx, w.seen)
	if err != nil {
		return err
	}
	w.seen = version
	return nil
}

// Seen is the last version this watcher returned for.
func (w *Watcher) Seen() uint64 {
	return w.seen
}
