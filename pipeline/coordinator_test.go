package pipeline

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
	"node.town/speakwith/audio"
	"node.town/speakwith/config"
	"node.town/speakwith/session"
)

// The genai client pulls in opencensus, whose view worker starts in init.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

// MockSource hands out queued segments, then either fails with err, reports
// that it is finished, or blocks until ctx ends.
type MockSource struct {
	mu       sync.Mutex
	segments []audio.Segment
	err      error
	finish   bool
	opened   bool
	closes   int
}

func (s *MockSource) Open(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opened = true
	return nil
}

func (s *MockSource) Next(ctx context.Context) (audio.Segment, error) {
	s.mu.Lock()
	if len(s.segments) > 0 {
		seg := s.segments[0]
		s.segments = s.segments[1:]
		s.mu.Unlock()
		return seg, nil
	}
	err, finish := s.err, s.finish
	s.mu.Unlock()

	switch {
	case err != nil:
		return audio.Segment{}, err
	case finish:
		return audio.Segment{}, audio.ErrSourceClosed
	}
	<-ctx.Done()
	return audio.Segment{}, ctx.Err()
}

func (s *MockSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	return nil
}

func (s *MockSource) closeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

type MockTranscriber struct {
	mu          sync.Mutex
	texts       []string
	initialized bool
	initErr     error
}

func (m *MockTranscriber) Initialize(context.Context) error {
	m.initialized = true
	return m.initErr
}

func (m *MockTranscriber) Transcribe(context.Context, audio.Segment) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.texts) == 0 {
		return "", nil
	}
	text := m.texts[0]
	m.texts = m.texts[1:]
	return text, nil
}

type MockLanguageModel struct {
	mu              sync.Mutex
	suggestionCalls int
	summaryCalls    int
	suggestions     session.Suggestions
	summary         string
	err             error
}

func (m *MockLanguageModel) Generate(context.Context, string, string) (string, error) {
	return "", m.err
}

func (m *MockLanguageModel) GenerateSuggestions(
	context.Context,
	session.Context,
) (session.Suggestions, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.suggestionCalls++
	return m.suggestions, m.err
}

func (m *MockLanguageModel) GenerateSummary(
	context.Context,
	[]string,
	string,
) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaryCalls++
	return m.summary, m.err
}

func (m *MockLanguageModel) counts() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.suggestionCalls, m.summaryCalls
}

// MockRenderer signals every frame it is given.
type MockRenderer struct {
	mu     sync.Mutex
	frames []session.Snapshot
	drawn  chan struct{}
}

func newMockRenderer() *MockRenderer {
	return &MockRenderer{drawn: make(chan struct{}, 100)}
}

func (r *MockRenderer) Render(s session.Snapshot) error {
	r.mu.Lock()
	r.frames = append(r.frames, s)
	r.mu.Unlock()
	select {
	case r.drawn <- struct{}{}:
	default:
	}
	return nil
}

// MockReader returns queued lines, then io.EOF if eof is set, otherwise
// blocks until ctx ends.
type MockReader struct {
	mu      sync.Mutex
	lines   []string
	eof     bool
	prompts []string
}

func (r *MockReader) ReadLine(ctx context.Context, prompt string) (string, error) {
	r.mu.Lock()
	if prompt != "" {
		r.prompts = append(r.prompts, prompt)
	}
	if len(r.lines) > 0 {
		line := r.lines[0]
		r.lines = r.lines[1:]
		r.mu.Unlock()
		return line, nil
	}
	eof := r.eof
	r.mu.Unlock()

	if eof {
		return "", io.EOF
	}
	<-ctx.Done()
	return "", ctx.Err()
}

func testConfig() config.Config {
	return config.Config{
		Mode:                  session.ModeFriendly,
		MaxTranscripts:        3,
		SummaryUpdateInterval: 3,
		SummaryInterval:       time.Hour,
		Workers:               4,
	}
}

type fixture struct {
	source      *MockSource
	transcriber *MockTranscriber
	model       *MockLanguageModel
	renderer    *MockRenderer
	reader      *MockReader
}

func newFixture() *fixture {
	return &fixture{
		source:      &MockSource{},
		transcriber: &MockTranscriber{},
		model:       &MockLanguageModel{suggestions: session.DefaultSuggestions()},
		renderer:    newMockRenderer(),
		reader:      &MockReader{},
	}
}

func (f *fixture) coordinator(t *testing.T, cfg config.Config) *Coordinator {
	t.Helper()
	c := New(cfg, Deps{
		Source:      f.source,
		Transcriber: f.transcriber,
		Model:       f.model,
		Renderer:    f.renderer,
		Input:       f.reader,
	})
	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return c
}

func runAsync(c *Coordinator, ctx context.Context) <-chan error {
	result := make(chan error, 1)
	go func() { result <- c.Run(ctx) }()
	return result
}

func waitResult(t *testing.T, result <-chan error) error {
	t.Helper()
	select {
	case err := <-result:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
		return nil
	}
}

func TestInitialize(t *testing.T) {
	f := newFixture()
	c := f.coordinator(t, testConfig())
	defer c.Stop()

	if !f.transcriber.initialized || !f.source.opened {
		t.Error("Initialize did not prepare the transcriber and source")
	}
}

func TestInitializeFailure(t *testing.T) {
	f := newFixture()
	want := errors.New("no such model")
	f.transcriber.initErr = want

	c := New(testConfig(), Deps{Source: f.source, Transcriber: f.transcriber, Model: f.model})
	defer c.Stop()

	if err := c.Initialize(context.Background()); !errors.Is(err, want) {
		t.Errorf("Initialize() = %v, want %v", err, want)
	}
	if f.source.opened {
		t.Error("source opened after transcriber failure")
	}
}

func TestStopEndsRun(t *testing.T) {
	f := newFixture()
	c := f.coordinator(t, testConfig())

	result := runAsync(c, context.Background())
	<-f.renderer.drawn

	c.Stop()
	if err := waitResult(t, result); err != nil {
		t.Errorf("Run() = %v, want nil", err)
	}

	// Further stops are harmless.
	c.Stop()
	c.Stop()

	if n := f.source.closeCount(); n != 1 {
		t.Errorf("source closed %d times, want 1", n)
	}
}

func TestConcurrentStop(t *testing.T) {
	f := newFixture()
	c := f.coordinator(t, testConfig())

	result := runAsync(c, context.Background())
	<-f.renderer.drawn

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Stop()
		}()
	}
	wg.Wait()

	if err := waitResult(t, result); err != nil {
		t.Errorf("Run() = %v, want nil", err)
	}
}

func TestStopBeforeRun(t *testing.T) {
	f := newFixture()
	c := f.coordinator(t, testConfig())

	c.Stop()
	if err := waitResult(t, runAsync(c, context.Background())); err != nil {
		t.Errorf("Run() = %v, want nil", err)
	}
	if n := f.source.closeCount(); n != 1 {
		t.Errorf("source closed %d times, want 1", n)
	}
}

func TestStopWithoutRunClosesSource(t *testing.T) {
	f := newFixture()
	c := f.coordinator(t, testConfig())

	c.Stop()
	c.Stop()
	if n := f.source.closeCount(); n != 1 {
		t.Errorf("source closed %d times, want 1", n)
	}
}

func TestContextCancelEndsRun(t *testing.T) {
	f := newFixture()
	c := f.coordinator(t, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	result := runAsync(c, ctx)
	<-f.renderer.drawn
	cancel()

	if err := waitResult(t, result); err != nil {
		t.Errorf("Run() = %v, want nil", err)
	}
}

func TestCaptureErrorTearsDown(t *testing.T) {
	f := newFixture()
	device := errors.New("device unplugged")
	f.source.err = device
	c := f.coordinator(t, testConfig())

	err := waitResult(t, runAsync(c, context.Background()))
	if !errors.Is(err, device) {
		t.Errorf("Run() = %v, want %v", err, device)
	}
}

func TestTranscriptsFlowIntoState(t *testing.T) {
	f := newFixture()
	now := time.Now()
	for i := 0; i < 4; i++ {
		f.source.segments = append(f.source.segments, audio.Segment{
			PCM:       []int16{1, 2, 3},
			Timestamp: now.Add(time.Duration(i) * 10 * time.Second),
		})
	}
	f.source.finish = true
	f.transcriber.texts = []string{"Morning", "", "Nice weather", "Shall we walk?"}
	f.model.summary = "Small talk about the weather."

	cfg := testConfig()
	cfg.SummaryUpdateInterval = 3
	c := f.coordinator(t, cfg)

	if err := waitResult(t, runAsync(c, context.Background())); err != nil {
		t.Fatalf("Run() = %v", err)
	}

	ctx := c.State().Context()
	var texts []string
	for _, tr := range ctx.RecentTranscripts {
		texts = append(texts, tr.Text)
	}
	want := []string{"Morning", "Nice weather", "Shall we walk?"}
	if len(texts) != len(want) {
		t.Fatalf("transcripts = %q, want %q", texts, want)
	}
	for i := range want {
		if texts[i] != want[i] {
			t.Errorf("transcripts = %q, want %q", texts, want)
		}
	}
	if ctx.Summary != "Small talk about the weather." {
		t.Errorf("summary = %q", ctx.Summary)
	}
	if !ctx.RecentTranscripts[0].Timestamp.Equal(now) {
		t.Errorf("timestamp = %v, want %v", ctx.RecentTranscripts[0].Timestamp, now)
	}
}

func TestGenerationErrorsAreAbsorbed(t *testing.T) {
	f := newFixture()
	f.source.segments = []audio.Segment{{PCM: []int16{1}}, {PCM: []int16{2}}}
	f.source.finish = true
	f.transcriber.texts = []string{"one", "two"}
	f.model.err = errors.New("rate limited")

	cfg := testConfig()
	cfg.SummaryUpdateInterval = 1
	c := f.coordinator(t, cfg)

	if err := waitResult(t, runAsync(c, context.Background())); err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}

	if _, summaries := f.model.counts(); summaries != 2 {
		t.Errorf("summary calls = %d, want 2", summaries)
	}
	if s := c.State().Summary(); s != "" {
		t.Errorf("summary = %q, want empty", s)
	}
	if got := c.State().Suggestions(); got.Reactions[0] != session.DefaultSuggestions().Reactions[0] {
		t.Errorf("suggestions changed after failure: %+v", got)
	}
}

func TestInputSelectsSuggestion(t *testing.T) {
	f := newFixture()
	f.reader.lines = []string{"", "9", "2"}
	f.reader.eof = true
	f.model.suggestions = session.Suggestions{
		Reactions: []string{"Brilliant"},
		Followups: []string{"What next?"},
	}
	c := f.coordinator(t, testConfig())

	if err := waitResult(t, runAsync(c, context.Background())); err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}

	ctx := c.State().Context()
	if !ctx.HasUserResponse || ctx.LastUserResponse != session.DefaultSuggestions().Reactions[1] {
		t.Errorf("last response = %q", ctx.LastUserResponse)
	}
	if calls, _ := f.model.counts(); calls != 1 {
		t.Errorf("suggestion calls = %d, want 1", calls)
	}
	if got := c.State().Suggestions(); got.Reactions[0] != "Brilliant" {
		t.Errorf("suggestions = %+v", got)
	}
}

func TestInputCustomResponse(t *testing.T) {
	f := newFixture()
	f.reader.lines = []string{"c", "  Let's get lunch  "}
	f.reader.eof = true
	c := f.coordinator(t, testConfig())

	if err := waitResult(t, runAsync(c, context.Background())); err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}

	if got := c.State().Context().LastUserResponse; got != "Let's get lunch" {
		t.Errorf("last response = %q", got)
	}
	if len(f.reader.prompts) != 1 {
		t.Errorf("prompts = %q", f.reader.prompts)
	}
}

func TestRenderRefreshesOnClock(t *testing.T) {
	f := newFixture()
	c := f.coordinator(t, testConfig())
	c.refreshInterval = 10 * time.Millisecond

	result := runAsync(c, context.Background())
	for i := 0; i < 3; i++ {
		select {
		case <-f.renderer.drawn:
		case <-time.After(2 * time.Second):
			t.Fatal("renderer not refreshed")
		}
	}
	c.Stop()
	if err := waitResult(t, result); err != nil {
		t.Errorf("Run() = %v", err)
	}
}
