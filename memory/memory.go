// Package memory keeps the rolling summary of the conversation up to date.
package memory

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"node.town/speakwith/llm"
	"node.town/speakwith/offload"
	"node.town/speakwith/session"
)

type Memory struct {
	state    *session.State
	model    llm.LanguageModel
	pool     *offload.Pool
	log      *log.Logger
	interval int

	ingested   uint64
	refreshing atomic.Bool
}

// New returns a Memory that refreshes the summary after every interval
// non-empty transcripts.
func New(
	state *session.State,
	model llm.LanguageModel,
	pool *offload.Pool,
	logger *log.Logger,
	interval int,
) *Memory {
	if interval < 1 {
		interval = 1
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Memory{
		state:    state,
		model:    model,
		pool:     pool,
		log:      logger,
		interval: interval,
	}
}

// Ingest adds a finished transcript to the history. Ingest is only called
// from the capture stage, so the counter needs no lock.
func (m *Memory) Ingest(ctx context.Context, t session.Transcript) {
	if !m.state.AppendTranscript(t) {
		return
	}

	m.ingested++
	if m.ingested%uint64(m.interval) == 0 {
		m.Refresh(ctx)
	}
}

// Refresh regenerates the summary from the current history. It reports
// whether a new summary was written. Failures keep the previous summary.
// A refresh requested while another one is running is skipped.
func (m *Memory) Refresh(ctx context.Context) bool {
	if !m.refreshing.CompareAndSwap(false, true) {
		m.log.Debug("summary refresh already running, skipping")
		return false
	}
	defer m.refreshing.Store(false)

	c := m.state.Context()
	if len(c.RecentTranscripts) == 0 {
		return false
	}

	texts := make([]string, len(c.RecentTranscripts))
	for i, t := range c.RecentTranscripts {
		texts[i] = t.Text
	}

	summary, err := offload.Do(ctx, m.pool, func(ctx context.Context) (string, error) {
		return m.model.GenerateSummary(ctx, texts, c.Summary)
	})
	if err != nil {
		m.log.Debug("summary refresh failed", "error", err)
		return false
	}

	m.state.SetSummary(summary)
	m.log.Info("summary updated", "transcripts", len(texts))
	return true
}

// RunTimer refreshes the summary every interval while there is history.
func (m *Memory) RunTimer(
	ctx context.Context,
	interval time.Duration,
	stopped func() bool,
) error {
	if stopped == nil {
		stopped = func() bool { return false }
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for !stopped() {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if m.state.HasTranscripts() {
				m.Refresh(ctx)
			}
		}
	}
	return nil
}
