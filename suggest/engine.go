// Package suggest regenerates reply suggestions when the conversation moves on.
package suggest

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"node.town/speakwith/llm"
	"node.town/speakwith/offload"
	"node.town/speakwith/session"
)

type Engine struct {
	state *session.State
	model llm.LanguageModel
	pool  *offload.Pool
	log   *log.Logger

	// serializes refreshes from Run and from the input stage
	mu sync.Mutex
}

func New(
	state *session.State,
	model llm.LanguageModel,
	pool *offload.Pool,
	logger *log.Logger,
) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{state: state, model: model, pool: pool, log: logger}
}

// Run regenerates suggestions whenever new transcripts have arrived. Other
// changes, including the engine's own writes, wake it but are ignored
// because the transcript count has not grown.
func (e *Engine) Run(ctx context.Context, stopped func() bool) error {
	if stopped == nil {
		stopped = func() bool { return false }
	}

	watcher, lastCount := e.state.WatchCount()

	for !stopped() {
		if err := watcher.Wait(ctx); err != nil {
			return nil
		}

		count := e.state.TranscriptCount()
		if count <= lastCount {
			continue
		}
		lastCount = count
		e.Refresh(ctx)
	}
	return nil
}

// Refresh generates suggestions for the current context right away. It
// reports whether new suggestions were written; on failure the previous
// ones stay in place.
func (e *Engine) Refresh(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state.SetStatus(session.StatusGenerating)
	defer e.state.SetStatus(session.StatusIdle)

	c := e.state.Context()
	suggestions, err := offload.Do(ctx, e.pool, func(ctx context.Context) (session.Suggestions, error) {
		return e.model.GenerateSuggestions(ctx, c)
	})
	if err != nil {
		e.log.Debug("suggestion generation failed", "error", err)
		return false
	}

	e.state.SetSuggestions(suggestions.Truncate())
	e.log.Info(
		"suggestions updated",
		"reactions", len(suggestions.Reactions),
		"followups", len(suggestions.Followups),
	)
	return true
}
