// Package pipeline runs a listening session: five concurrent stages that
// share one session.State.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"node.town/speakwith/audio"
	"node.town/speakwith/config"
	"node.town/speakwith/llm"
	"node.town/speakwith/logging"
	"node.town/speakwith/memory"
	"node.town/speakwith/offload"
	"node.town/speakwith/session"
	"node.town/speakwith/stt"
	"node.town/speakwith/suggest"
	"node.town/speakwith/ui"
)

// Deps are the outside collaborators of a session.
type Deps struct {
	Source      audio.Source
	Transcriber stt.Transcriber
	Model       llm.LanguageModel
	Renderer    ui.Renderer
	Input       ui.LineReader
	Profile     session.Profile
	Loggers     *logging.Loggers
}

type Coordinator struct {
	state       *session.State
	memory      *memory.Memory
	engine      *suggest.Engine
	pool        *offload.Pool
	source      audio.Source
	transcriber stt.Transcriber
	renderer    ui.Renderer
	input       ui.LineReader

	summaryInterval time.Duration
	refreshInterval time.Duration

	log     *log.Logger
	hearLog *log.Logger
	showLog *log.Logger

	stopped   atomic.Bool
	closeOnce sync.Once

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func New(cfg config.Config, deps Deps) *Coordinator {
	loggers := deps.Loggers
	if loggers == nil {
		loggers = logging.New(io.Discard, log.InfoLevel)
	}

	mode := cfg.Mode
	if mode == "" {
		mode = session.ModeFriendly
	}

	state := session.NewState(mode, deps.Profile, cfg.MaxTranscripts)
	pool := offload.New(cfg.Workers)

	return &Coordinator{
		state:  state,
		memory: memory.New(state, deps.Model, pool, loggers.Think, cfg.SummaryUpdateInterval),
		engine: suggest.New(state, deps.Model, pool, loggers.Think),
		pool:   pool,

		source:      deps.Source,
		transcriber: deps.Transcriber,
		renderer:    deps.Renderer,
		input:       deps.Input,

		summaryInterval: cfg.SummaryInterval,
		refreshInterval: time.Second,

		log:     loggers.Pipe,
		hearLog: loggers.Hear,
		showLog: loggers.Show,
	}
}

func (c *Coordinator) State() *session.State {
	return c.state
}

// Initialize warms up the transcriber and opens the audio source. It must
// finish before Run.
func (c *Coordinator) Initialize(ctx context.Context) error {
	c.log.Info("initializing transcriber")
	if err := c.transcriber.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize transcriber: %w", err)
	}

	c.log.Info("opening audio source")
	if err := c.source.Open(ctx); err != nil {
		return fmt.Errorf("open audio source: %w", err)
	}
	return nil
}

// Run starts the stages and blocks until all of them have returned. The
// first stage to return, a call to Stop, or the end of ctx tears the whole
// session down. A capture failure is returned; generation failures never
// are.
func (c *Coordinator) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.running || c.stopped.Load() {
		c.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	c.running = true
	c.cancel = cancel
	c.done = make(chan struct{})
	c.mu.Unlock()

	defer func() {
		cancel()
		c.pool.Close()
		c.closeSource()

		c.mu.Lock()
		c.running = false
		c.cancel = nil
		close(c.done)
		c.mu.Unlock()
		c.log.Info("pipeline stopped")
	}()

	g, ctx := errgroup.WithContext(ctx)
	var captureErr error

	stage := func(name string, fn func(context.Context) error) {
		g.Go(func() error {
			err := fn(ctx)
			c.stopped.Store(true)
			cancel()

			if err != nil && !errors.Is(err, context.Canceled) {
				c.log.Error("stage failed", "stage", name, "error", err)
				return err
			}
			c.log.Debug("stage finished", "stage", name)
			return nil
		})
	}

	stage("capture", func(ctx context.Context) error {
		captureErr = c.capture(ctx)
		return captureErr
	})
	stage("suggestions", func(ctx context.Context) error {
		return c.engine.Run(ctx, c.stopped.Load)
	})
	stage("render", c.render)
	stage("input", c.readInput)
	stage("summary", func(ctx context.Context) error {
		return c.memory.RunTimer(ctx, c.summaryInterval, c.stopped.Load)
	})

	c.log.Info("pipeline started", "mode", c.state.Context().Mode)
	err := g.Wait()
	if captureErr != nil {
		return captureErr
	}
	return err
}

// Stop tears down a running session and waits for it. It may be called any
// number of times from any goroutine, before, during or after Run.
func (c *Coordinator) Stop() {
	c.stopped.Store(true)

	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	c.pool.Close()
	c.closeSource()
}

// closeSource releases the audio source once, whether Run ever started.
func (c *Coordinator) closeSource() {
	c.closeOnce.Do(func() {
		if err := c.source.Close(); err != nil {
			c.log.Warn("close audio source", "error", err)
		}
	})
}
