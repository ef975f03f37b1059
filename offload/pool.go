// Package offload runs blocking calls (audio capture, transcription,
// language model requests) on a fixed set of worker goroutines so the
// signal-driven stage loops never block on them directly.
package offload

import (
	"context"
	"errors"
	"sync"
)

var ErrClosed = errors.New("offload: pool closed")

type job struct {
	ctx context.Context
	fn  func(context.Context)
}

type Pool struct {
	jobs chan job
	quit chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// New starts a pool with the given number of workers (at least one).
func New(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	p := &Pool{
		jobs: make(chan job),
		quit: make(chan struct{}),
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.work()
	}
	return p
}

func (p *Pool) work() {
	defer p.wg.Done()
	for {
		select {
		case j := <-p.jobs:
			j.fn(j.ctx)
		case <-p.quit:
			return
		}
	}
}

// Close stops accepting jobs and waits for running ones to return.
// It is safe to call more than once.
func (p *Pool) Close() {
	p.once.Do(func() {
		close(p.quit)
	})
	p.wg.Wait()
}

type result[T any] struct {
	value T
	err   error
}

// Do runs fn on a worker and waits for its result. If ctx ends first Do
// returns ctx.Err() right away; fn keeps running with the cancelled ctx and
// its result is dropped. A nil pool runs fn on the calling goroutine.
func Do[T any](ctx context.Context, p *Pool, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if p == nil {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	done := make(chan result[T], 1)
	j := job{ctx: ctx, fn: func(ctx context.Context) {
		v, err := fn(ctx)
		done <- result[T]{value: v, err: err}
	}}

	select {
	case p.jobs <- j:
	case <-p.quit:
		return zero, ErrClosed
	case <-ctx.Done():
		return zero, ctx.Err()
	}

	select {
	case r := <-done:
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		return r.value, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
