package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"node.town/speakwith/session"
)

const clearScreen = "\033[H\033[2J"

// PlainRenderer redraws the whole screen on every frame.
type PlainRenderer struct {
	w   io.Writer
	now func() time.Time
	mu  sync.Mutex
}

func NewPlainRenderer(w io.Writer) *PlainRenderer {
	return &PlainRenderer{w: w, now: time.Now}
}

func (r *PlainRenderer) Render(s session.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := fmt.Fprintf(r.w, "%s%s\n\n> ", clearScreen, View(s, r.now(), 0))
	return err
}

// PlainReader reads lines from r on a background goroutine so that
// ReadLine can give up when its context ends.
type PlainReader struct {
	r      io.Reader
	prompt io.Writer

	once  sync.Once
	lines chan string
	quit  chan struct{}
	stop  sync.Once
	err   error
}

// NewPlainReader reads from r and echoes prompts to prompt, which may be nil.
func NewPlainReader(r io.Reader, prompt io.Writer) *PlainReader {
	return &PlainReader{
		r:      r,
		prompt: prompt,
		lines:  make(chan string),
		quit:   make(chan struct{}),
	}
}

func (p *PlainReader) scan() {
	defer close(p.lines)

	scanner := bufio.NewScanner(p.r)
	for scanner.Scan() {
		select {
		case p.lines <- scanner.Text():
		case <-p.quit:
			p.err = ErrQuit
			return
		}
	}
	p.err = scanner.Err()
	if p.err == nil {
		p.err = io.EOF
	}
}

func (p *PlainReader) ReadLine(ctx context.Context, prompt string) (string, error) {
	p.once.Do(func() { go p.scan() })

	if prompt != "" && p.prompt != nil {
		fmt.Fprint(p.prompt, prompt)
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-p.lines:
		if !ok {
			return "", p.err
		}
		return line, nil
	}
}

// Close stops handing out lines. A scan blocked inside the underlying
// reader only ends when that reader returns.
func (p *PlainReader) Close() error {
	p.stop.Do(func() { close(p.quit) })
	return nil
}
