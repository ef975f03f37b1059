package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"node.town/speakwith/audio"
	"node.town/speakwith/offload"
	"node.town/speakwith/session"
	"node.town/speakwith/ui"
)

// capture records and transcribes segments one after another until the
// source runs dry or the session stops.
func (c *Coordinator) capture(ctx context.Context) error {
	for !c.stopped.Load() {
		c.state.SetStatus(session.StatusRecording)
		segment, err := offload.Do(ctx, c.pool, c.source.Next)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, audio.ErrSourceClosed) {
				c.hearLog.Info("audio source finished")
				return nil
			}
			return fmt.Errorf("capture audio: %w", err)
		}

		c.state.SetStatus(session.StatusTranscribing)
		text, err := offload.Do(ctx, c.pool, func(ctx context.Context) (string, error) {
			return c.transcriber.Transcribe(ctx, segment)
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("transcribe segment: %w", err)
		}
		c.hearLog.Debug("segment transcribed", "samples", len(segment.PCM), "chars", len(text))

		c.memory.Ingest(ctx, session.Transcript{
			Text:      text,
			Timestamp: segment.Timestamp,
			Duration:  segment.Duration,
		})
		c.state.SetStatus(session.StatusIdle)
	}
	return nil
}

// render draws a frame after every change and at least once per
// refreshInterval so the clock keeps moving.
func (c *Coordinator) render(ctx context.Context) error {
	watcher := c.state.Watch()

	for !c.stopped.Load() {
		if err := c.renderer.Render(c.state.Snapshot()); err != nil {
			if errors.Is(err, ui.ErrQuit) {
				return nil
			}
			return fmt.Errorf("render: %w", err)
		}

		waitCtx, cancel := context.WithTimeout(ctx, c.refreshInterval)
		watcher.Wait(waitCtx)
		cancel()

		if ctx.Err() != nil {
			return nil
		}
	}
	return nil
}

// readInput turns user input into replies and asks for fresh suggestions
// after each one.
func (c *Coordinator) readInput(ctx context.Context) error {
	for !c.stopped.Load() {
		line, err := c.input.ReadLine(ctx, "")
		if err != nil {
			return endOfInput(ctx, err)
		}

		res := ui.Resolve(line, c.state.Suggestions())
		if res.Kind == ui.Custom {
			line, err = c.input.ReadLine(ctx, ui.CustomPrompt)
			if err != nil {
				return endOfInput(ctx, err)
			}
			res = ui.ResolveCustom(line)
		}
		if res.Kind == ui.Discard {
			continue
		}

		c.showLog.Info("user responded", "kind", res.Kind, "text", res.Text)
		c.state.SetUserResponse(res.Text)
		c.engine.Refresh(ctx)
	}
	return nil
}

func endOfInput(ctx context.Context, err error) error {
	if ctx.Err() != nil || errors.Is(err, io.EOF) || errors.Is(err, ui.ErrQuit) {
		return nil
	}
	return fmt.Errorf("read input: %w", err)
}
