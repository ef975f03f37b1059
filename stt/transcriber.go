package stt

import (
	"context"

	"node.town/speakwith/audio"
)

// Transcriber turns one audio segment into text. An empty result means
// nothing was said.
type Transcriber interface {
	// Initialize does the expensive one-time setup. It is called once,
	// before any segment is transcribed.
	Initialize(ctx context.Context) error
	Transcribe(ctx context.Context, segment audio.Segment) (string, error)
}

// silent reports whether a segment is too quiet to be worth sending.
func silent(segment audio.Segment, threshold int16) bool {
	for _, s := range segment.PCM {
		if s > threshold || s < -threshold {
			return false
		}
	}
	return true
}
