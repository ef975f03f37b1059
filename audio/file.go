package audio

import (
	"context"
	"fmt"
	"os"
	"time"
)

// FileSource replays a WAV recording in fixed-duration segments. With
// realtime set, each segment is delivered no faster than it would have
// been captured live.
type FileSource struct {
	path     string
	duration time.Duration
	realtime bool

	pcm        []int16
	sampleRate int
	offset     int
	started    time.Time
}

func NewFileSource(path string, duration time.Duration, realtime bool) *FileSource {
	return &FileSource{path: path, duration: duration, realtime: realtime}
}

func (s *FileSource) Open(context.Context) error {
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("open replay file: %w", err)
	}
	defer f.Close()

	pcm, rate, err := DecodeWAV(f)
	if err != nil {
		return fmt.Errorf("decode %s: %w", s.path, err)
	}
	s.load(pcm, rate)
	return nil
}

func (s *FileSource) load(pcm []int16, rate int) {
	s.pcm = pcm
	s.sampleRate = rate
	s.offset = 0
	s.started = time.Now()
}

func (s *FileSource) Next(ctx context.Context) (Segment, error) {
	if s.offset >= len(s.pcm) {
		return Segment{}, ErrSourceClosed
	}

	n := Samples(s.sampleRate, s.duration)
	if n < 1 {
		n = 1
	}
	end := min(s.offset+n, len(s.pcm))
	segment := Segment{
		PCM:        append([]int16(nil), s.pcm[s.offset:end]...),
		SampleRate: s.sampleRate,
		Timestamp:  s.started.Add(s.position(s.offset)),
		Duration:   s.position(end - s.offset),
	}
	s.offset = end

	if s.realtime {
		wait := time.Until(s.started.Add(s.position(end)))
		if wait > 0 {
			timer := time.NewTimer(wait)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-ctx.Done():
				return Segment{}, ctx.Err()
			}
		}
	}
	return segment, nil
}

func (s *FileSource) position(samples int) time.Duration {
	return time.Duration(samples) * time.Second / time.Duration(s.sampleRate)
}

func (s *FileSource) Close() error {
	s.pcm = nil
	return nil
}
