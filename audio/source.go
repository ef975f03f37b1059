package audio

import (
	"context"
	"errors"
	"time"
)

var ErrSourceClosed = errors.New("audio source closed")

// Segment is one fixed-duration chunk of mono 16-bit PCM audio.
type Segment struct {
	PCM        []int16
	SampleRate int
	Timestamp  time.Time
	Duration   time.Duration
}

// Samples is the number of samples a segment of duration holds at rate.
func Samples(rate int, duration time.Duration) int {
	return int(float64(rate) * duration.Seconds())
}

// Source produces consecutive segments. Next blocks until a whole segment
// has been captured or ctx ends.
type Source interface {
	Open(ctx context.Context) error
	Next(ctx context.Context) (Segment, error)
	Close() error
}
