package audio

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultCaptureCommand records raw little-endian 16-bit mono PCM to stdout.
const DefaultCaptureCommand = "arecord -q -t raw -f S16_LE -c 1 -r {rate} -d {seconds}"

// CommandSource captures each segment by running an external recorder
// such as arecord or sox. The command is expanded with {rate} and
// {seconds} and must write raw PCM to stdout.
type CommandSource struct {
	command    string
	sampleRate int
	duration   time.Duration
	log        *log.Logger
}

func NewCommandSource(
	command string,
	sampleRate int,
	duration time.Duration,
	logger *log.Logger,
) *CommandSource {
	if command == "" {
		command = DefaultCaptureCommand
	}
	if logger == nil {
		logger = log.Default()
	}
	return &CommandSource{
		command:    command,
		sampleRate: sampleRate,
		duration:   duration,
		log:        logger,
	}
}

func (s *CommandSource) args() []string {
	seconds := int(s.duration.Round(time.Second).Seconds())
	if seconds < 1 {
		seconds = 1
	}
	expanded := strings.NewReplacer(
		"{rate}", strconv.Itoa(s.sampleRate),
		"{seconds}", strconv.Itoa(seconds),
	).Replace(s.command)
	return strings.Fields(expanded)
}

// Open checks that the recorder can be found.
func (s *CommandSource) Open(context.Context) error {
	args := s.args()
	if len(args) == 0 {
		return fmt.Errorf("empty capture command")
	}
	if _, err := exec.LookPath(args[0]); err != nil {
		return fmt.Errorf("capture command %q: %w", args[0], err)
	}
	return nil
}

func (s *CommandSource) Next(ctx context.Context) (Segment, error) {
	args := s.args()
	timestamp := time.Now()

	// The recorder stops itself after the segment; the extra margin only
	// bounds a recorder that hangs.
	ctx, cancel := context.WithTimeout(ctx, s.duration+5*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Segment{}, fmt.Errorf("capture stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return Segment{}, fmt.Errorf("start capture: %w", err)
	}

	raw, readErr := io.ReadAll(io.LimitReader(stdout, int64(2*Samples(s.sampleRate, s.duration))))
	if readErr == nil {
		// Drain anything past the segment so the recorder can exit.
		io.Copy(io.Discard, stdout)
	}
	waitErr := cmd.Wait()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return Segment{}, ctxErr
	}
	if readErr != nil {
		return Segment{}, fmt.Errorf("read captured audio: %w", readErr)
	}
	if waitErr != nil {
		return Segment{}, fmt.Errorf("capture command: %w", waitErr)
	}
	if len(raw) == 0 {
		return Segment{}, ErrSourceClosed
	}

	pcm := make([]int16, len(raw)/2)
	for i := range pcm {
		pcm[i] = int16(binary.LittleEndian.Uint16(raw[2*i:]))
	}

	s.log.Debug("captured segment", "samples", len(pcm), "took", time.Since(timestamp))
	return Segment{
		PCM:        pcm,
		SampleRate: s.sampleRate,
		Timestamp:  timestamp,
		Duration:   s.duration,
	}, nil
}

func (s *CommandSource) Close() error {
	return nil
}
