// Package logging sets up the session log file. The terminal belongs to the
// user interface, so nothing is logged to stdout while a session runs.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Loggers are the prefixed child loggers handed to each component.
type Loggers struct {
	Main  *log.Logger // startup and shutdown
	Hear  *log.Logger // capture and transcription
	Think *log.Logger // suggestions and summaries
	Show  *log.Logger // rendering and input
	Pipe  *log.Logger // coordinator

	closer io.Closer
}

// Open appends to the log file at path. An empty path discards all output.
func Open(path, level string) (*Loggers, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}

	var w io.Writer = io.Discard
	var closer io.Closer
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		w, closer = f, f
	}

	l := New(w, lvl)
	l.closer = closer
	return l, nil
}

// New builds the loggers on top of any writer.
func New(w io.Writer, level log.Level) *Loggers {
	logger := log.NewWithOptions(w, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		Level:           level,
	})
	logger.SetCallerFormatter(
		func(file string, line int, funcName string) string {
			path, err := filepath.Rel(".", file)
			if err != nil {
				path = file
			}
			return fmt.Sprintf("%s:%d", path, line)
		},
	)
	logger.SetStyles(styles())

	return &Loggers{
		Main:  logger.With().WithPrefix("main"),
		Hear:  logger.With().WithPrefix("hear"),
		Think: logger.With().WithPrefix("think"),
		Show:  logger.With().WithPrefix("show"),
		Pipe:  logger.With().WithPrefix("pipe"),
	}
}

func (l *Loggers) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

func styles() *log.Styles {
	styles := log.DefaultStyles()
	styles.Prefix = styles.Prefix.
		Bold(false).Transform(func(s string) string {
		return strings.TrimSuffix(s, ":")
	})
	for _, level := range []log.Level{log.DebugLevel, log.InfoLevel, log.WarnLevel, log.ErrorLevel} {
		styles.Levels[level] = styles.Levels[level].
			MaxWidth(6).
			MarginRight(1).
			Bold(false)
	}
	styles.Message = styles.Message.Bold(true).Width(24)
	styles.Key = styles.Key.MarginLeft(1).
		Bold(false).
		Foreground(lipgloss.Color("#ff8800"))
	return styles
}
