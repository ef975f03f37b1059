// Package profile reads the user's profile documents from the data directory.
package profile

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
	"node.town/speakwith/session"
)

const (
	BackgroundFile = "background.md"
	MoodBoardFile  = "mood_board.md"
)

type Loader struct {
	fs  afero.Fs
	dir string
}

func NewLoader(fs afero.Fs, dir string) *Loader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Loader{fs: fs, dir: dir}
}

func (l *Loader) Dir() string {
	return l.dir
}

// Load reads both documents. A missing document is an empty string.
func (l *Loader) Load() (session.Profile, error) {
	background, err := l.read(BackgroundFile)
	if err != nil {
		return session.Profile{}, err
	}
	moodBoard, err := l.read(MoodBoardFile)
	if err != nil {
		return session.Profile{}, err
	}
	return session.Profile{Background: background, MoodBoard: moodBoard}, nil
}

func (l *Loader) BackgroundExists() bool {
	return l.exists(BackgroundFile)
}

func (l *Loader) MoodBoardExists() bool {
	return l.exists(MoodBoardFile)
}

func (l *Loader) path(name string) string {
	return filepath.Join(l.dir, name)
}

func (l *Loader) read(name string) (string, error) {
	data, err := afero.ReadFile(l.fs, l.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read profile %s: %w", name, err)
	}
	return string(data), nil
}

func (l *Loader) exists(name string) bool {
	ok, err := afero.Exists(l.fs, l.path(name))
	return err == nil && ok
}
