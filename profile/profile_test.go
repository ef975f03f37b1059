package profile

import (
	"testing"

	"github.com/spf13/afero"
)

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "user_data/background.md", []byte("I teach piano."), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader(fs, "user_data")
	p, err := loader.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Background != "I teach piano." {
		t.Errorf("Background = %q", p.Background)
	}
	if p.MoodBoard != "" {
		t.Errorf("MoodBoard = %q, want empty", p.MoodBoard)
	}
	if !loader.BackgroundExists() {
		t.Error("BackgroundExists() = false")
	}
	if loader.MoodBoardExists() {
		t.Error("MoodBoardExists() = true")
	}
}

func TestLoadMissingDirectory(t *testing.T) {
	p, err := NewLoader(afero.NewMemMapFs(), "nowhere").Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Background != "" || p.MoodBoard != "" {
		t.Errorf("profile = %+v, want empty", p)
	}
}
