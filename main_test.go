package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"node.town/speakwith/profile"
	"node.town/speakwith/session"
)

func TestWriteModes(t *testing.T) {
	var buf bytes.Buffer
	writeModes(&buf)

	out := buf.String()
	for _, mc := range session.Modes() {
		if !strings.Contains(out, mc.DisplayName) || !strings.Contains(out, string(mc.Mode)) {
			t.Errorf("modes table is missing %q:\n%s", mc.Mode, out)
		}
	}
}

func TestProfileMarkdown(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "data/background.md", []byte("  Violinist in Lyon.\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := profileMarkdown(profile.NewLoader(fs, "data"))
	if err != nil {
		t.Fatalf("profileMarkdown: %v", err)
	}
	if !strings.Contains(doc, "## background.md\n\nViolinist in Lyon.") {
		t.Errorf("background not shown:\n%s", doc)
	}
	if !strings.Contains(doc, "## mood_board.md\n\n_Missing.") {
		t.Errorf("missing mood board not reported:\n%s", doc)
	}
}

func TestChooseModeFromConfig(t *testing.T) {
	mode, err := chooseMode("2")
	if err != nil || mode != session.ModeShopping {
		t.Errorf("chooseMode(2) = %q, %v", mode, err)
	}
	if _, err := chooseMode("karaoke"); err == nil {
		t.Error("chooseMode accepted an unknown mode")
	}
}

func TestLoadDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("OPENAI_API_KEY=sk-from-env-file\nLANGUAGE=fr\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	v := viper.New()
	v.Set("language", "de")
	loadDotenv(v, path)

	if got := v.GetString("openai_api_key"); got != "sk-from-env-file" {
		t.Errorf("openai_api_key = %q", got)
	}
	if got := v.GetString("language"); got != "de" {
		t.Errorf("language = %q, want explicit value to win", got)
	}
}
