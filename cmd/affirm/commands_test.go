package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/nikhilbhutani/listenloved/internal/audio"
	"github.com/nikhilbhutani/listenloved/internal/music"
)

func TestReadText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.txt")
	if err := os.WriteFile(path, []byte("from file"), 0o600); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		text string
		file string
		args []string
		want string
	}{
		{"flag wins", "flag", path, []string{"arg"}, "flag"},
		{"file", "", path, []string{"arg"}, "from file"},
		{"argument", "", "", []string{"arg"}, "arg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readText(tt.text, tt.file, tt.args)
			if err != nil || got != tt.want {
				t.Fatalf("readText = %q, %v; want %q", got, err, tt.want)
			}
		})
	}
	if _, err := readText("", "", nil); !errors.Is(err, errNoText) {
		t.Fatalf("err = %v, want errNoText", err)
	}
}

func TestResolveTrack(t *testing.T) {
	if got := resolveTrack(music.LabelLullaby); got != music.DefaultFiles[3] {
		t.Errorf("label resolved to %q", got)
	}
	if got := resolveTrack(music.LabelNone); got != "" {
		t.Errorf("none resolved to %q", got)
	}
	if got := resolveTrack("custom.mp3"); got != "custom.mp3" {
		t.Errorf("file resolved to %q", got)
	}
}

func TestWriteAudioDefaultName(t *testing.T) {
	t.Chdir(t.TempDir())
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	if err := writeAudio(cmd, "", []byte("RIFF"), audio.FormatWAV); err != nil {
		t.Fatalf("writeAudio: %v", err)
	}
	data, err := os.ReadFile("affirmation.wav")
	if err != nil || string(data) != "RIFF" {
		t.Fatalf("file = %q, %v", data, err)
	}
}

func TestRootRegistersSubcommands(t *testing.T) {
	for _, name := range []string{"script", "match", "speak", "mix", "tracks"} {
		if c, _, err := rootCmd.Find([]string{name}); err != nil || c.Name() != name {
			t.Errorf("subcommand %s missing: %v", name, err)
		}
	}
}
