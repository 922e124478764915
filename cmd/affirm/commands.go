package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nikhilbhutani/listenloved/internal/audio"
	"github.com/nikhilbhutani/listenloved/internal/match"
	"github.com/nikhilbhutani/listenloved/internal/music"
	"github.com/nikhilbhutani/listenloved/internal/script"
	"github.com/nikhilbhutani/listenloved/pkg/client"
)

type scriptFlags struct {
	persona      string
	name         string
	instructions string
	tone         string
	duration     float64
	language     string
}

func (f *scriptFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.persona, "persona", "p", "", "Who the affirmation is for")
	cmd.Flags().StringVarP(&f.name, "name", "n", "", "Listener's name")
	cmd.Flags().StringVar(&f.instructions, "instructions", "", "Extra guidance for the script")
	cmd.Flags().StringVarP(&f.tone, "tone", "t", "calm", "Tone: "+strings.Join(script.Tones(), ", "))
	cmd.Flags().Float64VarP(&f.duration, "duration", "d", 60, "Target length in seconds")
	cmd.Flags().StringVarP(&f.language, "language", "l", "en", "Script language code")
}

func (f *scriptFlags) request() script.Request {
	return script.Request{
		Persona:         f.persona,
		Name:            f.name,
		Instructions:    f.instructions,
		Tone:            f.tone,
		DurationSeconds: f.duration,
		Language:        f.language,
	}
}

func scriptCmd() *cobra.Command {
	var f scriptFlags
	cmd := &cobra.Command{
		Use:   "script",
		Short: "Write an affirmation script",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			s, err := c.GenerateScript(cmd.Context(), f.request())
			if err != nil {
				return fmt.Errorf("generate script: %w", err)
			}
			slog.Debug("script generated", "target_words", s.TargetWords, "actual_words", s.ActualWords)
			fmt.Fprintln(cmd.OutOrStdout(), s.Text)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func matchCmd() *cobra.Command {
	var req match.Request
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Suggest a voice and music bed for a persona",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			s, err := c.Match(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("match: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "voice:   %s\n", s.Voice)
			fmt.Fprintf(out, "music:   %s (%s)\n", s.Music, s.MusicFile)
			fmt.Fprintf(out, "volume:  %.2f\n", s.MusicVolume)
			fmt.Fprintf(out, "summary: %s\n", s.OneLineSummary)
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Persona, "persona", "p", "", "Who the affirmation is for")
	cmd.Flags().StringVarP(&req.Tone, "tone", "t", "calm", "Tone")
	cmd.Flags().StringVar(&req.Instructions, "instructions", "", "Extra guidance")
	return cmd
}

func speakCmd() *cobra.Command {
	var (
		text  string
		file  string
		voice string
		out   string
	)
	cmd := &cobra.Command{
		Use:   "speak [text]",
		Short: "Turn text into speech",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readText(text, file, args)
			if err != nil {
				return err
			}
			c, err := newClient()
			if err != nil {
				return err
			}
			data, format, err := c.Speak(cmd.Context(), body, voice)
			if err != nil {
				return fmt.Errorf("speak: %w", err)
			}
			return writeAudio(cmd, out, data, format)
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "Text to speak")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the text from a file")
	cmd.Flags().StringVar(&voice, "voice", "alloy", "TTS voice")
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output file (default affirmation.<format>)")
	return cmd
}

func mixCmd() *cobra.Command {
	var (
		sf     scriptFlags
		text   string
		file   string
		voice  string
		track  string
		volume float64
		auto   bool
		out    string
	)
	cmd := &cobra.Command{
		Use:   "mix [text]",
		Short: "Speak a script and mix background music under it",
		Long: `Speak a script and mix background music under it.

The script comes from --text, --file or the argument. When none is given
it is generated from the persona flags. --auto asks the API to pick the
voice, music and volume.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := newClient()
			if err != nil {
				return err
			}

			body, err := readText(text, file, args)
			if errors.Is(err, errNoText) {
				body, err = generate(ctx, c, sf.request())
			}
			if err != nil {
				return err
			}

			req := client.ComposeRequest{Script: body, Tone: sf.tone, Voice: voice, Volume: volume}
			if auto {
				s, err := c.Match(ctx, match.Request{Persona: sf.persona, Tone: sf.tone, Instructions: sf.instructions})
				if err != nil {
					return fmt.Errorf("match: %w", err)
				}
				req.Voice, req.MusicFile, req.Volume = s.Voice, s.MusicFile, s.MusicVolume
				slog.Info("matched settings", "voice", s.Voice, "music", s.Music, "volume", s.MusicVolume)
			}
			if track != "" {
				req.MusicFile = resolveTrack(track)
			}

			res, err := c.Compose(ctx, req)
			if err != nil {
				return err
			}
			if res.Warning != nil {
				slog.Warn("music skipped, output is voice only", "error", res.Warning)
			}
			slog.Info("composed", "mixed", res.Mixed, "duration_seconds", res.Duration)
			return writeAudio(cmd, out, res.Audio, res.Format)
		},
	}
	sf.register(cmd)
	cmd.Flags().StringVar(&text, "text", "", "Script text")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the script from a file")
	cmd.Flags().StringVar(&voice, "voice", "alloy", "TTS voice")
	cmd.Flags().StringVar(&track, "track", "", "Music file or mood label (ambient, cheerful, cinematic, lullaby, none)")
	cmd.Flags().Float64Var(&volume, "volume", 0.3, "Music volume between 0 and 1")
	cmd.Flags().BoolVar(&auto, "auto", false, "Let the API choose voice, music and volume")
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output file (default affirmation.<format>)")
	return cmd
}

func tracksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tracks",
		Short: "List the available music tracks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			for _, t := range c.Tracks(cmd.Context()) {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		},
	}
}

var errNoText = errors.New("no text given: use --text, --file or an argument")

func readText(text, file string, args []string) (string, error) {
	switch {
	case text != "":
		return text, nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", file, err)
		}
		return string(data), nil
	case len(args) == 1:
		return args[0], nil
	}
	return "", errNoText
}

func generate(ctx context.Context, c *client.Client, req script.Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("%w (or --persona to generate one)", errNoText)
	}
	s, err := c.GenerateScript(ctx, req)
	if err != nil {
		return "", fmt.Errorf("generate script: %w", err)
	}
	slog.Info("script generated", "target_words", s.TargetWords, "actual_words", s.ActualWords)
	return s.Text, nil
}

// resolveTrack accepts either a mood label or a file name.
func resolveTrack(track string) string {
	if file, ok := music.DefaultCatalog().File(track); ok {
		return file
	}
	return track
}

func writeAudio(cmd *cobra.Command, path string, data []byte, format audio.Format) error {
	if path == "" {
		path = "affirmation." + format.Extension()
	} else if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext != "" && ext != format.Extension() {
		slog.Warn("output extension does not match audio format", "path", path, "format", format)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", path, len(data))
	return nil
}
