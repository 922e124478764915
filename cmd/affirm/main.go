// Command affirm drives the listenloved API from a terminal: it writes
// scripts, speaks them and mixes a music bed underneath locally.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nikhilbhutani/listenloved/internal/audio"
	"github.com/nikhilbhutani/listenloved/internal/config"
	"github.com/nikhilbhutani/listenloved/pkg/client"
)

var (
	verbose bool
	apiBase string
)

var rootCmd = &cobra.Command{
	Use:   "affirm",
	Short: "Generate spoken affirmations with the listenloved API",
	Long: `Generate spoken affirmations with the listenloved API.

• script - write an affirmation script for a persona and tone
• match  - ask for a voice and music bed that suit a persona
• speak  - turn text into speech
• mix    - speak a script and mix background music under it
• tracks - list the available music tracks

The API is reached through API_SAME_ORIGIN_BASE and API_REMOTE_BASE,
local first. Use --api to pin a single base.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose debug logging")
	rootCmd.PersistentFlags().StringVar(&apiBase, "api", "", "API base URL (overrides the configured bases)")

	rootCmd.AddCommand(scriptCmd(), matchCmd(), speakCmd(), mixCmd(), tracksCmd())
}

// newClient builds the API client from the environment.
func newClient() (*client.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	mix, err := audio.MixConfigFrom(cfg.Mixer)
	if err != nil {
		return nil, fmt.Errorf("mixer config: %w", err)
	}
	if apiBase != "" {
		cfg.Client.SameOriginBase = apiBase
		cfg.Client.RemoteBase = ""
	}
	return client.FromConfig(cfg.Client, mix)
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "failed to read .env:", err)
	}
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
