// Package client is a typed Go client for the listenloved API. It reaches
// the API through the fallback client, so a local server and the hosted
// deployment can both be listed, and it mixes background music locally.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nikhilbhutani/listenloved/internal/audio"
	"github.com/nikhilbhutani/listenloved/internal/config"
	"github.com/nikhilbhutani/listenloved/internal/fallback"
	"github.com/nikhilbhutani/listenloved/internal/match"
	"github.com/nikhilbhutani/listenloved/internal/music"
	"github.com/nikhilbhutani/listenloved/internal/script"
)

// APIError is a definitive non-2xx answer from the API.
type APIError struct {
	Status  int
	Message string `json:"error"`
	Details string `json:"details"`
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("api %d: %s: %s", e.Status, e.Message, e.Details)
	}
	return fmt.Sprintf("api %d: %s", e.Status, e.Message)
}

type Options struct {
	APIBases   []string
	MusicBases []string // default: each API base with /api replaced by /music
	HTTPClient *http.Client
	Mix        audio.MixConfig
}

type Client struct {
	api   *fallback.Client
	mixer *audio.Mixer
}

func New(opts Options) (*Client, error) {
	api, err := fallback.New(opts.APIBases, opts.HTTPClient)
	if err != nil {
		return nil, fmt.Errorf("api bases: %w", err)
	}
	musicBases := opts.MusicBases
	if len(musicBases) == 0 {
		musicBases = deriveMusicBases(api.Bases())
	}
	tracks, err := fallback.New(musicBases, opts.HTTPClient)
	if err != nil {
		return nil, fmt.Errorf("music bases: %w", err)
	}
	mixCfg := opts.Mix
	if mixCfg == (audio.MixConfig{}) {
		mixCfg = audio.DefaultMixConfig()
	}
	return &Client{
		api:   api,
		mixer: audio.NewMixer(audio.NewOfflineEngine(), music.HTTPLoader{Client: tracks}, mixCfg),
	}, nil
}

// FromConfig orders the same-origin and remote bases local-first when the
// same-origin base points at this machine.
func FromConfig(cfg config.ClientConfig, mix audio.MixConfig) (*Client, error) {
	local := false
	if u, err := url.Parse(cfg.SameOriginBase); err == nil {
		local = fallback.IsLocalHost(u.Hostname())
	}
	var bases []string
	for _, b := range fallback.OrderBases(local, cfg.SameOriginBase, cfg.RemoteBase) {
		if b != "" {
			bases = append(bases, b)
		}
	}
	return New(Options{
		APIBases:   bases,
		MusicBases: cfg.MusicBases,
		HTTPClient: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		Mix:        mix,
	})
}

func deriveMusicBases(apiBases []string) []string {
	out := make([]string, 0, len(apiBases))
	for _, b := range apiBases {
		out = append(out, strings.TrimSuffix(b, "/api")+"/music")
	}
	return out
}

// Bases returns the API bases in try order.
func (c *Client) Bases() []string { return c.api.Bases() }

func (c *Client) MusicFiles(ctx context.Context) ([]string, error) {
	var out struct {
		Files []string `json:"files"`
	}
	if err := c.call(ctx, http.MethodGet, "/music-files", nil, &out); err != nil {
		return nil, err
	}
	return out.Files, nil
}

// Tracks is MusicFiles with the bundled track list as the fallback.
func (c *Client) Tracks(ctx context.Context) []string {
	files, err := c.MusicFiles(ctx)
	if err != nil || len(files) == 0 {
		slog.Warn("music listing unavailable, using bundled list", "error", err)
		return append([]string(nil), music.DefaultFiles...)
	}
	return files
}

func (c *Client) GenerateScript(ctx context.Context, req script.Request) (*script.Script, error) {
	var out script.Script
	if err := c.call(ctx, http.MethodPost, "/generate-script", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Match(ctx context.Context, req match.Request) (*match.Settings, error) {
	var out match.Settings
	if err := c.call(ctx, http.MethodPost, "/ai-match", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Speak returns decoded speech audio and its container.
func (c *Client) Speak(ctx context.Context, text, voice string) ([]byte, audio.Format, error) {
	var out struct {
		Audio  string       `json:"audio"`
		Format audio.Format `json:"format"`
	}
	body := map[string]string{"script": text, "voice": voice}
	if err := c.call(ctx, http.MethodPost, "/tts", body, &out); err != nil {
		return nil, "", err
	}
	data, err := audio.DecodeBase64(out.Audio)
	if err != nil {
		return nil, "", fmt.Errorf("decode tts audio: %w", err)
	}
	if out.Format == "" {
		out.Format = audio.FormatMP3
	}
	return data, out.Format, nil
}

func (c *Client) call(ctx context.Context, method, path string, in, out any) error {
	req := fallback.Request{Method: method, Header: http.Header{"Accept": {"application/json"}}}
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", path, err)
		}
		req.Body = data
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.api.Do(ctx, path, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		if json.Unmarshal(raw, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return apiErr
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
