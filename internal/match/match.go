// Package match asks the LLM to choose voice, music and volume settings that
// suit a persona and tone.
package match

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/nikhilbhutani/listenloved/internal/llm"
	"github.com/nikhilbhutani/listenloved/internal/music"
	"github.com/nikhilbhutani/listenloved/internal/prompt"
	"github.com/nikhilbhutani/listenloved/internal/tts"
)

const (
	Temperature   = 0.7
	MaxTokens     = 150
	DefaultVolume = 15
)

var ErrInvalidJSON = errors.New("match: AI returned invalid JSON")

type Completer interface {
	Complete(ctx context.Context, req llm.Request) (*llm.Completion, error)
}

type Request struct {
	Persona      string `json:"persona"`
	Tone         string `json:"tone"`
	Instructions string `json:"instructions"`
}

type Settings struct {
	Voice          string  `json:"voice"`
	Music          string  `json:"music"`
	MusicVolume    float64 `json:"musicVolume"`
	OneLineSummary string  `json:"oneLineSummary"`
	MusicFile      string  `json:"musicFile"`
}

var settingsTemplate = prompt.Template{
	Name: "settings-match",
	User: `You are helping match audio settings for a personalized affirmation app.

Given these user inputs:
- Persona (who is speaking): {{persona}}
- Tone: {{tone}}
- Custom instructions: {{instructions}}

Available voices (pick the one that best matches the persona's likely age and gender):
{{voices}}

Available background music options: {{music_options}}

Rules:
- Match voice to the persona's likely age and gender as closely as possible
- Pick music that complements the tone
- musicVolume should be 0-100 (default 15)
- oneLineSummary: a short warm sentence describing what this affirmation is about

Respond with ONLY valid JSON, no markdown:
{"voice": "...", "music": "...", "musicVolume": 15, "oneLineSummary": "..."}`,
}

type Matcher struct {
	llm     Completer
	catalog *music.Catalog
}

func NewMatcher(c Completer, catalog *music.Catalog) *Matcher {
	if catalog == nil {
		catalog = music.DefaultCatalog()
	}
	return &Matcher{llm: c, catalog: catalog}
}

func (m *Matcher) Match(ctx context.Context, req Request) (*Settings, error) {
	_, user, err := settingsTemplate.Render(map[string]string{
		"persona":       orNotSpecified(req.Persona),
		"tone":          orNotSpecified(req.Tone),
		"instructions":  orNotSpecified(req.Instructions),
		"voices":        voiceList(),
		"music_options": m.musicOptions(),
	})
	if err != nil {
		return nil, err
	}

	resp, err := m.llm.Complete(ctx, llm.Request{
		Messages:    []llm.Message{llm.User(user)},
		Temperature: Temperature,
		MaxTokens:   MaxTokens,
		Endpoint:    "ai-match",
	})
	if err != nil {
		return nil, fmt.Errorf("match settings: %w", err)
	}

	return m.Parse(resp.Content)
}

var jsonObject = regexp.MustCompile(`(?s)\{.*\}`)

// rawSettings keeps musicVolume untyped so numeric strings are accepted.
// A JSON null reads as 0.
type rawSettings struct {
	Voice          string          `json:"voice"`
	Music          string          `json:"music"`
	MusicVolume    json.RawMessage `json:"musicVolume"`
	OneLineSummary string          `json:"oneLineSummary"`
}

// Parse reads the model's reply, falling back to the outermost {...} block,
// and replaces anything out of range with defaults.
func (m *Matcher) Parse(raw string) (*Settings, error) {
	raw = strings.TrimSpace(raw)
	var rs rawSettings
	if err := json.Unmarshal([]byte(raw), &rs); err != nil {
		block := jsonObject.FindString(raw)
		if block == "" {
			return nil, ErrInvalidJSON
		}
		if err := json.Unmarshal([]byte(block), &rs); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
	}

	s := &Settings{
		Voice:          rs.Voice,
		Music:          rs.Music,
		MusicVolume:    parseVolume(rs.MusicVolume),
		OneLineSummary: rs.OneLineSummary,
	}
	if _, ok := tts.LookupVoice(s.Voice); !ok {
		s.Voice = tts.DefaultVoice
	}
	file, ok := m.catalog.File(s.Music)
	if !ok {
		s.Music = music.LabelNone
		file = ""
	}
	s.MusicFile = file
	return s, nil
}

func parseVolume(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return DefaultVolume
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		var s string
		if json.Unmarshal(raw, &s) != nil {
			return DefaultVolume
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return DefaultVolume
		}
		v = parsed
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 100 {
		return DefaultVolume
	}
	return v
}

func voiceList() string {
	var sb strings.Builder
	for i, v := range tts.Voices() {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "- %q: %s", v.Name, v.Description)
	}
	return sb.String()
}

func (m *Matcher) musicOptions() string {
	labels := m.catalog.Labels()
	quoted := make([]string, len(labels))
	for i, l := range labels {
		quoted[i] = fmt.Sprintf("%q", l)
	}
	return strings.Join(quoted, ", ")
}

func orNotSpecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return "not specified"
	}
	return s
}
