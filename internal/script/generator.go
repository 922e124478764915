// Package script turns a persona, tone and duration into a spoken
// affirmation script.
package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/nikhilbhutani/listenloved/internal/llm"
)

var ErrInvalidRequest = errors.New("script: missing required fields")

// Temperature used for script completions.
const Temperature = 0.8

// Completer is the LLM capability the generator needs.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (*llm.Completion, error)
}

type Request struct {
	Persona         string  `json:"persona"`
	Name            string  `json:"name"`
	Instructions    string  `json:"instructions"`
	Tone            string  `json:"tone"`
	DurationSeconds float64 `json:"durationSeconds"`
	Language        string  `json:"language"`
}

func (r Request) Validate() error {
	if strings.TrimSpace(r.Persona) == "" || strings.TrimSpace(r.Tone) == "" || r.DurationSeconds <= 0 {
		return ErrInvalidRequest
	}
	return nil
}

type Script struct {
	Text        string `json:"script"`
	TargetWords int    `json:"targetWords"`
	ActualWords int    `json:"actualWords"`
	// Truncated means the model hit its token limit and the text may stop
	// mid-sentence.
	Truncated   bool   `json:"truncated,omitempty"`
}

type Generator struct {
	llm Completer
}

func NewGenerator(c Completer) *Generator {
	return &Generator{llm: c}
}

func (g *Generator) Generate(ctx context.Context, req Request) (*Script, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tone, _ := LookupTone(req.Tone)
	lang := LookupLanguage(req.Language)
	target := TargetWords(req.DurationSeconds, req.Tone)

	system, user, err := affirmationTemplate.Render(map[string]string{
		"language_instruction": lang.Instruction,
		"persona":              req.Persona,
		"instructions":         orNone(req.Instructions),
		"tone":                 req.Tone,
		"duration":             strconv.FormatFloat(req.DurationSeconds, 'f', -1, 64),
		"target_words":         strconv.Itoa(target),
		"name":                 orNone(req.Name),
		"ending_hint":          lang.EndingHint,
		"ending_rule":          tone.EndingRule,
	})
	if err != nil {
		return nil, err
	}

	resp, err := g.llm.Complete(ctx, llm.Request{
		Messages:    []llm.Message{llm.System(system), llm.User(user)},
		Temperature: Temperature,
		MaxTokens:   MaxTokens(target),
		Endpoint:    "generate-script",
	})
	if err != nil {
		return nil, fmt.Errorf("generate script: %w", err)
	}

	text := strings.TrimSpace(resp.Content)
	out := &Script{Text: text, TargetWords: target, ActualWords: CountWords(text), Truncated: resp.Truncated}
	if out.Truncated {
		slog.Warn("script hit the token limit", "target_words", target, "actual_words", out.ActualWords, "model", resp.Model)
	}
	return out, nil
}

// CountWords counts whitespace-separated words.
func CountWords(s string) int {
	return len(strings.Fields(s))
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "None"
	}
	return s
}
