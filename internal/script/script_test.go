package script

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nikhilbhutani/listenloved/internal/llm"
)

type fakeLLM struct {
	content   string
	truncated bool
	err       error
	got       llm.Request
}

func (f *fakeLLM) Complete(_ context.Context, req llm.Request) (*llm.Completion, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Completion{Content: f.content, Truncated: f.truncated}, nil
}

func TestTargetWords(t *testing.T) {
	tests := []struct {
		duration float64
		tone     string
		want     int
	}{
		{60, "calm", 115},    // 60*1.6*1.2 = 115.2
		{60, "lullaby", 81},  // 115.2*0.7 = 80.64
		{30, "cheerful", 58}, // 57.6
		{20, "unknown", 38},  // 38.4
	}
	for _, tt := range tests {
		if got := TargetWords(tt.duration, tt.tone); got != tt.want {
			t.Errorf("TargetWords(%v, %q) = %d, want %d", tt.duration, tt.tone, got, tt.want)
		}
	}
}

func TestMaxTokens(t *testing.T) {
	if got := MaxTokens(115); got != 230 {
		t.Errorf("MaxTokens(115) = %d", got)
	}
	if got := MaxTokens(800); got != MaxTokenCap {
		t.Errorf("MaxTokens(800) = %d, want cap", got)
	}
}

func TestGenerate(t *testing.T) {
	f := &fakeLLM{content: "  You are loved. Sleep well.  \n"}
	g := NewGenerator(f)

	s, err := g.Generate(t.Context(), Request{
		Persona:         "grandmother",
		Name:            "Mia",
		Tone:            "lullaby",
		DurationSeconds: 60,
		Language:        "ko",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if s.Text != "You are loved. Sleep well." || s.ActualWords != 5 || s.TargetWords != 81 {
		t.Errorf("script = %+v", s)
	}

	if f.got.Temperature != Temperature || f.got.MaxTokens != 162 {
		t.Errorf("request temperature=%v max_tokens=%d", f.got.Temperature, f.got.MaxTokens)
	}
	if len(f.got.Messages) != 2 || f.got.Messages[0].Role != "system" {
		t.Fatalf("messages = %+v", f.got.Messages)
	}
	user := f.got.Messages[1].Content
	for _, want := range []string{
		"Persona: grandmother",
		"Instructions: None",
		"Optional name: Mia",
		"Target word count: 81",
		"Duration: 60 seconds",
		`must end with "good night" style line`,
		"한국어",
	} {
		if !strings.Contains(user, want) {
			t.Errorf("user prompt missing %q:\n%s", want, user)
		}
	}
}

func TestGenerateUnknownLanguageUsesEnglish(t *testing.T) {
	f := &fakeLLM{content: "You shine."}
	if _, err := NewGenerator(f).Generate(t.Context(), Request{Persona: "coach", Tone: "motivational", DurationSeconds: 20, Language: "fr"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(f.got.Messages[1].Content, "in English") {
		t.Error("expected English instruction")
	}
}

func TestGenerateRejectsMissingFields(t *testing.T) {
	g := NewGenerator(&fakeLLM{})
	for _, req := range []Request{
		{Tone: "calm", DurationSeconds: 30},
		{Persona: "friend", DurationSeconds: 30},
		{Persona: "friend", Tone: "calm"},
	} {
		if _, err := g.Generate(t.Context(), req); !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("Generate(%+v) err = %v", req, err)
		}
	}
}

func TestGeneratePropagatesLLMError(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewGenerator(&fakeLLM{err: boom}).Generate(t.Context(), Request{Persona: "p", Tone: "calm", DurationSeconds: 10})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name, script, tone string
		valid              bool
		warn               bool
	}{
		{"empty", "   ", "calm", false, false},
		{"lullaby ok", "You are safe. Good night.", "lullaby", true, false},
		{"lullaby missing", "You are safe.", "lullaby", true, true},
		{"cheerful ok", "Have a great morning!", "cheerful", true, false},
		{"calm ok", "You are at PEACE.", "calm", true, false},
		{"motivational ok", "You've got this.", "motivational", true, false},
		{"unknown tone", "Anything.", "whimsical", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Validate(tt.script, tt.tone)
			if v.Valid != tt.valid || (v.Warning != "") != tt.warn {
				t.Errorf("Validate = %+v", v)
			}
		})
	}
}

func TestGenerateReportsTruncation(t *testing.T) {
	f := &fakeLLM{content: "You are safe and", truncated: true}
	s, err := NewGenerator(f).Generate(t.Context(), Request{Persona: "mom", Tone: "calm", DurationSeconds: 30})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !s.Truncated || s.ActualWords != 4 {
		t.Errorf("script = %+v", s)
	}
}
