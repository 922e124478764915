package llm

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSplitSystemJoinsSystemMessages(t *testing.T) {
	system, msgs := splitSystem([]Message{
		System("Be kind."),
		User("hello"),
		System("  "),
		System("Be brief."),
		{Role: "assistant", Content: "hi"},
		{Role: "tool", Content: "ignored role"},
	})
	if system != "Be kind.\n\nBe brief." {
		t.Errorf("system = %q", system)
	}
	wantRoles := []string{"user", "assistant", "user"}
	if len(msgs) != len(wantRoles) {
		t.Fatalf("got %d messages, want %d", len(msgs), len(wantRoles))
	}
	for i, want := range wantRoles {
		if string(msgs[i].Role) != want {
			t.Errorf("msgs[%d].Role = %s, want %s", i, msgs[i].Role, want)
		}
	}
}

func TestChatRequestOmitsZeroSettings(t *testing.T) {
	r := chatRequest(Request{Model: "gpt-4o-mini", Messages: []Message{User("hi")}})
	if r.Temperature != 0 || r.MaxTokens != 0 || len(r.Messages) != 1 {
		t.Errorf("request = %+v", r)
	}
	r = chatRequest(Request{Model: "gpt-4o", Temperature: 0.8, MaxTokens: 200})
	if r.Temperature != 0.8 || r.MaxTokens != 200 {
		t.Errorf("request = %+v", r)
	}
}

func chatServer(t *testing.T, body map[string]any) *OpenAIProvider {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return NewOpenAIProviderWithBaseURL("sk-test", srv.URL+"/v1")
}

func TestOpenAICompleteFlagsTruncation(t *testing.T) {
	p := chatServer(t, map[string]any{
		"id":    "chatcmpl-1",
		"model": "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": "You are"},
			"finish_reason": "length",
		}},
		"usage": map[string]any{"prompt_tokens": 100, "completion_tokens": 2, "total_tokens": 102},
	})

	c, err := p.Complete(t.Context(), Request{Model: "gpt-4o-mini", Messages: []Message{User("hi")}})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !c.Truncated || c.Content != "You are" || c.TotalTokens != 102 || c.Provider != "openai" {
		t.Errorf("completion = %+v", c)
	}
	if c.CostUSD <= 0 {
		t.Errorf("cost = %v", c.CostUSD)
	}
}

func TestOpenAICompleteRejectsEmptyAnswer(t *testing.T) {
	p := chatServer(t, map[string]any{"id": "chatcmpl-2", "model": "gpt-4o-mini", "choices": []any{}})
	if _, err := p.Complete(t.Context(), Request{Model: "gpt-4o-mini"}); !errors.Is(err, ErrEmptyCompletion) {
		t.Fatalf("err = %v, want ErrEmptyCompletion", err)
	}
}
