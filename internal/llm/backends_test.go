package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testServer(t *testing.T, status int, body any) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func anthropicMessage(text, stop string) map[string]any {
	return map[string]any{
		"id":          "msg_1",
		"type":        "message",
		"role":        "assistant",
		"model":       "claude-haiku-4-5-20251001",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"stop_reason": stop,
		"usage":       map[string]any{"input_tokens": 120, "output_tokens": 40},
	}
}

func TestAnthropicProvider_Generate(t *testing.T) {
	url := testServer(t, http.StatusOK, anthropicMessage(`{"score":77}`, "end_turn"))
	p, err := NewAnthropicProvider(ProviderConfig{APIKey: "k", Model: "claude-haiku", BaseURL: url})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	resp, err := p.Generate(context.Background(), UserPrompt("coach", "rate this", scoreSchema, 256))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(resp.Content) != `{"score":77}` {
		t.Errorf("content = %s", resp.Content)
	}
	if resp.Usage.TotalTokens != 160 {
		t.Errorf("total tokens = %d, want 160", resp.Usage.TotalTokens)
	}
	if p.ModelID() != "claude-haiku-4-5-20251001" {
		t.Errorf("ModelID = %q", p.ModelID())
	}
}

func TestAnthropicProvider_Truncated(t *testing.T) {
	url := testServer(t, http.StatusOK, anthropicMessage(`{"sco`, "max_tokens"))
	p, _ := NewAnthropicProvider(ProviderConfig{APIKey: "k", Model: "claude-haiku", BaseURL: url})

	_, err := p.Generate(context.Background(), UserPrompt("", "x", nil, 8))
	var trunc *ErrMaxTokensExceeded
	if !errors.As(err, &trunc) {
		t.Fatalf("err = %v, want *ErrMaxTokensExceeded", err)
	}
}

func TestAnthropicProvider_RequiresKey(t *testing.T) {
	if _, err := NewAnthropicProvider(ProviderConfig{}); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func openAICompletion(content, finish string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 30, "completion_tokens": 12, "total_tokens": 42},
	}
}

func TestOpenAIProvider_Generate(t *testing.T) {
	url := testServer(t, http.StatusOK, openAICompletion(`{"score":12,"label":"low"}`, "stop"))
	p, err := NewOpenAIProvider(ProviderConfig{APIKey: "k", Model: "gpt-4o-mini", BaseURL: url + "/v1"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	resp, err := p.Generate(context.Background(), UserPrompt("sys", "x", scoreSchema, 128))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Usage.TotalTokens != 42 || resp.Model != "gpt-4o-mini" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestOpenAIProvider_SchemaMismatch(t *testing.T) {
	url := testServer(t, http.StatusOK, openAICompletion(`{"label":"low"}`, "stop"))
	p, _ := NewOpenAIProvider(ProviderConfig{APIKey: "k", Model: "gpt-4o-mini", BaseURL: url + "/v1"})

	_, err := p.Generate(context.Background(), UserPrompt("", "x", scoreSchema, 128))
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("err = %v, want *ErrInvalidResponse", err)
	}
}

func TestOpenAIProvider_RateLimit(t *testing.T) {
	url := testServer(t, http.StatusTooManyRequests, map[string]any{
		"error": map[string]any{"message": "slow down", "type": "tokens", "code": "rate_limit_exceeded"},
	})
	p, _ := NewOpenAIProvider(ProviderConfig{APIKey: "k", Model: "gpt-4o-mini", BaseURL: url + "/v1"})

	_, err := p.Generate(context.Background(), UserPrompt("", "x", nil, 16))
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("err = %T (%v), want *ErrRateLimit", err, err)
	}
}

func TestNewOpenRouterProvider_DefaultsBaseURL(t *testing.T) {
	p, err := NewOpenRouterProvider(ProviderConfig{APIKey: "k", Model: "meta/llama"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if p.ModelID() != "meta/llama" {
		t.Errorf("ModelID = %q", p.ModelID())
	}
}

func TestToGeminiSchema(t *testing.T) {
	s := toGeminiSchema(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"tips":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"tier":  map[string]any{"type": "string", "enum": []string{"good", "average"}},
			"score": map[string]any{"type": "integer"},
		},
		"required": []any{"tips"},
	})

	if s.Type != "OBJECT" || len(s.Properties) != 3 {
		t.Fatalf("schema = %+v", s)
	}
	if s.Properties["tips"].Items.Type != "STRING" {
		t.Errorf("tips items = %s", s.Properties["tips"].Items.Type)
	}
	if len(s.Properties["tier"].Enum) != 2 {
		t.Errorf("tier enum = %v", s.Properties["tier"].Enum)
	}
	if s.Properties["score"].Type != "INTEGER" {
		t.Errorf("score type = %s", s.Properties["score"].Type)
	}
	if len(s.Required) != 1 || s.Required[0] != "tips" {
		t.Errorf("required = %v", s.Required)
	}
}

func TestModelAlias(t *testing.T) {
	if got := modelAlias("gemini-flash", geminiAliases); got != "gemini-2.0-flash" {
		t.Errorf("alias = %q", got)
	}
	if got := modelAlias("custom-model", anthropicAliases); got != "custom-model" {
		t.Errorf("pass-through = %q", got)
	}
}
