package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestResolveOrder(t *testing.T) {
	tests := []struct {
		preferred string
		wantFirst string
	}{
		{"", "groq"},
		{"openai", "openai"},
		{"anthropic", "anthropic"},
		{"ANTHROPIC", "anthropic"},
		{"mystery", "groq"},
	}
	for _, tt := range tests {
		order := resolveOrder(tt.preferred)
		if len(order) != 3 {
			t.Fatalf("resolveOrder(%q) has %d entries, want 3", tt.preferred, len(order))
		}
		if order[0] != tt.wantFirst {
			t.Errorf("resolveOrder(%q)[0] = %q, want %q", tt.preferred, order[0], tt.wantFirst)
		}
	}
}

func TestNewProviderFallbackOrder(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "test-key")

	p, err := NewProvider("")
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if _, ok := p.(*AnthropicProvider); !ok {
		t.Errorf("expected anthropic fallback, got %T", p)
	}
}

func TestNewProviderPreferred(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "g-key")
	t.Setenv("OPENAI_API_KEY", "o-key")
	t.Setenv("ANTHROPIC_API_KEY", "")

	p, err := NewProvider("openai")
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if _, ok := p.(*OpenAIProvider); !ok {
		t.Errorf("preferred provider ignored, got %T", p)
	}
}

func TestNewProviderNoneConfigured(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")

	_, err := NewProvider("")
	if err == nil {
		t.Fatal("expected configuration error")
	}
	for _, name := range []string{"groq", "openai", "anthropic"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error should name %s: %v", name, err)
		}
	}
}

func TestOpenAIGenerate(t *testing.T) {
	var gotAuth, gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")

		var req struct {
			Model string `json:"model"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		gotModel = req.Model

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "  a brief  "}},
			},
		})
	}))
	defer srv.Close()

	p := &OpenAIProvider{Model: "gpt-4o-mini", APIKey: "test-key", BaseURL: srv.URL, client: srv.Client()}
	out, err := p.Generate(context.Background(), "hello", 100)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "a brief" {
		t.Errorf("response not trimmed: %q", out)
	}
	if gotModel != "gpt-4o-mini" {
		t.Errorf("model = %q", gotModel)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("authorization header = %q", gotAuth)
	}
}

func TestAnthropicGenerate(t *testing.T) {
	var gotVersion, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotVersion = r.Header.Get("anthropic-version")
		gotKey = r.Header.Get("x-api-key")
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{
				{"type": "text", "text": "part one "},
				{"type": "text", "text": "part two"},
			},
		})
	}))
	defer srv.Close()

	p := &AnthropicProvider{Model: "claude-3-sonnet-20240229", APIKey: "test-key", BaseURL: srv.URL, client: srv.Client()}
	out, err := p.Generate(context.Background(), "hello", 100)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "part one part two" {
		t.Errorf("text blocks not concatenated: %q", out)
	}
	if gotVersion != "2023-06-01" || gotKey != "test-key" {
		t.Errorf("missing API headers: version=%q key=%q", gotVersion, gotKey)
	}
}

func TestGenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := &GroqProvider{Model: "mixtral-8x7b-32768", APIKey: "test-key", BaseURL: srv.URL, client: srv.Client()}
	if _, err := p.Generate(context.Background(), "hello", 100); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestGenerateUnconfigured(t *testing.T) {
	p := &OpenAIProvider{client: http.DefaultClient}
	if _, err := p.Generate(context.Background(), "hello", 100); err == nil {
		t.Fatal("unconfigured provider should error")
	}
}
