// Package llm provides text-generation providers for brief writing, with
// ordered fallback across the configured APIs.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

// Provider is the interface for LLM providers.
type Provider interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
	IsConfigured() bool
	Name() string
}

const generationTemperature = 0.3

// GroqProvider calls the Groq chat completions API.
type GroqProvider struct {
	Model   string
	APIKey  string
	BaseURL string
	client  *http.Client
}

// NewGroqProvider creates a Groq provider reading GROQ_API_KEY.
func NewGroqProvider(model string) *GroqProvider {
	if model == "" {
		model = "mixtral-8x7b-32768"
	}
	return &GroqProvider{
		Model:   model,
		APIKey:  os.Getenv("GROQ_API_KEY"),
		BaseURL: "https://api.groq.com/openai/v1",
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

// IsConfigured checks if the API key is set.
func (g *GroqProvider) IsConfigured() bool {
	return g.APIKey != ""
}

// Name identifies the provider and model for logs and brief footers.
func (g *GroqProvider) Name() string {
	return fmt.Sprintf("groq (%s)", g.Model)
}

// Generate sends a prompt to Groq and returns the response.
func (g *GroqProvider) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if g.APIKey == "" {
		return "", fmt.Errorf("Groq API key not configured")
	}
	content, err := chatCompletion(ctx, g.client, g.BaseURL+"/chat/completions", g.APIKey, g.Model, prompt, maxTokens)
	if err != nil {
		return "", fmt.Errorf("Groq API error: %w", err)
	}
	return content, nil
}

// OpenAIProvider calls the OpenAI chat completions API.
type OpenAIProvider struct {
	Model   string
	APIKey  string
	BaseURL string
	client  *http.Client
}

// NewOpenAIProvider creates an OpenAI provider reading OPENAI_API_KEY.
func NewOpenAIProvider(model string) *OpenAIProvider {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIProvider{
		Model:   model,
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		BaseURL: "https://api.openai.com/v1",
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

// IsConfigured checks if the API key is set.
func (o *OpenAIProvider) IsConfigured() bool {
	return o.APIKey != ""
}

// Name identifies the provider and model for logs and brief footers.
func (o *OpenAIProvider) Name() string {
	return fmt.Sprintf("openai (%s)", o.Model)
}

// Generate sends a prompt to OpenAI and returns the response.
func (o *OpenAIProvider) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if o.APIKey == "" {
		return "", fmt.Errorf("OpenAI API key not configured")
	}
	content, err := chatCompletion(ctx, o.client, o.BaseURL+"/chat/completions", o.APIKey, o.Model, prompt, maxTokens)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	return content, nil
}

// chatCompletion posts an OpenAI-shaped chat completion request. Groq speaks
// the same wire format.
func chatCompletion(ctx context.Context, client *http.Client, endpoint, apiKey, model, prompt string, maxTokens int) (string, error) {
	body := map[string]any{
		"model": model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"max_tokens":  maxTokens,
		"temperature": generationTemperature,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("API returned %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}

// AnthropicProvider calls the Anthropic messages API.
type AnthropicProvider struct {
	Model   string
	APIKey  string
	BaseURL string
	client  *http.Client
}

// NewAnthropicProvider creates an Anthropic provider reading
// ANTHROPIC_API_KEY.
func NewAnthropicProvider(model string) *AnthropicProvider {
	if model == "" {
		model = "claude-3-sonnet-20240229"
	}
	return &AnthropicProvider{
		Model:   model,
		APIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		BaseURL: "https://api.anthropic.com/v1",
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

// IsConfigured checks if the API key is set.
func (a *AnthropicProvider) IsConfigured() bool {
	return a.APIKey != ""
}

// Name identifies the provider and model for logs and brief footers.
func (a *AnthropicProvider) Name() string {
	return fmt.Sprintf("anthropic (%s)", a.Model)
}

// Generate sends a prompt to the Anthropic messages API and returns the
// concatenated text blocks of the response.
func (a *AnthropicProvider) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if a.APIKey == "" {
		return "", fmt.Errorf("Anthropic API key not configured")
	}

	body := map[string]any{
		"model":      a.Model,
		"max_tokens": maxTokens,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": generationTemperature,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", a.BaseURL+"/messages", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("Anthropic API error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Anthropic API returned %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	var b strings.Builder
	for _, block := range result.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("no text content in Anthropic response")
	}
	return strings.TrimSpace(b.String()), nil
}

// providerOrder is the default fallback order.
var providerOrder = []string{"groq", "openai", "anthropic"}

func resolveOrder(preferred string) []string {
	preferred = strings.ToLower(preferred)
	if preferred == "" {
		return providerOrder
	}
	found := false
	for _, name := range providerOrder {
		if name == preferred {
			found = true
			break
		}
	}
	if !found {
		log.Printf("Unknown provider %q requested; using default order", preferred)
		return providerOrder
	}
	order := []string{preferred}
	for _, name := range providerOrder {
		if name != preferred {
			order = append(order, name)
		}
	}
	return order
}

func buildProvider(name string) Provider {
	switch name {
	case "groq":
		return NewGroqProvider("")
	case "openai":
		return NewOpenAIProvider("")
	case "anthropic":
		return NewAnthropicProvider("")
	}
	return nil
}

// NewProvider returns the first configured provider, trying preferred first
// and then the remaining providers in default order. When none is
// configured the error names every provider that was tried.
func NewProvider(preferred string) (Provider, error) {
	var errs []string
	for _, name := range resolveOrder(preferred) {
		p := buildProvider(name)
		if p.IsConfigured() {
			log.Printf("Using %s for summarization", name)
			return p, nil
		}
		errs = append(errs, fmt.Sprintf("%s: API key not set", name))
	}
	return nil, fmt.Errorf(
		"no LLM provider configured; set GROQ_API_KEY, OPENAI_API_KEY or ANTHROPIC_API_KEY (%s)",
		strings.Join(errs, "; "))
}
