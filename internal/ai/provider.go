// internal/ai/provider.go
//
// Chat-completion providers.
//
// Context
// -------
// Document generation rides on hosted LLM APIs.  Groq's free tier goes
// first, DeepSeek is the cheap fallback, and OpenRouter is the backstop
// that can reach almost any model.  All three speak the OpenAI
// chat-completions wire, so one client type covers them; only the base
// URL, model, and headers differ.
//
// Notes
// -----
// • Providers are plain HTTP clients with option-function construction.
// • Temperature and token cap are fixed product-wide; documents want
//   consistency, not creativity.

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	groqURL       = "https://api.groq.com/openai/v1/chat/completions"
	deepseekURL   = "https://api.deepseek.com/v1/chat/completions"
	openrouterURL = "https://openrouter.ai/api/v1/chat/completions"

	defaultGroqModel       = "llama-3.3-70b-versatile"
	defaultDeepSeekModel   = "deepseek-chat"
	defaultOpenRouterModel = "meta-llama/llama-3.1-70b-instruct"

	temperature = 0.3
	maxTokens   = 4096
)

// Provider produces one completion for a system/user prompt pair.
type Provider interface {
	Name() string
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// chatClient is an OpenAI-compatible chat-completions client.
type chatClient struct {
	name    string
	url     string
	model   string
	apiKey  string
	headers map[string]string
	hc      *http.Client
}

// Option configures a provider client.
type Option func(*chatClient)

// WithHTTPClient swaps the transport (tests point it at httptest).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *chatClient) { c.hc = hc }
}

// WithBaseURL overrides the completion endpoint.
func WithBaseURL(url string) Option {
	return func(c *chatClient) { c.url = url }
}

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(c *chatClient) {
		if model != "" {
			c.model = model
		}
	}
}

func newChatClient(name, url, model, apiKey string, opts ...Option) *chatClient {
	c := &chatClient{
		name:   name,
		url:    url,
		model:  model,
		apiKey: apiKey,
		hc:     &http.Client{Timeout: 120 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// NewGroq builds the primary provider.
func NewGroq(apiKey string, opts ...Option) Provider {
	return newChatClient("groq", groqURL, defaultGroqModel, apiKey, opts...)
}

// NewDeepSeek builds the first fallback.
func NewDeepSeek(apiKey string, opts ...Option) Provider {
	return newChatClient("deepseek", deepseekURL, defaultDeepSeekModel, apiKey, opts...)
}

// NewOpenRouter builds the last-resort provider.  appURL feeds the
// attribution headers OpenRouter asks for.
func NewOpenRouter(apiKey, appURL string, opts ...Option) Provider {
	c := newChatClient("openrouter", openrouterURL, defaultOpenRouterModel, apiKey, opts...)
	c.headers = map[string]string{
		"HTTP-Referer": appURL,
		"X-Title":      "DocForge",
	}
	return c
}

func (c *chatClient) Name() string { return c.name }

/*──────────────────────────── wire types ───────────────────────────────────*/

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete posts one chat request and returns the first choice.
func (c *chatClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", c.name, err)
	}
	defer resp.Body.Close()

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%s: decode: %w", c.name, err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := "unknown error"
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return "", fmt.Errorf("%s: status %d: %s", c.name, resp.StatusCode, msg)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%s: empty choices", c.name)
	}
	return parsed.Choices[0].Message.Content, nil
}
