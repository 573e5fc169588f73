// Package llm holds completion clients for the simulation runner. The real
// client talks to Gemini's generateContent endpoint; the mock produces canned
// completions for offline runs and tests.
package llm

import (
	"context"
	"net/http"
	"sync"
	"time"

	"oracle/internal/config"
	"oracle/internal/errors"
)

// Option customizes a GeminiClient.
type Option func(*GeminiClient)

// WithBaseURL overrides the API endpoint, used by tests
func WithBaseURL(url string) Option {
	return func(c *GeminiClient) { c.baseURL = url }
}

// WithHTTPClient overrides the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *GeminiClient) { c.httpClient = hc }
}

func withSleepFunc(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(c *GeminiClient) { c.sleepFunc = fn }
}

// NewGeminiClient builds a client from config. The API key is required; the
// model falls back to the default when unset.
func NewGeminiClient(cfg config.AIConfig, opts ...Option) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.ConfigInvalid("gemini api key is required", nil)
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	c := &GeminiClient{
		apiKey:      cfg.APIKey,
		model:       model,
		baseURL:     defaultBaseURL,
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
		maxTokens:   cfg.MaxTokens,
		httpClient:  &http.Client{Timeout: timeout},
		sleepFunc:   sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// MockCompletionClient returns scripted completions in order, then repeats the
// last one. An empty script fails every call with TRANSPORT_ERROR. Safe for
// concurrent use.
type MockCompletionClient struct {
	Responses []string
	Err       error

	mu    sync.Mutex
	calls int
}

func (m *MockCompletionClient) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.Cancelled("mock completion cancelled", err)
	}
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) == 0 {
		return "", errors.TransportError("mock has no responses", nil)
	}

	m.mu.Lock()
	idx := m.calls
	m.calls++
	m.mu.Unlock()

	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	return m.Responses[idx], nil
}

// Calls reports how many completions were requested
func (m *MockCompletionClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// TotalTokens satisfies ports.UsageReporter with a rough estimate
func (m *MockCompletionClient) TotalTokens() int64 {
	return int64(m.Calls()) * 100
}
