package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"oracle/internal/errors"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-2.0-flash"

	// Transport-level retries for rate limiting and connection errors.
	// Semantic retries (bad content) belong to the runner, not here.
	transportAttempts = 3
)

// GeminiClient implements ports.CompletionPort against the Gemini
// generateContent API.
type GeminiClient struct {
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	topP        float64
	maxTokens   int
	httpClient  *http.Client

	totalTokens atomic.Int64

	// injectable waits for testing the 429 path
	sleepFunc func(ctx context.Context, d time.Duration) error
}

type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		TotalTokenCount int64 `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete sends one prompt and returns the raw completion text. All failure
// modes (HTTP errors, rate limiting after local retries, empty completions)
// come back as TRANSPORT_ERROR.
func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     c.temperature,
			TopP:            c.topP,
			MaxOutputTokens: c.maxTokens,
		},
	}

	raw, err := json.Marshal(reqBody)
	if err != nil {
		return "", errors.Wrap(err, "marshal gemini request")
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(c.baseURL, "/"), c.model, c.apiKey)

	var lastErr error
	for attempt := 0; attempt < transportAttempts; attempt++ {
		text, retry, err := c.sendOnce(ctx, url, raw)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if retry == retryNone || attempt == transportAttempts-1 {
			break
		}
		// Rate-limit waits grow with each attempt; connection errors get a
		// short flat wait.
		wait := 2 * time.Second
		if retry == retryRateLimit {
			wait = time.Duration(attempt+1) * 5 * time.Second
		}
		log.Printf("[GeminiClient] transient failure (attempt %d/%d), waiting %v: %v",
			attempt+1, transportAttempts, wait, err)
		if serr := c.sleepFunc(ctx, wait); serr != nil {
			return "", errors.Cancelled("gemini request interrupted", serr)
		}
	}
	return "", lastErr
}

type retryClass int

const (
	retryNone retryClass = iota
	retryConn
	retryRateLimit
)

// sendOnce performs a single HTTP round trip and classifies the failure for
// the local retry loop.
func (c *GeminiClient) sendOnce(ctx context.Context, url string, body []byte) (string, retryClass, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", retryNone, errors.Wrap(err, "build gemini request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", retryNone, errors.Cancelled("gemini request cancelled", err)
		}
		return "", retryConn, errors.TransportError("gemini request failed", err)
	}
	defer resp.Body.Close()

	respRaw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", retryConn, errors.TransportError("read gemini response", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", retryRateLimit, errors.TransportError("gemini rate limited", fmt.Errorf("http 429"))
	}
	if resp.StatusCode != http.StatusOK {
		return "", retryNone, errors.TransportError(
			fmt.Sprintf("gemini http %d", resp.StatusCode),
			fmt.Errorf("%s", truncate(string(respRaw), 200)))
	}

	var decoded geminiResponse
	if err := json.Unmarshal(respRaw, &decoded); err != nil {
		return "", retryNone, errors.TransportError("unmarshal gemini response", err)
	}
	if decoded.Error != nil {
		return "", retryNone, errors.TransportError(
			fmt.Sprintf("gemini api error %d", decoded.Error.Code),
			fmt.Errorf("%s", decoded.Error.Message))
	}

	c.totalTokens.Add(decoded.UsageMetadata.TotalTokenCount)

	var text string
	if len(decoded.Candidates) > 0 {
		for _, part := range decoded.Candidates[0].Content.Parts {
			if part.Text != "" {
				text = part.Text
			}
		}
	}
	if text == "" {
		return "", retryNone, errors.TransportError("empty gemini completion", nil)
	}
	return text, retryNone, nil
}

// TotalTokens returns the cumulative token count reported by the API
func (c *GeminiClient) TotalTokens() int64 {
	return c.totalTokens.Load()
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
