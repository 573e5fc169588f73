package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"oracle/internal/config"
	"oracle/internal/errors"
)

func testConfig() config.AIConfig {
	return config.AIConfig{
		APIKey:      "test-key",
		Model:       "gemini-2.0-flash",
		MaxTokens:   1024,
		Temperature: 0.7,
		TopP:        0.95,
		Timeout:     5 * time.Second,
	}
}

func candidateBody(text string, tokens int64) string {
	body := map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"parts": []any{map[string]any{"text": text}},
				},
			},
		},
		"usageMetadata": map[string]any{"totalTokenCount": tokens},
	}
	raw, _ := json.Marshal(body)
	return string(raw)
}

func noSleep(ctx context.Context, d time.Duration) error { return nil }

func TestGeminiClient_RequiresAPIKey(t *testing.T) {
	cfg := testConfig()
	cfg.APIKey = ""
	if _, err := NewGeminiClient(cfg); !errors.HasCode(err, errors.CodeConfigInvalid) {
		t.Fatalf("expected CONFIG_INVALID, got %v", err)
	}
}

func TestGeminiClient_Complete(t *testing.T) {
	var gotPath string
	var gotReq geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("missing key query param")
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		w.Write([]byte(candidateBody(`{"outcome": "positive"}`, 321)))
	}))
	defer srv.Close()

	client, err := NewGeminiClient(testConfig(), WithBaseURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}

	text, err := client.Complete(context.Background(), "evaluate this")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if text != `{"outcome": "positive"}` {
		t.Errorf("unexpected completion text %q", text)
	}
	if gotPath != "/models/gemini-2.0-flash:generateContent" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if len(gotReq.Contents) != 1 || gotReq.Contents[0].Parts[0].Text != "evaluate this" {
		t.Errorf("prompt not carried in request: %+v", gotReq)
	}
	if gotReq.GenerationConfig.MaxOutputTokens != 1024 {
		t.Errorf("generation config not carried: %+v", gotReq.GenerationConfig)
	}
	if got := client.TotalTokens(); got != 321 {
		t.Errorf("TotalTokens = %d, want 321", got)
	}
}

func TestGeminiClient_TokenAccountingAccumulates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(candidateBody("ok", 100)))
	}))
	defer srv.Close()

	client, _ := NewGeminiClient(testConfig(), WithBaseURL(srv.URL))
	for i := 0; i < 3; i++ {
		if _, err := client.Complete(context.Background(), "p"); err != nil {
			t.Fatal(err)
		}
	}
	if got := client.TotalTokens(); got != 300 {
		t.Errorf("TotalTokens = %d, want 300", got)
	}
}

func TestGeminiClient_RetriesRateLimit(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(candidateBody("recovered", 10)))
	}))
	defer srv.Close()

	var waits []time.Duration
	client, _ := NewGeminiClient(testConfig(), WithBaseURL(srv.URL),
		withSleepFunc(func(ctx context.Context, d time.Duration) error {
			waits = append(waits, d)
			return nil
		}))

	text, err := client.Complete(context.Background(), "p")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if text != "recovered" {
		t.Errorf("text = %q", text)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if len(waits) != 2 || waits[0] != 5*time.Second || waits[1] != 10*time.Second {
		t.Errorf("waits = %v, want [5s 10s]", waits)
	}
}

func TestGeminiClient_RateLimitExhaustsToTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client, _ := NewGeminiClient(testConfig(), WithBaseURL(srv.URL), withSleepFunc(noSleep))
	_, err := client.Complete(context.Background(), "p")
	if !errors.HasCode(err, errors.CodeTransportError) {
		t.Fatalf("expected TRANSPORT_ERROR, got %v", err)
	}
}

func TestGeminiClient_ServerErrorNoLocalRetry(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, _ := NewGeminiClient(testConfig(), WithBaseURL(srv.URL), withSleepFunc(noSleep))
	_, err := client.Complete(context.Background(), "p")
	if !errors.HasCode(err, errors.CodeTransportError) {
		t.Fatalf("expected TRANSPORT_ERROR, got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (500s are not retried locally)", calls)
	}
}

func TestGeminiClient_EmptyCompletionIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates": []}`))
	}))
	defer srv.Close()

	client, _ := NewGeminiClient(testConfig(), WithBaseURL(srv.URL), withSleepFunc(noSleep))
	_, err := client.Complete(context.Background(), "p")
	if !errors.HasCode(err, errors.CodeTransportError) {
		t.Fatalf("expected TRANSPORT_ERROR, got %v", err)
	}
}

func TestGeminiClient_APIErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": {"code": 400, "message": "invalid argument"}}`))
	}))
	defer srv.Close()

	client, _ := NewGeminiClient(testConfig(), WithBaseURL(srv.URL), withSleepFunc(noSleep))
	_, err := client.Complete(context.Background(), "p")
	if !errors.HasCode(err, errors.CodeTransportError) {
		t.Fatalf("expected TRANSPORT_ERROR, got %v", err)
	}
}

func TestGeminiClient_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(candidateBody("late", 1)))
	}))
	defer srv.Close()

	client, _ := NewGeminiClient(testConfig(), WithBaseURL(srv.URL))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Complete(ctx, "p")
	if !errors.HasCode(err, errors.CodeCancelled) {
		t.Fatalf("expected CANCELLED, got %v", err)
	}
}

func TestMockCompletionClient_ScriptOrder(t *testing.T) {
	mock := &MockCompletionClient{Responses: []string{"a", "b"}}
	ctx := context.Background()

	for i, want := range []string{"a", "b", "b"} {
		got, err := mock.Complete(ctx, "p")
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("call %d = %q, want %q", i, got, want)
		}
	}
	if mock.Calls() != 3 {
		t.Errorf("Calls = %d, want 3", mock.Calls())
	}
}
