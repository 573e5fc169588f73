package config

import (
	"testing"
	"time"

	"oracle/internal/errors"
)

func TestLoad_RequiresAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when GEMINI_API_KEY is unset")
	}
	if !errors.HasCode(err, errors.CodeConfigInvalid) {
		t.Errorf("error code = %s, want %s", errors.GetCode(err), errors.CodeConfigInvalid)
	}
}

func TestLoadOffline_WorksWithoutAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OUTPUT_DIR", "/tmp/results")
	t.Setenv("MAX_CONCURRENT", "")
	t.Setenv("TOP_N", "")

	cfg, err := LoadOffline()
	if err != nil {
		t.Fatalf("LoadOffline failed: %v", err)
	}
	if cfg.AI.APIKey != "" {
		t.Errorf("APIKey = %q, want empty", cfg.AI.APIKey)
	}
	if cfg.Paths.OutputDir != "/tmp/results" {
		t.Errorf("OutputDir = %q", cfg.Paths.OutputDir)
	}
	if cfg.Run.TopN != 5 {
		t.Errorf("TopN = %d, want 5", cfg.Run.TopN)
	}
}

func TestLoadOffline_StillValidatesRunSettings(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("MAX_CONCURRENT", "0")

	_, err := LoadOffline()
	if !errors.HasCode(err, errors.CodeConfigInvalid) {
		t.Fatalf("expected CONFIG_INVALID, got %v", err)
	}
}

func TestLoad_RejectsNonPositiveMaxConcurrent(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("MAX_CONCURRENT", "0")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for MAX_CONCURRENT=0")
	}
	if !errors.HasCode(err, errors.CodeConfigInvalid) {
		t.Errorf("error code = %s, want %s", errors.GetCode(err), errors.CodeConfigInvalid)
	}
}

func TestLoad_ClampsNegativeDelay(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("DELAY_BETWEEN_CALLS", "-3.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Run.DelayBetweenCalls != 0 {
		t.Errorf("delay = %v, want 0 for negative input", cfg.Run.DelayBetweenCalls)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("MAX_CONCURRENT", "")
	t.Setenv("DELAY_BETWEEN_CALLS", "")
	t.Setenv("RETRY_ATTEMPTS", "")
	t.Setenv("GEMINI_MODEL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Run.MaxConcurrent != 5 {
		t.Errorf("MaxConcurrent = %d, want 5", cfg.Run.MaxConcurrent)
	}
	if cfg.Run.DelayBetweenCalls != time.Second {
		t.Errorf("DelayBetweenCalls = %v, want 1s", cfg.Run.DelayBetweenCalls)
	}
	if cfg.Run.RetryAttempts != 2 {
		t.Errorf("RetryAttempts = %d, want 2", cfg.Run.RetryAttempts)
	}
	if cfg.AI.Model != "gemini-2.0-flash" {
		t.Errorf("Model = %s, want gemini-2.0-flash", cfg.AI.Model)
	}
}

func TestLoad_FractionalDelaySeconds(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("DELAY_BETWEEN_CALLS", "0.25")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Run.DelayBetweenCalls != 250*time.Millisecond {
		t.Errorf("delay = %v, want 250ms", cfg.Run.DelayBetweenCalls)
	}
}
