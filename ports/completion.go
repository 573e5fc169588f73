package ports

import (
	"context"
)

// CompletionPort is the black-box text-completion service. Timeouts,
// rate-limit rejections, and empty completions all surface as errors with
// code TRANSPORT_ERROR so the runner can treat them uniformly as retryable.
type CompletionPort interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// UsageReporter is an optional interface for completion clients that track
// token consumption. Consumers type-assert to check for support.
type UsageReporter interface {
	TotalTokens() int64
}
