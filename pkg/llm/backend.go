// Package llm provides a provider-agnostic boundary to the language-model
// backend. Both supported backends take a text prompt and return a text
// reply; everything past this boundary treats the reply as an untyped blob.
package llm

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/pkg/errors"

	"github.com/jingkaihe/agentscout/pkg/logger"
)

// Supported provider names
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Request is a single prompt/response generation request
type Request struct {
	Prompt      string
	MaxTokens   int
	Temperature float32
}

// Backend defines the language-model backend boundary: one blocking
// request/response call taking a text prompt and returning text
type Backend interface {
	// Generate sends the prompt to the backend and returns the reply text
	Generate(ctx context.Context, req Request) (string, error)

	// Model returns the model name this backend is configured with
	Model() string
}

// NewBackend creates a backend for the configured provider
func NewBackend(config Config) (Backend, error) {
	switch config.Provider {
	case ProviderAnthropic:
		return NewAnthropicBackend(config)
	case ProviderOpenAI:
		return NewOpenAIBackend(config)
	default:
		return nil, errors.Errorf("unsupported provider: %s", config.Provider)
	}
}

// generateWithRetry wraps a backend call with the configured retry policy
func generateWithRetry(ctx context.Context, config RetryConfig, provider string, call func() error) error {
	initialDelay := time.Duration(config.InitialDelay) * time.Millisecond
	maxDelay := time.Duration(config.MaxDelay) * time.Millisecond

	var delayType retry.DelayTypeFunc
	switch config.BackoffType {
	case "fixed":
		delayType = retry.FixedDelay
	case "exponential":
		fallthrough
	default:
		delayType = retry.BackOffDelay
	}

	return retry.Do(
		call,
		retry.RetryIf(isRetryableError),
		retry.Attempts(uint(config.Attempts)),
		retry.Delay(initialDelay),
		retry.DelayType(delayType),
		retry.MaxDelay(maxDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.G(ctx).WithError(err).
				WithField("attempt", n+1).
				WithField("max_attempts", config.Attempts).
				WithField("provider", provider).
				Warn("retrying backend API call")
		}),
	)
}

func isRetryableError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}
