package llm

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/pkg/errors"
)

const defaultAnthropicModel = string(anthropic.ModelClaude3_7SonnetLatest)

// AnthropicBackend implements the Backend interface for hosted Anthropic models
type AnthropicBackend struct {
	client anthropic.Client
	model  string
	retry  RetryConfig
}

// NewAnthropicBackend creates a new Anthropic backend. The API key is read
// from the ANTHROPIC_API_KEY environment variable by the SDK.
func NewAnthropicBackend(config Config) (*AnthropicBackend, error) {
	model := config.Model
	if model == "" {
		model = defaultAnthropicModel
	}

	return &AnthropicBackend{
		client: anthropic.NewClient(),
		model:  model,
		retry:  config.Retry,
	}, nil
}

// Model returns the configured model name
func (b *AnthropicBackend) Model() string {
	return b.model
}

// Generate sends the prompt to the Anthropic API and returns the reply text
func (b *AnthropicBackend) Generate(ctx context.Context, req Request) (string, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(b.model),
		MaxTokens:   int64(req.MaxTokens),
		Temperature: anthropic.Float(float64(req.Temperature)),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}

	var message *anthropic.Message
	err := generateWithRetry(ctx, b.retry, ProviderAnthropic, func() error {
		var apiErr error
		message, apiErr = b.client.Messages.New(ctx, params)
		return apiErr
	})
	if err != nil {
		return "", errors.Wrap(err, "anthropic message request failed")
	}

	var text strings.Builder
	for _, block := range message.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			text.WriteString(variant.Text)
		}
	}

	return strings.TrimSpace(text.String()), nil
}
