package llm

import (
	"context"
	"math"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"

	"github.com/jingkaihe/agentscout/pkg/logger"
)

const (
	defaultOpenAIModel     = openai.GPT4o
	defaultOpenAIKeyEnvVar = "OPENAI_API_KEY"
)

// OpenAIBackend implements the Backend interface for OpenAI-compatible APIs.
// With a custom base URL it talks to a locally hosted server such as Ollama's
// /v1 endpoint, which exposes the same chat-completion shape.
type OpenAIBackend struct {
	client *openai.Client
	model  string
	retry  RetryConfig
}

// NewOpenAIBackend creates a new OpenAI-compatible backend
func NewOpenAIBackend(config Config) (*OpenAIBackend, error) {
	keyEnvVar := defaultOpenAIKeyEnvVar
	baseURL := ""
	if config.OpenAI != nil {
		if config.OpenAI.APIKeyEnvVar != "" {
			keyEnvVar = config.OpenAI.APIKeyEnvVar
		}
		baseURL = config.OpenAI.BaseURL
	}

	apiKey := os.Getenv(keyEnvVar)
	if apiKey == "" && baseURL == "" {
		return nil, errors.Errorf("OpenAI API key is required: set %s or configure openai.base_url for a local server", keyEnvVar)
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
			return nil, errors.Errorf("invalid openai base_url %q: must start with http:// or https://", baseURL)
		}
		clientConfig.BaseURL = baseURL
	}

	model := config.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	return &OpenAIBackend{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
		retry:  config.Retry,
	}, nil
}

// Model returns the configured model name
func (b *OpenAIBackend) Model() string {
	return b.model
}

// Generate sends the prompt as a single-turn chat completion and returns the
// reply text
func (b *OpenAIBackend) Generate(ctx context.Context, req Request) (string, error) {
	temperature := req.Temperature
	if temperature == 0 {
		// the client serializes temperature with omitempty, so a literal 0
		// would fall back to the server default instead of greedy decoding
		temperature = math.SmallestNonzeroFloat32
	}

	params := openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: req.Prompt,
			},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: temperature,
	}

	var response openai.ChatCompletionResponse
	err := generateWithRetry(ctx, b.retry, ProviderOpenAI, func() error {
		var apiErr error
		response, apiErr = b.client.CreateChatCompletion(ctx, params)
		return apiErr
	})
	if err != nil {
		return "", errors.Wrap(err, "chat completion request failed")
	}

	if len(response.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

// VerifyModel checks whether the configured model is known to the server.
// Mirrors a preflight model listing against the local server; failures to
// list are reported as a warning by the caller, not treated as fatal.
func (b *OpenAIBackend) VerifyModel(ctx context.Context) (bool, []string, error) {
	models, err := b.client.ListModels(ctx)
	if err != nil {
		return false, nil, errors.Wrap(err, "failed to list models")
	}

	available := make([]string, 0, len(models.Models))
	found := false
	for _, m := range models.Models {
		available = append(available, m.ID)
		if strings.Contains(m.ID, b.model) || strings.Contains(b.model, m.ID) {
			found = true
		}
	}

	if !found {
		logger.G(ctx).WithField("model", b.model).Debug("model not present in server model list")
	}

	return found, available, nil
}
