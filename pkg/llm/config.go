package llm

import (
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// RetryConfig controls the retry behavior for backend API calls
type RetryConfig struct {
	Attempts     int    `mapstructure:"attempts"`
	InitialDelay int    `mapstructure:"initial_delay"` // milliseconds
	MaxDelay     int    `mapstructure:"max_delay"`     // milliseconds
	BackoffType  string `mapstructure:"backoff_type"`  // "fixed" or "exponential"
}

// DefaultRetryConfig is applied when no retry settings are configured
var DefaultRetryConfig = RetryConfig{
	Attempts:     3,
	InitialDelay: 1000,
	MaxDelay:     10000,
	BackoffType:  "exponential",
}

// OpenAIConfig holds settings specific to the OpenAI-compatible backend.
// A custom BaseURL points the client at a locally hosted server such as
// Ollama's /v1 endpoint.
type OpenAIConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	APIKeyEnvVar string `mapstructure:"api_key_env_var"`
}

// ProfileConfig is a named partial configuration that can be applied on top
// of the base configuration
type ProfileConfig struct {
	Provider    string        `mapstructure:"provider"`
	Model       string        `mapstructure:"model"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature *float32      `mapstructure:"temperature"`
	OpenAI      *OpenAIConfig `mapstructure:"openai"`
}

// Config holds the language-model backend configuration. MaxTokens and
// Temperature are optional overrides: a zero MaxTokens and a nil
// Temperature leave each operation's own default in effect. Temperature is
// a pointer so an explicit 0 (greedy decoding) is distinguishable from
// unset.
type Config struct {
	Provider    string                   `mapstructure:"provider"`
	Model       string                   `mapstructure:"model"`
	MaxTokens   int                      `mapstructure:"max_tokens"`
	Temperature *float32                 `mapstructure:"temperature"`
	Retry       RetryConfig              `mapstructure:"retry"`
	OpenAI      *OpenAIConfig            `mapstructure:"openai"`
	Profiles    map[string]ProfileConfig `mapstructure:"profiles"`
}

// GetConfigFromViper assembles the backend configuration from viper,
// applying the active profile and defaults
func GetConfigFromViper() (Config, error) {
	var config Config

	if err := viper.Unmarshal(&config); err != nil {
		return config, errors.Wrap(err, "failed to unmarshal configuration")
	}

	if config.Profiles != nil {
		delete(config.Profiles, "default")
	}

	profileName := getActiveProfile()
	if profileName != "" {
		profile, exists := config.Profiles[profileName]
		if !exists {
			return config, errors.Errorf("profile %q not found in configuration", profileName)
		}
		if err := applyProfile(&config, profile); err != nil {
			return config, err
		}
	}

	applyDefaults(&config)

	return config, nil
}

func getActiveProfile() string {
	profile := viper.GetString("profile")
	if profile == "default" {
		return ""
	}
	return profile
}

func applyProfile(config *Config, profile ProfileConfig) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           config,
		WeaklyTypedInput: true,
		ZeroFields:       false, // Don't overwrite with zero values
	})
	if err != nil {
		return errors.Wrap(err, "failed to create profile decoder")
	}

	if err := decoder.Decode(profile); err != nil {
		return errors.Wrap(err, "failed to apply profile configuration")
	}

	return nil
}

func applyDefaults(config *Config) {
	if config.Provider == "" {
		config.Provider = ProviderAnthropic
	}
	if config.MaxTokens < 0 {
		config.MaxTokens = 0
	}
	if config.Retry.Attempts == 0 {
		config.Retry = DefaultRetryConfig
	}
}
