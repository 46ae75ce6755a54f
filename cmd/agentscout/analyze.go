package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jingkaihe/agentscout/pkg/analysis"
	"github.com/jingkaihe/agentscout/pkg/discovery"
	"github.com/jingkaihe/agentscout/pkg/findings"
	"github.com/jingkaihe/agentscout/pkg/llm"
	"github.com/jingkaihe/agentscout/pkg/presenter"
	"github.com/jingkaihe/agentscout/pkg/review"
	"github.com/jingkaihe/agentscout/pkg/suggest"
	"github.com/jingkaihe/agentscout/pkg/synth"
)

// AnalyzeConfig holds configuration for the analyze command
type AnalyzeConfig struct {
	Directory     string
	Output        string
	ContextBudget int
}

// NewAnalyzeConfig creates a new AnalyzeConfig with default values
func NewAnalyzeConfig() *AnalyzeConfig {
	return &AnalyzeConfig{
		Directory:     ".",
		Output:        ".",
		ContextBudget: analysis.DefaultContextBudget,
	}
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [directory]",
	Short: "Suggest new agents for a network and review them interactively",
	Long: `Scan a directory for agent configuration files, generate agent
suggestions from the discovered network, and review each suggestion
interactively. Accepting a suggestion expands it into a complete system
prompt written under findings/system-prompts/. A run summary is written
to findings/analysis-summary.md.

Example:
  agentscout analyze ./agents
  agentscout analyze ./agents --output ./out
  agentscout analyze --provider openai --model gpt-4.1 ./agents`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		config := getAnalyzeConfigFromFlags(cmd, args)
		if err := runAnalyze(ctx, config); err != nil {
			presenter.Error(err, "Analysis failed")
			os.Exit(1)
		}
	},
}

func init() {
	defaults := NewAnalyzeConfig()
	analyzeCmd.Flags().StringP("output", "o", defaults.Output, "Directory the findings/ tree is written under")
	analyzeCmd.Flags().Int("context-budget", defaults.ContextBudget, "Maximum context size in characters sent to the model")
}

// getAnalyzeConfigFromFlags extracts analyze configuration from command flags
func getAnalyzeConfigFromFlags(cmd *cobra.Command, args []string) *AnalyzeConfig {
	config := NewAnalyzeConfig()

	if len(args) > 0 {
		config.Directory = args[0]
	}
	if output, err := cmd.Flags().GetString("output"); err == nil {
		config.Output = output
	}
	if budget, err := cmd.Flags().GetInt("context-budget"); err == nil {
		config.ContextBudget = budget
	}

	return config
}

func runAnalyze(ctx context.Context, config *AnalyzeConfig) error {
	backend, llmConfig, err := newBackendFromConfig(ctx)
	if err != nil {
		return err
	}

	result, ok, err := discoverAgents(ctx, config.Directory)
	if err != nil || !ok {
		return err
	}

	builder, err := analysis.NewBuilder(analysis.WithBudget(config.ContextBudget))
	if err != nil {
		return err
	}
	contextBlob := builder.Build(ctx, result)

	presenter.Info(fmt.Sprintf("Asking %s for agent suggestions...", backend.Model()))
	generator := suggest.NewGenerator(backend, generatorOptions(llmConfig)...)
	suggestions, err := generator.Generate(ctx, contextBlob)
	if err != nil {
		var parseErr *suggest.ParseError
		if errors.As(err, &parseErr) {
			return errors.Wrap(err, "the model reply could not be parsed; re-run to try again")
		}
		return err
	}

	presenter.Success(fmt.Sprintf("Received %d suggestions", len(suggestions)))

	writer := findings.NewWriter(config.Output)
	synthesizer := synth.NewSynthesizer(backend, synthesizerOptions(llmConfig)...)
	// the prompter gets its own presenter; --quiet must never hide the
	// suggestion being decided on
	prompter := review.NewTerminalPrompter(presenter.New())

	accept := func(ctx context.Context, s suggest.Suggestion) error {
		presenter.Info(fmt.Sprintf("Generating system prompt for %s...", s.Name))
		doc, err := synthesizer.Synthesize(ctx, s)
		if err != nil {
			return err
		}
		path, err := writer.WriteSystemPrompt(ctx, s, doc)
		if err != nil {
			return err
		}
		presenter.Success(fmt.Sprintf("Saved %s", path))
		return nil
	}

	reviewResult, reviewErr := review.Run(ctx, suggestions, prompter, accept)

	info := findings.RunInfo{Directory: config.Directory, Model: backend.Model()}
	summaryPath, err := writer.WriteSummary(ctx, info, reviewResult.Log)
	if err != nil {
		if reviewErr != nil {
			presenter.Error(reviewErr, "Review halted")
		}
		return err
	}

	printSessionSummary(reviewResult, summaryPath)
	return reviewErr
}

// newBackendFromConfig builds the language-model backend from viper and
// runs the reachability preflight for locally hosted servers. The resolved
// configuration is returned so commands can pass its reply overrides along.
func newBackendFromConfig(ctx context.Context) (llm.Backend, llm.Config, error) {
	llmConfig, err := llm.GetConfigFromViper()
	if err != nil {
		return nil, llm.Config{}, err
	}

	backend, err := llm.NewBackend(llmConfig)
	if err != nil {
		return nil, llm.Config{}, err
	}

	if openaiBackend, ok := backend.(*llm.OpenAIBackend); ok {
		found, available, err := openaiBackend.VerifyModel(ctx)
		switch {
		case err != nil:
			presenter.Warning(fmt.Sprintf("Could not list models from the server: %v", err))
		case !found:
			presenter.Warning(fmt.Sprintf("Model %q not reported by the server; available: %v", backend.Model(), available))
		}
	}

	return backend, llmConfig, nil
}

// generatorOptions translates the configured reply overrides into generator
// options; unset values keep the generator's own defaults
func generatorOptions(config llm.Config) []suggest.Option {
	var opts []suggest.Option
	if config.MaxTokens > 0 {
		opts = append(opts, suggest.WithMaxTokens(config.MaxTokens))
	}
	if config.Temperature != nil {
		opts = append(opts, suggest.WithTemperature(*config.Temperature))
	}
	return opts
}

func synthesizerOptions(config llm.Config) []synth.Option {
	var opts []synth.Option
	if config.MaxTokens > 0 {
		opts = append(opts, synth.WithMaxTokens(config.MaxTokens))
	}
	if config.Temperature != nil {
		opts = append(opts, synth.WithTemperature(*config.Temperature))
	}
	return opts
}

// discoverAgents collects agent files and reports the inventory. A second
// return of false means the directory held no agent files and the run
// should end cleanly without any model calls.
func discoverAgents(ctx context.Context, dir string) (discovery.Result, bool, error) {
	collector, err := discovery.NewCollector(dir)
	if err != nil {
		return discovery.Result{}, false, err
	}

	presenter.Info(fmt.Sprintf("Scanning %s for agent configurations...", dir))
	result, err := collector.Collect(ctx)
	if err != nil {
		if errors.Is(err, discovery.ErrNoAgentFiles) {
			presenter.Warning(fmt.Sprintf("No agent configuration files found in %s; nothing to analyze", dir))
			return discovery.Result{}, false, nil
		}
		return discovery.Result{}, false, err
	}

	presenter.Success(fmt.Sprintf("Found %d agent configuration files", len(result.Files)))
	return result, true, nil
}

func printSessionSummary(result review.Result, summaryPath string) {
	log := result.Log

	presenter.Separator()
	presenter.Section("Review Session Complete")
	presenter.Info(fmt.Sprintf("Accepted:   %d", log.Count(review.OutcomeAccepted)))
	presenter.Info(fmt.Sprintf("Rejected:   %d", log.Count(review.OutcomeRejected)))
	presenter.Info(fmt.Sprintf("Skipped:    %d", log.Count(review.OutcomeSkipped)))
	presenter.Info(fmt.Sprintf("Unreviewed: %d", log.Count(review.OutcomeUnreviewed)))
	presenter.Info(fmt.Sprintf("Summary written to %s", summaryPath))
}
