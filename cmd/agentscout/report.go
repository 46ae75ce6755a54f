package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/agentscout/pkg/analysis"
	"github.com/jingkaihe/agentscout/pkg/findings"
	"github.com/jingkaihe/agentscout/pkg/llm"
	"github.com/jingkaihe/agentscout/pkg/presenter"
	"github.com/jingkaihe/agentscout/pkg/sysprompt"
)

// reportMaxTokens bounds the single-document analysis reply, which runs
// longer than the structured suggestion list
const reportMaxTokens = 4000

// ReportConfig holds configuration for the report command
type ReportConfig struct {
	Directory     string
	Output        string
	ContextBudget int
}

// NewReportConfig creates a new ReportConfig with default values
func NewReportConfig() *ReportConfig {
	return &ReportConfig{
		Directory:     ".",
		Output:        ".",
		ContextBudget: analysis.DefaultContextBudget,
	}
}

var reportCmd = &cobra.Command{
	Use:   "report [directory]",
	Short: "Write a one-shot analysis of the agent network",
	Long: `Scan a directory for agent configuration files and write a single
analysis document covering the network's strengths, gaps, and recommended
additions to findings/agent-network-analysis.md. No interactive review takes
place; use 'agentscout analyze' to act on individual suggestions.

Example:
  agentscout report ./agents
  agentscout report ./agents --output ./out`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		config := getReportConfigFromFlags(cmd, args)
		if err := runReport(ctx, config); err != nil {
			presenter.Error(err, "Report failed")
			os.Exit(1)
		}
	},
}

func init() {
	defaults := NewReportConfig()
	reportCmd.Flags().StringP("output", "o", defaults.Output, "Directory the findings/ tree is written under")
	reportCmd.Flags().Int("context-budget", defaults.ContextBudget, "Maximum context size in characters sent to the model")
}

// getReportConfigFromFlags extracts report configuration from command flags
func getReportConfigFromFlags(cmd *cobra.Command, args []string) *ReportConfig {
	config := NewReportConfig()

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

func runReport(ctx context.Context, config *ReportConfig) error {
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

	prompt, err := sysprompt.NewRenderer(sysprompt.TemplateFS).RenderAnalysisPrompt(sysprompt.AnalysisContext{
		Context: builder.Build(ctx, result),
	})
	if err != nil {
		return err
	}

	maxTokens := reportMaxTokens
	if llmConfig.MaxTokens > 0 {
		maxTokens = llmConfig.MaxTokens
	}
	temperature := float32(0.7)
	if llmConfig.Temperature != nil {
		temperature = *llmConfig.Temperature
	}

	presenter.Info(fmt.Sprintf("Asking %s for a network analysis...", backend.Model()))
	reply, err := backend.Generate(ctx, llm.Request{
		Prompt:      prompt,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return err
	}

	writer := findings.NewWriter(config.Output)
	info := findings.RunInfo{Directory: config.Directory, Model: backend.Model()}
	path, err := writer.WriteAnalysis(ctx, info, reply)
	if err != nil {
		return err
	}

	presenter.Success(fmt.Sprintf("Analysis written to %s", path))
	return nil
}
