package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jingkaihe/agentscout/pkg/logger"
	"github.com/jingkaihe/agentscout/pkg/presenter"
)

var rootCmd = &cobra.Command{
	Use:   "agentscout",
	Short: "Discover agent configurations and grow the network interactively",
	Long: `Agentscout scans a directory for agent configuration files, asks a
language model where the agent network falls short, and walks you through
the suggested additions one by one. Accepted suggestions are expanded into
full system prompts and written under findings/.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
		os.Exit(1)
	},
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if err := logger.SetLogLevel(viper.GetString("log_level")); err != nil {
			return err
		}
		logger.SetLogFormat(viper.GetString("log_format"))
		presenter.SetQuiet(viper.GetBool("quiet"))
		return nil
	},
}

func init() {
	// Environment variables
	viper.SetEnvPrefix("AGENTSCOUT")
	viper.AutomaticEnv()

	// Config file support
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.agentscout")
	viper.AddConfigPath(".")

	// Load config file if it exists (ignore errors if it doesn't)
	_ = viper.ReadInConfig()
}

func main() {
	// Add global flags
	rootCmd.PersistentFlags().String("provider", "", "LLM provider to use (anthropic or openai)")
	rootCmd.PersistentFlags().String("model", "", "LLM model to use (overrides config)")
	rootCmd.PersistentFlags().Int("max-tokens", 0, "Maximum tokens for model replies (overrides config)")
	rootCmd.PersistentFlags().String("profile", "", "Named configuration profile to apply")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "fmt", "Log format (fmt, text, json)")
	rootCmd.PersistentFlags().Bool("quiet", false, "Suppress non-essential output")

	// Bind flags to viper
	viper.BindPFlag("provider", rootCmd.PersistentFlags().Lookup("provider"))
	viper.BindPFlag("model", rootCmd.PersistentFlags().Lookup("model"))
	viper.BindPFlag("max_tokens", rootCmd.PersistentFlags().Lookup("max-tokens"))
	viper.BindPFlag("profile", rootCmd.PersistentFlags().Lookup("profile"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))

	// Add subcommands
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(versionCmd)

	// Execute
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
