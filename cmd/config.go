package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/simonyos/lfm/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage lfm configuration",
	Long: `Manage lfm configuration including endpoints and generation defaults.

Examples:
  lfm config                           # Show current config
  lfm config set provider openai       # Set default provider
  lfm config set openai_url http://localhost:1234/v1
  lfm config set temperature 0.2       # Default sampling temperature
  lfm config delete model              # Back to the built-in model`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		showConfig(cmd.OutOrStdout())
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value.

Available keys:
  default_provider  - Default provider (ollama, openai); alias: provider
  default_model     - Default model; alias: model
  ollama_url        - Ollama base URL (default: http://localhost:11434); alias: ollama
  openai_base_url   - OpenAI-compatible base URL; alias: openai_url
  openai_api_key    - API key for the OpenAI-compatible server; alias: openai
  temperature       - Sampling temperature
  min_p             - Min-p sampling
  repeat_penalty    - Repetition penalty
  max_iterations    - Model generations allowed per turn`,
	Args:         cobra.ExactArgs(2),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Set(args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s successfully.\n", args[0])
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:          "get <key>",
	Short:        "Get a configuration value",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		val, err := config.Value(args[0])
		if err != nil {
			return err
		}
		if val == "" {
			fmt.Fprintf(cmd.OutOrStdout(), "%s is not set\n", args[0])
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", args[0], val)
		return nil
	},
}

var configDeleteCmd = &cobra.Command{
	Use:          "delete <key>",
	Aliases:      []string{"remove", "unset"},
	Short:        "Delete a configuration value",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Delete(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s.\n", args[0])
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show config file path",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), config.ConfigPath())
	},
}

func showConfig(out io.Writer) {
	fmt.Fprintf(out, "Configuration file: %s\n\n", config.ConfigPath())

	keys := config.ListKeys()
	if len(keys) == 0 {
		fmt.Fprintln(out, "No configuration set.")
		fmt.Fprintln(out, "\nUse 'lfm config set <key> <value>' to configure.")
		return
	}

	for _, k := range config.SortedKeys(keys) {
		fmt.Fprintf(out, "  %s: %s\n", k, keys[k])
	}
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configDeleteCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}
