package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lfm",
	Short: "Tool-augmented chat with a local language model",
	Long: `lfm is a small chat agent for locally hosted language models.
The model can call registered tools (clock, weather, BMI, file reading)
by emitting tool call directives; lfm runs them and feeds the results back
until the model answers.

Supported providers:
  ollama   - Ollama server (default, http://localhost:11434)
  openai   - OpenAI-compatible server (llama.cpp, LM Studio, vLLM)

Running lfm without a subcommand starts a chat.`,
	SilenceUsage: true,
	RunE:         runChat,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	addChatFlags(rootCmd)
}
