package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/simonyos/lfm/internal/agent"
	"github.com/simonyos/lfm/internal/config"
	"github.com/simonyos/lfm/internal/llm"
	"github.com/simonyos/lfm/internal/logging"
	"github.com/simonyos/lfm/internal/persona"
	"github.com/simonyos/lfm/internal/repl"
	"github.com/simonyos/lfm/internal/toolbox"
	"github.com/simonyos/lfm/internal/tools"
	"github.com/simonyos/lfm/internal/tui"
	"github.com/simonyos/lfm/internal/tui/theme"
)

// DefaultModel is the tool-calling model pulled from Hugging Face by Ollama
const DefaultModel = "hf.co/LiquidAI/LFM2-1.2B-Tool-GGUF:Q4_K_M"

type chatOptions struct {
	model         string
	provider      string
	verbose       bool
	quiet         bool
	debug         bool
	tools         []string
	allTools      bool
	singleShot    bool
	maxIterations int
	temperature   float64
	persona       string
	tui           bool
	markdown      bool
	traceFile     string
	theme         string
}

var chatOpts chatOptions

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat session with the configured model.

Examples:
  lfm chat                              # Plain chat, no tools
  lfm chat -t get_weather -t calculate_bmi
  lfm chat --all-tools --tui
  lfm chat --persona pirate --quiet`,
	SilenceUsage: true,
	RunE:         runChat,
}

func addChatFlags(c *cobra.Command) {
	f := c.Flags()
	f.StringVarP(&chatOpts.model, "model", "m", DefaultModel, "Model to use (provider-specific)")
	f.StringVarP(&chatOpts.provider, "provider", "p", "", "LLM provider (ollama, openai)")
	f.BoolVar(&chatOpts.verbose, "verbose", true, "Log agent activity to stderr")
	f.BoolVar(&chatOpts.quiet, "quiet", false, "Only log errors")
	f.BoolVar(&chatOpts.debug, "debug", false, "Log at debug level")
	f.StringArrayVarP(&chatOpts.tools, "tool", "t", nil, "Enable a tool (repeatable)")
	f.BoolVar(&chatOpts.allTools, "all-tools", false, "Enable every available tool")
	f.BoolVar(&chatOpts.singleShot, "single-shot", false, "Answer right after the first tool result")
	f.IntVar(&chatOpts.maxIterations, "max-iterations", 0, "Model generations allowed per turn")
	f.Float64Var(&chatOpts.temperature, "temperature", 0, "Sampling temperature")
	f.StringVar(&chatOpts.persona, "persona", "", "Persona to use as the system prompt")
	f.BoolVar(&chatOpts.tui, "tui", false, "Use the full-screen terminal UI")
	f.BoolVar(&chatOpts.markdown, "markdown", false, "Render answers as markdown")
	f.StringVar(&chatOpts.traceFile, "trace-file", "", "Write OpenTelemetry spans to this file")
	f.StringVar(&chatOpts.theme, "theme", "", "Color theme (default, mono)")
}

func runChat(cmd *cobra.Command, _ []string) error {
	opts := chatOpts
	stderr := cmd.ErrOrStderr()

	if opts.theme != "" {
		theme.Current = theme.ByName(opts.theme)
	}

	var traceWriter io.Writer
	if opts.traceFile != "" {
		f, err := os.Create(opts.traceFile)
		if err != nil {
			return fmt.Errorf("failed to create trace file: %w", err)
		}
		defer f.Close()
		traceWriter = f
	}

	logger, shutdown, err := logging.Setup(logging.Options{
		Verbose:     opts.verbose && !opts.quiet,
		Debug:       opts.debug,
		Writer:      stderr,
		TraceWriter: traceWriter,
	})
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	cfg := config.Get()

	var p *persona.Persona
	if opts.persona != "" {
		p, err = persona.NewLoader(config.PersonaPaths()).Find(opts.persona)
		if err != nil {
			return err
		}
	}

	toolNames := selectTools(opts, p)
	var registry *tools.Registry
	if len(toolNames) > 0 {
		registry = tools.NewRegistry(tools.WithLogger(logger))
		if err := toolbox.Enable(registry, toolNames...); err != nil {
			return err
		}
		fmt.Fprintf(stderr, "Loading tools: %s\n", strings.Join(toolNames, ", "))
	} else {
		fmt.Fprintln(stderr, "Starting simple chat (No tools enabled)")
	}

	providerName := opts.provider
	if providerName == "" {
		providerName = cfg.DefaultProvider
	}
	model := opts.model
	if !cmd.Flags().Changed("model") && cfg.DefaultModel != "" {
		model = cfg.DefaultModel
	}
	provider, err := llm.NewProvider(providerName, model)
	if err != nil {
		return err
	}

	var temperature *float64
	if cmd.Flags().Changed("temperature") {
		temperature = &opts.temperature
	}
	client := llm.NewClient(provider, generationOptions(cfg, p, temperature), llm.WithLogger(logger))

	agentOpts := []agent.Option{
		agent.WithLogger(logger),
		agent.WithMaxIterations(maxIterations(opts.maxIterations, cfg, p)),
	}
	if registry != nil {
		agentOpts = append(agentOpts, agent.WithRegistry(registry))
	}
	if p != nil {
		agentOpts = append(agentOpts, agent.WithSystemPrompt(p.Prompt))
	}
	if opts.singleShot {
		agentOpts = append(agentOpts, agent.WithSingleShot())
	}
	ag := agent.New(client, agentOpts...)
	logger.Info("agent ready", "agent", ag.ID(), "provider", provider.Name(), "model", client.Model())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.tui {
		return tui.Run(ctx, ag, client.Model())
	}

	r := repl.New(ag, repl.Options{
		In:       cmd.InOrStdin(),
		Out:      cmd.OutOrStdout(),
		Err:      stderr,
		Markdown: opts.markdown,
		Model:    client.Model(),
	})
	ag.SetEventHandler(r)
	return r.Run(ctx)
}

// selectTools picks tools from the flags, falling back to the persona's list
func selectTools(opts chatOptions, p *persona.Persona) []string {
	switch {
	case opts.allTools:
		return toolbox.Names()
	case len(opts.tools) > 0:
		return opts.tools
	case p != nil:
		return p.Tools
	default:
		return nil
	}
}

// generationOptions merges sampling options: flag, then persona, then config, then defaults
func generationOptions(cfg *config.Config, p *persona.Persona, temperature *float64) llm.Options {
	opts := llm.DefaultOptions()
	if cfg.Temperature != nil {
		opts.Temperature = *cfg.Temperature
	}
	if cfg.MinP != nil {
		opts.MinP = *cfg.MinP
	}
	if cfg.RepeatPenalty != nil {
		opts.RepeatPenalty = *cfg.RepeatPenalty
	}
	if p != nil && p.Temperature != nil {
		opts.Temperature = *p.Temperature
	}
	if temperature != nil {
		opts.Temperature = *temperature
	}
	return opts
}

// maxIterations resolves the loop bound with the same precedence
func maxIterations(flag int, cfg *config.Config, p *persona.Persona) int {
	switch {
	case flag > 0:
		return flag
	case p != nil && p.MaxIterations != nil && *p.MaxIterations > 0:
		return *p.MaxIterations
	case cfg.MaxIterations != nil && *cfg.MaxIterations > 0:
		return *cfg.MaxIterations
	default:
		return agent.DefaultMaxIterations
	}
}

func init() {
	addChatFlags(chatCmd)
	rootCmd.AddCommand(chatCmd)
}
