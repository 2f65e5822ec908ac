package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/m4xw311/picode/agent"
	"github.com/m4xw311/picode/agent/terminal"
	"github.com/m4xw311/picode/config"
	"github.com/m4xw311/picode/conversation"
	"github.com/m4xw311/picode/llm"
	"github.com/m4xw311/picode/logging"
	"github.com/m4xw311/picode/tools"
	"github.com/m4xw311/picode/tools/mcp"
	"github.com/m4xw311/picode/ui/tty"
	"github.com/spf13/cobra"
)

// echoProvider forces echo mode even when a key is available.
const echoProvider = "echo"

type options struct {
	verbose  bool
	provider string
	apiKey   string
	model    string
	baseURL  string
	toolset  string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "picode",
		Short: "An AI coding assistant for the terminal",
		Long:  "picode lets you chat with an LLM that can list and read files and run shell commands in the current directory.",
		Example: `
# Start with the provider from .picode/config.yaml and OPENAI_API_KEY
picode

# Use Anthropic with an explicit model
picode -p anthropic -m claude-sonnet-4-20250514

# Talk to a local Ollama server
picode -p ollama -u http://localhost:11434

# Try the interface without a model
picode -p echo
  `,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Write debug output to the log file")
	flags.StringVarP(&opts.provider, "provider", "p", "", "LLM provider: openai, anthropic, gemini, bedrock, ollama or echo")
	flags.StringVarP(&opts.apiKey, "api-key", "k", "", "API key (defaults to the provider's environment variable)")
	flags.StringVarP(&opts.model, "model", "m", "", "Model name")
	flags.StringVarP(&opts.baseURL, "base-url", "u", "", "Override the provider's API endpoint")
	flags.StringVarP(&opts.toolset, "toolset", "t", "", "Toolset to use (defaults to 'default')")
	return cmd
}

// resolveSettings combines flags, config and environment. Flags win over the
// config file; the key falls back to the provider's environment variable. It
// reports echo mode when the provider cannot be used.
func resolveSettings(cfg *config.Config, opts options, getenv func(string) string) (llm.Settings, bool) {
	s := llm.Settings{
		Provider: strings.ToLower(firstNonEmpty(opts.provider, cfg.LLMClient, "openai")),
		Model:    firstNonEmpty(opts.model, cfg.Model),
		APIKey:   opts.apiKey,
		BaseURL:  firstNonEmpty(opts.baseURL, cfg.BaseURL),
	}
	if s.Provider == echoProvider {
		return s, true
	}
	if s.APIKey == "" {
		if env := config.APIKeyEnv(s.Provider); env != "" {
			s.APIKey = getenv(env)
		}
	}
	return s, config.NeedsAPIKey(s.Provider) && s.APIKey == ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger, closer, err := logging.Setup(cfg.LogFile, opts.verbose)
	if err != nil {
		return err
	}
	defer closer.Close()

	settings, echo := resolveSettings(cfg, opts, os.Getenv)

	var loop *agent.Loop
	if echo {
		logger.Info("starting in echo mode", "provider", settings.Provider)
	} else {
		var cleanup func()
		loop, cleanup, err = buildLoop(ctx, cfg, settings, opts.toolset, logger)
		if err != nil {
			return err
		}
		defer cleanup()
	}

	dev, err := tty.Open(logger)
	if err != nil {
		return err
	}
	defer dev.Close()

	return terminal.New(dev, loop, conversation.New(cfg.SystemPrompt), logger).Run(ctx)
}

// buildLoop creates the LLM client, starts MCP servers and restricts the
// tools to the selected toolset. cleanup stops the MCP servers.
func buildLoop(ctx context.Context, cfg *config.Config, s llm.Settings, toolset string, logger *slog.Logger) (*agent.Loop, func(), error) {
	logger = logging.OrDefault(logger)
	client, err := llm.New(ctx, s, logger)
	if err != nil {
		return nil, nil, err
	}

	registry := tools.NewDefaultRegistry(cfg, logger)
	servers, err := mcp.Start(ctx, cfg.AdditionalMCPServers, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { mcp.StopAll(servers) }
	for _, srv := range servers {
		for _, t := range srv.Tools() {
			registry.Register(t)
		}
	}

	ts, err := cfg.GetToolset(toolset)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	selected, err := registry.Select(ts)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	logger.Info("agent ready", "provider", s.Provider, "model", s.Model, "tools", selected.Len(), "mcp_servers", len(servers))
	return agent.New(client, selected, logger), cleanup, nil
}
