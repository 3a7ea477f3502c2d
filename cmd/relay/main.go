package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/aschepis/backscratcher/relay/config"
	"github.com/aschepis/backscratcher/relay/llm"
	relaylogger "github.com/aschepis/backscratcher/relay/logger"
	"github.com/rs/zerolog"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run sends one prompt to the resolved provider and prints the reply and its usage.
// The prompt is taken from the positional arguments, or from stdin when there are none.
func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	flags := flag.NewFlagSet("relay", flag.ContinueOnError)
	var (
		configPath = flags.String("config", config.GetConfigPath(), "Path to config file")
		provider   = flags.String("provider", "", "Provider to use, overriding llm_providers")
		model      = flags.String("model", "", "Model to use with -provider")
		system     = flags.String("system", "You are a helpful assistant.", "System prompt")
		asJSON     = flags.Bool("json", false, "Print the reply message as JSON")
		logFile    = flags.String("logfile", "", "Path to log file. If not set, logs to stdout")
		pretty     = flags.Bool("pretty", false, "Use pretty console output (only valid when logfile is not set)")
	)
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *model != "" && *provider == "" {
		return fmt.Errorf("-model requires -provider")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logOpts := relaylogger.Options{Level: cfg.Log.Level, File: cfg.Log.File, Pretty: cfg.Log.Pretty, Output: os.Stderr}
	if *logFile != "" {
		logOpts.File = *logFile
	}
	if *pretty {
		logOpts.Pretty = true
	}
	logger, err := relaylogger.New(logOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	prompt := strings.TrimSpace(strings.Join(flags.Args(), " "))
	if prompt == "" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("failed to read prompt: %w", err)
		}
		prompt = strings.TrimSpace(string(data))
	}
	if prompt == "" {
		return fmt.Errorf("no prompt given")
	}

	p, err := resolveProvider(cfg, *provider, *model, logger)
	if err != nil {
		return err
	}
	p = llm.WrapWithMiddleware(p, llm.NewLoggingMiddleware(logger))

	reply, usage, err := p.Complete(ctx, *system, []llm.Message{llm.NewTextMessage(llm.RoleUser, prompt)}, nil)
	if err != nil {
		return err
	}

	if *asJSON {
		data, err := reply.ToJSON()
		if err != nil {
			return fmt.Errorf("failed to encode reply: %w", err)
		}
		fmt.Fprintln(stdout, string(data))
	} else {
		fmt.Fprintln(stdout, reply.Text())
	}
	fmt.Fprintf(stdout, "\n[usage] input=%s output=%s total=%s\n",
		formatCount(usage.InputTokens), formatCount(usage.OutputTokens), formatCount(usage.TotalTokens))
	return nil
}

// resolveProvider honors an explicit provider/model choice and otherwise walks llm_providers.
func resolveProvider(cfg *config.Config, provider, model string, logger zerolog.Logger) (llm.Provider, error) {
	if provider == "" {
		return config.NewProvider(cfg, logger)
	}

	cfg.LLMProviders = []string{provider}
	key, err := config.Registry(cfg).Resolve([]llm.Preference{{Provider: provider, Model: model}})
	if err != nil {
		return nil, err
	}
	return config.NewProviderForKey(cfg, key, logger)
}

func formatCount(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}
