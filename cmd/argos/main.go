// Command argos runs the Argos conversational agent: an interactive
// REPL (or one-shot prompt) driving a tool-calling loop against a
// local Ollama model or the Anthropic API.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Bacoazul/Argos-Core/internal/agent"
	"github.com/Bacoazul/Argos-Core/internal/buildinfo"
	"github.com/Bacoazul/Argos-Core/internal/config"
	"github.com/Bacoazul/Argos-Core/internal/forge"
	"github.com/Bacoazul/Argos-Core/internal/llm"
	"github.com/Bacoazul/Argos-Core/internal/prompts"
	"github.com/Bacoazul/Argos-Core/internal/search"
	"github.com/Bacoazul/Argos-Core/internal/session"
	"github.com/Bacoazul/Argos-Core/internal/tools"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	prompt := flag.String("prompt", "", "run a single prompt and exit")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(buildinfo.String())
		return
	}

	if err := run(*configPath, *prompt); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(configPath, prompt string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: config.ReplaceLogLevelNames,
	}))
	slog.SetDefault(logger)

	logger.Info("starting", "build", buildinfo.String(), "model", cfg.Model.Name, "provider", cfg.Model.Provider)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := newClient(ctx, cfg, logger)
	if err != nil {
		return err
	}

	registry := buildRegistry(cfg, logger)
	sessions := session.NewStore(logger)

	systemPrompt := prompts.SystemPrompt
	if cfg.PersonaFile != "" {
		systemPrompt = prompts.FromFile(cfg.PersonaFile)
	}

	loop := agent.NewLoop(logger, client, sessions, registry, agent.Options{
		Model:         cfg.Model.Name,
		MaxToolRounds: cfg.Agent.MaxToolRounds,
		SystemPrompt:  systemPrompt,
	})

	sessionID := session.NewID()

	if prompt != "" {
		answer, err := loop.RunTurn(ctx, sessionID, prompt)
		if err != nil {
			return err
		}
		fmt.Println(answer)
		return nil
	}

	return repl(ctx, loop, sessionID)
}

// loadConfig finds and loads the config file. With no explicit path
// and no file on the search path, built-in defaults apply.
func loadConfig(explicit string) (*config.Config, error) {
	path, err := config.FindConfig(explicit)
	if err != nil {
		if explicit != "" {
			return nil, err
		}
		return config.Default(), nil
	}
	return config.Load(path)
}

// newClient builds the configured model backend and verifies it is
// reachable.
func newClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (llm.Client, error) {
	var client llm.Client
	switch cfg.Model.Provider {
	case "ollama":
		client = llm.NewOllamaClient(cfg.Model.OllamaURL, logger)
	case "anthropic":
		if cfg.Anthropic.APIKey == "" {
			return nil, fmt.Errorf("anthropic provider selected but no api_key configured")
		}
		client = llm.NewAnthropicClient(cfg.Anthropic.APIKey, logger)
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Model.Provider)
	}

	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("model backend unreachable: %w", err)
	}
	return client, nil
}

// buildRegistry registers every tool the configuration enables.
func buildRegistry(cfg *config.Config, logger *slog.Logger) *tools.Registry {
	registry := tools.NewRegistry(logger, cfg.Agent.MaxResultBytes)

	if cfg.Workspace.Path != "" {
		ft := tools.NewFileTools(cfg.Workspace.Path, logger)
		tools.RegisterFileTools(registry, ft)
	}

	if cfg.Search.BraveAPIKey != "" {
		mgr := search.NewManager("brave")
		mgr.Register(search.NewBrave(cfg.Search.BraveAPIKey, cfg.Search.BraveURL))
		registry.Register(search.NewTool(mgr, cfg.Search.MaxResults))
	}

	// The repo tool is always registered; without a token it answers
	// with a credential error observation.
	var provider forge.Provider
	if cfg.Forge.Token != "" {
		gh, err := forge.NewGitHub(nil, cfg.Forge.Token, cfg.Forge.URL, logger)
		if err != nil {
			logger.Warn("forge disabled", "error", err)
		} else {
			provider = gh
		}
	}
	registry.Register(forge.NewTools(provider, cfg.Forge.Owner, logger).Tool())

	logger.Info("tools registered", "tools", registry.Names())
	return registry
}

// repl reads user turns from stdin until EOF or /quit.
func repl(ctx context.Context, loop *agent.Loop, sessionID string) error {
	fmt.Println("Argos ready. /reset clears the conversation, /quit exits.")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit", line == "/exit":
			return nil
		case line == "/reset":
			sessionID = loop.Reset(sessionID)
			fmt.Println("conversation cleared")
			continue
		}

		answer, err := loop.RunTurn(ctx, sessionID, line)
		if err != nil {
			switch {
			case errors.Is(err, context.Canceled):
				return nil
			case errors.Is(err, session.ErrTurnInFlight):
				fmt.Println("previous turn still running, try again")
			case errors.Is(err, agent.ErrLoopExceeded):
				fmt.Println("the model kept calling tools without answering; turn aborted")
			case errors.Is(err, llm.ErrUnavailable):
				fmt.Println("model backend unavailable:", err)
			default:
				fmt.Println("turn failed:", err)
			}
			continue
		}

		fmt.Println(answer)
	}
}
