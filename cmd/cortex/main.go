// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command cortex drives a single agent substrate off a TOML config file.
//
// Usage:
//
//	cortex start config.toml
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/kadirpekel/hector/pkg/agent"
	"github.com/kadirpekel/hector/pkg/agent/llmagent"
	"github.com/kadirpekel/hector/pkg/builder"
	"github.com/kadirpekel/hector/pkg/databases"
	"github.com/kadirpekel/hector/pkg/embedders"
	"github.com/kadirpekel/hector/pkg/explore"
	"github.com/kadirpekel/hector/pkg/logger"
	"github.com/kadirpekel/hector/pkg/memory"
	"github.com/kadirpekel/hector/pkg/model"
	"github.com/kadirpekel/hector/pkg/runner"
	"github.com/kadirpekel/hector/pkg/session"
)

// CLI defines the command-line interface. Only `start` is part of the core
// contract (config path in, exit codes 0/1/2 out); everything else here is
// ambient plumbing around that one command.
type CLI struct {
	Start StartCmd `cmd:"" help:"Start the agent substrate from a TOML config file."`

	LogLevel  string `help:"Log level (debug, info, warn, error)." default:"info"`
	LogFormat string `help:"Log format (simple or verbose)." default:"simple"`
}

// StartCmd loads a TOML bootstrap config, builds the agent, and runs an
// interactive REPL against it until the user quits or a signal arrives.
type StartCmd struct {
	ConfigPath string `arg:"" type:"path" help:"Path to the TOML config file."`
}

// Run implements the start subcommand. Exit-code discipline (0 success, 1
// fatal config error, 2 runtime error) is enforced by classifying the
// returned error in main(), not here.
func (c *StartCmd) Run(cli *CLI) error {
	cfg, err := loadBootstrapConfig(c.ConfigPath)
	if err != nil {
		return err
	}

	llm, err := buildLLM(cfg.LLM)
	if err != nil {
		return newConfigError("building llm client: %w", err)
	}

	tools, err := buildTools(cfg.Agent.Tools)
	if err != nil {
		return newConfigError("building tools: %w", err)
	}

	exploreTool, err := explore.New(explore.Config{
		Model: llm,
		Tools: tools,
		Budgets: explore.Budgets{
			MaxTurns: cfg.Agent.MaxTurns,
		},
	})
	if err != nil {
		return newConfigError("building explore tool: %w", err)
	}
	tools = append(tools, exploreTool)

	hookSpecs := make([]agent.HookSpec, 0, len(cfg.Hooks))
	for _, h := range cfg.Hooks {
		hookSpecs = append(hookSpecs, agent.HookSpec{
			Event:   agent.HookEvent(h.Event),
			Command: h.Command,
			Args:    h.Args,
			Timeout: h.timeout(),
		})
	}

	maxTurns := cfg.Agent.MaxTurns
	if maxTurns <= 0 {
		maxTurns = 100
	}

	rootAgent, err := llmagent.New(llmagent.Config{
		Name:        cfg.Agent.Name,
		Description: cfg.Agent.Description,
		Model:       llm,
		Instruction: cfg.Agent.Instruction,
		Tools:       tools,
		Reasoning:   &llmagent.ReasoningConfig{MaxIterations: maxTurns},
		Hooks:       hookSpecs,
	})
	if err != nil {
		return fmt.Errorf("building agent: %w", err)
	}

	idx, err := buildMemoryIndex(cfg.Memory)
	if err != nil {
		return fmt.Errorf("building memory index: %w", err)
	}

	pl, err := buildPipeline(context.Background(), cfg.Pipeline)
	if err != nil {
		return fmt.Errorf("building pipeline runtime: %w", err)
	}
	if pl != nil {
		slog.Info("pipeline runtime ready", "catalog_root", cfg.Pipeline.CatalogRoot)
	}

	run, err := runner.New(runner.Config{
		AppName:        "cortex",
		Agent:          rootAgent,
		SessionService: session.InMemoryService(),
		IndexService:   idx,
	})
	if err != nil {
		return fmt.Errorf("building runner: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("shutting down")
		cancel()
	}()

	slog.Info("agent ready", "name", cfg.Agent.Name, "model", providerModel(llm))
	return repl(ctx, run, cfg.Agent.Name)
}

// buildLLM constructs the configured provider via pkg/builder's fluent
// LLMBuilder, the same one the rest of the module already uses to go from a
// provider name to a model.LLM.
func buildLLM(cfg llmSection) (model.LLM, error) {
	b := builder.NewLLM(cfg.Provider).Model(cfg.Model)
	if cfg.APIKey != "" {
		b = b.APIKey(cfg.APIKey)
	} else if cfg.APIKeyEnv != "" {
		b = b.APIKeyFromEnv(cfg.APIKeyEnv)
	}
	if cfg.BaseURL != "" {
		b = b.BaseURL(cfg.BaseURL)
	}
	if cfg.Temperature > 0 {
		b = b.Temperature(cfg.Temperature)
	}
	if cfg.MaxTokens > 0 {
		b = b.MaxTokens(cfg.MaxTokens)
	}
	if cfg.TimeoutSeconds > 0 {
		b = b.Timeout(time.Duration(cfg.TimeoutSeconds) * time.Second)
	}
	return b.Build()
}

// buildMemoryIndex wires a persistent memory.Store only when [memory] is
// explicitly enabled; otherwise the runner gets no IndexService and agents
// fall back to memory.NilMemory() wherever agent.Memory is needed. Qdrant
// and Ollama are the only zero-arg database/embedder providers in the
// module, so they're the deliberate default for the opt-in path rather than
// something requiring its own config block.
func buildMemoryIndex(cfg *memorySection) (runner.IndexService, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	db, err := databases.NewQdrantDatabaseProvider()
	if err != nil {
		return nil, fmt.Errorf("connecting to qdrant: %w", err)
	}
	embedder := embedders.NewOllamaEmbedder()

	collection := cfg.Collection
	store, err := memory.NewStore(memory.Config{
		DB:         db,
		Embedder:   embedder,
		Collection: collection,
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// repl drives the runner with stdin input until the user quits or the
// context is cancelled, in the same spirit as the direct-chat REPL: a
// prompt, slash commands for quit/clear, and streamed-looking output as
// events arrive.
func repl(ctx context.Context, run *runner.Runner, agentName string) error {
	reader := bufio.NewReader(os.Stdin)
	sessionID := uuid.NewString()

	fmt.Printf("\nConnected to %s. Commands: /quit, /exit, /clear\n\n", agentName)

	for {
		if ctx.Err() != nil {
			return nil
		}

		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch line {
		case "/quit", "/exit":
			fmt.Println("goodbye")
			return nil
		case "/clear":
			sessionID = uuid.NewString()
			fmt.Println("session cleared")
			continue
		}

		content := agent.NewTextContent(line, a2a.MessageRoleUser)
		fmt.Printf("%s: ", agentName)
		for event, err := range run.Run(ctx, "cli-user", sessionID, content, agent.RunConfig{}) {
			if err != nil {
				fmt.Println()
				return fmt.Errorf("agent run: %w", err)
			}
			if text := event.TextContent(); text != "" {
				fmt.Print(text)
			}
		}
		fmt.Println()
	}
}

func main() {
	cli := CLI{}
	kctx := kong.Parse(&cli,
		kong.Name("cortex"),
		kong.Description("Cortex agent substrate"),
		kong.UsageOnError(),
	)

	level, err := logger.ParseLevel(cli.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger.Init(level, os.Stderr, cli.LogFormat)

	err = kctx.Run(&cli)
	if err == nil {
		os.Exit(0)
	}

	var cfgErr *configError
	if errors.As(err, &cfgErr) {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, "runtime error:", err)
	os.Exit(2)
}
