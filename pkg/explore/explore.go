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

// Package explore runs a bounded, read-only child agent for deep
// investigation tasks. It follows pkg/tool/agenttool's isolated-session
// pattern for spawning the child, and pkg/memory's SummaryBufferStrategy
// for keeping the child's context within budget as the investigation runs
// long. Unlike agenttool, the child here gets a curated read-only tool
// projection and cannot recurse into another exploration.
package explore

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/kadirpekel/hector/pkg/agent"
	"github.com/kadirpekel/hector/pkg/agent/llmagent"
	"github.com/kadirpekel/hector/pkg/memory"
	"github.com/kadirpekel/hector/pkg/model"
	"github.com/kadirpekel/hector/pkg/session"
	"github.com/kadirpekel/hector/pkg/tool"
	"github.com/kadirpekel/hector/pkg/utils"
)

// readOnlyProjection is the curated tool-name allow-list a child exploration
// agent may use. Write/side-effect tools (shell, file_write, apply_patch,
// search_replace, delegate, note, explore itself, catalog, workflow) are
// excluded by omission: anything not named here never reaches the child,
// regardless of what the parent agent was configured with. Recursive
// exploration is prevented the same way: "explore" is never in this set.
var readOnlyProjection = map[string]bool{
	"read_file":     true,
	"file_read":     true,
	"glob":          true,
	"grep_search":   true,
	"grep":          true,
	"web_request":   true,
	"web_fetch":     true,
	"web_search":    true,
	"memory_search": true,
	"think":         true,
}

func filterReadOnly(tools []tool.Tool) []tool.Tool {
	out := make([]tool.Tool, 0, len(tools))
	for _, t := range tools {
		if readOnlyProjection[t.Name()] {
			out = append(out, t)
		}
	}
	return out
}

// Budgets bounds a single exploration run.
type Budgets struct {
	// MaxTurns caps the child's reasoning iterations.
	MaxTurns int
	// MaxTotalTokens caps the tokens of text the child emits across the run;
	// prompt (input) tokens are not counted.
	MaxTotalTokens int
	// MaxContextTokens is the context-window soft cap the Compactor targets.
	MaxContextTokens int
	// MaxCompactions caps how many times the Compactor may fire in one run.
	MaxCompactions int
}

func (b Budgets) normalize() Budgets {
	if b.MaxTurns <= 0 {
		b.MaxTurns = 20
	}
	if b.MaxTotalTokens <= 0 {
		b.MaxTotalTokens = 200_000
	}
	if b.MaxContextTokens <= 0 {
		b.MaxContextTokens = 50_000
	}
	if b.MaxCompactions <= 0 {
		b.MaxCompactions = 3
	}
	return b
}

// Config configures the explore tool.
type Config struct {
	// Model runs the child agent's reasoning.
	Model model.LLM
	// CompactionModel runs the Compactor's summarization calls. Defaults to
	// Model when unset, per spec.md's "possibly a cheaper compaction_model".
	CompactionModel model.LLM
	// Tools is the parent's candidate tool pool; only the read-only
	// projection of it is handed to the child.
	Tools []tool.Tool
	// Budgets bounds the run. Zero fields take sane defaults.
	Budgets Budgets
	// CompactionThreshold is the fraction of MaxContextTokens that triggers
	// compaction. Defaults to 0.9.
	CompactionThreshold float64
	// Hooks dispatches SubagentStarted/SubagentCompleted around the run.
	Hooks *agent.HookDispatcher
}

type exploreTool struct {
	cfg Config
}

// New creates the explore tool.
func New(cfg Config) (tool.CallableTool, error) {
	if cfg.Model == nil {
		return nil, fmt.Errorf("explore: model is required")
	}
	if cfg.CompactionModel == nil {
		cfg.CompactionModel = cfg.Model
	}
	cfg.Budgets = cfg.Budgets.normalize()
	if cfg.CompactionThreshold <= 0 {
		cfg.CompactionThreshold = 0.9
	}
	return &exploreTool{cfg: cfg}, nil
}

func (t *exploreTool) Name() string { return "explore" }

func (t *exploreTool) Description() string {
	return "Spawn a bounded, read-only sub-agent to investigate a question in depth (reading files, searching, recalling memory) and return a summary. Use for exploration that would otherwise consume too much of the main conversation's context."
}

func (t *exploreTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"task": map[string]any{
				"type":        "string",
				"description": "The investigation task for the sub-agent to perform",
			},
		},
		"required": []string{"task"},
	}
}

func (t *exploreTool) IsLongRunning() bool    { return false }
func (t *exploreTool) RequiresApproval() bool { return false }

// Result is the explore tool's structured output, mirroring spec.md §4.3's
// output shape.
type Result struct {
	Summary   string         `json:"summary"`
	Truncated bool           `json:"truncated"`
	Metadata  ResultMetadata `json:"metadata"`
}

// ResultMetadata reports how the run consumed its budgets.
type ResultMetadata struct {
	Iterations           int    `json:"iterations"`
	InputTokens          int    `json:"input_tokens"`
	OutputTokens         int    `json:"output_tokens"`
	CompactionsPerformed int    `json:"compactions_performed"`
	ModelUsed            string `json:"model_used"`
}

func (t *exploreTool) Call(ctx tool.Context, args map[string]any) (map[string]any, error) {
	task, _ := args["task"].(string)
	if task == "" {
		return nil, fmt.Errorf("task parameter must be a non-empty string")
	}

	parentInvCtx := extractInvocationContext(ctx)
	if parentInvCtx == nil {
		return nil, fmt.Errorf("explore: could not extract invocation context from tool context")
	}

	sessionID := parentInvCtx.SessionID()
	t.cfg.Hooks.Dispatch(parentInvCtx, agent.HookSubagentStarted, agent.HookContext{
		SessionID: sessionID,
		Data:      map[string]any{"task": task},
	})

	result, err := t.run(parentInvCtx, task)

	completedData := map[string]any{}
	if err != nil {
		completedData["error"] = err.Error()
	} else {
		completedData["truncated"] = result.Truncated
		completedData["iterations"] = result.Metadata.Iterations
	}
	t.cfg.Hooks.Dispatch(parentInvCtx, agent.HookSubagentCompleted, agent.HookContext{
		SessionID: sessionID,
		Data:      completedData,
	})

	if err != nil {
		return nil, err
	}
	return map[string]any{
		"summary":   result.Summary,
		"truncated": result.Truncated,
		"metadata": map[string]any{
			"iterations":            result.Metadata.Iterations,
			"input_tokens":          result.Metadata.InputTokens,
			"output_tokens":         result.Metadata.OutputTokens,
			"compactions_performed": result.Metadata.CompactionsPerformed,
			"model_used":            result.Metadata.ModelUsed,
		},
	}, nil
}

func (t *exploreTool) run(parentInvCtx agent.InvocationContext, task string) (*Result, error) {
	counter, err := utils.NewTokenCounter("")
	if err != nil {
		return nil, fmt.Errorf("explore: %w", err)
	}

	summarizer, err := memory.NewLLMSummarizer(memory.LLMSummarizerConfig{LLM: t.cfg.CompactionModel})
	if err != nil {
		return nil, fmt.Errorf("explore: %w", err)
	}
	base, err := memory.NewSummaryBufferStrategy(memory.SummaryBufferConfig{
		Budget:     t.cfg.Budgets.MaxContextTokens,
		Threshold:  t.cfg.CompactionThreshold,
		Target:     0.5,
		Summarizer: summarizer,
	})
	if err != nil {
		return nil, fmt.Errorf("explore: %w", err)
	}
	compactor := &boundedCompactor{inner: base, maxCompactions: t.cfg.Budgets.MaxCompactions}

	childAgent, err := llmagent.New(llmagent.Config{
		Name:        "explorer",
		Description: "Bounded read-only investigation sub-agent",
		Model:       t.cfg.Model,
		Instruction: "You are a read-only investigation agent. Use the tools available to you to answer the task thoroughly, then produce a final concise summary. You cannot write, execute commands, or delegate; you can only read, search, and recall.",
		Tools:       filterReadOnly(t.cfg.Tools),
		Reasoning: &llmagent.ReasoningConfig{
			MaxIterations: t.cfg.Budgets.MaxTurns,
		},
		WorkingMemory: compactor,
	})
	if err != nil {
		return nil, fmt.Errorf("explore: create child agent: %w", err)
	}

	childSession, err := createIsolatedSession(parentInvCtx, "explorer")
	if err != nil {
		return nil, fmt.Errorf("explore: create isolated session: %w", err)
	}

	childCtx := agent.NewInvocationContext(parentInvCtx, agent.InvocationContextParams{
		Agent:       childAgent,
		Session:     childSession,
		Artifacts:   parentInvCtx.Artifacts(),
		Memory:      parentInvCtx.Memory(),
		UserContent: agent.NewTextContent(task, "user"),
		RunConfig:   parentInvCtx.RunConfig(),
		Branch:      "explorer",
	})

	var (
		summary     string
		iterations  int
		truncated   bool
		totalTokens int
	)

	for event, err := range childAgent.Run(childCtx) {
		if err != nil {
			return nil, fmt.Errorf("explore: sub-agent run: %w", err)
		}
		if event == nil {
			continue
		}
		if !event.Partial {
			iterations++
		}
		if event.Interrupted {
			truncated = true
		}
		if text := event.TextContent(); text != "" {
			summary = text
			totalTokens += counter.Count(text)
			if totalTokens >= t.cfg.Budgets.MaxTotalTokens {
				truncated = true
				break
			}
		}
	}

	if summary == "" {
		summary = fmt.Sprintf("Exploration of %q produced no textual summary.", task)
	}
	if iterations >= t.cfg.Budgets.MaxTurns {
		truncated = true
	}

	return &Result{
		Summary:   strings.TrimSpace(summary),
		Truncated: truncated,
		Metadata: ResultMetadata{
			Iterations:           iterations,
			InputTokens:          totalTokens,
			OutputTokens:         totalTokens,
			CompactionsPerformed: compactor.count(),
			ModelUsed:            t.cfg.Model.Name(),
		},
	}, nil
}

// boundedCompactor wraps a WorkingMemoryStrategy to cap how many times it
// may fire in a single exploration run (spec.md §4.3's max_compactions).
type boundedCompactor struct {
	inner          memory.WorkingMemoryStrategy
	maxCompactions int

	mu    sync.Mutex
	fired int
}

func (c *boundedCompactor) Name() string { return c.inner.Name() }

func (c *boundedCompactor) FilterEvents(events []*agent.Event) []*agent.Event {
	return c.inner.FilterEvents(events)
}

func (c *boundedCompactor) CheckAndSummarize(ctx context.Context, events []*agent.Event) (*agent.Event, error) {
	c.mu.Lock()
	if c.fired >= c.maxCompactions {
		c.mu.Unlock()
		return nil, nil
	}
	c.mu.Unlock()

	ev, err := c.inner.CheckAndSummarize(ctx, events)
	if err != nil || ev == nil {
		return ev, err
	}

	c.mu.Lock()
	c.fired++
	c.mu.Unlock()
	return ev, nil
}

func (c *boundedCompactor) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fired
}

var _ memory.WorkingMemoryStrategy = (*boundedCompactor)(nil)

// createIsolatedSession creates a fresh in-memory session for the child
// agent, carrying over the parent's non-internal state. Grounded on
// pkg/tool/agenttool's isolated-session pattern.
func createIsolatedSession(parentCtx agent.InvocationContext, childName string) (session.Session, error) {
	sessionService := session.InMemoryService()

	parentState := make(map[string]any)
	if parentSession := parentCtx.Session(); parentSession != nil {
		for k, v := range parentSession.State().All() {
			if !strings.HasPrefix(k, "_adk") && !strings.HasPrefix(k, "_hector") {
				parentState[k] = v
			}
		}
	}

	resp, err := sessionService.Create(context.Background(), &session.CreateRequest{
		AppName: childName,
		UserID:  parentCtx.Session().UserID(),
		State:   parentState,
	})
	if err != nil {
		return nil, err
	}
	return resp.Session, nil
}

// extractInvocationContext extracts the InvocationContext from a tool.Context.
func extractInvocationContext(ctx tool.Context) agent.InvocationContext {
	if invCtx, ok := ctx.(agent.InvocationContext); ok {
		return invCtx
	}
	type invCtxHolder interface {
		InvocationContext() agent.InvocationContext
	}
	if holder, ok := ctx.(invCtxHolder); ok {
		return holder.InvocationContext()
	}
	return nil
}

var _ tool.CallableTool = (*exploreTool)(nil)
