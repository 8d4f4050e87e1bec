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

package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"time"
)

// HookEvent names a point in the turn lifecycle at which external hook
// programs may be dispatched.
type HookEvent string

const (
	HookSessionStart      HookEvent = "SessionStart"
	HookPreToolUse        HookEvent = "PreToolUse"
	HookPostToolUse       HookEvent = "PostToolUse"
	HookStop              HookEvent = "Stop"
	HookSessionEnd        HookEvent = "SessionEnd"
	HookSubagentStarted   HookEvent = "SubagentStarted"
	HookSubagentCompleted HookEvent = "SubagentCompleted"
)

// blockingEvents may short-circuit the action they guard when a hook exits
// non-zero. Every other event is informational only.
var blockingEvents = map[HookEvent]bool{
	HookPreToolUse: true,
}

// defaultHookTimeout is the bounded wait for a hook subprocess before it is
// treated as a timeout.
const defaultHookTimeout = 10 * time.Second

// HookSpec declares one external hook program bound to a lifecycle event.
type HookSpec struct {
	Event   HookEvent
	Command string
	Args    []string
	Timeout time.Duration
}

// HookContext is the JSON payload every hook receives on stdin.
type HookContext struct {
	Event     HookEvent      `json:"event"`
	SessionID string         `json:"session_id"`
	ToolName  string         `json:"tool_name,omitempty"`
	ToolArgs  map[string]any `json:"tool_args,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// HookResult reports a single hook's outcome.
type HookResult struct {
	Blocked bool
	Reason  string
	Err     error
}

// HookDispatcher runs the hooks declared for each lifecycle event, in
// declaration order, against an external subprocess per spec.md §4.2: JSON
// context on stdin, exit 0 is allow, non-zero is block with the reason read
// from stdout.
type HookDispatcher struct {
	hooks map[HookEvent][]HookSpec
}

// NewHookDispatcher builds a dispatcher from a flat list of hook
// declarations, grouping them by event.
func NewHookDispatcher(specs []HookSpec) *HookDispatcher {
	d := &HookDispatcher{hooks: make(map[HookEvent][]HookSpec)}
	for _, s := range specs {
		d.hooks[s.Event] = append(d.hooks[s.Event], s)
	}
	return d
}

// Dispatch runs every hook registered for event. For PreToolUse, the first
// hook that blocks wins and dispatch stops; its reason is returned. Every
// other event is informational: a hook that times out or errors is logged
// and ignored, never surfaced to the caller.
func (d *HookDispatcher) Dispatch(ctx context.Context, event HookEvent, hctx HookContext) *HookResult {
	if d == nil {
		return &HookResult{}
	}
	hctx.Event = event

	for _, spec := range d.hooks[event] {
		result := d.run(ctx, spec, hctx)
		if result.Err != nil {
			slog.Warn("hook dispatch failed, treating as allow",
				"event", event, "command", spec.Command, "error", result.Err)
			continue
		}
		if result.Blocked && blockingEvents[event] {
			return result
		}
	}
	return &HookResult{}
}

// run executes a single hook subprocess with a bounded timeout, defaulting
// to allow when the deadline is exceeded (spec.md §4.2's failure semantics).
func (d *HookDispatcher) run(ctx context.Context, spec HookSpec, hctx HookContext) *HookResult {
	timeout := spec.Timeout
	if timeout <= 0 {
		timeout = defaultHookTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	payload, err := json.Marshal(hctx)
	if err != nil {
		return &HookResult{Err: fmt.Errorf("agent: marshal hook context: %w", err)}
	}

	cmd := exec.CommandContext(runCtx, spec.Command, spec.Args...)
	cmd.Stdin = bytes.NewReader(payload)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err = cmd.Run()
	if runCtx.Err() != nil {
		slog.Warn("hook subprocess timed out, defaulting to allow",
			"event", spec.Event, "command", spec.Command, "timeout", timeout)
		return &HookResult{}
	}
	if err == nil {
		return &HookResult{}
	}

	var exitErr *exec.ExitError
	if !asExitError(err, &exitErr) {
		return &HookResult{Err: fmt.Errorf("agent: hook %q: %w", spec.Command, err)}
	}
	reason := stdout.String()
	if reason == "" {
		reason = stderr.String()
	}
	return &HookResult{Blocked: true, Reason: reason}
}

func asExitError(err error, target **exec.ExitError) bool {
	ee, ok := err.(*exec.ExitError)
	if ok {
		*target = ee
	}
	return ok
}
