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

package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/tetratelabs/wazero"
)

// TaskResult is one task's outcome within a WorkflowResult.
type TaskResult struct {
	TaskID   string
	Output   *RuntimeOutput
	Err      error
	Attempts int
	Skipped  bool
}

// WorkflowResult is the aggregate outcome of running a workflow's DAG.
type WorkflowResult struct {
	Tasks    map[string]*TaskResult
	Err      error // set if the workflow as a whole failed (non-ContinueOnError task errored, or timed out)
	TimedOut bool
}

// Executor runs a WorkflowDefinition's task DAG: tasks are ordered with
// Kahn's algorithm, independent tasks within the same "layer" run
// concurrently up to MaxConcurrent, each task retries per its RetryPolicy,
// and a task with ContinueOnError set lets downstream tasks proceed even
// after it fails.
type Executor struct {
	Catalog       *Catalog
	Runtime       wazero.Runtime
	MaxConcurrent int

	moduleMu sync.Mutex
	modules  map[string]wazero.CompiledModule // catalog path -> compiled module
}

// NewExecutor constructs an Executor. maxConcurrent <= 0 means unbounded.
func NewExecutor(catalog *Catalog, rt wazero.Runtime, maxConcurrent int) *Executor {
	return &Executor{Catalog: catalog, Runtime: rt, MaxConcurrent: maxConcurrent, modules: make(map[string]wazero.CompiledModule)}
}

// loadModule compiles the wasm artifact at a catalog path once and reuses
// the resulting wazero.CompiledModule for every subsequent task run against
// that runtime, per spec.md §9's runtime-reuse guidance.
func (e *Executor) loadModule(ctx context.Context, path string) (wazero.CompiledModule, error) {
	e.moduleMu.Lock()
	if mod, ok := e.modules[path]; ok {
		e.moduleMu.Unlock()
		return mod, nil
	}
	e.moduleMu.Unlock()

	bin, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pipeline: read runtime artifact %q: %w", path, err)
	}
	mod, err := e.Runtime.CompileModule(ctx, bin)
	if err != nil {
		return nil, fmt.Errorf("pipeline: compile runtime artifact %q: %w", path, err)
	}

	e.moduleMu.Lock()
	e.modules[path] = mod
	e.moduleMu.Unlock()
	return mod, nil
}

// Run executes every task in w against runCtx, which carries the
// workflow-level wall-clock timeout from w.Runtime.TimeoutSecs, if any.
// Tasks become eligible to run once all of their Dependencies have
// completed (successfully, or with ContinueOnError set and failed).
func (e *Executor) Run(ctx context.Context, w *WorkflowDefinition, input json.RawMessage) (*WorkflowResult, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if w.Runtime != nil && w.Runtime.TimeoutSecs > 0 {
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(w.Runtime.TimeoutSecs)*time.Second)
		defer cancel()
	}

	result := &WorkflowResult{Tasks: make(map[string]*TaskResult, len(w.Tasks))}

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		done = make(map[string]bool, len(w.Tasks))
		sem  chan struct{}
	)
	if e.MaxConcurrent > 0 {
		sem = make(chan struct{}, e.MaxConcurrent)
	}

	continueOnError := make(map[string]bool, len(w.Tasks))
	for _, t := range w.Tasks {
		continueOnError[t.ID] = t.ContinueOnError
	}

	ready := func() []TaskDefinition {
		mu.Lock()
		defer mu.Unlock()
		var out []TaskDefinition
		for _, t := range w.Tasks {
			if done[t.ID] {
				continue
			}
			if result.Tasks[t.ID] != nil {
				continue // already dispatched
			}
			blocked := false
			for _, dep := range t.Dependencies {
				if !done[dep] || (result.Tasks[dep].Err != nil && !continueOnError[dep]) {
					blocked = true
					break
				}
			}
			if !blocked {
				out = append(out, t)
			}
		}
		return out
	}

	remaining := len(w.Tasks)
	for remaining > 0 {
		batch := ready()
		if len(batch) == 0 {
			break // nothing runnable; a dependency upstream failed without ContinueOnError
		}
		for _, t := range batch {
			mu.Lock()
			result.Tasks[t.ID] = &TaskResult{} // reserve, prevents re-dispatch
			mu.Unlock()

			wg.Add(1)
			go func(t TaskDefinition) {
				defer wg.Done()
				if sem != nil {
					sem <- struct{}{}
					defer func() { <-sem }()
				}
				taskCtx := taskContext(t, result, input)
				tr := e.runTask(runCtx, t, taskCtx)
				mu.Lock()
				result.Tasks[t.ID] = tr
				done[t.ID] = true
				mu.Unlock()
			}(t)
		}
		wg.Wait()

		mu.Lock()
		remaining = 0
		for _, t := range w.Tasks {
			if !done[t.ID] {
				remaining++
			}
		}
		mu.Unlock()

		if runCtx.Err() != nil {
			result.TimedOut = true
			break
		}
	}

	for _, t := range w.Tasks {
		tr := result.Tasks[t.ID]
		if tr == nil {
			result.Tasks[t.ID] = &TaskResult{TaskID: t.ID, Skipped: true}
			continue
		}
		if tr.Err != nil && !t.ContinueOnError && result.Err == nil {
			result.Err = fmt.Errorf("pipeline: task %q failed: %w", t.ID, tr.Err)
		}
	}
	if runCtx.Err() != nil && result.Err == nil {
		result.Err = fmt.Errorf("pipeline: workflow %q: %w", w.Name, runCtx.Err())
	}
	return result, nil
}

// taskContext builds a task's entry context: the merged output of its
// dependencies, keyed by their task id (spec.md §4.4). A task with no
// dependencies receives the workflow's overall input instead.
func taskContext(t TaskDefinition, result *WorkflowResult, workflowInput json.RawMessage) json.RawMessage {
	if len(t.Dependencies) == 0 {
		return workflowInput
	}
	merged := make(map[string]json.RawMessage, len(t.Dependencies))
	for _, dep := range t.Dependencies {
		if tr := result.Tasks[dep]; tr != nil && tr.Output != nil {
			merged[dep] = tr.Output.Output
		}
	}
	b, err := json.Marshal(merged)
	if err != nil {
		return workflowInput
	}
	return b
}

// runTask loads (if needed) and executes a single task's compiled runtime,
// retrying per its RetryPolicy with retry_delay_ms between attempts, each
// attempt counted independently against the task's own timeout_secs.
func (e *Executor) runTask(ctx context.Context, t TaskDefinition, taskCtx json.RawMessage) *TaskResult {
	tr := &TaskResult{TaskID: t.ID}

	path, err := e.Catalog.ResolvePath(t.Runtime)
	if err != nil {
		tr.Err = err
		return tr
	}

	cfgBytes, err := json.Marshal(t.Config)
	if err != nil {
		tr.Err = fmt.Errorf("pipeline: marshal task config: %w", err)
		return tr
	}
	in := RuntimeInput{Config: cfgBytes, Context: taskCtx}

	attempts := t.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		tr.Attempts = attempt + 1
		if attempt > 0 && t.RetryDelayMS > 0 {
			select {
			case <-time.After(time.Duration(t.RetryDelayMS) * time.Millisecond):
			case <-ctx.Done():
				tr.Err = ctx.Err()
				return tr
			}
		}

		mod, err := e.loadModule(ctx, path)
		if err != nil {
			lastErr = err
			continue
		}
		out, err := Execute(ctx, e.Runtime, mod, in, t.Capabilities, t.TimeoutSecs)
		if err != nil {
			lastErr = err
			continue
		}
		if out.Status != "" && out.Status != "ok" && out.Status != "success" {
			lastErr = fmt.Errorf("pipeline: task %q reported status %q: %s", t.ID, out.Status, out.Error)
			continue
		}
		tr.Output = out
		return tr
	}

	tr.Err = lastErr
	return tr
}
