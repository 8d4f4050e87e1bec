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
	"os"
	"testing"

	"github.com/tetratelabs/wazero"
)

// newTestExecutor registers a single builtin runtime, "noop", backed by the
// empty wasm module: it always produces empty stdout, so every task run
// against it fails decoding a RuntimeOutput. That failure is exactly what
// lets these tests exercise ContinueOnError and dependency-blocking without
// needing a real tinygo toolchain or a wasm program that emits real output.
func newTestExecutor(t *testing.T) (*Executor, wazero.Runtime) {
	t.Helper()
	ctx := context.Background()

	rt, err := NewRuntime(ctx)
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	t.Cleanup(func() { rt.Close(ctx) })

	catalog, err := NewCatalog(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	if err := catalog.Add(ctx, CatalogEntry{Name: "noop", Category: CategoryBuiltin}); err != nil {
		t.Fatalf("catalog.Add: %v", err)
	}
	path, err := catalog.ResolvePath("noop")
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	if err := os.WriteFile(path, emptyWasmModule, 0o644); err != nil {
		t.Fatalf("write noop artifact: %v", err)
	}

	return NewExecutor(catalog, rt, 0), rt
}

func TestExecutor_ContinueOnErrorAllowsDownstreamTask(t *testing.T) {
	ex, _ := newTestExecutor(t)
	w := &WorkflowDefinition{
		Name: "wf",
		Tasks: []TaskDefinition{
			{ID: "a", Runtime: "noop", TimeoutSecs: 5, ContinueOnError: true},
			{ID: "b", Runtime: "noop", TimeoutSecs: 5, Dependencies: []string{"a"}, ContinueOnError: true},
		},
	}

	result, err := ex.Run(context.Background(), w, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Tasks["a"].Skipped {
		t.Fatal("task a should have run")
	}
	if result.Tasks["b"] == nil || result.Tasks["b"].Skipped {
		t.Fatal("task b should have run despite task a's failure, due to ContinueOnError")
	}
}

func TestExecutor_FailureWithoutContinueOnErrorSkipsDownstream(t *testing.T) {
	ex, _ := newTestExecutor(t)
	w := &WorkflowDefinition{
		Name: "wf",
		Tasks: []TaskDefinition{
			{ID: "a", Runtime: "noop", TimeoutSecs: 5},
			{ID: "b", Runtime: "noop", TimeoutSecs: 5, Dependencies: []string{"a"}},
		},
	}

	result, err := ex.Run(context.Background(), w, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Err == nil {
		t.Fatal("expected the workflow result to report task a's failure")
	}
	if !result.Tasks["b"].Skipped {
		t.Fatal("task b must be skipped because task a failed without ContinueOnError")
	}
}

func TestExecutor_RetriesUpToRetryAttempts(t *testing.T) {
	ex, _ := newTestExecutor(t)
	w := &WorkflowDefinition{
		Name: "wf",
		Tasks: []TaskDefinition{
			{ID: "a", Runtime: "noop", TimeoutSecs: 5, RetryAttempts: 3, ContinueOnError: true},
		},
	}

	result, err := ex.Run(context.Background(), w, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Tasks["a"].Attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", result.Tasks["a"].Attempts)
	}
}

func TestExecutor_UnknownRuntimeFails(t *testing.T) {
	ex, _ := newTestExecutor(t)
	w := &WorkflowDefinition{
		Name:  "wf",
		Tasks: []TaskDefinition{{ID: "a", Runtime: "does-not-exist", TimeoutSecs: 5}},
	}

	result, err := ex.Run(context.Background(), w, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Err == nil {
		t.Fatal("expected a failure for an unregistered runtime")
	}
}

func TestExecutor_RejectsInvalidWorkflow(t *testing.T) {
	ex, _ := newTestExecutor(t)
	w := &WorkflowDefinition{Name: "wf"} // no tasks
	if _, err := ex.Run(context.Background(), w, nil); err == nil {
		t.Fatal("expected Validate to reject a workflow with no tasks")
	}
}
