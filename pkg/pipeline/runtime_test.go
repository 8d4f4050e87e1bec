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
	"testing"
)

func TestExecute_EmptyModuleProducesNoOutput(t *testing.T) {
	ctx := context.Background()
	rt, err := NewRuntime(ctx)
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	defer rt.Close(ctx)

	mod, err := rt.CompileModule(ctx, emptyWasmModule)
	if err != nil {
		t.Fatalf("CompileModule: %v", err)
	}

	_, err = Execute(ctx, rt, mod, RuntimeInput{}, Capabilities{}, 5)
	if err == nil {
		t.Fatal("expected an error decoding empty stdout as RuntimeOutput")
	}
}

func TestExecute_DefaultsTimeoutWhenUnset(t *testing.T) {
	ctx := context.Background()
	rt, err := NewRuntime(ctx)
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	defer rt.Close(ctx)

	mod, err := rt.CompileModule(ctx, emptyWasmModule)
	if err != nil {
		t.Fatalf("CompileModule: %v", err)
	}

	// timeoutSecs <= 0 must not panic or block forever; it falls back to 1s.
	_, _ = Execute(ctx, rt, mod, RuntimeInput{}, Capabilities{}, 0)
}

func TestExecute_CancelledParentContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rt, err := NewRuntime(context.Background())
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	defer rt.Close(context.Background())

	mod, err := rt.CompileModule(context.Background(), emptyWasmModule)
	if err != nil {
		t.Fatalf("CompileModule: %v", err)
	}

	if _, err := Execute(ctx, rt, mod, RuntimeInput{}, Capabilities{}, 5); err == nil {
		t.Fatal("expected an error when the parent context is already cancelled")
	}
}

func TestTimeoutError_Message(t *testing.T) {
	err := &TimeoutError{TimeoutSecs: 7}
	if got := err.Error(); got == "" {
		t.Fatal("expected a non-empty error message")
	}
}

func TestScriptError_Message(t *testing.T) {
	err := &ScriptError{ExitCode: 2, Stderr: "boom"}
	if got := err.Error(); got == "" {
		t.Fatal("expected a non-empty error message")
	}
}
