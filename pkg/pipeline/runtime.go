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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

const (
	maxStdout = 1 << 20 // 1 MiB
	maxStderr = 256 << 10
)

// TimeoutError reports a sandboxed execution that was terminated by its
// wall-clock watchdog. wazero has no native fuel-metering API, so the
// ≈33M fuel units/second budget from spec.md §4.4 is approximated as a
// wall-clock timeout of max(1, timeoutSecs) seconds.
type TimeoutError struct {
	TimeoutSecs int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("pipeline: execution exceeded its %ds budget", e.TimeoutSecs)
}

// ScriptError reports a non-zero exit from a completed run. A wasm trap is
// not reported as a ScriptError; Execute returns it as a wrapped error.
type ScriptError struct {
	ExitCode uint32
	Stderr   string
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("pipeline: task exited %d: %s", e.ExitCode, e.Stderr)
}

// NewRuntime constructs the single shared wazero.Runtime for the process
// and instantiates the WASI snapshot-preview1 host module every compiled
// task links against.
func NewRuntime(ctx context.Context) (wazero.Runtime, error) {
	rt := wazero.NewRuntime(ctx)
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("pipeline: instantiate wasi: %w", err)
	}
	return rt, nil
}

// Execute runs a compiled module once, writing input to its stdin as a
// RuntimeInput JSON object and parsing a single RuntimeOutput JSON object
// from stdout. Each call gets a fresh wazero.Module (per spec.md §9,
// resource-isolated by construction) and preopens the task's declared
// filesystem capabilities.
func Execute(ctx context.Context, rt wazero.Runtime, mod wazero.CompiledModule, input RuntimeInput, caps Capabilities, timeoutSecs int) (*RuntimeOutput, error) {
	if timeoutSecs <= 0 {
		timeoutSecs = 1
	}

	inBytes, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("pipeline: marshal runtime input: %w", err)
	}

	var stdout, stderr bytes.Buffer
	cfg := wazero.NewModuleConfig().
		WithStdin(bytes.NewReader(inBytes)).
		WithStdout(&boundedWriter{buf: &stdout, limit: maxStdout}).
		WithStderr(&boundedWriter{buf: &stderr, limit: maxStderr})

	if len(caps.Filesystem) > 0 {
		fsConfig := wazero.NewFSConfig()
		for _, path := range caps.Filesystem {
			fsConfig = fsConfig.WithDirMount(path, path)
		}
		cfg = cfg.WithFSConfig(fsConfig)
	}

	runCtx, cancel := context.WithTimeout(ctx, time.Duration(timeoutSecs)*time.Second)
	defer cancel()

	_, err = rt.InstantiateModule(runCtx, mod, cfg)
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return nil, &TimeoutError{TimeoutSecs: timeoutSecs}
		}
		var exitErr interface{ ExitCode() uint32 }
		if errors.As(err, &exitErr) {
			if exitErr.ExitCode() == 0 {
				// Fallthrough: a clean exit via proc_exit(0) is success even
				// though InstantiateModule reports it as an error.
			} else {
				return nil, &ScriptError{ExitCode: exitErr.ExitCode(), Stderr: stderr.String()}
			}
		} else {
			return nil, fmt.Errorf("pipeline: execute: %w", err)
		}
	}

	var out RuntimeOutput
	dec := json.NewDecoder(bytes.NewReader(stdout.Bytes()))
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("pipeline: invalid runtime output: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("pipeline: invalid runtime output: multiple top-level JSON values on stdout")
	}
	return &out, nil
}

// boundedWriter caps how much a sandboxed task can write to a stream,
// discarding bytes beyond limit rather than growing without bound.
type boundedWriter struct {
	buf   *bytes.Buffer
	limit int
}

func (w *boundedWriter) Write(p []byte) (int, error) {
	remaining := w.limit - w.buf.Len()
	if remaining <= 0 {
		return len(p), nil
	}
	if len(p) > remaining {
		w.buf.Write(p[:remaining])
		return len(p), nil
	}
	w.buf.Write(p)
	return len(p), nil
}
