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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"github.com/tetratelabs/wazero"
)

// CompilationFailedError wraps a toolchain failure with its stderr output.
type CompilationFailedError struct {
	Stderr string
}

func (e *CompilationFailedError) Error() string {
	return fmt.Sprintf("pipeline: compilation failed: %s", e.Stderr)
}

// CompileResult reports whether a compiled module was served from cache.
type CompileResult struct {
	Hash   string
	Path   string
	Cached bool
	Module wazero.CompiledModule
}

// Compiler turns wasm task source text into a compiled, cached module. The
// disk cache (cacheDir/<hash>.wasm) is authoritative; the in-memory module
// cache is always a subset of it, per spec.md §3's module-cache invariant.
type Compiler struct {
	cacheDir string
	toolchain string // e.g. "tinygo", invoked as "<toolchain> build -target=wasi -o <out> <src>"
	runtime  wazero.Runtime

	mu     sync.Mutex
	memory map[string]wazero.CompiledModule
}

// NewCompiler creates a Compiler backed by a shared wazero.Runtime (engine
// construction is expensive; one instance is reused across the process per
// spec.md §9 "wasm runtime reuse").
func NewCompiler(cacheDir, toolchain string, rt wazero.Runtime) (*Compiler, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("pipeline: create cache dir: %w", err)
	}
	return &Compiler{
		cacheDir:  cacheDir,
		toolchain: toolchain,
		runtime:   rt,
		memory:    make(map[string]wazero.CompiledModule),
	}, nil
}

func sourceHash(src string) string {
	sum := sha256.Sum256([]byte(src))
	return hex.EncodeToString(sum[:])
}

// Compile computes the SHA-256 of src, serves a cached .wasm binary from
// disk (loading it into the in-memory module cache) if present, and
// otherwise invokes the native toolchain targeting wasm32-wasip1.
func (c *Compiler) Compile(ctx context.Context, src string) (*CompileResult, error) {
	hash := sourceHash(src)
	path := filepath.Join(c.cacheDir, hash+".wasm")

	c.mu.Lock()
	if mod, ok := c.memory[hash]; ok {
		c.mu.Unlock()
		return &CompileResult{Hash: hash, Path: path, Cached: true, Module: mod}, nil
	}
	c.mu.Unlock()

	if bin, err := os.ReadFile(path); err == nil {
		mod, err := c.runtime.CompileModule(ctx, bin)
		if err != nil {
			return nil, fmt.Errorf("pipeline: load cached module: %w", err)
		}
		c.mu.Lock()
		c.memory[hash] = mod
		c.mu.Unlock()
		return &CompileResult{Hash: hash, Path: path, Cached: true, Module: mod}, nil
	}

	bin, err := c.compileSource(ctx, src)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, bin, 0o644); err != nil {
		return nil, fmt.Errorf("pipeline: write compiled module: %w", err)
	}

	mod, err := c.runtime.CompileModule(ctx, bin)
	if err != nil {
		return nil, fmt.Errorf("pipeline: compile module: %w", err)
	}
	c.mu.Lock()
	c.memory[hash] = mod
	c.mu.Unlock()
	return &CompileResult{Hash: hash, Path: path, Cached: false, Module: mod}, nil
}

// compileSource shells out to the configured toolchain (e.g. tinygo) to
// produce a wasm32-wasip1 binary from source text, which it writes to a
// temporary .go file and passes to the toolchain by path.
func (c *Compiler) compileSource(ctx context.Context, src string) ([]byte, error) {
	tmp, err := os.CreateTemp("", "pipeline-task-*.go")
	if err != nil {
		return nil, fmt.Errorf("pipeline: write source temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(src); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("pipeline: write source temp file: %w", err)
	}
	tmp.Close()

	out := tmp.Name() + ".wasm"
	defer os.Remove(out)

	toolchain := c.toolchain
	if toolchain == "" {
		toolchain = "tinygo"
	}
	cmd := exec.CommandContext(ctx, toolchain, "build", "-target=wasi", "-o", out, tmp.Name())
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, &CompilationFailedError{Stderr: stderr.String()}
	}

	bin, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("pipeline: read compiled output: %w", err)
	}
	return bin, nil
}

// ClearMemoryCache drops the in-memory module cache without touching the
// disk-backed cache directory, matching spec.md §3's "disk is authoritative"
// invariant.
func (c *Compiler) ClearMemoryCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.memory = make(map[string]wazero.CompiledModule)
}

// Close releases the shared wazero runtime.
func (c *Compiler) Close(ctx context.Context) error {
	return c.runtime.Close(ctx)
}
