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
	"path/filepath"
	"testing"

	"github.com/tetratelabs/wazero"
)

// emptyWasmModule is the smallest legal wasm binary: magic + version, no
// sections. wazero accepts it as a module with zero imports and exports.
var emptyWasmModule = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

// fakeToolchain writes a shell script that ignores its build flags and
// copies a pre-baked wasm binary to whatever -o path it was given, standing
// in for tinygo in tests that never invoke the real Go toolchain.
func fakeToolchain(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fake-tinygo.sh")
	script := "#!/bin/sh\nout=\"\"\nwhile [ $# -gt 0 ]; do\n  if [ \"$1\" = \"-o\" ]; then shift; out=\"$1\"; fi\n  shift\ndone\nprintf '\\x00\\x61\\x73\\x6d\\x01\\x00\\x00\\x00' > \"$out\"\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake toolchain: %v", err)
	}
	return path
}

func newTestCompiler(t *testing.T) (*Compiler, wazero.Runtime) {
	t.Helper()
	ctx := context.Background()
	rt, err := NewRuntime(ctx)
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	t.Cleanup(func() { rt.Close(ctx) })

	c, err := NewCompiler(t.TempDir(), fakeToolchain(t), rt)
	if err != nil {
		t.Fatalf("NewCompiler: %v", err)
	}
	return c, rt
}

func TestCompiler_CompileWritesAndLoadsDiskCache(t *testing.T) {
	c, _ := newTestCompiler(t)
	ctx := context.Background()

	res, err := c.Compile(ctx, "package main\nfunc main() {}\n")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if res.Cached {
		t.Fatal("first compile should not be served from cache")
	}
	if _, err := os.Stat(res.Path); err != nil {
		t.Fatalf("expected disk cache artifact at %s: %v", res.Path, err)
	}

	c.ClearMemoryCache()
	res2, err := c.Compile(ctx, "package main\nfunc main() {}\n")
	if err != nil {
		t.Fatalf("Compile (cached): %v", err)
	}
	if !res2.Cached {
		t.Fatal("second compile should be served from the disk cache")
	}
	if res2.Hash != res.Hash {
		t.Fatalf("hash mismatch: %s vs %s", res.Hash, res2.Hash)
	}
}

func TestCompiler_CompileIsContentAddressed(t *testing.T) {
	c, _ := newTestCompiler(t)
	ctx := context.Background()

	a, err := c.Compile(ctx, "source A")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	b, err := c.Compile(ctx, "source B")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if a.Hash == b.Hash {
		t.Fatal("different sources must hash to different cache entries")
	}
	if a.Path == b.Path {
		t.Fatal("different sources must not share a cache path")
	}
}

func TestCompiler_PreSeededDiskCacheServedWithoutToolchain(t *testing.T) {
	ctx := context.Background()
	rt, err := NewRuntime(ctx)
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	defer rt.Close(ctx)

	cacheDir := t.TempDir()
	hash := sourceHash("pre-seeded source")
	if err := os.WriteFile(filepath.Join(cacheDir, hash+".wasm"), emptyWasmModule, 0o644); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	c, err := NewCompiler(cacheDir, "/nonexistent/toolchain-must-not-be-invoked", rt)
	if err != nil {
		t.Fatalf("NewCompiler: %v", err)
	}

	res, err := c.Compile(ctx, "pre-seeded source")
	if err != nil {
		t.Fatalf("Compile should use the disk cache without invoking the toolchain: %v", err)
	}
	if !res.Cached {
		t.Fatal("expected cache hit")
	}
}

func TestCompiler_CompilationFailure(t *testing.T) {
	ctx := context.Background()
	rt, err := NewRuntime(ctx)
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	defer rt.Close(ctx)

	c, err := NewCompiler(t.TempDir(), "/nonexistent/toolchain", rt)
	if err != nil {
		t.Fatalf("NewCompiler: %v", err)
	}

	if _, err := c.Compile(ctx, "anything"); err == nil {
		t.Fatal("expected compilation failure for a nonexistent toolchain")
	}
}
