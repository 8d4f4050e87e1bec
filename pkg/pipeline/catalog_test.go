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
)

func TestCatalog_AddIsIdempotentOnIdenticalEntry(t *testing.T) {
	c, err := NewCatalog(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	ctx := context.Background()
	entry := CatalogEntry{Name: "summarize", Description: "summarizes text", Category: CategoryCustom}

	if err := c.Add(ctx, entry); err != nil {
		t.Fatalf("Add: %v", err)
	}
	resolved, err := c.Get("summarize")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if err := c.Add(ctx, resolved); err != nil {
		t.Fatalf("re-Add of an identical entry should be a no-op, got: %v", err)
	}
}

func TestCatalog_AddConflictsOnDifferingEntry(t *testing.T) {
	c, err := NewCatalog(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	ctx := context.Background()

	if err := c.Add(ctx, CatalogEntry{Name: "summarize", Category: CategoryCustom}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	err = c.Add(ctx, CatalogEntry{Name: "summarize", Description: "different", Category: CategoryCustom})
	if _, ok := err.(*ConflictError); !ok {
		t.Fatalf("expected a ConflictError, got %v", err)
	}
}

func TestCatalog_RejectsUnsafeNames(t *testing.T) {
	c, err := NewCatalog(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	if err := c.Add(context.Background(), CatalogEntry{Name: "../escape", Category: CategoryCustom}); err == nil {
		t.Fatal("expected an error for a path-traversal runtime name")
	}
}

func TestCatalog_RemoveRefusesBuiltin(t *testing.T) {
	root := t.TempDir()
	c, err := NewCatalog(root, nil)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	ctx := context.Background()
	if err := c.Add(ctx, CatalogEntry{Name: "core", Category: CategoryBuiltin}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := c.Remove(ctx, "core"); err == nil {
		t.Fatal("expected removing a builtin runtime to be refused")
	}
}

func TestCatalog_RemoveDeletesCustomEntryAndArtifact(t *testing.T) {
	root := t.TempDir()
	c, err := NewCatalog(root, nil)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	ctx := context.Background()
	if err := c.Add(ctx, CatalogEntry{Name: "scratch", Category: CategoryCustom}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	path, err := c.ResolvePath("scratch")
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	if err := os.WriteFile(path, emptyWasmModule, 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}

	if err := c.Remove(ctx, "scratch"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := c.Get("scratch"); err == nil {
		t.Fatal("expected scratch to be gone from the catalog")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("expected the wasm artifact to be deleted")
	}
}

func TestCatalog_ResolvePathUnknownRuntime(t *testing.T) {
	c, err := NewCatalog(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	if _, err := c.ResolvePath("ghost"); err == nil {
		t.Fatal("expected a NotFoundError for an unregistered runtime")
	}
}
