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
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/kadirpekel/hector/internal/pathsafe"
	"github.com/kadirpekel/hector/internal/store"
)

// ConflictError reports an operation rejected because of an existing
// catalog entry (duplicate name) or a protected one (builtin removal).
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return "pipeline: " + e.Reason }

// NotFoundError reports a lookup against an unregistered catalog entry.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("pipeline: runtime %q not found in catalog", e.Name)
}

// Catalog is the name→entry registry of compiled wasm runtimes, backed by a
// `<root>/{builtin,custom}/<name>.wasm` directory layout and, optionally, a
// relational mirror in internal/store for restart durability.
type Catalog struct {
	mu      sync.RWMutex
	root    string
	entries map[string]CatalogEntry
	persist *store.Store
}

// NewCatalog creates a Catalog rooted at root, creating the builtin/custom
// subdirectories if they don't exist. persist may be nil.
func NewCatalog(root string, persist *store.Store) (*Catalog, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("pipeline: resolve catalog root: %w", err)
	}
	root = absRoot
	for _, sub := range []string{"builtin", "custom"} {
		if err := os.MkdirAll(filepath.Join(root, sub), 0o755); err != nil {
			return nil, fmt.Errorf("pipeline: create catalog dir: %w", err)
		}
	}
	c := &Catalog{root: root, entries: make(map[string]CatalogEntry), persist: persist}
	if persist != nil {
		existing, err := persist.ListCatalogEntries(context.Background())
		if err != nil {
			return nil, fmt.Errorf("pipeline: load catalog: %w", err)
		}
		for _, e := range existing {
			c.entries[e.Name] = CatalogEntry{Name: e.Name, Description: e.Description, Path: e.Path, Category: Category(e.Category)}
		}
	}
	return c, nil
}

// ResolvePath returns the absolute .wasm path for a registered runtime name.
func (c *Catalog) ResolvePath(name string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[name]
	if !ok {
		return "", &NotFoundError{Name: name}
	}
	return e.Path, nil
}

// Add registers a new runtime entry. Adding an entry that already exists
// with identical fields is a no-op (idempotent on structure); adding one
// with the same name but different fields is a conflict.
func (c *Catalog) Add(ctx context.Context, entry CatalogEntry) error {
	if err := pathsafe.ValidateName(entry.Name); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[entry.Name]; ok {
		if existing == entry {
			return nil
		}
		return &ConflictError{Reason: fmt.Sprintf("runtime %q already registered", entry.Name)}
	}

	wantPath, err := pathsafe.Join(filepath.Join(c.root, string(entry.Category)), entry.Name+".wasm")
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	entry.Path = wantPath

	if c.persist != nil {
		if err := c.persist.SaveCatalogEntry(ctx, store.CatalogEntryRecord{
			Name: entry.Name, Description: entry.Description, Path: entry.Path, Category: string(entry.Category),
		}); err != nil {
			return fmt.Errorf("pipeline: persist catalog entry: %w", err)
		}
	}
	c.entries[entry.Name] = entry
	return nil
}

// Remove deletes a custom catalog entry and its backing .wasm file.
// Removing a builtin entry is refused.
func (c *Catalog) Remove(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[name]
	if !ok {
		return &NotFoundError{Name: name}
	}
	if e.Category == CategoryBuiltin {
		return &ConflictError{Reason: fmt.Sprintf("cannot remove builtin runtime %q", name)}
	}

	if c.persist != nil {
		if err := c.persist.DeleteCatalogEntry(ctx, name); err != nil {
			return fmt.Errorf("pipeline: delete catalog entry: %w", err)
		}
	}
	if err := os.Remove(e.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("pipeline: remove wasm artifact: %w", err)
	}
	delete(c.entries, name)
	return nil
}

// List returns every registered catalog entry.
func (c *Catalog) List() []CatalogEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]CatalogEntry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}
	return out
}

// Get returns a single catalog entry by name.
func (c *Catalog) Get(name string) (CatalogEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[name]
	if !ok {
		return CatalogEntry{}, &NotFoundError{Name: name}
	}
	return e, nil
}
