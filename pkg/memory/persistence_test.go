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

package memory

import (
	"context"
	"testing"

	"github.com/kadirpekel/hector/internal/store"
	"github.com/kadirpekel/hector/pkg/config"
)

func newTestPersistence(t *testing.T) *store.Store {
	t.Helper()
	cfg := &config.DatabaseConfig{Driver: "sqlite", Database: ":memory:"}
	s, err := store.Open(context.Background(), config.NewDBPool(), cfg)
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	return s
}

func TestStore_WithPersistence_DurablyWritesThrough(t *testing.T) {
	s := newTestStore(t)
	backend := newTestPersistence(t)
	s.WithPersistence(backend)
	ctx := context.Background()

	stored, err := s.Store(ctx, &Memory{
		Type:      ContentFact,
		Content:   "Alice works at Acme Corp",
		Subject:   "Alice",
		Predicate: "works_at",
		Object:    "Acme Corp",
	})
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	rec, err := backend.GetMemory(ctx, stored.ID)
	if err != nil {
		t.Fatalf("GetMemory() error = %v", err)
	}
	if rec.Content != stored.Content {
		t.Errorf("persisted content = %q, want %q", rec.Content, stored.Content)
	}

	node, err := backend.GetNode(ctx, "alice")
	if err != nil {
		t.Fatalf("GetNode() error = %v", err)
	}
	if node.ID != "alice" {
		t.Errorf("unexpected node: %+v", node)
	}

	neighbors, err := backend.Neighbors(ctx, "alice")
	if err != nil {
		t.Fatalf("Neighbors() error = %v", err)
	}
	if len(neighbors) != 1 || neighbors[0] != "acme_corp" {
		t.Errorf("unexpected persisted neighbors: %v", neighbors)
	}
}
