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

package store

import (
	"context"
	"testing"
	"time"

	"github.com/kadirpekel/hector/pkg/config"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := &config.DatabaseConfig{Driver: "sqlite", Database: ":memory:"}
	s, err := Open(context.Background(), config.NewDBPool(), cfg)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_AppliesMigrationsIdempotently(t *testing.T) {
	cfg := &config.DatabaseConfig{Driver: "sqlite", Database: ":memory:"}
	pool := config.NewDBPool()
	defer pool.Close()

	s, err := Open(context.Background(), pool, cfg)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	// Re-opening against the same pooled connection must not fail or
	// re-apply migrations.
	if _, err := Open(context.Background(), pool, cfg); err != nil {
		t.Fatalf("second Open() error = %v", err)
	}
	_ = s
}

func TestStore_SaveAndGetMemory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m := MemoryRecord{
		ID:              "mem-1",
		ContentType:     "fact",
		Content:         "Alice works at Acme Corp",
		Subject:         "Alice",
		Predicate:       "works_at",
		Object:          "Acme Corp",
		ConfidenceScore: 0.9,
		CreatedAt:       time.Now(),
	}
	if err := s.SaveMemory(ctx, m); err != nil {
		t.Fatalf("SaveMemory() error = %v", err)
	}

	got, err := s.GetMemory(ctx, "mem-1")
	if err != nil {
		t.Fatalf("GetMemory() error = %v", err)
	}
	if got.Content != m.Content || got.Subject != m.Subject {
		t.Errorf("unexpected record: %+v", got)
	}

	// Upsert replaces, it does not duplicate.
	m.Content = "Alice now works at Beta Inc"
	if err := s.SaveMemory(ctx, m); err != nil {
		t.Fatalf("SaveMemory() (update) error = %v", err)
	}
	list, err := s.ListMemories(ctx, "", 0, 0)
	if err != nil {
		t.Fatalf("ListMemories() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 memory after upsert, got %d", len(list))
	}
	if list[0].Content != "Alice now works at Beta Inc" {
		t.Errorf("expected updated content, got %q", list[0].Content)
	}
}

func TestStore_ListMemoriesOrderingAndFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	ids := []string{"a", "b", "c"}
	for i, ct := range []string{"note", "fact", "note"} {
		m := MemoryRecord{ID: ids[i], ContentType: ct, Content: "c", CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := s.SaveMemory(ctx, m); err != nil {
			t.Fatalf("SaveMemory() error = %v", err)
		}
	}

	notes, err := s.ListMemories(ctx, "note", 0, 0)
	if err != nil {
		t.Fatalf("ListMemories() error = %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(notes))
	}
	// Newest first: "c" was created two minutes after "a".
	if notes[0].ID != "c" || notes[1].ID != "a" {
		t.Errorf("notes order = [%s %s], want [c a]", notes[0].ID, notes[1].ID)
	}
}

func TestStore_SearchMemoriesSubstring(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveMemory(ctx, MemoryRecord{ID: "a", ContentType: "note", Content: "Alice works at Acme Corp", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("SaveMemory() error = %v", err)
	}
	if err := s.SaveMemory(ctx, MemoryRecord{ID: "b", ContentType: "note", Content: "Bob likes pizza", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("SaveMemory() error = %v", err)
	}

	results, err := s.SearchMemories(ctx, "Acme", 0)
	if err != nil {
		t.Fatalf("SearchMemories() error = %v", err)
	}
	if len(results) != 1 || results[0].ID != "a" {
		t.Errorf("unexpected search results: %+v", results)
	}
}

func TestStore_EmbeddingRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveMemory(ctx, MemoryRecord{ID: "a", ContentType: "note", Content: "c", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("SaveMemory() error = %v", err)
	}
	vec := []float32{0.1, 0.2, 0.3, -0.4}
	if err := s.SaveEmbedding(ctx, "a", "test-model", vec); err != nil {
		t.Fatalf("SaveEmbedding() error = %v", err)
	}
	got, model, err := s.GetEmbedding(ctx, "a")
	if err != nil {
		t.Fatalf("GetEmbedding() error = %v", err)
	}
	if model != "test-model" || len(got) != len(vec) {
		t.Fatalf("unexpected embedding: model=%q vec=%v", model, got)
	}
	for i := range vec {
		if got[i] != vec[i] {
			t.Errorf("vector[%d] = %v, want %v", i, got[i], vec[i])
		}
	}
}

func TestStore_GraphNodesAndEdges(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveNode(ctx, NodeRecord{ID: "alice", EntityType: "person"}); err != nil {
		t.Fatalf("SaveNode() error = %v", err)
	}
	if err := s.SaveNode(ctx, NodeRecord{ID: "acme_corp", EntityType: "org"}); err != nil {
		t.Fatalf("SaveNode() error = %v", err)
	}
	if err := s.SaveEdge(ctx, EdgeRecord{FromID: "alice", ToID: "acme_corp", RelationshipType: "related_to", Label: "works_at"}); err != nil {
		t.Fatalf("SaveEdge() error = %v", err)
	}
	// Idempotent re-insert.
	if err := s.SaveEdge(ctx, EdgeRecord{FromID: "alice", ToID: "acme_corp", RelationshipType: "related_to", Label: "works_at"}); err != nil {
		t.Fatalf("second SaveEdge() error = %v", err)
	}

	neighbors, err := s.Neighbors(ctx, "alice")
	if err != nil {
		t.Fatalf("Neighbors() error = %v", err)
	}
	if len(neighbors) != 1 || neighbors[0] != "acme_corp" {
		t.Errorf("unexpected neighbors: %v", neighbors)
	}
}

func TestStore_CatalogEntriesAndWorkflows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveCatalogEntry(ctx, CatalogEntryRecord{Name: "passthrough", Path: "builtin/passthrough.wasm", Category: "builtin"}); err != nil {
		t.Fatalf("SaveCatalogEntry() error = %v", err)
	}
	entries, err := s.ListCatalogEntries(ctx)
	if err != nil {
		t.Fatalf("ListCatalogEntries() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "passthrough" {
		t.Errorf("unexpected catalog entries: %+v", entries)
	}
	if err := s.DeleteCatalogEntry(ctx, "passthrough"); err != nil {
		t.Fatalf("DeleteCatalogEntry() error = %v", err)
	}
	if _, err := s.GetCatalogEntry(ctx, "passthrough"); err == nil {
		t.Error("expected error getting deleted catalog entry")
	}

	if err := s.SaveWorkflowDefinition(ctx, "daily-report", "[workflow]\nname=\"daily-report\"\n"); err != nil {
		t.Fatalf("SaveWorkflowDefinition() error = %v", err)
	}
	toml, err := s.GetWorkflowDefinition(ctx, "daily-report")
	if err != nil {
		t.Fatalf("GetWorkflowDefinition() error = %v", err)
	}
	if toml == "" {
		t.Error("expected non-empty TOML round trip")
	}
}
