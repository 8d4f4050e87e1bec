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
)

func TestNewStore(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "missing db",
			cfg:     Config{Embedder: newFakeEmbedder(4)},
			wantErr: true,
		},
		{
			name:    "missing embedder",
			cfg:     Config{DB: newFakeDB()},
			wantErr: true,
		},
		{
			name:    "valid config defaults collection",
			cfg:     Config{DB: newFakeDB(), Embedder: newFakeEmbedder(4)},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewStore(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewStore() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && s.collection != "memories" {
				t.Errorf("expected default collection %q, got %q", "memories", s.collection)
			}
		})
	}
}

func TestStore_StoreAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m := &Memory{Type: ContentNote, Content: "Alice works at Acme Corp"}
	stored, err := s.Store(ctx, m)
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if stored.ID == "" {
		t.Error("expected Store to assign an ID")
	}
	if stored.Confidence != MaxConfidence {
		t.Errorf("expected default confidence %v, got %v", MaxConfidence, stored.Confidence)
	}

	got, err := s.Get(stored.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Content != m.Content {
		t.Errorf("Get() content = %q, want %q", got.Content, m.Content)
	}
}

func TestStore_StoreRejectsEmptyContent(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Store(context.Background(), &Memory{}); err == nil {
		t.Error("expected error storing memory with empty content")
	}
}

func TestStore_GetUnknownIDFails(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Get("does-not-exist"); err == nil {
		t.Error("expected NotFoundError for unknown ID")
	}
}

func TestStore_Delete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	stored, err := s.Store(ctx, &Memory{Type: ContentNote, Content: "Bob likes pizza"})
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	if err := s.Delete(ctx, stored.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(stored.ID); err == nil {
		t.Error("expected Get to fail after Delete")
	}
	if err := s.Delete(ctx, stored.ID); err == nil {
		t.Error("expected second Delete to fail with NotFoundError")
	}
}

func TestStore_FactTripleUpdatesGraph(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Store(ctx, &Memory{
		Type:      ContentFact,
		Content:   "Alice works at Acme Corp",
		Subject:   "Alice",
		Predicate: "works_at",
		Object:    "Acme Corp",
	})
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	neighbors := s.graph.Neighbors("Alice")
	if len(neighbors) != 1 || neighbors[0] != "acme_corp" {
		t.Errorf("expected Alice to be linked to acme_corp, got %v", neighbors)
	}
}
