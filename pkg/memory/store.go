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
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kadirpekel/hector/pkg/databases"
	"github.com/kadirpekel/hector/pkg/embedders"
)

// ValidationError reports a malformed memory that was rejected before storage.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("memory: invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports a lookup against an unknown memory ID.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("memory: %s not found", e.ID)
}

// Store is the long-term memory store: it embeds content, persists vectors
// through a databases.DatabaseProvider, and keeps a local graph of entities
// and relationships extracted from stored facts.
type Store struct {
	mu         sync.RWMutex
	db         databases.DatabaseProvider
	embedder   embedders.EmbedderProvider
	collection string
	dim        int

	byID    map[string]*Memory
	graph   *Graph
	persist Persistence
}

// Config configures a Store.
type Config struct {
	DB         databases.DatabaseProvider
	Embedder   embedders.EmbedderProvider
	Collection string
}

// NewStore creates a Store. The collection is created lazily on first write
// once the embedder's dimension is known.
func NewStore(cfg Config) (*Store, error) {
	if cfg.DB == nil {
		return nil, &ValidationError{Field: "db", Reason: "database provider is required"}
	}
	if cfg.Embedder == nil {
		return nil, &ValidationError{Field: "embedder", Reason: "embedder provider is required"}
	}
	collection := cfg.Collection
	if collection == "" {
		collection = "memories"
	}
	return &Store{
		db:         cfg.DB,
		embedder:   cfg.Embedder,
		collection: collection,
		dim:        cfg.Embedder.GetDimension(),
		byID:       make(map[string]*Memory),
		graph:      NewGraph(),
	}, nil
}

func (s *Store) ensureCollection(ctx context.Context) error {
	return s.db.CreateCollection(ctx, s.collection, uint64(s.dim))
}

// Store embeds and persists a memory. Content must be non-empty; the memory
// is assigned an ID and timestamps if not already set.
func (s *Store) Store(ctx context.Context, m *Memory) (*Memory, error) {
	if m == nil || m.Content == "" {
		return nil, &ValidationError{Field: "content", Reason: "must not be empty"}
	}

	vec, err := s.embedder.Embed(m.Content)
	if err != nil {
		return nil, fmt.Errorf("memory: embed failed: %w", err)
	}
	if len(vec) != s.dim {
		return nil, &ValidationError{Field: "embedding", Reason: fmt.Sprintf("dimension mismatch: got %d want %d", len(vec), s.dim)}
	}

	now := time.Now()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	m.LastSeenAt = now
	if m.Confidence == 0 {
		m.Confidence = MaxConfidence
	}
	m.Embedding = &Embedding{Vector: vec, Model: s.embedder.GetModelName(), Dim: s.dim}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureCollection(ctx); err != nil {
		return nil, fmt.Errorf("memory: ensure collection: %w", err)
	}

	meta := map[string]interface{}{
		"type":       string(m.Type),
		"subject":    m.Subject,
		"predicate":  m.Predicate,
		"object":     m.Object,
		"confidence": float64(m.Confidence),
		"superseded": m.Superseded,
	}
	if err := s.db.Upsert(ctx, s.collection, m.ID, vec, meta); err != nil {
		return nil, fmt.Errorf("memory: upsert failed: %w", err)
	}

	cp := *m
	s.byID[m.ID] = &cp

	if err := s.persistMemory(ctx, &cp); err != nil {
		return nil, fmt.Errorf("memory: persist failed: %w", err)
	}

	if m.IsFactTriple() {
		s.graph.LinkFact(m.Subject, m.Predicate, m.Object)
		if err := s.persistFactGraph(ctx, m.Subject, m.Predicate, m.Object); err != nil {
			return nil, fmt.Errorf("memory: persist graph failed: %w", err)
		}
	}

	return &cp, nil
}

// Get returns a stored memory by ID.
func (s *Store) Get(id string) (*Memory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.byID[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	cp := *m
	return &cp, nil
}

// Delete removes a memory from both the vector index and the local cache.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return &NotFoundError{ID: id}
	}
	if err := s.db.Delete(ctx, s.collection, id); err != nil {
		return fmt.Errorf("memory: delete failed: %w", err)
	}
	delete(s.byID, id)
	return nil
}

// Close releases the underlying database provider.
func (s *Store) Close() error {
	return s.db.Close()
}
