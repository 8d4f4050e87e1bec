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

	"github.com/kadirpekel/hector/internal/store"
)

// Persistence is the relational substrate (C1) a Store durably writes
// through to, in addition to the vector index. It is optional: a Store with
// no Persistence configured keeps memories only in its in-process map and
// the vector database, matching its pre-C1 behavior.
type Persistence interface {
	SaveMemory(ctx context.Context, m store.MemoryRecord) error
	SaveNode(ctx context.Context, n store.NodeRecord) error
	SaveEdge(ctx context.Context, e store.EdgeRecord) error
}

// WithPersistence attaches a relational backend to an already-constructed
// Store. Every subsequent Store/StoreFact/Supersede call durably persists
// the memory row (and, for fact triples, the graph nodes/edges) alongside
// the in-memory index.
func (s *Store) WithPersistence(p Persistence) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persist = p
	return s
}

func (s *Store) persistMemory(ctx context.Context, m *Memory) error {
	if s.persist == nil {
		return nil
	}
	rec := store.MemoryRecord{
		ID:                 m.ID,
		ContentType:        string(m.Type),
		Content:            m.Content,
		Subject:            m.Subject,
		Predicate:          m.Predicate,
		Object:             m.Object,
		ConfidenceScore:    float64(m.Confidence),
		Superseded:         m.Superseded,
		SupersededBy:       m.SupersededBy,
		Metadata:           m.Metadata,
		CreatedAt:          m.CreatedAt,
		AccessedAt:         m.LastSeenAt,
	}
	if len(m.Citations) > 0 {
		rec.SessionID = m.Citations[0].SessionID
	}
	return s.persist.SaveMemory(ctx, rec)
}

func (s *Store) persistFactGraph(ctx context.Context, subject, predicate, object string) error {
	if s.persist == nil {
		return nil
	}
	from := nodeID(subject)
	to := nodeID(object)
	if err := s.persist.SaveNode(ctx, store.NodeRecord{ID: from}); err != nil {
		return err
	}
	if err := s.persist.SaveNode(ctx, store.NodeRecord{ID: to}); err != nil {
		return err
	}
	return s.persist.SaveEdge(ctx, store.EdgeRecord{
		FromID:           from,
		ToID:             to,
		RelationshipType: string(classify(predicate)),
		Label:            predicate,
	})
}
