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
	"time"
)

func TestStore_Supersede(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	old, err := s.Store(ctx, &Memory{Type: ContentNote, Content: "Bob likes pizza"})
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	replacement, err := s.Store(ctx, &Memory{Type: ContentNote, Content: "Bob likes sushi now"})
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	if err := s.Supersede(ctx, old.ID, replacement.ID); err != nil {
		t.Fatalf("Supersede() error = %v", err)
	}
	got, err := s.Get(old.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !got.Superseded || got.SupersededBy != replacement.ID {
		t.Errorf("expected %s superseded by %s, got superseded=%v supersededBy=%q", old.ID, replacement.ID, got.Superseded, got.SupersededBy)
	}

	// Idempotent: calling again with the same pair is a no-op.
	if err := s.Supersede(ctx, old.ID, replacement.ID); err != nil {
		t.Errorf("second Supersede() with same pair should be a no-op, got error %v", err)
	}

	// Conflicting with a different new id fails.
	if err := s.Supersede(ctx, old.ID, "some-other-id"); err == nil {
		t.Error("expected error re-superseding with a different id")
	}

	if err := s.Supersede(ctx, "missing-id", replacement.ID); err == nil {
		t.Error("expected NotFoundError for unknown old id")
	}
}

func TestStore_ListMemories(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, content := range []string{"first note", "second note", "first fact"} {
		typ := ContentNote
		if i == 2 {
			typ = ContentFact
		}
		m := &Memory{Type: typ, Content: content, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if _, err := s.Store(ctx, m); err != nil {
			t.Fatalf("Store() error = %v", err)
		}
	}

	all := s.ListMemories("", 0, 0)
	if len(all) != 3 {
		t.Fatalf("expected 3 memories, got %d", len(all))
	}
	// Deterministic order: descending created_at.
	if all[0].Content != "first fact" || all[2].Content != "first note" {
		t.Errorf("unexpected order: %+v", all)
	}

	notes := s.ListMemories(ContentNote, 0, 0)
	if len(notes) != 2 {
		t.Errorf("expected 2 notes, got %d", len(notes))
	}

	paged := s.ListMemories("", 1, 1)
	if len(paged) != 1 || paged[0].Content != "second note" {
		t.Errorf("unexpected page: %+v", paged)
	}
}

func TestStore_SearchMemories(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Store(ctx, &Memory{Type: ContentNote, Content: "Alice works at Acme Corp"}); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if _, err := s.Store(ctx, &Memory{Type: ContentNote, Content: "Bob likes pizza"}); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	results := s.SearchMemories("Acme", 0)
	if len(results) != 1 || results[0].Content != "Alice works at Acme Corp" {
		t.Errorf("unexpected search results: %+v", results)
	}

	if results := s.SearchMemories("acme", 0); len(results) != 0 {
		t.Errorf("expected case-preserving match to miss lowercase query, got %+v", results)
	}

	if results := s.SearchMemories("nonexistent", 0); len(results) != 0 {
		t.Errorf("expected no matches, got %+v", results)
	}
}
