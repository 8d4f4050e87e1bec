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

func TestStoreFact_FirstSeenCreates(t *testing.T) {
	s := newTestStore(t)
	m, superseded, err := s.StoreFact(context.Background(), "Alice", "works_at", "Acme Corp", 0.8, nil, DefaultFactOptions())
	if err != nil {
		t.Fatalf("StoreFact() error = %v", err)
	}
	if superseded {
		t.Error("expected no supersession on first fact")
	}
	if m.Subject != "Alice" || m.Object != "Acme Corp" {
		t.Errorf("unexpected stored fact: %+v", m)
	}
}

func TestStoreFact_ReinforcesSameObject(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	opts := DefaultFactOptions()

	first, _, err := s.StoreFact(ctx, "Alice", "works_at", "Acme Corp", 0.5, nil, opts)
	if err != nil {
		t.Fatalf("StoreFact() error = %v", err)
	}

	second, superseded, err := s.StoreFact(ctx, "Alice", "works_at", "acme corp", 0.4, nil, opts)
	if err != nil {
		t.Fatalf("StoreFact() error = %v", err)
	}
	if superseded {
		t.Error("expected reinforcement, not supersession, for the same object")
	}
	if second.Confidence <= first.Confidence {
		t.Errorf("expected reinforcement to raise confidence: first=%v second=%v", first.Confidence, second.Confidence)
	}
}

func TestStoreFact_SupersedesOnHigherConfidence(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	opts := DefaultFactOptions()

	if _, _, err := s.StoreFact(ctx, "Alice", "works_at", "Acme Corp", 0.5, nil, opts); err != nil {
		t.Fatalf("StoreFact() error = %v", err)
	}

	newFact, superseded, err := s.StoreFact(ctx, "Alice", "works_at", "Globex", 0.9, nil, opts)
	if err != nil {
		t.Fatalf("StoreFact() error = %v", err)
	}
	if !superseded {
		t.Error("expected higher-confidence conflicting fact to supersede")
	}
	if newFact.Object != "Globex" {
		t.Errorf("expected new fact object Globex, got %q", newFact.Object)
	}

	old := s.findActiveFact("Alice", "works_at")
	if old == nil || old.Object != "Globex" {
		t.Errorf("expected Globex to be the sole active fact, got %+v", old)
	}
}

func TestStoreFact_LowerConfidenceLoses(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	opts := DefaultFactOptions()

	if _, _, err := s.StoreFact(ctx, "Alice", "works_at", "Acme Corp", 0.9, nil, opts); err != nil {
		t.Fatalf("StoreFact() error = %v", err)
	}

	_, superseded, err := s.StoreFact(ctx, "Alice", "works_at", "Globex", 0.2, nil, opts)
	if err != nil {
		t.Fatalf("StoreFact() error = %v", err)
	}
	if superseded {
		t.Error("expected lower-confidence conflicting fact to lose")
	}

	active := s.findActiveFact("Alice", "works_at")
	if active == nil || active.Object != "Acme Corp" {
		t.Errorf("expected Acme Corp to remain active, got %+v", active)
	}
}

func TestStoreFact_EqualConfidenceTieBreak(t *testing.T) {
	ctx := context.Background()

	t.Run("supersedes by default", func(t *testing.T) {
		s := newTestStore(t)
		if _, _, err := s.StoreFact(ctx, "Alice", "works_at", "Acme Corp", 0.5, nil, DefaultFactOptions()); err != nil {
			t.Fatalf("StoreFact() error = %v", err)
		}
		_, superseded, err := s.StoreFact(ctx, "Alice", "works_at", "Globex", 0.5, nil, DefaultFactOptions())
		if err != nil {
			t.Fatalf("StoreFact() error = %v", err)
		}
		if !superseded {
			t.Error("expected equal-confidence fact to supersede by default")
		}
	})

	t.Run("keeps existing when disabled", func(t *testing.T) {
		s := newTestStore(t)
		opts := FactOptions{EqualConfidenceSupersedes: false}
		if _, _, err := s.StoreFact(ctx, "Alice", "works_at", "Acme Corp", 0.5, nil, opts); err != nil {
			t.Fatalf("StoreFact() error = %v", err)
		}
		_, superseded, err := s.StoreFact(ctx, "Alice", "works_at", "Globex", 0.5, nil, opts)
		if err != nil {
			t.Fatalf("StoreFact() error = %v", err)
		}
		if superseded {
			t.Error("expected equal-confidence fact to keep the existing claim when disabled")
		}
	})
}

func TestReevaluateStaleness(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	webFact, err := s.Store(ctx, &Memory{Type: ContentWeb, Content: "current weather in paris"})
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	stale, err := s.ReevaluateStaleness(webFact.ID, 7)
	if err != nil {
		t.Fatalf("ReevaluateStaleness() error = %v", err)
	}
	if stale {
		t.Error("expected freshly stored web memory to not be stale")
	}
}
