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
	"iter"
	"testing"
	"time"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/kadirpekel/hector/pkg/agent"
)

// fakeSession is a minimal agent.Session for exercising Store.Index.
type fakeSession struct {
	id, appName, userID string
	events              []*agent.Event
}

func (s *fakeSession) ID() string           { return s.id }
func (s *fakeSession) AppName() string      { return s.appName }
func (s *fakeSession) UserID() string       { return s.userID }
func (s *fakeSession) State() agent.State   { return nil }
func (s *fakeSession) Events() agent.Events { return fakeEvents{events: s.events} }

type fakeEvents struct{ events []*agent.Event }

func (e fakeEvents) All() iter.Seq[*agent.Event] {
	return func(yield func(*agent.Event) bool) {
		for _, ev := range e.events {
			if !yield(ev) {
				return
			}
		}
	}
}
func (e fakeEvents) Len() int            { return len(e.events) }
func (e fakeEvents) At(i int) *agent.Event { return e.events[i] }

func newTextEvent(id, author, text string) *agent.Event {
	return &agent.Event{
		ID:        id,
		Author:    author,
		Timestamp: time.Now(),
		Message:   agent.NewTextContent(text, a2a.MessageRoleUser).ToMessage(),
	}
}

func TestStore_Recall(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Store(ctx, &Memory{Type: ContentNote, Content: "Alice works at Acme Corp"}); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if _, err := s.Store(ctx, &Memory{Type: ContentNote, Content: "Bob likes pizza"}); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	resp, err := s.Recall(ctx, SearchRequest{Query: "Alice Acme Corp", TopK: 5})
	if err != nil {
		t.Fatalf("Recall() error = %v", err)
	}
	if len(resp.Results) == 0 {
		t.Fatal("expected at least one recall result")
	}
	if resp.Results[0].Memory.Content != "Alice works at Acme Corp" {
		t.Errorf("expected top result about Alice, got %q", resp.Results[0].Memory.Content)
	}
}

func TestStore_RecallRejectsEmptyQuery(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Recall(context.Background(), SearchRequest{}); err == nil {
		t.Error("expected error for empty query")
	}
}

func TestStore_RecallSkipsSuperseded(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, _, err := s.StoreFact(ctx, "Alice", "works_at", "Acme Corp", 0.3, nil, DefaultFactOptions()); err != nil {
		t.Fatalf("StoreFact() error = %v", err)
	}
	if _, _, err := s.StoreFact(ctx, "Alice", "works_at", "Globex", 0.9, nil, DefaultFactOptions()); err != nil {
		t.Fatalf("StoreFact() error = %v", err)
	}

	resp, err := s.Recall(ctx, SearchRequest{Query: "Alice Acme Corp Globex", TopK: 10})
	if err != nil {
		t.Fatalf("Recall() error = %v", err)
	}
	for _, r := range resp.Results {
		if r.Memory.Object == "Acme Corp" {
			t.Errorf("expected superseded Acme Corp fact to be excluded from recall, got %+v", r.Memory)
		}
	}
}

func TestStore_IndexAndSearchSession(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sess := &fakeSession{
		id:      "sess-1",
		appName: "test-app",
		userID:  "user-1",
		events: []*agent.Event{
			newTextEvent("ev-1", "user", "Alice works at Acme Corp"),
			newTextEvent("ev-2", "", ""), // empty text skipped
		},
	}

	if err := s.Index(ctx, sess); err != nil {
		t.Fatalf("Index() error = %v", err)
	}

	resp, err := s.Search(ctx, &SearchRequest{AppName: "test-app", UserID: "user-1", Query: "Acme Corp"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(resp.Results) == 0 {
		t.Fatal("expected at least one search result after indexing")
	}
}

func TestIsStale(t *testing.T) {
	tests := []struct {
		name string
		m    *Memory
		want bool
	}{
		{
			name: "non-web never stale",
			m:    &Memory{Type: ContentNote, LastSeenAt: time.Now().Add(-365 * 24 * time.Hour)},
			want: false,
		},
		{
			name: "fresh web memory not stale",
			m:    &Memory{Type: ContentWeb, LastSeenAt: time.Now()},
			want: false,
		},
		{
			name: "old web memory stale",
			m:    &Memory{Type: ContentWeb, LastSeenAt: time.Now().Add(-8 * 24 * time.Hour)},
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isStale(tt.m, webStalenessDefault); got != tt.want {
				t.Errorf("isStale() = %v, want %v", got, tt.want)
			}
		})
	}
}
