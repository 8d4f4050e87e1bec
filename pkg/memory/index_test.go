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

	"github.com/kadirpekel/hector/pkg/agent"
)

func TestKeywordIndexService_IndexAndSearch(t *testing.T) {
	idx := NewKeywordIndexService()
	ctx := context.Background()

	sess := &fakeSession{
		id:      "sess-1",
		appName: "app",
		userID:  "user-1",
		events: []*agent.Event{
			newTextEvent("ev-1", "user", "Alice works at Acme Corp"),
			newTextEvent("ev-2", "agent", "Bob likes pizza"),
		},
	}

	if err := idx.Index(ctx, sess); err != nil {
		t.Fatalf("Index() error = %v", err)
	}

	resp, err := idx.Search(ctx, &SearchRequest{AppName: "app", UserID: "user-1", Query: "acme"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(resp.Results))
	}
	if resp.Results[0].Memory.Content != "Alice works at Acme Corp" {
		t.Errorf("unexpected result content: %q", resp.Results[0].Memory.Content)
	}
}

func TestKeywordIndexService_ScopedByUser(t *testing.T) {
	idx := NewKeywordIndexService()
	ctx := context.Background()

	sess := &fakeSession{id: "s1", appName: "app", userID: "user-1", events: []*agent.Event{
		newTextEvent("ev-1", "user", "Alice works at Acme Corp"),
	}}
	if err := idx.Index(ctx, sess); err != nil {
		t.Fatalf("Index() error = %v", err)
	}

	resp, err := idx.Search(ctx, &SearchRequest{AppName: "app", UserID: "other-user", Query: "acme"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(resp.Results) != 0 {
		t.Errorf("expected no results for a different user, got %d", len(resp.Results))
	}
}

func TestKeywordIndexService_ReindexIsIdempotent(t *testing.T) {
	idx := NewKeywordIndexService()
	ctx := context.Background()
	sess := &fakeSession{id: "s1", appName: "app", userID: "user-1", events: []*agent.Event{
		newTextEvent("ev-1", "user", "Alice works at Acme Corp"),
	}}

	if err := idx.Index(ctx, sess); err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	if err := idx.Index(ctx, sess); err != nil {
		t.Fatalf("second Index() error = %v", err)
	}

	resp, err := idx.Search(ctx, &SearchRequest{AppName: "app", UserID: "user-1", Query: "acme"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(resp.Results) != 1 {
		t.Errorf("expected re-indexing to replace, not append, entries: got %d results", len(resp.Results))
	}
}
