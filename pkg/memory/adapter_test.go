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

func TestNilMemory(t *testing.T) {
	m := NilMemory()
	sess := &fakeSession{id: "s1", appName: "app", userID: "user"}

	if err := m.AddSession(context.Background(), sess); err != nil {
		t.Errorf("AddSession() error = %v, want nil", err)
	}
	resp, err := m.Search(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(resp.Results) != 0 {
		t.Errorf("expected no results from NilMemory, got %d", len(resp.Results))
	}
}

func TestAdapter_AddSessionAndSearch(t *testing.T) {
	idx := NewKeywordIndexService()
	mem := NewAdapter(idx, "app", "user-1")

	sess := &fakeSession{
		id:      "s1",
		appName: "app",
		userID:  "user-1",
		events: []*agent.Event{
			newTextEvent("ev-1", "user", "Alice works at Acme Corp"),
		},
	}

	if err := mem.AddSession(context.Background(), sess); err != nil {
		t.Fatalf("AddSession() error = %v", err)
	}

	resp, err := mem.Search(context.Background(), "acme")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(resp.Results))
	}
	if resp.Results[0].Content != "Alice works at Acme Corp" {
		t.Errorf("unexpected content: %q", resp.Results[0].Content)
	}
}
