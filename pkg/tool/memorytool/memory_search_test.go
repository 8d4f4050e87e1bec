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

package memorytool_test

import (
	"context"
	"testing"
	"time"

	"github.com/kadirpekel/hector/pkg/agent"
	"github.com/kadirpekel/hector/pkg/tool/memorytool"
)

type mockContext struct {
	results []agent.MemoryResult
	err     error
}

func (m *mockContext) FunctionCallID() string       { return "test-call" }
func (m *mockContext) Actions() *agent.EventActions { return nil }
func (m *mockContext) SearchMemory(ctx context.Context, query string) (*agent.MemorySearchResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &agent.MemorySearchResponse{Results: m.results}, nil
}
func (m *mockContext) Artifacts() agent.Artifacts         { return nil }
func (m *mockContext) State() agent.State                 { return nil }
func (m *mockContext) InvocationID() string               { return "test-inv" }
func (m *mockContext) AgentName() string                  { return "test-agent" }
func (m *mockContext) UserContent() *agent.Content        { return nil }
func (m *mockContext) ReadonlyState() agent.ReadonlyState { return nil }
func (m *mockContext) UserID() string                     { return "test-user" }
func (m *mockContext) AppName() string                    { return "test-app" }
func (m *mockContext) SessionID() string                  { return "test-session" }
func (m *mockContext) Branch() string                     { return "" }
func (m *mockContext) Deadline() (time.Time, bool)        { return time.Time{}, false }
func (m *mockContext) Done() <-chan struct{}              { return nil }
func (m *mockContext) Err() error                         { return nil }
func (m *mockContext) Value(key any) any                  { return nil }

func TestMemorySearch_ReturnsResults(t *testing.T) {
	searchTool, err := memorytool.New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := &mockContext{results: []agent.MemoryResult{
		{Content: "Acme Corp was founded in 2019.", Score: 0.92},
	}}

	result, err := searchTool.Call(ctx, map[string]any{"query": "Acme Corp"})
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if result["count"] != 1 {
		t.Errorf("count = %v, want 1", result["count"])
	}
}

func TestMemorySearch_RejectsEmptyQuery(t *testing.T) {
	searchTool, err := memorytool.New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := searchTool.Call(&mockContext{}, map[string]any{"query": ""}); err == nil {
		t.Fatal("expected an error for an empty query")
	}
}
