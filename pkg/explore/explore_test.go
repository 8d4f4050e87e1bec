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

package explore

import (
	"context"
	"testing"

	"github.com/kadirpekel/hector/pkg/agent"
	"github.com/kadirpekel/hector/pkg/tool"
)

type stubTool struct{ name string }

func (s *stubTool) Name() string            { return s.name }
func (s *stubTool) Description() string     { return s.name }
func (s *stubTool) IsLongRunning() bool     { return false }
func (s *stubTool) RequiresApproval() bool  { return false }
func (s *stubTool) Schema() map[string]any  { return map[string]any{"type": "object"} }
func (s *stubTool) Call(tool.Context, map[string]any) (map[string]any, error) {
	return nil, nil
}

var _ tool.CallableTool = (*stubTool)(nil)

func TestFilterReadOnly(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "keeps read-only tools",
			input: []string{"read_file", "grep_search", "web_request"},
			want:  []string{"read_file", "grep_search", "web_request"},
		},
		{
			name:  "drops write and side-effect tools",
			input: []string{"read_file", "write_file", "shell", "apply_patch", "delegate", "catalog", "workflow"},
			want:  []string{"read_file"},
		},
		{
			name:  "drops explore itself to prevent recursion",
			input: []string{"read_file", "explore"},
			want:  []string{"read_file"},
		},
		{
			name:  "empty in, empty out",
			input: nil,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tools []tool.Tool
			for _, name := range tt.input {
				tools = append(tools, &stubTool{name: name})
			}
			got := filterReadOnly(tools)
			if len(got) != len(tt.want) {
				t.Fatalf("filterReadOnly() = %d tools, want %d", len(got), len(tt.want))
			}
			for i, want := range tt.want {
				if got[i].Name() != want {
					t.Errorf("tool[%d].Name() = %q, want %q", i, got[i].Name(), want)
				}
			}
		})
	}
}

// countingStrategy lets the test drive exactly how many times
// CheckAndSummarize reports a fresh summary, independent of token math.
type countingStrategy struct{ calls int }

func (c *countingStrategy) Name() string { return "counting" }
func (c *countingStrategy) FilterEvents(events []*agent.Event) []*agent.Event { return events }
func (c *countingStrategy) CheckAndSummarize(ctx context.Context, events []*agent.Event) (*agent.Event, error) {
	c.calls++
	return &agent.Event{Author: "summarizer"}, nil
}

func TestBoundedCompactor_CapsAtMaxCompactions(t *testing.T) {
	inner := &countingStrategy{}
	bc := &boundedCompactor{inner: inner, maxCompactions: 2}

	for i := 0; i < 5; i++ {
		ev, err := bc.CheckAndSummarize(context.Background(), nil)
		if err != nil {
			t.Fatalf("CheckAndSummarize() error = %v", err)
		}
		if i < 2 && ev == nil {
			t.Fatalf("iteration %d: expected a summary event within the cap", i)
		}
		if i >= 2 && ev != nil {
			t.Fatalf("iteration %d: expected nil once the cap is reached", i)
		}
	}

	if bc.count() != 2 {
		t.Fatalf("count() = %d, want 2", bc.count())
	}
	if inner.calls != 2 {
		t.Fatalf("inner strategy invoked %d times, want 2 (it must not run once the cap is hit)", inner.calls)
	}
}

func TestBudgets_Normalize(t *testing.T) {
	b := Budgets{}.normalize()
	if b.MaxTurns <= 0 || b.MaxTotalTokens <= 0 || b.MaxContextTokens <= 0 || b.MaxCompactions <= 0 {
		t.Fatalf("normalize() left a zero field: %+v", b)
	}

	custom := Budgets{MaxTurns: 5, MaxTotalTokens: 10, MaxContextTokens: 20, MaxCompactions: 1}.normalize()
	if custom != (Budgets{MaxTurns: 5, MaxTotalTokens: 10, MaxContextTokens: 20, MaxCompactions: 1}) {
		t.Fatalf("normalize() altered explicitly-set fields: %+v", custom)
	}
}

func TestNew_RequiresModel(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected an error when Model is nil")
	}
}
