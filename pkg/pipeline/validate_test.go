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

package pipeline

import "testing"

func TestWorkflowDefinition_Validate(t *testing.T) {
	tests := []struct {
		name    string
		wf      WorkflowDefinition
		wantErr bool
	}{
		{
			name:    "empty name",
			wf:      WorkflowDefinition{Tasks: []TaskDefinition{{ID: "a", TimeoutSecs: 1, Runtime: "r"}}},
			wantErr: true,
		},
		{
			name:    "no tasks",
			wf:      WorkflowDefinition{Name: "wf"},
			wantErr: true,
		},
		{
			name: "duplicate task id",
			wf: WorkflowDefinition{Name: "wf", Tasks: []TaskDefinition{
				{ID: "a", TimeoutSecs: 1, Runtime: "r"},
				{ID: "a", TimeoutSecs: 1, Runtime: "r"},
			}},
			wantErr: true,
		},
		{
			name: "unknown dependency",
			wf: WorkflowDefinition{Name: "wf", Tasks: []TaskDefinition{
				{ID: "a", TimeoutSecs: 1, Runtime: "r", Dependencies: []string{"ghost"}},
			}},
			wantErr: true,
		},
		{
			name: "zero timeout with a runtime",
			wf: WorkflowDefinition{Name: "wf", Tasks: []TaskDefinition{
				{ID: "a", Runtime: "r"},
			}},
			wantErr: true,
		},
		{
			name: "cycle",
			wf: WorkflowDefinition{Name: "wf", Tasks: []TaskDefinition{
				{ID: "a", TimeoutSecs: 1, Runtime: "r", Dependencies: []string{"b"}},
				{ID: "b", TimeoutSecs: 1, Runtime: "r", Dependencies: []string{"a"}},
			}},
			wantErr: true,
		},
		{
			name: "valid dag",
			wf: WorkflowDefinition{Name: "wf", Tasks: []TaskDefinition{
				{ID: "a", TimeoutSecs: 1, Runtime: "r"},
				{ID: "b", TimeoutSecs: 1, Runtime: "r", Dependencies: []string{"a"}},
			}},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.wf.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTopologicalOrder_RespectsDependencies(t *testing.T) {
	tasks := []TaskDefinition{
		{ID: "c", Dependencies: []string{"a", "b"}},
		{ID: "a"},
		{ID: "b", Dependencies: []string{"a"}},
	}

	order, err := TopologicalOrder(tasks)
	if err != nil {
		t.Fatalf("TopologicalOrder: %v", err)
	}

	pos := make(map[string]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	if pos["a"] > pos["b"] {
		t.Fatal("a must come before b")
	}
	if pos["b"] > pos["c"] {
		t.Fatal("b must come before c")
	}
	if pos["a"] > pos["c"] {
		t.Fatal("a must come before c")
	}
}

func TestTopologicalOrder_DetectsCycle(t *testing.T) {
	tasks := []TaskDefinition{
		{ID: "a", Dependencies: []string{"b"}},
		{ID: "b", Dependencies: []string{"a"}},
	}
	if _, err := TopologicalOrder(tasks); err == nil {
		t.Fatal("expected a cycle-detection error")
	}
}
