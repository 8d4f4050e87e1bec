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

import (
	"testing"
)

func TestScheduler_RejectsWorkflowWithoutSchedule(t *testing.T) {
	ex, _ := newTestExecutor(t)
	s := NewScheduler(ex)

	w := &WorkflowDefinition{Name: "wf", Tasks: []TaskDefinition{{ID: "a", Runtime: "noop", TimeoutSecs: 5}}}
	if err := s.Schedule(w, nil, nil); err == nil {
		t.Fatal("expected an error scheduling a workflow with no cron trigger")
	}
}

func TestScheduler_RegistersAndReplacesEntry(t *testing.T) {
	ex, _ := newTestExecutor(t)
	s := NewScheduler(ex)

	w := &WorkflowDefinition{
		Name:     "wf",
		Tasks:    []TaskDefinition{{ID: "a", Runtime: "noop", TimeoutSecs: 5}},
		Schedule: &Schedule{Cron: "0 0 * * *"},
	}
	if err := s.Schedule(w, nil, nil); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if _, ok := s.entries["wf"]; !ok {
		t.Fatal("expected a cron entry to be registered for wf")
	}

	// Re-scheduling the same workflow name must replace, not accumulate,
	// entries.
	if err := s.Schedule(w, nil, nil); err != nil {
		t.Fatalf("Schedule (replace): %v", err)
	}
	if len(s.entries) != 1 {
		t.Fatalf("expected exactly one entry after re-scheduling, got %d", len(s.entries))
	}

	s.Unschedule("wf")
	if _, ok := s.entries["wf"]; ok {
		t.Fatal("expected the entry to be removed after Unschedule")
	}
}

func TestScheduler_RejectsInvalidCronExpression(t *testing.T) {
	ex, _ := newTestExecutor(t)
	s := NewScheduler(ex)

	w := &WorkflowDefinition{
		Name:     "wf",
		Tasks:    []TaskDefinition{{ID: "a", Runtime: "noop", TimeoutSecs: 5}},
		Schedule: &Schedule{Cron: "not a cron expression"},
	}
	if err := s.Schedule(w, nil, nil); err == nil {
		t.Fatal("expected an error for an invalid cron expression")
	}
}
