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

func eventsOfLen(n int) []*agent.Event {
	out := make([]*agent.Event, n)
	for i := range out {
		out[i] = newTextEvent("ev", "user", "hello world")
	}
	return out
}

func TestNilWorkingMemory(t *testing.T) {
	var wm WorkingMemoryStrategy = NilWorkingMemory{}
	if wm.Name() != "none" {
		t.Errorf("expected name 'none', got %q", wm.Name())
	}
	events := eventsOfLen(5)
	if got := wm.FilterEvents(events); len(got) != 5 {
		t.Errorf("expected all events preserved, got %d", len(got))
	}
	summary, err := wm.CheckAndSummarize(context.Background(), events)
	if err != nil || summary != nil {
		t.Errorf("expected no summarization, got %v, %v", summary, err)
	}
}

func TestBufferWindowStrategy_FilterEvents(t *testing.T) {
	tests := []struct {
		name       string
		windowSize int
		numEvents  int
		wantKept   int
	}{
		{name: "within window", windowSize: 10, numEvents: 5, wantKept: 5},
		{name: "exceeds window", windowSize: 3, numEvents: 10, wantKept: 3},
		{name: "defaults when non-positive", windowSize: 0, numEvents: 25, wantKept: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewBufferWindowStrategy(BufferWindowConfig{WindowSize: tt.windowSize})
			got := s.FilterEvents(eventsOfLen(tt.numEvents))
			if len(got) != tt.wantKept {
				t.Errorf("FilterEvents() kept %d events, want %d", len(got), tt.wantKept)
			}
		})
	}
}

func TestBufferWindowStrategy_NeverSummarizes(t *testing.T) {
	s := NewBufferWindowStrategy(BufferWindowConfig{WindowSize: 2})
	summary, err := s.CheckAndSummarize(context.Background(), eventsOfLen(20))
	if err != nil || summary != nil {
		t.Errorf("expected no summarization from buffer_window, got %v, %v", summary, err)
	}
}

func TestNewTokenWindowStrategy_RequiresPositiveBudget(t *testing.T) {
	if _, err := NewTokenWindowStrategy(TokenWindowConfig{Budget: 0}); err == nil {
		t.Error("expected error for non-positive budget")
	}
}

func TestTokenWindowStrategy_FilterEvents(t *testing.T) {
	s, err := NewTokenWindowStrategy(TokenWindowConfig{Budget: 1, PreserveRecent: 1})
	if err != nil {
		t.Fatalf("NewTokenWindowStrategy() error = %v", err)
	}

	events := eventsOfLen(10)
	got := s.FilterEvents(events)
	if len(got) == 0 {
		t.Fatal("expected PreserveRecent to guarantee at least one event")
	}
	if len(got) > len(events) {
		t.Errorf("filtered events should never exceed input, got %d of %d", len(got), len(events))
	}
}
