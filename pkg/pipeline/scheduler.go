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
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
)

// ScheduleResultFunc receives the outcome of one scheduled workflow run.
type ScheduleResultFunc func(w *WorkflowDefinition, result *WorkflowResult, err error)

// Scheduler triggers workflow runs on their declared cron Schedule, with
// IANA timezone support (spec.md §6's [workflow.schedule] table).
type Scheduler struct {
	cron     *cron.Cron
	executor *Executor

	mu      sync.Mutex
	entries map[string]cron.EntryID // workflow name -> cron entry
}

// NewScheduler builds a Scheduler backed by executor. The underlying
// robfig/cron engine runs with second-level precision disabled (standard
// five-field cron expressions, per spec.md §6).
func NewScheduler(executor *Executor) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		executor: executor,
		entries:  make(map[string]cron.EntryID),
	}
}

// Start begins the scheduler's background dispatch loop.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts the dispatch loop without waiting for in-flight jobs; the
// returned context is done once every in-flight job has returned.
func (s *Scheduler) Stop() context.Context { return s.cron.Stop() }

// Schedule registers w's cron trigger. w.Schedule must be non-nil. Each
// firing runs the workflow against input and reports its outcome via onResult.
func (s *Scheduler) Schedule(w *WorkflowDefinition, input json.RawMessage, onResult ScheduleResultFunc) error {
	if w.Schedule == nil || w.Schedule.Cron == "" {
		return fmt.Errorf("pipeline: workflow %q has no cron schedule", w.Name)
	}

	spec := w.Schedule.Cron
	if w.Schedule.Timezone != "" {
		spec = fmt.Sprintf("CRON_TZ=%s %s", w.Schedule.Timezone, spec)
	}

	id, err := s.cron.AddFunc(spec, func() {
		result, runErr := s.executor.Run(context.Background(), w, input)
		if onResult != nil {
			onResult(w, result, runErr)
		}
	})
	if err != nil {
		return fmt.Errorf("pipeline: invalid cron schedule %q: %w", w.Schedule.Cron, err)
	}

	s.mu.Lock()
	if old, ok := s.entries[w.Name]; ok {
		s.cron.Remove(old)
	}
	s.entries[w.Name] = id
	s.mu.Unlock()
	return nil
}

// Unschedule removes a workflow's cron trigger, if any.
func (s *Scheduler) Unschedule(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.entries[name]; ok {
		s.cron.Remove(id)
		delete(s.entries, name)
	}
}
