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
	"reflect"
	"testing"
)

func TestParseTOML_LegacyActionForm(t *testing.T) {
	src := `
[workflow]
name = "legacy"
description = "uses the old action form"

[[workflow.tasks]]
id = "t1"
action = { type = "tool", params = { name = "search" } }
`
	w, err := ParseTOML([]byte(src))
	if err != nil {
		t.Fatalf("ParseTOML: %v", err)
	}
	if w.Name != "legacy" {
		t.Fatalf("name = %q", w.Name)
	}
	if len(w.Tasks) != 1 || w.Tasks[0].Action == nil {
		t.Fatalf("expected one task with a parsed action, got %+v", w.Tasks)
	}
	if w.Tasks[0].Action.Type != "tool" {
		t.Fatalf("action type = %q", w.Tasks[0].Action.Type)
	}
}

func TestParseTOML_RuntimeFormWithScheduleAndSettings(t *testing.T) {
	src := `
[workflow]
name = "modern"

[[workflow.tasks]]
id = "t1"
runtime = "summarize"
config = { max_tokens = 256 }

[workflow.schedule]
cron = "0 9 * * *"
timezone = "UTC"

[workflow.runtime]
timeout_secs = 30
max_retries = 2
`
	w, err := ParseTOML([]byte(src))
	if err != nil {
		t.Fatalf("ParseTOML: %v", err)
	}
	if w.Tasks[0].Runtime != "summarize" {
		t.Fatalf("runtime = %q", w.Tasks[0].Runtime)
	}
	if w.Schedule == nil || w.Schedule.Cron != "0 9 * * *" || w.Schedule.Timezone != "UTC" {
		t.Fatalf("schedule = %+v", w.Schedule)
	}
	if w.Runtime == nil || w.Runtime.TimeoutSecs != 30 || w.Runtime.MaxRetries != 2 {
		t.Fatalf("runtime settings = %+v", w.Runtime)
	}
}

func TestWorkflowDefinition_TOMLRoundTrip(t *testing.T) {
	w := &WorkflowDefinition{
		Name:        "roundtrip",
		Description: "checks ParseTOML(ToTOML(w)) == w",
		Tasks: []TaskDefinition{
			{
				ID:              "fetch",
				Runtime:         "http_get",
				Config:          map[string]any{"url": "https://example.com"},
				TimeoutSecs:     10,
				RetryAttempts:   2,
				RetryDelayMS:    500,
				ContinueOnError: true,
				Capabilities:    Capabilities{Filesystem: []string{"/tmp"}, Network: true},
			},
			{
				ID:           "process",
				Runtime:      "transform",
				Dependencies: []string{"fetch"},
				TimeoutSecs:  5,
			},
		},
		Schedule: &Schedule{Cron: "*/5 * * * *", Timezone: "America/New_York"},
		Runtime:  &RuntimeSettings{TimeoutSecs: 120, MaxRetries: 1},
	}

	out, err := w.ToTOML()
	if err != nil {
		t.Fatalf("ToTOML: %v", err)
	}
	got, err := ParseTOML(out)
	if err != nil {
		t.Fatalf("ParseTOML: %v", err)
	}

	if !reflect.DeepEqual(w, got) {
		t.Fatalf("round trip mismatch:\nwant %+v\ngot  %+v", w, got)
	}
}
