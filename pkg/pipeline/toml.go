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
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"
)

// tomlDocument mirrors the bit-exact wire shape of spec.md §6: a top-level
// [workflow] table with a [[workflow.tasks]] array and nested
// [workflow.schedule]/[workflow.runtime]/[workflow.triggers] tables.
type tomlDocument struct {
	Workflow tomlWorkflow `toml:"workflow"`
}

type tomlWorkflow struct {
	Name        string           `toml:"name"`
	Description string           `toml:"description"`
	Tasks       []tomlTask       `toml:"tasks"`
	Schedule    *Schedule        `toml:"schedule,omitempty"`
	Runtime     *RuntimeSettings `toml:"runtime,omitempty"`
	Triggers    *Triggers        `toml:"triggers,omitempty"`
}

type tomlTask struct {
	ID              string         `toml:"id"`
	Runtime         string         `toml:"runtime,omitempty"`
	Config          map[string]any `toml:"config,omitempty"`
	Action          *tomlAction    `toml:"action,omitempty"`
	Dependencies    []string       `toml:"dependencies,omitempty"`
	RetryAttempts   int            `toml:"retry_attempts,omitempty"`
	RetryDelayMS    int            `toml:"retry_delay_ms,omitempty"`
	TimeoutSecs     int            `toml:"timeout_secs,omitempty"`
	Capabilities    *Capabilities  `toml:"capabilities,omitempty"`
	ContinueOnError bool           `toml:"continue_on_error,omitempty"`
}

type tomlAction struct {
	Type   string         `toml:"type"`
	Params map[string]any `toml:"params,omitempty"`
}

// ParseTOML decodes a workflow definition from its bit-exact TOML form. The
// legacy `action` form is preserved; when both `runtime`/`config` and
// `action` appear, the new form takes precedence per spec.md §6.
func ParseTOML(src []byte) (*WorkflowDefinition, error) {
	var doc tomlDocument
	if _, err := toml.Decode(string(src), &doc); err != nil {
		return nil, fmt.Errorf("pipeline: parse toml: %w", err)
	}

	w := &WorkflowDefinition{
		Name:        doc.Workflow.Name,
		Description: doc.Workflow.Description,
		Schedule:    doc.Workflow.Schedule,
		Runtime:     doc.Workflow.Runtime,
		Triggers:    doc.Workflow.Triggers,
	}
	for _, t := range doc.Workflow.Tasks {
		task := TaskDefinition{
			ID:              t.ID,
			Runtime:         t.Runtime,
			Config:          t.Config,
			Dependencies:    t.Dependencies,
			RetryAttempts:   t.RetryAttempts,
			RetryDelayMS:    t.RetryDelayMS,
			TimeoutSecs:     t.TimeoutSecs,
			ContinueOnError: t.ContinueOnError,
		}
		if t.Capabilities != nil {
			task.Capabilities = *t.Capabilities
		}
		if t.Action != nil {
			task.Action = &Action{Type: t.Action.Type, Params: t.Action.Params}
		}
		w.Tasks = append(w.Tasks, task)
	}
	return w, nil
}

// ToTOML serializes a workflow definition back into its bit-exact TOML
// form. ParseTOML(ToTOML(w)) reproduces w (spec.md §8 round-trip law).
func (w *WorkflowDefinition) ToTOML() ([]byte, error) {
	doc := tomlDocument{Workflow: tomlWorkflow{
		Name:        w.Name,
		Description: w.Description,
		Schedule:    w.Schedule,
		Runtime:     w.Runtime,
		Triggers:    w.Triggers,
	}}
	for _, t := range w.Tasks {
		task := tomlTask{
			ID:              t.ID,
			Runtime:         t.Runtime,
			Config:          t.Config,
			Dependencies:    t.Dependencies,
			RetryAttempts:   t.RetryAttempts,
			RetryDelayMS:    t.RetryDelayMS,
			TimeoutSecs:     t.TimeoutSecs,
			Capabilities:    &t.Capabilities,
			ContinueOnError: t.ContinueOnError,
		}
		if t.Action != nil {
			task.Action = &tomlAction{Type: t.Action.Type, Params: t.Action.Params}
		}
		doc.Workflow.Tasks = append(doc.Workflow.Tasks, task)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, fmt.Errorf("pipeline: encode toml: %w", err)
	}
	return buf.Bytes(), nil
}
