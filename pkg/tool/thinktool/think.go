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

// Package thinktool provides a scratchpad tool with no side effects: calling
// it commits a thought to the transcript without touching state, memory, or
// the outside world. Useful for forcing a model to externalize reasoning
// between tool calls without granting it any additional capability.
package thinktool

import "github.com/kadirpekel/hector/pkg/tool"

// New creates the think tool.
func New() tool.CallableTool {
	return &thinkTool{}
}

type thinkTool struct{}

func (t *thinkTool) Name() string { return "think" }

func (t *thinkTool) Description() string {
	return "Record a reasoning step without taking any action. Use this to plan before acting or to reflect on a tool result. Has no side effects."
}

func (t *thinkTool) IsLongRunning() bool { return false }

func (t *thinkTool) RequiresApproval() bool { return false }

func (t *thinkTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"thought": map[string]any{
				"type":        "string",
				"description": "The reasoning step to record",
			},
		},
		"required": []string{"thought"},
	}
}

func (t *thinkTool) Call(ctx tool.Context, args map[string]any) (map[string]any, error) {
	thought, _ := args["thought"].(string)
	return map[string]any{"recorded": thought}, nil
}
