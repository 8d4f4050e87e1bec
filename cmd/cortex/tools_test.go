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

package main

import "testing"

func TestBuildTools_DefaultsWhenEmpty(t *testing.T) {
	tools, err := buildTools(nil)
	if err != nil {
		t.Fatalf("buildTools(nil) error = %v", err)
	}
	if len(tools) == 0 {
		t.Fatal("expected a non-empty default tool set")
	}
}

func TestBuildTools_RejectsUnknownName(t *testing.T) {
	if _, err := buildTools([]string{"not_a_real_tool"}); err == nil {
		t.Fatal("expected an error for an unknown tool name")
	}
}

func TestBuildTools_ResolvesKnownNames(t *testing.T) {
	tools, err := buildTools([]string{"read_file", "think"})
	if err != nil {
		t.Fatalf("buildTools() error = %v", err)
	}
	if len(tools) != 2 {
		t.Fatalf("len(tools) = %d, want 2", len(tools))
	}
	names := map[string]bool{}
	for _, tl := range tools {
		names[tl.Name()] = true
	}
	if !names["read_file"] || !names["think"] {
		t.Errorf("tools = %v, want read_file and think", names)
	}
}
