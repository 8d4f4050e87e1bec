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

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cortex.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return path
}

func TestLoadBootstrapConfig_Valid(t *testing.T) {
	path := writeTempConfig(t, `
[agent]
name = "assistant"
description = "a helpful agent"
instruction = "Be helpful."
tools = ["read_file", "grep_search"]
max_turns = 10

[llm]
provider = "anthropic"
model = "claude-sonnet-4-20250514"
api_key_env = "ANTHROPIC_API_KEY"
`)

	cfg, err := loadBootstrapConfig(path)
	if err != nil {
		t.Fatalf("loadBootstrapConfig() error = %v", err)
	}
	if cfg.Agent.Name != "assistant" {
		t.Errorf("Agent.Name = %q, want %q", cfg.Agent.Name, "assistant")
	}
	if cfg.LLM.Provider != "anthropic" {
		t.Errorf("LLM.Provider = %q, want %q", cfg.LLM.Provider, "anthropic")
	}
	if len(cfg.Agent.Tools) != 2 {
		t.Errorf("Agent.Tools = %v, want 2 entries", cfg.Agent.Tools)
	}
}

func TestLoadBootstrapConfig_MissingFile(t *testing.T) {
	_, err := loadBootstrapConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil {
		t.Fatal("expected an error for a missing config file")
	}
	var cfgErr *configError
	if !errors.As(err, &cfgErr) {
		t.Errorf("error = %v, want a *configError", err)
	}
}

func TestLoadBootstrapConfig_RejectsMissingAgentName(t *testing.T) {
	path := writeTempConfig(t, `
[llm]
provider = "anthropic"
model = "claude-sonnet-4-20250514"
`)
	if _, err := loadBootstrapConfig(path); err == nil {
		t.Fatal("expected an error when [agent].name is missing")
	}
}

func TestLoadBootstrapConfig_RejectsHookWithoutCommand(t *testing.T) {
	path := writeTempConfig(t, `
[agent]
name = "assistant"

[llm]
provider = "anthropic"
model = "claude-sonnet-4-20250514"

[[hooks]]
event = "PreToolUse"
`)
	if _, err := loadBootstrapConfig(path); err == nil {
		t.Fatal("expected an error when a hook entry has no command")
	}
}
