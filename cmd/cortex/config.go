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
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// configError marks a failure that happened while loading or validating the
// bootstrap config, as opposed to one that happened while the agent was
// running. main() uses this distinction to choose exit(1) vs exit(2).
type configError struct{ err error }

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

func newConfigError(format string, args ...any) error {
	return &configError{err: fmt.Errorf(format, args...)}
}

// bootstrapConfig is the TOML document a `cortex start` run is driven by.
// It deliberately does not retrofit the YAML-based pkg/config runtime config
// (that package is wired to pkg/runtime/pkg/server, both superseded by
// pkg/agent/llmagent); this is a small, purpose-built shape for the agent
// substrate instead.
type bootstrapConfig struct {
	Agent    agentSection     `toml:"agent"`
	LLM      llmSection       `toml:"llm"`
	Memory   *memorySection   `toml:"memory,omitempty"`
	Pipeline *pipelineSection `toml:"pipeline,omitempty"`
	Hooks    []hookSection    `toml:"hooks,omitempty"`
}

type agentSection struct {
	Name        string   `toml:"name"`
	Description string   `toml:"description"`
	Instruction string   `toml:"instruction"`
	Tools       []string `toml:"tools"`
	MaxTurns    int      `toml:"max_turns"`
}

type llmSection struct {
	Provider       string  `toml:"provider"`
	Model          string  `toml:"model"`
	APIKey         string  `toml:"api_key"`
	APIKeyEnv      string  `toml:"api_key_env"`
	BaseURL        string  `toml:"base_url"`
	Temperature    float64 `toml:"temperature"`
	MaxTokens      int     `toml:"max_tokens"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
}

type memorySection struct {
	Enabled    bool   `toml:"enabled"`
	Collection string `toml:"collection"`
}

type pipelineSection struct {
	CatalogRoot   string `toml:"catalog_root"`
	MaxConcurrent int    `toml:"max_concurrent"`
}

type hookSection struct {
	Event          string   `toml:"event"`
	Command        string   `toml:"command"`
	Args           []string `toml:"args"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
}

func loadBootstrapConfig(path string) (*bootstrapConfig, error) {
	var cfg bootstrapConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, newConfigError("parsing %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, newConfigError("%s: %w", path, err)
	}
	return &cfg, nil
}

func (c *bootstrapConfig) validate() error {
	if c.Agent.Name == "" {
		return fmt.Errorf("[agent].name is required")
	}
	if c.LLM.Provider == "" {
		return fmt.Errorf("[llm].provider is required")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("[llm].model is required")
	}
	for i, h := range c.Hooks {
		if h.Command == "" {
			return fmt.Errorf("[[hooks]] entry %d: command is required", i)
		}
		if h.Event == "" {
			return fmt.Errorf("[[hooks]] entry %d: event is required", i)
		}
	}
	return nil
}

func (h hookSection) timeout() time.Duration {
	if h.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(h.TimeoutSeconds) * time.Second
}
