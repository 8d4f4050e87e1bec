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

	"github.com/kadirpekel/hector/pkg/model"
	"github.com/kadirpekel/hector/pkg/tool"
	"github.com/kadirpekel/hector/pkg/tool/filetool"
	"github.com/kadirpekel/hector/pkg/tool/memorytool"
	"github.com/kadirpekel/hector/pkg/tool/thinktool"
	"github.com/kadirpekel/hector/pkg/tool/webtool"
)

// buildTools resolves the agent.tools names from the bootstrap config into
// concrete tool.Tool instances. Unknown names are rejected up front rather
// than silently ignored, so a typo in the config surfaces at start time.
func buildTools(names []string) ([]tool.Tool, error) {
	if len(names) == 0 {
		names = []string{"read_file", "grep_search", "web_request", "memory_search", "think"}
	}

	tools := make([]tool.Tool, 0, len(names))
	for _, name := range names {
		t, err := newNamedTool(name)
		if err != nil {
			return nil, err
		}
		tools = append(tools, t)
	}
	return tools, nil
}

func newNamedTool(name string) (tool.Tool, error) {
	switch name {
	case "read_file":
		return filetool.NewReadFile(nil)
	case "write_file":
		return filetool.NewWriteFile(nil)
	case "grep_search":
		return filetool.NewGrepSearch(nil)
	case "search_replace":
		return filetool.NewSearchReplace(nil)
	case "apply_patch":
		return filetool.NewApplyPatch(nil)
	case "web_request":
		return webtool.NewWebRequest(nil)
	case "memory_search":
		return memorytool.New()
	case "think":
		return thinktool.New(), nil
	default:
		return nil, fmt.Errorf("unknown tool %q", name)
	}
}

// providerModel returns the model.LLM's advertised name, used in the
// start-up log line.
func providerModel(llm model.LLM) string {
	if llm == nil {
		return "(none)"
	}
	return llm.Name()
}
