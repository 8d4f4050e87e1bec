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

// Package memorytool exposes the agent's long-term memory recall as a
// callable tool, read-only by construction.
package memorytool

import (
	"fmt"

	"github.com/kadirpekel/hector/pkg/tool"
	"github.com/kadirpekel/hector/pkg/tool/functiontool"
)

// SearchArgs defines the parameters for searching recalled memory.
type SearchArgs struct {
	Query string `json:"query" jsonschema:"required,description=Natural-language query to search recalled memory for"`
}

// New creates the memory_search tool. It performs no writes: it only
// projects tool.Context.SearchMemory onto a callable surface.
func New() (tool.CallableTool, error) {
	return functiontool.New(
		functiontool.Config{
			Name:        "memory_search",
			Description: "Search previously recalled memory (facts, summaries, prior session notes) for information relevant to a query.",
		},
		func(ctx tool.Context, args SearchArgs) (map[string]any, error) {
			if args.Query == "" {
				return nil, fmt.Errorf("query must not be empty")
			}
			resp, err := ctx.SearchMemory(ctx, args.Query)
			if err != nil {
				return nil, fmt.Errorf("memory_search: %w", err)
			}
			results := make([]map[string]any, 0, len(resp.Results))
			for _, r := range resp.Results {
				results = append(results, map[string]any{
					"content":  r.Content,
					"score":    r.Score,
					"metadata": r.Metadata,
				})
			}
			return map[string]any{
				"query":   args.Query,
				"results": results,
				"count":   len(results),
			}, nil
		},
	)
}
