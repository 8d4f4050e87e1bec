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

	"github.com/kadirpekel/hector/pkg/agent"
)

// adapter bridges an IndexService to the agent.Memory interface consumed by
// the turn engine's InvocationContext.
type adapter struct {
	idx     IndexService
	appName string
	userID  string
}

// NewAdapter wraps an IndexService as an agent.Memory, scoped to one
// app/user pair.
func NewAdapter(idx IndexService, appName, userID string) agent.Memory {
	return &adapter{idx: idx, appName: appName, userID: userID}
}

func (a *adapter) AddSession(ctx context.Context, sess agent.Session) error {
	return a.idx.Index(ctx, sess)
}

func (a *adapter) Search(ctx context.Context, query string) (*agent.MemorySearchResponse, error) {
	resp, err := a.idx.Search(ctx, &SearchRequest{
		AppName: a.appName,
		UserID:  a.userID,
		Query:   query,
	})
	if err != nil {
		return nil, err
	}

	out := &agent.MemorySearchResponse{Results: make([]agent.MemoryResult, 0, len(resp.Results))}
	for _, r := range resp.Results {
		out.Results = append(out.Results, agent.MemoryResult{
			Content: r.Memory.Content,
			Score:   r.Score,
			Metadata: map[string]any{
				"id":     r.Memory.ID,
				"type":   string(r.Memory.Type),
				"stale":  r.Stale,
				"subject": r.Memory.Subject,
			},
		})
	}
	return out, nil
}

// nilMemory is a no-op agent.Memory used when no IndexService is configured.
type nilMemory struct{}

func (nilMemory) AddSession(ctx context.Context, sess agent.Session) error { return nil }

func (nilMemory) Search(ctx context.Context, query string) (*agent.MemorySearchResponse, error) {
	return &agent.MemorySearchResponse{}, nil
}

// NilMemory returns an agent.Memory that stores nothing and finds nothing.
func NilMemory() agent.Memory {
	return nilMemory{}
}
