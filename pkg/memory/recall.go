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
	"fmt"
	"sort"
	"time"

	"github.com/kadirpekel/hector/pkg/agent"
)

const webStalenessDefault = 7 // days; open question (b) default

// vectorWeight/graphWeight/confidenceWeight blend the three recall signals
// into a single ranking score. They sum to 1 so the blended score stays
// comparable to a raw cosine similarity.
const (
	vectorWeight     = 0.6
	graphWeight      = 0.2
	confidenceWeight = 0.2
)

// isStale reports whether a web-sourced memory has aged past the staleness
// threshold. Non-web memories are never considered stale by age alone.
func isStale(m *Memory, webStalenessDays int) bool {
	if m.Type != ContentWeb {
		return false
	}
	if webStalenessDays <= 0 {
		webStalenessDays = webStalenessDefault
	}
	return time.Since(m.LastSeenAt) > time.Duration(webStalenessDays)*24*time.Hour
}

// Recall runs the blended vector+graph+confidence search described for C2:
// embed the query, search the vector index, boost results that sit on an
// entity-graph edge touching the query terms, weight by stored confidence,
// and flag staleness on the way out.
func (s *Store) Recall(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	if req.Query == "" {
		return nil, &ValidationError{Field: "query", Reason: "must not be empty"}
	}
	topK := req.TopK
	if topK <= 0 {
		topK = 10
	}

	vec, err := s.embedder.Embed(req.Query)
	if err != nil {
		return nil, fmt.Errorf("memory: embed query failed: %w", err)
	}

	hits, err := s.db.Search(ctx, s.collection, vec, topK*2)
	if err != nil {
		return nil, fmt.Errorf("memory: search failed: %w", err)
	}

	connected := s.graph.ConnectedSubjects(req.Query)

	results := make([]Result, 0, len(hits))
	for _, h := range hits {
		s.mu.RLock()
		m, ok := s.byID[h.ID]
		s.mu.RUnlock()
		if !ok || m.Superseded {
			continue
		}
		if !typeAllowed(m.Type, req.Types) {
			continue
		}

		graphBoost := 0.0
		if connected[nodeID(m.Subject)] {
			graphBoost = 1.0
		}

		score := vectorWeight*float64(h.Score) +
			graphWeight*graphBoost +
			confidenceWeight*float64(m.Confidence)

		if score < req.MinScore {
			continue
		}

		results = append(results, Result{
			Memory: *m,
			Score:  score,
			Stale:  isStale(m, webStalenessDefault),
		})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > topK {
		results = results[:topK]
	}

	return &SearchResponse{Results: results}, nil
}

func typeAllowed(t ContentType, allowed []ContentType) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == t {
			return true
		}
	}
	return false
}

// Index is the runner.IndexService entry point: it snapshots a session's
// events into the long-term store as ContentSession memories, decoupled
// from the turn loop itself (the arawn background-indexer pattern).
func (s *Store) Index(ctx context.Context, sess agent.Session) error {
	for ev := range sess.Events().All() {
		text := ev.TextContent()
		if text == "" {
			continue
		}
		m := &Memory{
			Type:    ContentSession,
			Content: text,
			Citations: []Citation{{
				SessionID: sess.ID(),
				EventID:   ev.ID,
			}},
		}
		if _, err := s.Store(ctx, m); err != nil {
			return fmt.Errorf("memory: index session %s: %w", sess.ID(), err)
		}
	}
	return nil
}

// Search implements runner.IndexService.Search by delegating to Recall.
// req.AppName and req.UserID are not used: results are drawn from every
// memory in the store, whichever app or user it was indexed for.
func (s *Store) Search(ctx context.Context, req *SearchRequest) (*SearchResponse, error) {
	if req == nil {
		return nil, &ValidationError{Field: "request", Reason: "must not be nil"}
	}
	return s.Recall(ctx, *req)
}
