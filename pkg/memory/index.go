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
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kadirpekel/hector/pkg/agent"
)

// IndexService is satisfied by anything that can absorb a session's events
// and answer Recall-shaped searches over them. Store itself is the primary
// implementation, backed by a vector database; KeywordIndexService is the
// dependency-free fallback used when no vector store or embedder is
// configured.
type IndexService interface {
	Index(ctx context.Context, sess agent.Session) error
	Search(ctx context.Context, req *SearchRequest) (*SearchResponse, error)
}

type userKey struct {
	appName string
	userID  string
}

type keywordEntry struct {
	memory Memory
	words  map[string]struct{}
}

// KeywordIndexService is the default index when no vector database is
// configured: it scores session text by word overlap instead of cosine
// similarity. Replace with Store (backed by a vector database) for semantic
// recall.
type KeywordIndexService struct {
	mu    sync.RWMutex
	store map[userKey]map[string][]keywordEntry // session ID -> entries
}

// NewKeywordIndexService creates a keyword-based index service.
func NewKeywordIndexService() *KeywordIndexService {
	return &KeywordIndexService{
		store: make(map[userKey]map[string][]keywordEntry),
	}
}

func (k *KeywordIndexService) Name() string { return "keyword" }

// Index replaces the indexed entries for one session (idempotent re-index).
func (k *KeywordIndexService) Index(ctx context.Context, sess agent.Session) error {
	if sess == nil {
		return nil
	}

	var entries []keywordEntry
	for ev := range sess.Events().All() {
		text := ev.TextContent()
		if text == "" {
			continue
		}
		entries = append(entries, keywordEntry{
			memory: Memory{
				Type:       ContentSession,
				Content:    text,
				LastSeenAt: time.Now(),
				Citations:  []Citation{{SessionID: sess.ID(), EventID: ev.ID}},
				Metadata:   map[string]any{"author": ev.Author},
			},
			words: tokenize(text),
		})
	}

	uk := userKey{appName: sess.AppName(), userID: sess.UserID()}

	k.mu.Lock()
	defer k.mu.Unlock()
	if k.store[uk] == nil {
		k.store[uk] = make(map[string][]keywordEntry)
	}
	k.store[uk][sess.ID()] = entries
	return nil
}

// Search scores indexed entries by the count of query words they contain.
func (k *KeywordIndexService) Search(ctx context.Context, req *SearchRequest) (*SearchResponse, error) {
	if req == nil || req.Query == "" {
		return &SearchResponse{}, nil
	}

	queryWords := tokenize(req.Query)
	uk := userKey{appName: req.AppName, userID: req.UserID}

	k.mu.RLock()
	defer k.mu.RUnlock()

	bySession, ok := k.store[uk]
	if !ok {
		return &SearchResponse{}, nil
	}

	topK := req.TopK
	if topK <= 0 {
		topK = 10
	}

	var results []Result
	for _, entries := range bySession {
		for _, e := range entries {
			score := keywordScore(queryWords, e.words)
			if score <= 0 {
				continue
			}
			results = append(results, Result{Memory: e.memory, Score: score})
		}
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > topK {
		results = results[:topK]
	}
	return &SearchResponse{Results: results}, nil
}

// Ensure both index implementations satisfy IndexService.
var (
	_ IndexService = (*Store)(nil)
	_ IndexService = (*KeywordIndexService)(nil)
)

func tokenize(text string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,!?;:\"'()[]{}")
		if len(w) > 2 {
			words[w] = struct{}{}
		}
	}
	return words
}

func keywordScore(query, doc map[string]struct{}) float64 {
	var score float64
	for w := range query {
		if _, ok := doc[w]; ok {
			score++
		}
	}
	return score
}
