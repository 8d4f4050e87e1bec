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

// Package memory implements the long-term memory store (fact ingestion,
// blended recall, entity graph) plus the working-memory strategies that
// keep a running conversation inside its context budget.
package memory

import "time"

// ContentType classifies the origin of a stored memory.
type ContentType string

const (
	ContentFact    ContentType = "fact"
	ContentNote    ContentType = "note"
	ContentWeb     ContentType = "web"
	ContentSession ContentType = "session"
)

// Confidence is a bounded [0,1] score carried by every memory and raised
// when StoreFact sees the same claim again. A contradicting claim does not
// lower it; StoreFact supersedes or keeps the existing memory instead.
type Confidence float64

const (
	MinConfidence Confidence = 0.0
	MaxConfidence Confidence = 1.0
)

// Clamp keeps a confidence value within [0,1].
func (c Confidence) Clamp() Confidence {
	switch {
	case c < MinConfidence:
		return MinConfidence
	case c > MaxConfidence:
		return MaxConfidence
	default:
		return c
	}
}

// Citation attributes a memory to the source it was extracted from.
type Citation struct {
	SessionID string
	EventID   string
	URL       string
}

// Embedding is a fixed-dimension dense vector plus the model that produced it.
type Embedding struct {
	Vector []float32
	Model  string
	Dim    int
}

// Memory is a single stored unit of long-term knowledge: a fact, a note, a
// web snippet, or a session excerpt, with confidence, citations, and
// staleness metadata attached.
type Memory struct {
	ID         string
	Type       ContentType
	Content    string
	Subject    string
	Predicate  string
	Object     string
	Confidence Confidence
	Citations  []Citation
	Embedding  *Embedding
	CreatedAt  time.Time
	UpdatedAt  time.Time
	LastSeenAt   time.Time
	Superseded   bool
	SupersededBy string
	Metadata     map[string]any
}

// IsFactTriple reports whether the memory carries the subject/predicate/object
// shape used by StoreFact's object-equality and supersession rules.
func (m *Memory) IsFactTriple() bool {
	return m.Subject != "" && m.Predicate != "" && m.Object != ""
}

// SearchRequest is a semantic/keyword query against stored memories.
type SearchRequest struct {
	AppName  string
	UserID   string
	Query    string
	TopK     int
	MinScore float64
	Types    []ContentType
}

// SearchResponse is the ranked result of a SearchRequest.
type SearchResponse struct {
	Results []Result
}

// Result is a single ranked memory returned from recall.
type Result struct {
	Memory Memory
	Score  float64
	Stale  bool
}
