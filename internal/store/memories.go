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

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// MemoryRecord is the relational shape of a stored memory: package-local so
// internal/store has no dependency on pkg/memory (C1 sits below C2).
// pkg/memory's Store maps its own Memory type to/from this shape when a
// persistence backend is configured.
type MemoryRecord struct {
	ID                 string
	ContentType        string
	Content            string
	Subject            string
	Predicate          string
	Object             string
	SessionID          string
	ConfidenceSource   string
	ConfidenceScore    float64
	ReinforcementCount int
	Superseded         bool
	SupersededBy       string
	CitationKind       string
	CitationData       string
	Metadata           map[string]any
	CreatedAt          time.Time
	AccessedAt         time.Time
	AccessCount        int
}

// SaveMemory upserts a memory record by id.
func (s *Store) SaveMemory(ctx context.Context, m MemoryRecord) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	meta, err := json.Marshal(m.Metadata)
	if err != nil {
		return fmt.Errorf("store: marshal metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `DELETE FROM memories WHERE id = `+s.placeholder(1), m.ID)
	if err != nil {
		return fmt.Errorf("store: save memory: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO memories (
		id, content_type, content, subject, predicate, object, session_id,
		confidence_source, confidence_score, reinforcement_count, superseded,
		superseded_by, citation_kind, citation_data, metadata, created_at,
		accessed_at, access_count
	) VALUES (`+placeholders(s, 18)+`)`,
		m.ID, m.ContentType, m.Content, m.Subject, m.Predicate, m.Object, m.SessionID,
		m.ConfidenceSource, m.ConfidenceScore, m.ReinforcementCount, boolToInt(m.Superseded),
		m.SupersededBy, m.CitationKind, m.CitationData, string(meta), formatTime(m.CreatedAt),
		formatTime(m.AccessedAt), m.AccessCount)
	if err != nil {
		return fmt.Errorf("store: save memory: %w", err)
	}
	return nil
}

// GetMemory fetches a single memory by id.
func (s *Store) GetMemory(ctx context.Context, id string) (*MemoryRecord, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	row := s.db.QueryRowContext(ctx, `SELECT id, content_type, content, subject, predicate, object,
		session_id, confidence_source, confidence_score, reinforcement_count, superseded,
		superseded_by, citation_kind, citation_data, metadata, created_at, accessed_at, access_count
		FROM memories WHERE id = `+s.placeholder(1), id)
	m, err := scanMemory(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("store: memory %s: %w", id, sql.ErrNoRows)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get memory: %w", err)
	}
	return m, nil
}

// ListMemories returns memories ordered by descending created_at, then
// descending id, optionally filtered to a single content type.
func (s *Store) ListMemories(ctx context.Context, contentType string, limit, offset int) ([]MemoryRecord, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `SELECT id, content_type, content, subject, predicate, object,
		session_id, confidence_source, confidence_score, reinforcement_count, superseded,
		superseded_by, citation_kind, citation_data, metadata, created_at, accessed_at, access_count
		FROM memories`
	var args []any
	if contentType != "" {
		query += ` WHERE content_type = ` + s.placeholder(1)
		args = append(args, contentType)
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	if offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list memories: %w", err)
	}
	defer rows.Close()

	var out []MemoryRecord
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, fmt.Errorf("store: list memories: scan: %w", err)
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// SearchMemories performs a case-preserving substring match against content,
// the fallback search path when no embedder-backed recall is configured.
func (s *Store) SearchMemories(ctx context.Context, substring string, limit int) ([]MemoryRecord, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `SELECT id, content_type, content, subject, predicate, object,
		session_id, confidence_source, confidence_score, reinforcement_count, superseded,
		superseded_by, citation_kind, citation_data, metadata, created_at, accessed_at, access_count
		FROM memories WHERE superseded = 0 AND content LIKE ` + s.placeholder(1) + ` ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query, "%"+escapeLike(substring)+"%")
	if err != nil {
		return nil, fmt.Errorf("store: search memories: %w", err)
	}
	defer rows.Close()

	var out []MemoryRecord
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, fmt.Errorf("store: search memories: scan: %w", err)
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// DeleteMemory removes a memory row by id.
func (s *Store) DeleteMemory(ctx context.Context, id string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	_, err := s.db.ExecContext(ctx, `DELETE FROM memories WHERE id = `+s.placeholder(1), id)
	if err != nil {
		return fmt.Errorf("store: delete memory: %w", err)
	}
	return nil
}

// SaveEmbedding upserts the dense vector for a memory id, stored as a
// little-endian float32 blob.
func (s *Store) SaveEmbedding(ctx context.Context, memoryID, model string, vec []float32) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	blob := encodeVector(vec)
	_, err := s.db.ExecContext(ctx, `DELETE FROM embeddings WHERE memory_id = `+s.placeholder(1), memoryID)
	if err != nil {
		return fmt.Errorf("store: save embedding: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO embeddings (memory_id, model, dim, vector) VALUES (`+placeholders(s, 4)+`)`,
		memoryID, model, len(vec), blob)
	if err != nil {
		return fmt.Errorf("store: save embedding: %w", err)
	}
	return nil
}

// GetEmbedding fetches the stored vector for a memory id.
func (s *Store) GetEmbedding(ctx context.Context, memoryID string) ([]float32, string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var model string
	var dim int
	var blob []byte
	err := s.db.QueryRowContext(ctx, `SELECT model, dim, vector FROM embeddings WHERE memory_id = `+s.placeholder(1), memoryID).
		Scan(&model, &dim, &blob)
	if err != nil {
		return nil, "", fmt.Errorf("store: get embedding: %w", err)
	}
	return decodeVector(blob, dim), model, nil
}

func scanMemory(row interface{ Scan(...any) error }) (*MemoryRecord, error) {
	var m MemoryRecord
	var superseded int
	var createdAt, accessedAt string
	var metaJSON string
	err := row.Scan(&m.ID, &m.ContentType, &m.Content, &m.Subject, &m.Predicate, &m.Object,
		&m.SessionID, &m.ConfidenceSource, &m.ConfidenceScore, &m.ReinforcementCount, &superseded,
		&m.SupersededBy, &m.CitationKind, &m.CitationData, &metaJSON, &createdAt, &accessedAt, &m.AccessCount)
	if err != nil {
		return nil, err
	}
	m.Superseded = superseded != 0
	m.CreatedAt = parseRFC3339(createdAt)
	m.AccessedAt = parseRFC3339(accessedAt)
	if metaJSON != "" {
		_ = json.Unmarshal([]byte(metaJSON), &m.Metadata)
	}
	return &m, nil
}

func placeholders(s *Store, n int) string {
	out := ""
	for i := 1; i <= n; i++ {
		if i > 1 {
			out += ", "
		}
		out += s.placeholder(i)
	}
	return out
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func escapeLike(s string) string {
	r := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '%' || c == '_' {
			r = append(r, '\\')
		}
		r = append(r, c)
	}
	return string(r)
}
