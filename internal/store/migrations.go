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
	"fmt"
)

// migration is one forward-only schema step. Migrations never run in
// reverse; applying an already-applied id is a no-op.
type migration struct {
	id  string
	ddl string
}

// migrations is ordered; every entry uses textual primary keys (memory and
// session ids are already 128-bit opaque strings per spec.md, so there is
// no dialect-specific autoincrement syntax to reconcile across
// sqlite/postgres/mysql).
var migrations = []migration{
	{
		id: "0001_schema_migrations",
		ddl: `CREATE TABLE IF NOT EXISTS schema_migrations (
			id TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL
		)`,
	},
	{
		id: "0002_memories",
		ddl: `CREATE TABLE IF NOT EXISTS memories (
			id TEXT PRIMARY KEY,
			content_type TEXT NOT NULL,
			content TEXT NOT NULL,
			subject TEXT,
			predicate TEXT,
			object TEXT,
			session_id TEXT,
			confidence_source TEXT,
			confidence_score REAL NOT NULL,
			reinforcement_count INTEGER NOT NULL DEFAULT 0,
			superseded INTEGER NOT NULL DEFAULT 0,
			superseded_by TEXT,
			citation_kind TEXT,
			citation_data TEXT,
			metadata TEXT,
			created_at TEXT NOT NULL,
			accessed_at TEXT,
			access_count INTEGER NOT NULL DEFAULT 0
		)`,
	},
	{
		id: "0003_memories_indices",
		ddl: `CREATE INDEX IF NOT EXISTS idx_memories_subject_predicate ON memories(subject, predicate)`,
	},
	{
		id: "0004_embeddings",
		ddl: `CREATE TABLE IF NOT EXISTS embeddings (
			memory_id TEXT PRIMARY KEY,
			model TEXT NOT NULL,
			dim INTEGER NOT NULL,
			vector BLOB NOT NULL
		)`,
	},
	{
		id: "0005_graph_nodes",
		ddl: `CREATE TABLE IF NOT EXISTS graph_nodes (
			id TEXT PRIMARY KEY,
			entity_type TEXT,
			properties TEXT
		)`,
	},
	{
		id: "0006_graph_edges",
		ddl: `CREATE TABLE IF NOT EXISTS graph_edges (
			from_id TEXT NOT NULL,
			to_id TEXT NOT NULL,
			relationship_type TEXT NOT NULL,
			label TEXT NOT NULL,
			properties TEXT,
			PRIMARY KEY (from_id, to_id, relationship_type, label)
		)`,
	},
	{
		id: "0007_sessions",
		ddl: `CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			workstream_id TEXT NOT NULL DEFAULT 'scratch',
			metadata TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
	},
	{
		id: "0008_runtime_catalog",
		ddl: `CREATE TABLE IF NOT EXISTS runtime_catalog (
			name TEXT PRIMARY KEY,
			description TEXT,
			path TEXT NOT NULL,
			category TEXT NOT NULL
		)`,
	},
	{
		id: "0009_workflow_definitions",
		ddl: `CREATE TABLE IF NOT EXISTS workflow_definitions (
			name TEXT PRIMARY KEY,
			description TEXT,
			toml TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
	},
}

// migrate applies every migration not already recorded in schema_migrations,
// in order, inside its own transaction. The disk-backed schema_migrations
// table is authoritative: an id present there is never re-applied.
func (s *Store) migrate(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, migrations[0].ddl); err != nil {
		return fmt.Errorf("bootstrap schema_migrations: %w", err)
	}

	applied := make(map[string]bool)
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM schema_migrations")
	if err != nil {
		return fmt.Errorf("read schema_migrations: %w", err)
	}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("scan schema_migrations: %w", err)
		}
		applied[id] = true
	}
	rows.Close()

	for _, m := range migrations {
		if applied[m.id] {
			continue
		}
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("migration %s: begin: %w", m.id, err)
		}
		if _, err := tx.ExecContext(ctx, m.ddl); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %s: %w", m.id, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO schema_migrations (id, applied_at) VALUES ("+s.placeholder(1)+", "+s.placeholder(2)+")",
			m.id, nowRFC3339()); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %s: record: %w", m.id, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %s: commit: %w", m.id, err)
		}
	}
	return nil
}
