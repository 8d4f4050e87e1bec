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
	"fmt"
)

// CatalogEntryRecord is the relational shape of a pipeline runtime catalog
// entry (pkg/pipeline.CatalogEntry's persisted form).
type CatalogEntryRecord struct {
	Name        string
	Description string
	Path        string
	Category    string
}

// SaveCatalogEntry upserts a runtime catalog entry by name.
func (s *Store) SaveCatalogEntry(ctx context.Context, e CatalogEntryRecord) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if _, err := s.db.ExecContext(ctx, `DELETE FROM runtime_catalog WHERE name = `+s.placeholder(1), e.Name); err != nil {
		return fmt.Errorf("store: save catalog entry: %w", err)
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO runtime_catalog (name, description, path, category) VALUES (`+placeholders(s, 4)+`)`,
		e.Name, e.Description, e.Path, e.Category)
	if err != nil {
		return fmt.Errorf("store: save catalog entry: %w", err)
	}
	return nil
}

// DeleteCatalogEntry removes a catalog entry by name.
func (s *Store) DeleteCatalogEntry(ctx context.Context, name string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	_, err := s.db.ExecContext(ctx, `DELETE FROM runtime_catalog WHERE name = `+s.placeholder(1), name)
	if err != nil {
		return fmt.Errorf("store: delete catalog entry: %w", err)
	}
	return nil
}

// ListCatalogEntries returns every registered runtime catalog entry.
func (s *Store) ListCatalogEntries(ctx context.Context) ([]CatalogEntryRecord, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, `SELECT name, description, path, category FROM runtime_catalog ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("store: list catalog entries: %w", err)
	}
	defer rows.Close()

	var out []CatalogEntryRecord
	for rows.Next() {
		var e CatalogEntryRecord
		if err := rows.Scan(&e.Name, &e.Description, &e.Path, &e.Category); err != nil {
			return nil, fmt.Errorf("store: list catalog entries: scan: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetCatalogEntry fetches a single catalog entry by name.
func (s *Store) GetCatalogEntry(ctx context.Context, name string) (*CatalogEntryRecord, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	var e CatalogEntryRecord
	err := s.db.QueryRowContext(ctx, `SELECT name, description, path, category FROM runtime_catalog WHERE name = `+s.placeholder(1), name).
		Scan(&e.Name, &e.Description, &e.Path, &e.Category)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("store: catalog entry %s: %w", name, sql.ErrNoRows)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get catalog entry: %w", err)
	}
	return &e, nil
}

// SaveWorkflowDefinition persists a workflow's bit-exact TOML source, keyed
// by its name (round-trip lossless per spec.md §8).
func (s *Store) SaveWorkflowDefinition(ctx context.Context, name, toml string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if _, err := s.db.ExecContext(ctx, `DELETE FROM workflow_definitions WHERE name = `+s.placeholder(1), name); err != nil {
		return fmt.Errorf("store: save workflow: %w", err)
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO workflow_definitions (name, toml, created_at) VALUES (`+placeholders(s, 3)+`)`,
		name, toml, nowRFC3339())
	if err != nil {
		return fmt.Errorf("store: save workflow: %w", err)
	}
	return nil
}

// GetWorkflowDefinition fetches a workflow's persisted TOML source by name.
func (s *Store) GetWorkflowDefinition(ctx context.Context, name string) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	var toml string
	err := s.db.QueryRowContext(ctx, `SELECT toml FROM workflow_definitions WHERE name = `+s.placeholder(1), name).Scan(&toml)
	if err != nil {
		return "", fmt.Errorf("store: get workflow: %w", err)
	}
	return toml, nil
}
