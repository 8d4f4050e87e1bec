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
	"encoding/json"
	"fmt"
)

// NodeRecord is the relational shape of a GraphNode.
type NodeRecord struct {
	ID         string
	EntityType string
	Properties map[string]any
}

// EdgeRecord is the relational shape of a GraphRelationship.
type EdgeRecord struct {
	FromID           string
	ToID             string
	RelationshipType string
	Label            string
	Properties       map[string]any
}

// SaveNode upserts a graph node by id.
func (s *Store) SaveNode(ctx context.Context, n NodeRecord) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	props, err := json.Marshal(n.Properties)
	if err != nil {
		return fmt.Errorf("store: marshal node properties: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM graph_nodes WHERE id = `+s.placeholder(1), n.ID); err != nil {
		return fmt.Errorf("store: save node: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO graph_nodes (id, entity_type, properties) VALUES (`+placeholders(s, 3)+`)`,
		n.ID, n.EntityType, string(props))
	if err != nil {
		return fmt.Errorf("store: save node: %w", err)
	}
	return nil
}

// SaveEdge upserts a graph edge keyed by (from, to, type, label).
func (s *Store) SaveEdge(ctx context.Context, e EdgeRecord) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	props, err := json.Marshal(e.Properties)
	if err != nil {
		return fmt.Errorf("store: marshal edge properties: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO graph_edges (from_id, to_id, relationship_type, label, properties) VALUES (`+placeholders(s, 5)+`)
		ON CONFLICT (from_id, to_id, relationship_type, label) DO NOTHING`,
		e.FromID, e.ToID, e.RelationshipType, e.Label, string(props))
	if err != nil {
		// Not every dialect's driver supports the ON CONFLICT clause the same
		// way; fall back to an existence check for maximum portability.
		var exists int
		checkErr := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM graph_edges WHERE from_id=`+s.placeholder(1)+
			` AND to_id=`+s.placeholder(2)+` AND relationship_type=`+s.placeholder(3)+` AND label=`+s.placeholder(4),
			e.FromID, e.ToID, e.RelationshipType, e.Label).Scan(&exists)
		if checkErr == nil && exists > 0 {
			return nil
		}
		return fmt.Errorf("store: save edge: %w", err)
	}
	return nil
}

// Neighbors returns the node ids directly connected (in either direction) to
// the given node id.
func (s *Store) Neighbors(ctx context.Context, nodeID string) ([]string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT to_id FROM graph_edges WHERE from_id = `+s.placeholder(1)+
			` UNION SELECT from_id FROM graph_edges WHERE to_id = `+s.placeholder(2),
		nodeID, nodeID)
	if err != nil {
		return nil, fmt.Errorf("store: neighbors: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("store: neighbors: scan: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// GetNode fetches a single graph node by id.
func (s *Store) GetNode(ctx context.Context, id string) (*NodeRecord, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var n NodeRecord
	var props string
	err := s.db.QueryRowContext(ctx, `SELECT id, entity_type, properties FROM graph_nodes WHERE id = `+s.placeholder(1), id).
		Scan(&n.ID, &n.EntityType, &props)
	if err != nil {
		return nil, fmt.Errorf("store: get node: %w", err)
	}
	if props != "" {
		_ = json.Unmarshal([]byte(props), &n.Properties)
	}
	return &n, nil
}
