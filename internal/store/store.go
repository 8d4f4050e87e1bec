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

// Package store is the relational substrate underneath the memory store: a
// single SQL database (sqlite/postgres/mysql, selected by config.DatabaseConfig)
// holding memories, embeddings, graph nodes, graph edges, and the pipeline
// runtime's catalog/workflow tables. Schema migrations are forward-only and
// applied once at Open, mirroring pkg/config's DBPool single-writer-for-sqlite
// convention.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kadirpekel/hector/pkg/config"
)

// Store owns a pooled *sql.DB plus the dialect-specific query placeholders
// needed to support postgres ($1, $2, ...), mysql/sqlite (?, ?, ...).
type Store struct {
	db      *sql.DB
	dialect string
	pool    *config.DBPool
}

// Open opens (or reuses, via the shared pool) a connection for cfg, applies
// pending migrations, and returns a ready Store. The caller owns the pool
// and should Close it on shutdown; Store.Close does not close shared
// connections out from under other consumers of the same pool.
func Open(ctx context.Context, pool *config.DBPool, cfg *config.DatabaseConfig) (*Store, error) {
	if pool == nil {
		pool = config.NewDBPool()
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("store: invalid database config: %w", err)
	}

	db, err := pool.Get(cfg)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}

	s := &Store{db: db, dialect: cfg.Dialect(), pool: pool}
	if err := s.migrate(ctx); err != nil {
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return s, nil
}

// Close does nothing and returns nil. The pool itself (and any connections
// shared with other Stores) is closed by its owner, not here.
func (s *Store) Close() error {
	return nil
}

// DB exposes the raw *sql.DB for callers (e.g. the pipeline catalog) that
// need table access this package does not wrap directly.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the normalized SQL dialect ("postgres", "mysql", "sqlite").
func (s *Store) Dialect() string {
	return s.dialect
}

// placeholder returns the positional parameter marker for argument index n
// (1-based) in the store's dialect.
func (s *Store) placeholder(n int) string {
	if s.dialect == "postgres" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 10*time.Second)
}
