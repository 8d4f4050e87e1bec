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
)

// Supersede marks oldID as superseded by newID. It is idempotent: calling it
// again with the same (oldID, newID) pair is a no-op, and it fails if oldID
// is already superseded by a different memory.
func (s *Store) Supersede(ctx context.Context, oldID, newID string) error {
	s.mu.Lock()
	old, ok := s.byID[oldID]
	if !ok {
		s.mu.Unlock()
		return &NotFoundError{ID: oldID}
	}
	if old.Superseded {
		if old.SupersededBy == newID {
			s.mu.Unlock()
			return nil
		}
		s.mu.Unlock()
		return &ValidationError{Field: "superseded_by", Reason: "memory " + oldID + " is already superseded by " + old.SupersededBy}
	}
	cp := *old
	cp.Superseded = true
	cp.SupersededBy = newID
	s.mu.Unlock()

	_, err := s.Store(ctx, &cp)
	return err
}

// ListMemories returns stored memories in deterministic order: descending
// created_at, then descending id. contentType filters to a single
// ContentType when non-empty; limit/offset paginate the result.
func (s *Store) ListMemories(contentType ContentType, limit, offset int) []Memory {
	s.mu.RLock()
	all := make([]Memory, 0, len(s.byID))
	for _, m := range s.byID {
		if contentType != "" && m.Type != contentType {
			continue
		}
		all = append(all, *m)
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	if offset >= len(all) {
		return nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all
}

// SearchMemories performs a case-preserving substring match against stored
// content, the fallback search path when no embedder-backed recall is
// wanted (or available). Results are ordered deterministically, same as
// ListMemories, and truncated to limit.
func (s *Store) SearchMemories(substring string, limit int) []Memory {
	s.mu.RLock()
	matches := make([]Memory, 0)
	for _, m := range s.byID {
		if m.Superseded {
			continue
		}
		if strings.Contains(m.Content, substring) {
			matches = append(matches, *m)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		}
		return matches[i].ID > matches[j].ID
	})

	if limit > 0 && limit < len(matches) {
		matches = matches[:limit]
	}
	return matches
}
