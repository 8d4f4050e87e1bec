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
	"strings"
)

// FactOptions tunes the StoreFact supersession protocol.
type FactOptions struct {
	// EqualConfidenceSupersedes decides the tie-break when an incoming fact's
	// confidence equals the existing one for the same (subject, predicate).
	// Default true: the newer fact wins (open question (a)).
	EqualConfidenceSupersedes bool
}

// DefaultFactOptions returns the spec's chosen default behavior.
func DefaultFactOptions() FactOptions {
	return FactOptions{EqualConfidenceSupersedes: true}
}

// sameObject applies the case-insensitive object-equality rule: two facts
// about the same (subject, predicate) refer to the same claim if their
// object strings are equal modulo case and surrounding whitespace.
func sameObject(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// StoreFact ingests a subject/predicate/object triple, reinforcing an
// existing fact with the same object, or superseding a conflicting one
// according to the confidence ordering in opts.
//
// Returns the stored memory and whether an existing fact was superseded.
func (s *Store) StoreFact(ctx context.Context, subject, predicate, object string, confidence Confidence, cites []Citation, opts FactOptions) (*Memory, bool, error) {
	if subject == "" || predicate == "" || object == "" {
		return nil, false, &ValidationError{Field: "fact", Reason: "subject, predicate, and object are all required"}
	}

	existing := s.findActiveFact(subject, predicate)

	if existing != nil && sameObject(existing.Object, object) {
		// S1: reinforcement — same claim seen again, bump confidence and citations.
		existing.Confidence = (existing.Confidence + confidence).Clamp()
		existing.Citations = append(existing.Citations, cites...)
		return s.Store(ctx, existing)
	}

	if existing != nil {
		// S2: conflicting claim — decide supersession by confidence ordering.
		supersede := confidence > existing.Confidence
		if confidence == existing.Confidence {
			supersede = opts.EqualConfidenceSupersedes
		}
		if supersede {
			m := &Memory{
				Type:       ContentFact,
				Content:    subject + " " + predicate + " " + object,
				Subject:    subject,
				Predicate:  predicate,
				Object:     object,
				Confidence: confidence,
				Citations:  cites,
			}
			stored, err := s.Store(ctx, m)
			if err != nil {
				return nil, false, err
			}
			if err := s.Supersede(ctx, existing.ID, stored.ID); err != nil {
				return nil, false, err
			}
			return stored, true, nil
		}
		// Incoming fact loses to the existing higher-confidence claim: no-op.
		return existing, false, nil
	}

	m := &Memory{
		Type:       ContentFact,
		Content:    subject + " " + predicate + " " + object,
		Subject:    subject,
		Predicate:  predicate,
		Object:     object,
		Confidence: confidence,
		Citations:  cites,
	}
	stored, err := s.Store(ctx, m)
	return stored, false, err
}

func (s *Store) findActiveFact(subject, predicate string) *Memory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.byID {
		if m.Superseded || !m.IsFactTriple() {
			continue
		}
		if strings.EqualFold(m.Subject, subject) && strings.EqualFold(m.Predicate, predicate) {
			cp := *m
			return &cp
		}
	}
	return nil
}

// ReevaluateStaleness performs an out-of-band staleness check on a single
// memory, independent of recall, for administrative re-checks outside the
// normal recall path.
func (s *Store) ReevaluateStaleness(id string, webStalenessDays int) (bool, error) {
	m, err := s.Get(id)
	if err != nil {
		return false, err
	}
	return isStale(m, webStalenessDays), nil
}
