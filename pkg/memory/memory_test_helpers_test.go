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
	"strings"
	"sync"

	"github.com/kadirpekel/hector/pkg/databases"
)

// fakeDB is an in-memory databases.DatabaseProvider stand-in. Search scores
// each stored vector by cosine similarity to the query vector (both are
// fakeEmbedder bag-of-words vectors), which is enough to drive Store/Recall
// tests without a real vector index.
type fakeDB struct {
	mu          sync.Mutex
	collections map[string]bool
	docs        map[string]map[string]fakeDoc // collection -> id -> doc
}

type fakeDoc struct {
	vector []float32
	meta   map[string]interface{}
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		collections: make(map[string]bool),
		docs:        make(map[string]map[string]fakeDoc),
	}
}

func (f *fakeDB) Upsert(ctx context.Context, collection, id string, vector []float32, metadata map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.docs[collection] == nil {
		f.docs[collection] = make(map[string]fakeDoc)
	}
	f.docs[collection][id] = fakeDoc{vector: vector, meta: metadata}
	return nil
}

func (f *fakeDB) Search(ctx context.Context, collection string, vector []float32, topK int) ([]databases.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []databases.SearchResult
	for id, doc := range f.docs[collection] {
		out = append(out, databases.SearchResult{
			ID:       id,
			Score:    cosine(vector, doc.vector),
			Metadata: doc.meta,
		})
	}
	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}

func (f *fakeDB) Delete(ctx context.Context, collection, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs[collection], id)
	return nil
}

func (f *fakeDB) CreateCollection(ctx context.Context, collection string, vectorSize uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.collections[collection] = true
	return nil
}

func (f *fakeDB) DeleteCollection(ctx context.Context, collection string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.collections, collection)
	return nil
}

func (f *fakeDB) Close() error { return nil }

func cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (sqrt(na) * sqrt(nb)))
}

func sqrt(x float64) float64 {
	if x == 0 {
		return 0
	}
	z := x
	for i := 0; i < 30; i++ {
		z -= (z*z - x) / (2 * z)
	}
	return z
}

// fakeEmbedder turns text into a small bag-of-words vector over a fixed
// vocabulary, so similar text yields similar (high-cosine) vectors.
type fakeEmbedder struct {
	dim   int
	vocab []string
}

func newFakeEmbedder(dim int) *fakeEmbedder {
	return &fakeEmbedder{
		dim:   dim,
		vocab: []string{"alice", "bob", "likes", "works", "at", "acme", "corp", "go", "rust", "pizza"},
	}
}

func (e *fakeEmbedder) Embed(text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("empty text")
	}
	vec := make([]float32, e.dim)
	lower := strings.ToLower(text)
	for i, w := range e.vocab {
		if i >= e.dim {
			break
		}
		if strings.Contains(lower, w) {
			vec[i] = 1
		}
	}
	// Ensure a non-zero vector even for unseen vocabulary.
	vec[e.dim-1] += 0.01
	return vec, nil
}

func (e *fakeEmbedder) GetDimension() int   { return e.dim }
func (e *fakeEmbedder) GetModelName() string { return "fake-embedder" }
func (e *fakeEmbedder) Close() error         { return nil }

func newTestStore(t interface{ Helper() }) *Store {
	t.Helper()
	s, err := NewStore(Config{DB: newFakeDB(), Embedder: newFakeEmbedder(10), Collection: "test"})
	if err != nil {
		panic(err)
	}
	return s
}
