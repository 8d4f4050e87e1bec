// SPDX-License-Identifier: AGPL-3.0
// Copyright 2025 Kadir Pekel
//
// Licensed under the GNU Affero General Public License v3.0 (AGPL-3.0) (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.gnu.org/licenses/agpl-3.0.en.html
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package builder

import (
	"fmt"

	"github.com/kadirpekel/hector/pkg/config"
	"github.com/kadirpekel/hector/pkg/databases"
)

// VectorProviderBuilder provides a fluent API for building vector database
// providers backed by the shared databases.DatabaseProvider contract.
//
// Example:
//
//	provider, err := builder.NewVectorProvider("qdrant").
//	    Host("localhost").
//	    Port(6333).
//	    Build()
type VectorProviderBuilder struct {
	cfg config.VectorStoreConfig
}

// NewVectorProvider creates a new vector provider builder.
//
// Supported providers: "qdrant" (also the default for ""), "pinecone",
// "chroma", "milvus", "weaviate".
func NewVectorProvider(providerType string) *VectorProviderBuilder {
	return &VectorProviderBuilder{cfg: config.VectorStoreConfig{Type: providerType}}
}

// PersistPath sets the file path for persistent storage (chromem).
func (b *VectorProviderBuilder) PersistPath(path string) *VectorProviderBuilder {
	b.cfg.PersistPath = path
	return b
}

// Compress enables/disables compression for persistent storage (chromem).
func (b *VectorProviderBuilder) Compress(compress bool) *VectorProviderBuilder {
	b.cfg.Compress = compress
	return b
}

// Host sets the server host for remote providers.
func (b *VectorProviderBuilder) Host(host string) *VectorProviderBuilder {
	b.cfg.Host = host
	return b
}

// Port sets the server port for remote providers.
func (b *VectorProviderBuilder) Port(port int) *VectorProviderBuilder {
	if port <= 0 {
		panic("port must be positive")
	}
	b.cfg.Port = port
	return b
}

// APIKey sets the API key for cloud providers.
func (b *VectorProviderBuilder) APIKey(key string) *VectorProviderBuilder {
	b.cfg.APIKey = key
	return b
}

// UseTLS enables TLS for secure connections.
func (b *VectorProviderBuilder) UseTLS(useTLS bool) *VectorProviderBuilder {
	b.cfg.EnableTLS = &useTLS
	return b
}

// IndexName sets the index name (Pinecone).
func (b *VectorProviderBuilder) IndexName(name string) *VectorProviderBuilder {
	b.cfg.IndexName = name
	return b
}

// Collection sets the default collection name.
func (b *VectorProviderBuilder) Collection(name string) *VectorProviderBuilder {
	b.cfg.Collection = name
	return b
}

// Build creates the vector provider.
func (b *VectorProviderBuilder) Build() (databases.DatabaseProvider, error) {
	switch b.cfg.Type {
	case "qdrant", "":
		return databases.NewQdrantDatabaseProviderFromConfig(&b.cfg)
	case "pinecone":
		if b.cfg.APIKey == "" {
			return nil, fmt.Errorf("API key is required for Pinecone")
		}
		return databases.NewPineconeDatabaseProviderFromConfig(&b.cfg)
	case "chroma":
		return databases.NewChromaDatabaseProviderFromConfig(&b.cfg)
	case "milvus":
		return databases.NewMilvusDatabaseProviderFromConfig(&b.cfg)
	case "weaviate":
		return databases.NewWeaviateDatabaseProviderFromConfig(&b.cfg)
	default:
		return nil, fmt.Errorf("unknown vector provider: %s (supported: qdrant, pinecone, chroma, milvus, weaviate)", b.cfg.Type)
	}
}

// MustBuild creates the vector provider or panics on error.
func (b *VectorProviderBuilder) MustBuild() databases.DatabaseProvider {
	provider, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build vector provider: %v", err))
	}
	return provider
}

// VectorProviderFromConfig builds a VectorProviderBuilder from a loaded config.
func VectorProviderFromConfig(cfg *config.VectorStoreConfig) *VectorProviderBuilder {
	if cfg == nil {
		return NewVectorProvider("")
	}
	return &VectorProviderBuilder{cfg: *cfg}
}
