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
	"os"

	"github.com/kadirpekel/hector/pkg/config"
	"github.com/kadirpekel/hector/pkg/embedders"
)

// EmbedderBuilder provides a fluent API for building embedders backed by the
// shared embedders.EmbedderProvider contract.
//
// Example:
//
//	emb, err := builder.NewEmbedder("openai").
//	    Model("text-embedding-3-small").
//	    APIKeyFromEnv("OPENAI_API_KEY").
//	    Build()
type EmbedderBuilder struct {
	cfg config.EmbedderProviderConfig
}

// NewEmbedder creates a new embedder builder.
//
// Supported providers: "openai", "ollama", "cohere".
func NewEmbedder(providerType string) *EmbedderBuilder {
	b := &EmbedderBuilder{cfg: config.EmbedderProviderConfig{Type: providerType}}

	switch providerType {
	case "openai":
		b.cfg.Model = "text-embedding-3-small"
		b.cfg.Dimension = 1536
	case "ollama":
		b.cfg.Model = "nomic-embed-text"
		b.cfg.Host = "http://localhost:11434"
		b.cfg.Dimension = 768
	case "cohere":
		b.cfg.Model = "embed-english-v3.0"
		b.cfg.Dimension = 1024
	}

	return b
}

// Model sets the embedding model name.
func (b *EmbedderBuilder) Model(model string) *EmbedderBuilder {
	b.cfg.Model = model
	return b
}

// Host sets the API base URL / host.
func (b *EmbedderBuilder) Host(host string) *EmbedderBuilder {
	b.cfg.Host = host
	return b
}

// APIKeyFromEnv reads the API key from an environment variable and stashes it
// on the host field for providers that accept it there (matches how
// EmbedderProviderConfig is consumed downstream by each provider constructor).
func (b *EmbedderBuilder) APIKeyFromEnv(envVar string) *EmbedderBuilder {
	if key := os.Getenv(envVar); key != "" {
		b.cfg.Host = key
	}
	return b
}

// Dimension sets the expected embedding dimension.
func (b *EmbedderBuilder) Dimension(dim int) *EmbedderBuilder {
	if dim <= 0 {
		panic("dimension must be positive")
	}
	b.cfg.Dimension = dim
	return b
}

// Timeout sets the API request timeout in seconds.
func (b *EmbedderBuilder) Timeout(seconds int) *EmbedderBuilder {
	b.cfg.Timeout = seconds
	return b
}

// MaxRetries sets the max retry attempts for transient embedder failures.
func (b *EmbedderBuilder) MaxRetries(n int) *EmbedderBuilder {
	b.cfg.MaxRetries = n
	return b
}

// Build creates the embedder.
func (b *EmbedderBuilder) Build() (embedders.EmbedderProvider, error) {
	if b.cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	switch b.cfg.Type {
	case "openai":
		return embedders.NewOpenAIEmbedderFromConfig(&b.cfg)
	case "ollama", "":
		return embedders.NewOllamaEmbedderFromConfig(&b.cfg)
	case "cohere":
		return embedders.NewCohereEmbedderFromConfig(&b.cfg)
	default:
		return nil, fmt.Errorf("unknown embedder provider: %s (supported: openai, ollama, cohere)", b.cfg.Type)
	}
}

// MustBuild creates the embedder or panics on error.
func (b *EmbedderBuilder) MustBuild() embedders.EmbedderProvider {
	emb, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build embedder: %v", err))
	}
	return emb
}

// EmbedderFromConfig creates an EmbedderBuilder from a config.EmbedderProviderConfig.
func EmbedderFromConfig(cfg *config.EmbedderProviderConfig) *EmbedderBuilder {
	if cfg == nil {
		return NewEmbedder("")
	}
	return &EmbedderBuilder{cfg: *cfg}
}
