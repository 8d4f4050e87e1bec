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

package main

import (
	"context"
	"fmt"

	"github.com/kadirpekel/hector/pkg/pipeline"
)

// pipelineRuntime bundles the catalog and the executor built on top of the
// wazero sandbox runtime, so cmd/cortex has one thing to hold onto.
type pipelineRuntime struct {
	catalog  *pipeline.Catalog
	executor *pipeline.Executor
}

// buildPipeline wires the wazero sandbox runtime, on-disk catalog, and DAG
// executor when [pipeline] is configured. Persistence is left unset (nil):
// cmd/cortex has no [database] section of its own, so the catalog is
// file-backed only, matching pipeline.NewCatalog's documented nil-persist
// path rather than requiring a database just to run a workflow task.
func buildPipeline(ctx context.Context, cfg *pipelineSection) (*pipelineRuntime, error) {
	if cfg == nil {
		return nil, nil
	}

	root := cfg.CatalogRoot
	if root == "" {
		root = ".cortex/pipeline"
	}

	rt, err := pipeline.NewRuntime(ctx)
	if err != nil {
		return nil, fmt.Errorf("pipeline runtime: %w", err)
	}

	catalog, err := pipeline.NewCatalog(root, nil)
	if err != nil {
		return nil, fmt.Errorf("pipeline catalog: %w", err)
	}

	executor := pipeline.NewExecutor(catalog, rt, cfg.MaxConcurrent)
	return &pipelineRuntime{catalog: catalog, executor: executor}, nil
}
