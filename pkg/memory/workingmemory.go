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

	"github.com/kadirpekel/hector/pkg/agent"
	"github.com/kadirpekel/hector/pkg/utils"
)

// WorkingMemoryStrategy manages what portion of a session's event history
// stays in the model's context window for the next turn, and decides when
// the older portion should be folded into a summary instead of dropped.
type WorkingMemoryStrategy interface {
	// Name identifies the strategy for logging.
	Name() string

	// FilterEvents returns the subset (or transformation) of events that
	// should be sent to the model this turn.
	FilterEvents(events []*agent.Event) []*agent.Event

	// CheckAndSummarize inspects the full session history and, if the
	// strategy's trigger condition is met, returns a synthesized summary
	// event to persist. Returns a nil event when no summarization is due.
	CheckAndSummarize(ctx context.Context, events []*agent.Event) (*agent.Event, error)
}

// WorkingMemoryProvider is implemented by agents that expose a working
// memory strategy for the runner to drive post-turn summarization.
type WorkingMemoryProvider interface {
	WorkingMemory() WorkingMemoryStrategy
}

// NilWorkingMemory is a no-op strategy that returns all events unchanged and
// never summarizes. Used when no working memory strategy is configured.
type NilWorkingMemory struct{}

func (NilWorkingMemory) Name() string { return "none" }

func (NilWorkingMemory) FilterEvents(events []*agent.Event) []*agent.Event { return events }

func (NilWorkingMemory) CheckAndSummarize(ctx context.Context, events []*agent.Event) (*agent.Event, error) {
	return nil, nil
}

// BufferWindowConfig configures BufferWindowStrategy.
type BufferWindowConfig struct {
	// WindowSize is the number of most recent events kept in context.
	WindowSize int
}

// BufferWindowStrategy keeps a fixed number of the most recent events and
// never summarizes; it is the simplest strategy, useful for short-lived
// sessions where truncation is an acceptable loss.
type BufferWindowStrategy struct {
	windowSize int
}

// NewBufferWindowStrategy creates a BufferWindowStrategy. A non-positive
// WindowSize defaults to 20.
func NewBufferWindowStrategy(cfg BufferWindowConfig) *BufferWindowStrategy {
	size := cfg.WindowSize
	if size <= 0 {
		size = 20
	}
	return &BufferWindowStrategy{windowSize: size}
}

func (s *BufferWindowStrategy) Name() string { return "buffer_window" }

func (s *BufferWindowStrategy) FilterEvents(events []*agent.Event) []*agent.Event {
	if len(events) <= s.windowSize {
		return events
	}
	return events[len(events)-s.windowSize:]
}

func (s *BufferWindowStrategy) CheckAndSummarize(ctx context.Context, events []*agent.Event) (*agent.Event, error) {
	return nil, nil
}

// TokenWindowConfig configures TokenWindowStrategy.
type TokenWindowConfig struct {
	// Budget is the maximum number of tokens of event history to keep.
	Budget int
	// PreserveRecent is a floor on the number of most recent events kept
	// regardless of the token budget, so the model never loses the
	// immediate turn it is responding to.
	PreserveRecent int
	// Model selects the tokenizer encoding used to estimate event size.
	Model string
}

// TokenWindowStrategy drops the oldest events once the estimated token cost
// of the retained history exceeds Budget, always preserving the most recent
// PreserveRecent events.
type TokenWindowStrategy struct {
	budget         int
	preserveRecent int
	counter        *utils.TokenCounter
}

// NewTokenWindowStrategy creates a TokenWindowStrategy. Budget must be
// positive.
func NewTokenWindowStrategy(cfg TokenWindowConfig) (*TokenWindowStrategy, error) {
	if cfg.Budget <= 0 {
		return nil, &ValidationError{Field: "budget", Reason: "must be positive"}
	}
	counter, err := utils.NewTokenCounter(cfg.Model)
	if err != nil {
		return nil, err
	}
	preserve := cfg.PreserveRecent
	if preserve < 0 {
		preserve = 0
	}
	return &TokenWindowStrategy{budget: cfg.Budget, preserveRecent: preserve, counter: counter}, nil
}

func (s *TokenWindowStrategy) Name() string { return "token_window" }

func (s *TokenWindowStrategy) FilterEvents(events []*agent.Event) []*agent.Event {
	if len(events) == 0 {
		return events
	}

	floor := len(events) - s.preserveRecent
	if floor < 0 {
		floor = 0
	}

	total := 0
	keepFrom := len(events)
	for i := len(events) - 1; i >= 0; i-- {
		total += s.counter.Count(events[i].TextContent())
		if total > s.budget && i < floor {
			break
		}
		keepFrom = i
	}
	return events[keepFrom:]
}

func (s *TokenWindowStrategy) CheckAndSummarize(ctx context.Context, events []*agent.Event) (*agent.Event, error) {
	return nil, nil
}
