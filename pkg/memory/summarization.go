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

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/kadirpekel/hector/pkg/agent"
	"github.com/kadirpekel/hector/pkg/model"
	"github.com/kadirpekel/hector/pkg/utils"
)

const summarizePrompt = "Summarize the following conversation history in a few dense sentences, preserving names, decisions, and open questions. Do not add commentary."

// LLMSummarizerConfig configures an LLMSummarizer.
type LLMSummarizerConfig struct {
	LLM model.LLM
}

// LLMSummarizer folds a run of events into a single summary event by asking
// an LLM for a condensed account of the conversation.
type LLMSummarizer struct {
	llm model.LLM
}

// NewLLMSummarizer creates an LLMSummarizer. The LLM is required.
func NewLLMSummarizer(cfg LLMSummarizerConfig) (*LLMSummarizer, error) {
	if cfg.LLM == nil {
		return nil, &ValidationError{Field: "llm", Reason: "is required"}
	}
	return &LLMSummarizer{llm: cfg.LLM}, nil
}

// Summarize produces a single event carrying a prose summary of events.
func (s *LLMSummarizer) Summarize(ctx context.Context, events []*agent.Event) (*agent.Event, error) {
	var transcript strings.Builder
	for _, ev := range events {
		text := ev.TextContent()
		if text == "" {
			continue
		}
		fmt.Fprintf(&transcript, "%s: %s\n", ev.Author, text)
	}

	req := &model.Request{
		SystemInstruction: summarizePrompt,
		Messages: []*a2a.Message{
			a2a.NewMessage(a2a.MessageRoleUser, a2a.TextPart{Text: transcript.String()}),
		},
	}

	var summary string
	for resp, err := range s.llm.GenerateContent(ctx, req, false) {
		if err != nil {
			return nil, fmt.Errorf("memory: summarization failed: %w", err)
		}
		if resp.Content == nil {
			continue
		}
		for _, part := range resp.Content.Parts {
			if tp, ok := part.(a2a.TextPart); ok {
				summary += tp.Text
			}
		}
	}
	if summary == "" {
		return nil, nil
	}

	return &agent.Event{
		Author:  "summarizer",
		Message: agent.NewTextContent(summary, a2a.MessageRoleAgent).ToMessage(),
	}, nil
}

// SummaryBufferConfig configures SummaryBufferStrategy.
type SummaryBufferConfig struct {
	// Budget is the token ceiling for the retained (unsummarized) tail.
	Budget int
	// Threshold is the fraction of Budget that triggers summarization, e.g.
	// 0.9 summarizes once history exceeds 90% of budget.
	Threshold float64
	// Target is the fraction of Budget the retained tail should shrink to
	// after summarization, e.g. 0.5 keeps the most recent half.
	Target float64
	// Model selects the tokenizer encoding used to estimate event size.
	Model string
	// Summarizer performs the actual condensation.
	Summarizer *LLMSummarizer
}

// SummaryBufferStrategy is the Compactor implementation: it keeps the full
// history in context until the estimated token cost crosses Threshold*Budget,
// then folds the oldest events into a single summary event so the retained
// tail shrinks back to roughly Target*Budget.
type SummaryBufferStrategy struct {
	budget     int
	threshold  float64
	target     float64
	counter    *utils.TokenCounter
	summarizer *LLMSummarizer
}

// NewSummaryBufferStrategy creates a SummaryBufferStrategy. Budget must be
// positive; Threshold and Target default to 0.9 and 0.5 respectively.
func NewSummaryBufferStrategy(cfg SummaryBufferConfig) (*SummaryBufferStrategy, error) {
	if cfg.Budget <= 0 {
		return nil, &ValidationError{Field: "budget", Reason: "must be positive"}
	}
	if cfg.Summarizer == nil {
		return nil, &ValidationError{Field: "summarizer", Reason: "is required"}
	}
	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = 0.9
	}
	target := cfg.Target
	if target <= 0 {
		target = 0.5
	}
	counter, err := utils.NewTokenCounter(cfg.Model)
	if err != nil {
		return nil, err
	}
	return &SummaryBufferStrategy{
		budget:     cfg.Budget,
		threshold:  threshold,
		target:     target,
		counter:    counter,
		summarizer: cfg.Summarizer,
	}, nil
}

func (s *SummaryBufferStrategy) Name() string { return "summary_buffer" }

// FilterEvents is a pass-through: trimming happens only once CheckAndSummarize
// persists a summary event, at which point the session's own history already
// reflects the smaller tail.
func (s *SummaryBufferStrategy) FilterEvents(events []*agent.Event) []*agent.Event {
	return events
}

func (s *SummaryBufferStrategy) totalTokens(events []*agent.Event) int {
	total := 0
	for _, ev := range events {
		total += s.counter.Count(ev.TextContent())
	}
	return total
}

// CheckAndSummarize folds the oldest events into a summary once history
// exceeds Threshold*Budget tokens, keeping only as many of the most recent
// events as fit within Target*Budget tokens.
func (s *SummaryBufferStrategy) CheckAndSummarize(ctx context.Context, events []*agent.Event) (*agent.Event, error) {
	if s.totalTokens(events) <= int(s.threshold*float64(s.budget)) {
		return nil, nil
	}

	targetTokens := int(s.target * float64(s.budget))
	cut := len(events)
	kept := 0
	for i := len(events) - 1; i >= 0; i-- {
		kept += s.counter.Count(events[i].TextContent())
		if kept > targetTokens {
			cut = i + 1
			break
		}
		cut = i
	}
	if cut <= 0 {
		return nil, nil
	}

	return s.summarizer.Summarize(ctx, events[:cut])
}
