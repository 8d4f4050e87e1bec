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
	"iter"
	"testing"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/kadirpekel/hector/pkg/model"
)

// fakeLLM echoes a fixed summary, regardless of the request, so
// SummaryBufferStrategy tests don't depend on a real provider.
type fakeLLM struct{ summary string }

func (f *fakeLLM) Name() string            { return "fake-llm" }
func (f *fakeLLM) Provider() model.Provider { return model.ProviderOpenAI }
func (f *fakeLLM) Close() error             { return nil }

func (f *fakeLLM) GenerateContent(ctx context.Context, req *model.Request, stream bool) iter.Seq2[*model.Response, error] {
	return func(yield func(*model.Response, error) bool) {
		yield(&model.Response{
			Content: &model.Content{
				Parts: []a2a.Part{a2a.TextPart{Text: f.summary}},
				Role:  a2a.MessageRoleAgent,
			},
		}, nil)
	}
}

func TestLLMSummarizer_Summarize(t *testing.T) {
	summarizer, err := NewLLMSummarizer(LLMSummarizerConfig{LLM: &fakeLLM{summary: "Alice and Bob discussed Acme Corp."}})
	if err != nil {
		t.Fatalf("NewLLMSummarizer() error = %v", err)
	}

	ev, err := summarizer.Summarize(context.Background(), eventsOfLen(3))
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if ev == nil {
		t.Fatal("expected a summary event")
	}
	if ev.TextContent() != "Alice and Bob discussed Acme Corp." {
		t.Errorf("unexpected summary content: %q", ev.TextContent())
	}
	if ev.Author != "summarizer" {
		t.Errorf("expected author 'summarizer', got %q", ev.Author)
	}
}

func TestNewLLMSummarizer_RequiresLLM(t *testing.T) {
	if _, err := NewLLMSummarizer(LLMSummarizerConfig{}); err == nil {
		t.Error("expected error when LLM is nil")
	}
}

func TestNewSummaryBufferStrategy_RequiresBudgetAndSummarizer(t *testing.T) {
	summarizer, _ := NewLLMSummarizer(LLMSummarizerConfig{LLM: &fakeLLM{summary: "x"}})

	if _, err := NewSummaryBufferStrategy(SummaryBufferConfig{Budget: 0, Summarizer: summarizer}); err == nil {
		t.Error("expected error for non-positive budget")
	}
	if _, err := NewSummaryBufferStrategy(SummaryBufferConfig{Budget: 100}); err == nil {
		t.Error("expected error for missing summarizer")
	}
}

func TestSummaryBufferStrategy_CheckAndSummarize(t *testing.T) {
	summarizer, err := NewLLMSummarizer(LLMSummarizerConfig{LLM: &fakeLLM{summary: "condensed history"}})
	if err != nil {
		t.Fatalf("NewLLMSummarizer() error = %v", err)
	}

	strategy, err := NewSummaryBufferStrategy(SummaryBufferConfig{
		Budget:     10,
		Threshold:  0.5,
		Target:     0.5,
		Summarizer: summarizer,
	})
	if err != nil {
		t.Fatalf("NewSummaryBufferStrategy() error = %v", err)
	}

	t.Run("below threshold does nothing", func(t *testing.T) {
		ev, err := strategy.CheckAndSummarize(context.Background(), eventsOfLen(1))
		if err != nil {
			t.Fatalf("CheckAndSummarize() error = %v", err)
		}
		if ev != nil {
			t.Errorf("expected no summarization below threshold, got %+v", ev)
		}
	})

	t.Run("above threshold summarizes", func(t *testing.T) {
		ev, err := strategy.CheckAndSummarize(context.Background(), eventsOfLen(20))
		if err != nil {
			t.Fatalf("CheckAndSummarize() error = %v", err)
		}
		if ev == nil {
			t.Fatal("expected a summary event once history exceeds threshold")
		}
		if ev.TextContent() != "condensed history" {
			t.Errorf("unexpected summary content: %q", ev.TextContent())
		}
	})
}
