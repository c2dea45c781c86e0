package enginecache

import (
	"context"
	"io"
	"sync/atomic"
	"testing"

	"github.com/sage-x-project/chat-router/llm"
	"github.com/sage-x-project/chat-router/logger"
	"github.com/sage-x-project/chat-router/rag"
)

type stubQueryEngine struct{}

func (stubQueryEngine) Query(context.Context, string) (rag.Answer, error) {
	return rag.Answer{Text: "stub"}, nil
}

func testLogger() *logger.Logger {
	log := logger.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestEngines(t *testing.T, builds *int32) *Engines {
	t.Helper()
	engines, err := NewEngines(Options{
		OllamaURL:  "http://localhost:11434",
		GuardModel: "llama-guard3",
		QueryBuilder: func(llm.Client) (rag.QueryEngine, error) {
			if builds != nil {
				atomic.AddInt32(builds, 1)
			}
			return stubQueryEngine{}, nil
		},
	}, testLogger())
	if err != nil {
		t.Fatalf("Failed to build engines: %v", err)
	}
	return engines
}

func TestGenerationSharesHandlePerKey(t *testing.T) {
	engines := newTestEngines(t, nil)

	first, err := engines.Generation("mistral", 0)
	if err != nil {
		t.Fatalf("Generation failed: %v", err)
	}
	second, err := engines.Generation("mistral", 0)
	if err != nil {
		t.Fatalf("Generation failed: %v", err)
	}
	if first != second {
		t.Error("Expected shared handle for identical model and temperature")
	}

	warm, err := engines.Generation("mistral", 0.6)
	if err != nil {
		t.Fatalf("Generation failed: %v", err)
	}
	if warm == first {
		t.Error("Expected distinct handle for distinct temperature")
	}
}

func TestModerationPrefersGuardModel(t *testing.T) {
	engines := newTestEngines(t, nil)

	moderation, err := engines.Moderation("mistral")
	if err != nil {
		t.Fatalf("Moderation failed: %v", err)
	}
	guard, err := engines.Generation("llama-guard3", 0)
	if err != nil {
		t.Fatalf("Generation failed: %v", err)
	}
	if moderation != guard {
		t.Error("Expected moderation to reuse the guard model handle")
	}
}

func TestModerationWithoutGuardUsesGeneralModel(t *testing.T) {
	engines, err := NewEngines(Options{
		OllamaURL: "http://localhost:11434",
		QueryBuilder: func(llm.Client) (rag.QueryEngine, error) {
			return stubQueryEngine{}, nil
		},
	}, testLogger())
	if err != nil {
		t.Fatalf("Failed to build engines: %v", err)
	}

	moderation, err := engines.Moderation("mistral")
	if err != nil {
		t.Fatalf("Moderation failed: %v", err)
	}
	general, err := engines.Generation("mistral", 0)
	if err != nil {
		t.Fatalf("Generation failed: %v", err)
	}
	if moderation != general {
		t.Error("Expected moderation fallback to the general model handle")
	}
}

func TestQueryEngineBuiltOncePerModel(t *testing.T) {
	var builds int32
	engines := newTestEngines(t, &builds)

	if _, err := engines.Query("mistral"); err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if _, err := engines.Query("mistral"); err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if builds != 1 {
		t.Errorf("Expected one query engine construction, got %d", builds)
	}

	if _, err := engines.Query("gpt-oss"); err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if builds != 2 {
		t.Errorf("Expected per-model construction, got %d", builds)
	}
}
