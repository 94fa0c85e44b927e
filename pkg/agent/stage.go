package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"omni-backend/pkg/llm"
	"omni-backend/pkg/rag"
)

const (
	StagePlanner     = "planner"
	StageResearcher  = "researcher"
	StageImplementer = "implementer"
	StageTester      = "tester"
	StageFinalizer   = "finalizer"
)

// Stage reads the fields it needs from the state and writes back the ones it owns.
type Stage interface {
	Name() string
	Run(ctx context.Context, state *State) error
}

// Generator is the generation boundary as seen by stages. *llm.Client satisfies it.
type Generator interface {
	Complete(ctx context.Context, messages []llm.Message, options ...llm.Option) (string, error)
	CompleteStructured(ctx context.Context, messages []llm.Message, options ...llm.Option) (llm.StructuredResult, error)
}

// Retriever is the retrieval boundary used by the research stage. *rag.Pipeline satisfies it.
type Retriever interface {
	Run(ctx context.Context, query string, opts rag.RunOptions) (rag.RagResult, error)
}

// Generation settings per stage. The client applies its hard cap on top of MaxTokens.
const (
	stageMaxTokens        = 128
	structuredTemperature = 0.2
	textTemperature       = 0.3
)

func prompt(template string, args ...any) string {
	return strings.TrimSpace(fmt.Sprintf(template, args...))
}

func renderJSON(value any) string {
	b, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	return string(b)
}

func renderList(values []string) string {
	if values == nil {
		values = []string{}
	}
	return renderJSON(values)
}

func researchParts(research *Research) (summary, sources string) {
	if research == nil {
		return "", "[]"
	}
	list := research.Sources
	if list == nil {
		list = []rag.RetrievedSource{}
	}
	return research.Summary, renderJSON(list)
}

func stageError(stage string, err error) error {
	return fmt.Errorf("%s stage: %w", stage, err)
}
