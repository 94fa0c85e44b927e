package agent

import (
	"context"

	"omni-backend/internal/constant"
	"omni-backend/pkg/rag"
)

type Researcher struct {
	retriever Retriever
}

func NewResearcher(retriever Retriever) *Researcher {
	return &Researcher{retriever: retriever}
}

func (r *Researcher) Name() string { return StageResearcher }

func (r *Researcher) Run(ctx context.Context, state *State) error {
	result, err := r.retriever.Run(ctx, state.UserMessage, rag.RunOptions{Plan: state.Plan})
	if err != nil {
		return stageError(StageResearcher, err)
	}

	sources := result.Sources
	if sources == nil {
		sources = []rag.RetrievedSource{}
	}
	state.Research = &Research{
		Summary:    result.Summary,
		Sources:    sources,
		RawContext: result.RawContext,
	}
	return nil
}

// SkippedResearch is recorded instead of running retrieval when the plan does not need it.
func SkippedResearch() *Research {
	return &Research{
		Summary: constant.ResearchSkippedSummary,
		Sources: []rag.RetrievedSource{},
	}
}
