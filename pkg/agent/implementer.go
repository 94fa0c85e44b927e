package agent

import (
	"context"

	"omni-backend/internal/constant"
	"omni-backend/pkg/llm"
)

// Implementer writes the draft answer.
type Implementer struct {
	gen Generator
}

func NewImplementer(gen Generator) *Implementer {
	return &Implementer{gen: gen}
}

func (i *Implementer) Name() string { return StageImplementer }

func (i *Implementer) Run(ctx context.Context, state *State) error {
	plan := constant.NoExplicitPlan
	if state.Plan != nil {
		plan = renderJSON(state.Plan)
	}
	summary, sources := researchParts(state.Research)

	userPrompt := prompt(constant.ImplementerUserPrompt, state.UserMessage, plan, summary, sources)

	draft, err := i.gen.Complete(ctx,
		llm.BuildMessages(constant.ImplementerSystemPrompt, userPrompt),
		llm.WithMaxTokens(stageMaxTokens),
		llm.WithTemperature(textTemperature),
	)
	if err != nil {
		return stageError(StageImplementer, err)
	}

	state.DraftAnswer = draft
	return nil
}
