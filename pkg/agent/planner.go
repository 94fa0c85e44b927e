package agent

import (
	"context"

	"omni-backend/internal/constant"
	"omni-backend/pkg/llm"
)

type Planner struct {
	gen Generator
}

func NewPlanner(gen Generator) *Planner {
	return &Planner{gen: gen}
}

func (p *Planner) Name() string { return StagePlanner }

func (p *Planner) Run(ctx context.Context, state *State) error {
	userPrompt := prompt(constant.PlannerUserPrompt, state.UserMessage, RenderHistory(state.ChatHistory))

	result, err := p.gen.CompleteStructured(ctx,
		llm.BuildMessages(constant.PlannerSystemPrompt, userPrompt),
		llm.WithMaxTokens(stageMaxTokens),
		llm.WithTemperature(structuredTemperature),
	)
	if err != nil {
		return stageError(StagePlanner, err)
	}

	plan := NormalizePlan(result)
	state.Plan = &plan
	return nil
}
