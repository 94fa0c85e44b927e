package agent

import (
	"context"

	"omni-backend/internal/constant"
	"omni-backend/pkg/llm"
)

// Tester reviews the draft and records issues, fixes and safety flags.
type Tester struct {
	gen Generator
}

func NewTester(gen Generator) *Tester {
	return &Tester{gen: gen}
}

func (t *Tester) Name() string { return StageTester }

func (t *Tester) Run(ctx context.Context, state *State) error {
	plan := ""
	if state.Plan != nil {
		plan = renderJSON(state.Plan)
	}
	summary, sources := researchParts(state.Research)

	userPrompt := prompt(constant.TesterUserPrompt, state.UserMessage, plan, summary, sources, state.DraftAnswer)

	result, err := t.gen.CompleteStructured(ctx,
		llm.BuildMessages(constant.TesterSystemPrompt, userPrompt),
		llm.WithMaxTokens(stageMaxTokens),
		llm.WithTemperature(structuredTemperature),
	)
	if err != nil {
		return stageError(StageTester, err)
	}

	review := NormalizeTesterReview(result)
	state.TesterIssues = review.Issues
	state.TesterFixes = review.Fixes
	state.SafetyFlags = review.SafetyFlags
	return nil
}
