package agent

import (
	"context"

	"omni-backend/internal/constant"
	"omni-backend/pkg/llm"
)

type Finalizer struct {
	gen Generator
}

func NewFinalizer(gen Generator) *Finalizer {
	return &Finalizer{gen: gen}
}

func (f *Finalizer) Name() string { return StageFinalizer }

func (f *Finalizer) Run(ctx context.Context, state *State) error {
	userPrompt := prompt(constant.FinalizerUserPrompt,
		state.UserMessage,
		state.DraftAnswer,
		renderList(state.TesterIssues),
		renderList(state.TesterFixes),
		renderList(state.SafetyFlags),
	)

	final, err := f.gen.Complete(ctx,
		llm.BuildMessages(constant.FinalizerSystemPrompt, userPrompt),
		llm.WithMaxTokens(stageMaxTokens),
		llm.WithTemperature(textTemperature),
	)
	if err != nil {
		return stageError(StageFinalizer, err)
	}

	state.SetFinalAnswer(final)
	return nil
}
