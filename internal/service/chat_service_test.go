package service

import (
	"context"
	"errors"
	"testing"

	"omni-backend/internal/dto"
	"omni-backend/pkg/agent"
	"omni-backend/pkg/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	got    workflow.RunInput
	calls  int
	result *workflow.Result
	err    error
}

func (s *stubRunner) Run(_ context.Context, in workflow.RunInput) (*workflow.Result, error) {
	s.calls++
	s.got = in
	return s.result, s.err
}

func simpleResult(answer string) *workflow.Result {
	state := agent.NewState("hi", nil)
	state.Plan = &agent.Plan{Complexity: agent.ComplexitySimple, Goals: []string{}, Steps: []string{}, Constraints: []string{}}
	state.DraftAnswer = answer
	state.SetFinalAnswer(answer)
	return &workflow.Result{State: state, Terminal: workflow.PhaseDone}
}

func TestChatRejectsBlankMessage(t *testing.T) {
	runner := &stubRunner{}
	svc := NewChatService(runner, nil)

	_, err := svc.Chat(context.Background(), &dto.ChatRequest{Message: "   \n\t"})

	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Zero(t, runner.calls)
}

func TestChatTrimsMessageAndCopiesHistory(t *testing.T) {
	runner := &stubRunner{result: simpleResult("Hello!")}
	svc := NewChatService(runner, nil)
	session := "abc"

	resp, err := svc.Chat(context.Background(), &dto.ChatRequest{
		SessionId:   &session,
		Message:     "  hi  ",
		ChatHistory: []dto.ChatMessage{{Role: "user", Content: "earlier"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "hi", runner.got.UserMessage)
	assert.NotEmpty(t, runner.got.RequestID)
	assert.Equal(t, []agent.ChatTurn{{Role: "user", Content: "earlier"}}, runner.got.ChatHistory)

	assert.Equal(t, "abc", *resp.SessionId)
	assert.Equal(t, "Hello!", resp.Answer)
	assert.GreaterOrEqual(t, resp.LatencyMs, 0.0)
	require.NotNil(t, resp.AgentBreakdown)
	assert.Equal(t, "Hello!", resp.AgentBreakdown.DraftAnswer)
	assert.Equal(t, map[string]interface{}{}, resp.AgentBreakdown.Research)
	assert.Equal(t, []string{}, resp.AgentBreakdown.TesterIssues)
}

func TestChatOmitsBreakdownWhenDisabled(t *testing.T) {
	runner := &stubRunner{result: simpleResult("ok")}
	svc := NewChatService(runner, nil)

	resp, err := svc.Chat(context.Background(), &dto.ChatRequest{
		Message:  "hi",
		Settings: map[string]interface{}{"show_agent_breakdown": false},
	})
	require.NoError(t, err)

	assert.Nil(t, resp.SessionId)
	assert.Nil(t, resp.AgentBreakdown)
}

func TestChatFallsBackToDraft(t *testing.T) {
	state := agent.NewState("hi", nil)
	state.DraftAnswer = "draft only"
	state.SetFinalAnswer("")
	runner := &stubRunner{result: &workflow.Result{State: state, Terminal: workflow.PhaseFinalized}}

	resp, err := NewChatService(runner, nil).Chat(context.Background(), &dto.ChatRequest{Message: "hi"})
	require.NoError(t, err)

	assert.Equal(t, "draft only", resp.Answer)
	assert.Equal(t, map[string]interface{}{}, resp.AgentBreakdown.Plan)
}

func TestChatPropagatesWorkflowErrors(t *testing.T) {
	boom := errors.New("boom")
	runner := &stubRunner{err: boom}

	_, err := NewChatService(runner, nil).Chat(context.Background(), &dto.ChatRequest{Message: "hi"})

	assert.ErrorIs(t, err, boom)
}

func TestShowAgentBreakdownDefaults(t *testing.T) {
	assert.True(t, (&dto.ChatRequest{}).ShowAgentBreakdown())
	assert.True(t, (&dto.ChatRequest{Settings: map[string]interface{}{"show_agent_breakdown": "no"}}).ShowAgentBreakdown())
	assert.False(t, (&dto.ChatRequest{Settings: map[string]interface{}{"show_agent_breakdown": false}}).ShowAgentBreakdown())
}
