package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"omni-backend/internal/dto"
	"omni-backend/internal/pkg/logger"
	"omni-backend/pkg/agent"
	"omni-backend/pkg/workflow"

	"github.com/google/uuid"
)

var ErrEmptyMessage = errors.New("message must not be empty")

// IChatService runs one user message through the agent workflow.
type IChatService interface {
	Chat(ctx context.Context, request *dto.ChatRequest) (*dto.ChatResponse, error)
}

// WorkflowRunner is satisfied by *workflow.Orchestrator.
type WorkflowRunner interface {
	Run(ctx context.Context, in workflow.RunInput) (*workflow.Result, error)
}

type chatService struct {
	workflow WorkflowRunner
	logger   logger.ILogger
}

func NewChatService(runner WorkflowRunner, log logger.ILogger) IChatService {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &chatService{
		workflow: runner,
		logger:   log,
	}
}

func (cs *chatService) Chat(ctx context.Context, request *dto.ChatRequest) (*dto.ChatResponse, error) {
	message := strings.TrimSpace(request.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	requestID := uuid.NewString()
	history := make([]agent.ChatTurn, 0, len(request.ChatHistory))
	for _, m := range request.ChatHistory {
		history = append(history, agent.ChatTurn{Role: m.Role, Content: m.Content})
	}

	cs.logger.Info("CHAT", "Chat request received", map[string]interface{}{
		"request_id":     requestID,
		"session_id":     sessionLabel(request.SessionId),
		"history_length": len(history),
	})

	started := time.Now()
	result, err := cs.workflow.Run(ctx, workflow.RunInput{
		RequestID:   requestID,
		UserMessage: message,
		ChatHistory: history,
	})
	if err != nil {
		cs.logger.Error("CHAT", "Workflow failed", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		return nil, err
	}
	latencyMs := float64(time.Since(started).Microseconds()) / 1000.0

	state := result.State
	response := &dto.ChatResponse{
		SessionId: request.SessionId,
		Answer:    state.Answer(),
		LatencyMs: latencyMs,
	}
	if request.ShowAgentBreakdown() {
		response.AgentBreakdown = buildBreakdown(state)
	}

	cs.logger.Info("CHAT", "Chat request completed", map[string]interface{}{
		"request_id": requestID,
		"terminal":   string(result.Terminal),
		"latency_ms": latencyMs,
	})

	return response, nil
}

func buildBreakdown(state *agent.State) *dto.AgentBreakdown {
	breakdown := &dto.AgentBreakdown{
		Plan:         map[string]interface{}{},
		Research:     map[string]interface{}{},
		DraftAnswer:  state.DraftAnswer,
		TesterIssues: nonNil(state.TesterIssues),
		TesterFixes:  nonNil(state.TesterFixes),
		SafetyFlags:  nonNil(state.SafetyFlags),
	}
	if state.Plan != nil {
		breakdown.Plan = state.Plan
	}
	if state.Research != nil {
		breakdown.Research = state.Research
	}
	return breakdown
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

func sessionLabel(id *string) string {
	if id == nil {
		return ""
	}
	return *id
}
