package dto

type ChatMessage struct {
	Role    string `json:"role" validate:"max=32"` // "user" | "assistant" | "system"
	Content string `json:"content"`
}

type ChatRequest struct {
	SessionId   *string                `json:"session_id"`
	Message     string                 `json:"message"`
	ChatHistory []ChatMessage          `json:"chat_history" validate:"omitempty,max=200,dive"`
	Settings    map[string]interface{} `json:"settings"` // e.g. show_agent_breakdown
}

// ShowAgentBreakdown reads settings.show_agent_breakdown; anything but an explicit false keeps it on.
func (r *ChatRequest) ShowAgentBreakdown() bool {
	if r.Settings == nil {
		return true
	}
	if v, ok := r.Settings["show_agent_breakdown"].(bool); ok {
		return v
	}
	return true
}

type AgentBreakdown struct {
	Plan         interface{} `json:"plan"`
	Research     interface{} `json:"research"`
	DraftAnswer  string      `json:"draft_answer"`
	TesterIssues []string    `json:"tester_issues"`
	TesterFixes  []string    `json:"tester_fixes"`
	SafetyFlags  []string    `json:"safety_flags"`
}

type ChatResponse struct {
	SessionId      *string         `json:"session_id"`
	Answer         string          `json:"answer"`
	AgentBreakdown *AgentBreakdown `json:"agent_breakdown,omitempty"`
	LatencyMs      float64         `json:"latency_ms"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Env    string `json:"env"`
	Debug  bool   `json:"debug"`
}
