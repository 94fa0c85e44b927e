package agent

import (
	"omni-backend/pkg/rag"
)

const (
	ComplexitySimple  = "simple"
	ComplexityNormal  = "normal"
	ComplexityComplex = "complex"
)

type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Plan is the planner's decision record.
type Plan struct {
	Complexity    string   `json:"complexity"`
	NeedsResearch bool     `json:"needs_research"`
	Goals         []string `json:"goals"`
	Steps         []string `json:"steps"`
	Constraints   []string `json:"constraints"`
}

type Research struct {
	Summary    string                `json:"summary"`
	Sources    []rag.RetrievedSource `json:"sources"`
	RawContext string                `json:"raw_context,omitempty"`
}

type TesterReview struct {
	Issues      []string `json:"issues"`
	Fixes       []string `json:"fixes"`
	SafetyFlags []string `json:"safety_flags"`
}

// State is owned by a single request and threaded through every stage.
// Each field is written by exactly one stage; a populated final answer ends the run.
type State struct {
	UserMessage string
	ChatHistory []ChatTurn

	Plan        *Plan
	Research    *Research
	DraftAnswer string

	TesterIssues []string
	TesterFixes  []string
	SafetyFlags  []string

	FinalAnswer string
	finalized   bool
}

func NewState(userMessage string, history []ChatTurn) *State {
	if history == nil {
		history = []ChatTurn{}
	}
	return &State{
		UserMessage:  userMessage,
		ChatHistory:  history,
		TesterIssues: []string{},
		TesterFixes:  []string{},
		SafetyFlags:  []string{},
	}
}

func (s *State) SetFinalAnswer(answer string) {
	s.FinalAnswer = answer
	s.finalized = true
}

// Done reports whether the final answer has been written, even if it is empty.
func (s *State) Done() bool {
	return s.finalized
}

// Answer is the final answer when present, else the draft.
func (s *State) Answer() string {
	if s.FinalAnswer != "" {
		return s.FinalAnswer
	}
	return s.DraftAnswer
}
