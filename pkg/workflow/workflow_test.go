package workflow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"omni-backend/internal/constant"
	"omni-backend/pkg/agent"
	"omni-backend/pkg/events"
	"omni-backend/pkg/llm"
	"omni-backend/pkg/rag"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// routedGenerator answers by stage, recognized from the system prompt.
type routedGenerator struct {
	replies map[string]string
	fail    map[string]error
	calls   map[string]int
}

func newRoutedGenerator(replies map[string]string) *routedGenerator {
	return &routedGenerator{replies: replies, fail: map[string]error{}, calls: map[string]int{}}
}

func (g *routedGenerator) stageOf(messages []llm.Message) string {
	system := messages[0].Content
	switch system {
	case strings.TrimSpace(constant.PlannerSystemPrompt):
		return agent.StagePlanner
	case strings.TrimSpace(constant.ImplementerSystemPrompt):
		return agent.StageImplementer
	case strings.TrimSpace(constant.TesterSystemPrompt):
		return agent.StageTester
	case strings.TrimSpace(constant.FinalizerSystemPrompt):
		return agent.StageFinalizer
	}
	return "unknown"
}

func (g *routedGenerator) Complete(_ context.Context, messages []llm.Message, _ ...llm.Option) (string, error) {
	stage := g.stageOf(messages)
	g.calls[stage]++
	if err := g.fail[stage]; err != nil {
		return "", err
	}
	return g.replies[stage], nil
}

func (g *routedGenerator) CompleteStructured(ctx context.Context, messages []llm.Message, options ...llm.Option) (llm.StructuredResult, error) {
	raw, err := g.Complete(ctx, messages, options...)
	if err != nil {
		return nil, err
	}
	return llm.ParseStructured(raw), nil
}

type countingRetriever struct {
	calls  int
	result rag.RagResult
	err    error
}

func (r *countingRetriever) Run(context.Context, string, rag.RunOptions) (rag.RagResult, error) {
	r.calls++
	return r.result, r.err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, evt events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

func TestSimplePathWithoutResearch(t *testing.T) {
	gen := newRoutedGenerator(map[string]string{
		agent.StagePlanner:     `{"complexity":"simple","needs_research":false,"goals":[],"steps":[],"constraints":[]}`,
		agent.StageImplementer: "OmniAI is a multi-agent assistant. It plans, drafts and reviews answers.",
	})
	retriever := &countingRetriever{}
	pub := &recordingPublisher{}
	o := New(DefaultStages(gen, retriever), WithPublisher(pub))

	res, err := o.Run(context.Background(), RunInput{
		RequestID:   "req-1",
		UserMessage: "Explain what OmniAI is, in 2–3 short sentences.",
	})
	require.NoError(t, err)

	state := res.State
	assert.Equal(t, 0, retriever.calls)
	assert.Equal(t, "Planner decided no external research is needed.", state.Research.Summary)
	assert.Empty(t, state.Research.Sources)
	assert.Equal(t, state.DraftAnswer, state.FinalAnswer)
	assert.Empty(t, state.TesterIssues)
	assert.Empty(t, state.TesterFixes)
	assert.Empty(t, state.SafetyFlags)
	assert.Equal(t, 0, gen.calls[agent.StageTester])
	assert.Equal(t, 0, gen.calls[agent.StageFinalizer])
	assert.Equal(t, []Phase{PhaseInit, PhasePlanned, PhaseResearched, PhaseDrafted, PhaseDone}, res.Path)
	assert.Equal(t, PhaseDone, res.Terminal)

	assert.Equal(t, []string{
		events.TypeStageCompleted, events.TypeStageCompleted, events.TypeStageCompleted, events.TypeStageCompleted,
		events.TypeChatCompleted,
	}, pub.types())
}

func TestFullPathWithResearch(t *testing.T) {
	gen := newRoutedGenerator(map[string]string{
		agent.StagePlanner:     `{"complexity":"complex","needs_research":true}`,
		agent.StageImplementer: "draft",
		agent.StageTester:      `{"issues":["thin"],"fixes":"expand","safety_flags":[]}`,
		agent.StageFinalizer:   "final answer",
	})
	retriever := &countingRetriever{result: rag.RagResult{
		Summary: "found",
		Sources: []rag.RetrievedSource{{ID: "1", Collection: "general_docs", Score: 0.8}},
	}}
	o := New(DefaultStages(gen, retriever))

	res, err := o.Run(context.Background(), RunInput{RequestID: "req-2", UserMessage: "Design a cache"})
	require.NoError(t, err)

	assert.Equal(t, 1, retriever.calls)
	assert.Equal(t, "found", res.State.Research.Summary)
	assert.Equal(t, []string{"thin"}, res.State.TesterIssues)
	assert.Equal(t, []string{"expand"}, res.State.TesterFixes)
	assert.Equal(t, "final answer", res.State.FinalAnswer)
	assert.Equal(t, []Phase{PhaseInit, PhasePlanned, PhaseResearched, PhaseDrafted, PhaseTested, PhaseFinalized}, res.Path)
}

func TestMalformedPlanTakesDefaultPath(t *testing.T) {
	gen := newRoutedGenerator(map[string]string{
		agent.StagePlanner:     "Sure, I can help with that!",
		agent.StageImplementer: "draft",
		agent.StageTester:      "no json here",
		agent.StageFinalizer:   "final",
	})
	retriever := &countingRetriever{result: rag.RagResult{Summary: rag.NoResultsSummary, Sources: []rag.RetrievedSource{}}}
	o := New(DefaultStages(gen, retriever))

	res, err := o.Run(context.Background(), RunInput{UserMessage: "hi"})
	require.NoError(t, err)

	assert.Equal(t, "normal", res.State.Plan.Complexity)
	assert.True(t, res.State.Plan.NeedsResearch)
	assert.Equal(t, 1, retriever.calls)
	assert.Equal(t, PhaseFinalized, res.Terminal)
	assert.Equal(t, "final", res.State.FinalAnswer)
}

func TestComplexityMatchIsExact(t *testing.T) {
	gen := newRoutedGenerator(map[string]string{
		agent.StagePlanner:     `{"complexity":"SIMPLE","needs_research":false}`,
		agent.StageImplementer: "draft",
		agent.StageTester:      `{}`,
		agent.StageFinalizer:   "final",
	})
	o := New(DefaultStages(gen, &countingRetriever{}))

	res, err := o.Run(context.Background(), RunInput{UserMessage: "hi"})
	require.NoError(t, err)
	assert.Equal(t, PhaseFinalized, res.Terminal)
	assert.Equal(t, 1, gen.calls[agent.StageTester])
}

func TestSimplePathWithEmptyDraftStillTerminates(t *testing.T) {
	gen := newRoutedGenerator(map[string]string{
		agent.StagePlanner:     `{"complexity":"simple","needs_research":false}`,
		agent.StageImplementer: "",
	})
	o := New(DefaultStages(gen, &countingRetriever{}))

	res, err := o.Run(context.Background(), RunInput{UserMessage: "hi"})
	require.NoError(t, err)
	assert.True(t, res.State.Done())
	assert.Equal(t, "", res.State.Answer())
}

func TestStageFailureAbortsRun(t *testing.T) {
	gen := newRoutedGenerator(map[string]string{
		agent.StagePlanner: `{"complexity":"normal","needs_research":false}`,
	})
	clientErr := &llm.ClientError{Attempts: 3, Err: errors.New("503")}
	gen.fail[agent.StageImplementer] = clientErr
	pub := &recordingPublisher{}
	o := New(DefaultStages(gen, &countingRetriever{}), WithPublisher(pub))

	res, err := o.Run(context.Background(), RunInput{UserMessage: "hi"})

	assert.Nil(t, res)
	var target *llm.ClientError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, 3, target.Attempts)
	assert.NotContains(t, pub.types(), events.TypeChatCompleted)
}

func TestRetrievalFailureAbortsRun(t *testing.T) {
	gen := newRoutedGenerator(map[string]string{
		agent.StagePlanner: `{"complexity":"normal","needs_research":true}`,
	})
	o := New(DefaultStages(gen, &countingRetriever{err: errors.New("store unreachable")}))

	_, err := o.Run(context.Background(), RunInput{UserMessage: "hi"})
	assert.ErrorContains(t, err, "store unreachable")
	assert.Equal(t, 0, gen.calls[agent.StageImplementer])
}

func TestPublisherErrorsAreIgnored(t *testing.T) {
	gen := newRoutedGenerator(map[string]string{
		agent.StagePlanner:     `{"complexity":"simple","needs_research":false}`,
		agent.StageImplementer: "draft",
	})
	pub := &recordingPublisher{err: errors.New("bus closed")}
	o := New(DefaultStages(gen, &countingRetriever{}), WithPublisher(pub))

	res, err := o.Run(context.Background(), RunInput{UserMessage: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "draft", res.State.FinalAnswer)
}

func TestEveryNonTerminalPhaseHasAnExit(t *testing.T) {
	o := New(DefaultStages(newRoutedGenerator(nil), &countingRetriever{}))
	for _, phase := range []Phase{PhaseInit, PhasePlanned, PhaseResearched, PhaseDrafted, PhaseTested} {
		for _, plan := range []*agent.Plan{
			{Complexity: "simple", NeedsResearch: false},
			{Complexity: "normal", NeedsResearch: true},
		} {
			state := agent.NewState("q", nil)
			state.Plan = plan
			_, ok := o.next(phase, state)
			assert.True(t, ok, "phase %s", phase)
		}
	}
	assert.True(t, PhaseDone.Terminal())
	assert.True(t, PhaseFinalized.Terminal())
	assert.False(t, PhaseTested.Terminal())
}
