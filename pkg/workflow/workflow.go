package workflow

import (
	"context"
	"fmt"
	"time"

	"omni-backend/internal/pkg/logger"
	"omni-backend/pkg/agent"
	"omni-backend/pkg/events"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Phase string

const (
	PhaseInit       Phase = "INIT"
	PhasePlanned    Phase = "PLANNED"
	PhaseResearched Phase = "RESEARCHED"
	PhaseDrafted    Phase = "DRAFTED"
	PhaseTested     Phase = "TESTED"
	PhaseFinalized  Phase = "FINALIZED"
	PhaseDone       Phase = "DONE"
)

func (p Phase) Terminal() bool {
	return p == PhaseFinalized || p == PhaseDone
}

const (
	stepSkipResearch = "research_skipped"
	stepShortcut     = "simple_shortcut"
)

// transition is one row of the table. Rows sharing a from phase are tried in order and the
// first whose guard passes runs.
type transition struct {
	from   Phase
	step   string
	guard  func(*agent.State) bool
	action func(context.Context, *agent.State) error
	to     Phase
}

type Stages struct {
	Planner     agent.Stage
	Researcher  agent.Stage
	Implementer agent.Stage
	Tester      agent.Stage
	Finalizer   agent.Stage
}

// DefaultStages wires the five stages to the generation and retrieval boundaries.
func DefaultStages(gen agent.Generator, retriever agent.Retriever) Stages {
	return Stages{
		Planner:     agent.NewPlanner(gen),
		Researcher:  agent.NewResearcher(retriever),
		Implementer: agent.NewImplementer(gen),
		Tester:      agent.NewTester(gen),
		Finalizer:   agent.NewFinalizer(gen),
	}
}

type RunInput struct {
	RequestID   string
	UserMessage string
	ChatHistory []agent.ChatTurn
}

type Result struct {
	State    *agent.State
	Path     []Phase
	Terminal Phase
}

// Orchestrator drives one request through the stage table until a terminal phase is reached.
type Orchestrator struct {
	table     []transition
	publisher events.Publisher
	logger    logger.ILogger
	tracer    trace.Tracer
}

type Option func(*Orchestrator)

func WithPublisher(p events.Publisher) Option {
	return func(o *Orchestrator) {
		o.publisher = p
	}
}

func WithLogger(l logger.ILogger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

func New(stages Stages, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		logger: logger.NewNopLogger(),
		tracer: otel.Tracer("omni-backend/workflow"),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.table = buildTable(stages)
	return o
}

func always(*agent.State) bool { return true }

func needsResearch(s *agent.State) bool {
	return s.Plan == nil || s.Plan.NeedsResearch
}

func skipsResearch(s *agent.State) bool {
	return !needsResearch(s)
}

// isSimple is an exact match; "Simple" or "easy" take the review path.
func isSimple(s *agent.State) bool {
	return s.Plan != nil && s.Plan.Complexity == agent.ComplexitySimple
}

func buildTable(st Stages) []transition {
	return []transition{
		{from: PhaseInit, step: agent.StagePlanner, guard: always, action: st.Planner.Run, to: PhasePlanned},

		{from: PhasePlanned, step: agent.StageResearcher, guard: needsResearch, action: st.Researcher.Run, to: PhaseResearched},
		{from: PhasePlanned, step: stepSkipResearch, guard: skipsResearch, action: func(_ context.Context, s *agent.State) error {
			s.Research = agent.SkippedResearch()
			return nil
		}, to: PhaseResearched},

		{from: PhaseResearched, step: agent.StageImplementer, guard: always, action: st.Implementer.Run, to: PhaseDrafted},

		{from: PhaseDrafted, step: stepShortcut, guard: isSimple, action: func(_ context.Context, s *agent.State) error {
			s.SetFinalAnswer(s.DraftAnswer)
			return nil
		}, to: PhaseDone},
		{from: PhaseDrafted, step: agent.StageTester, guard: always, action: st.Tester.Run, to: PhaseTested},

		{from: PhaseTested, step: agent.StageFinalizer, guard: always, action: st.Finalizer.Run, to: PhaseFinalized},
	}
}

func (o *Orchestrator) next(phase Phase, state *agent.State) (transition, bool) {
	for _, t := range o.table {
		if t.from == phase && t.guard(state) {
			return t, true
		}
	}
	return transition{}, false
}

// Run executes the pipeline for one message. A stage error aborts the run and is returned as is,
// wrapped with the phase it happened in.
func (o *Orchestrator) Run(ctx context.Context, in RunInput) (*Result, error) {
	started := time.Now()
	state := agent.NewState(in.UserMessage, in.ChatHistory)
	phase := PhaseInit
	path := []Phase{phase}

	ctx, span := o.tracer.Start(ctx, "workflow.run", trace.WithAttributes(
		attribute.String("request_id", in.RequestID),
	))
	defer span.End()

	for !phase.Terminal() {
		t, ok := o.next(phase, state)
		if !ok {
			err := fmt.Errorf("no transition out of phase %s", phase)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}

		if err := o.runStep(ctx, in.RequestID, t, state); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("workflow failed in %s: %w", phase, err)
		}

		phase = t.to
		path = append(path, phase)
	}

	if !state.Done() {
		err := fmt.Errorf("terminal phase %s reached without a final answer", phase)
		span.RecordError(err)
		return nil, err
	}

	latency := time.Since(started)
	complexity := ""
	research := false
	if state.Plan != nil {
		complexity = state.Plan.Complexity
		research = state.Plan.NeedsResearch
	}

	o.logger.Info("WORKFLOW", "Workflow completed", map[string]interface{}{
		"request_id":     in.RequestID,
		"terminal_state": string(phase),
		"complexity":     complexity,
		"needs_research": research,
		"latency_ms":     latency.Milliseconds(),
	})
	o.publish(ctx, events.NewChatCompleted(in.RequestID, string(phase), complexity, research, latency))

	return &Result{State: state, Path: path, Terminal: phase}, nil
}

func (o *Orchestrator) runStep(ctx context.Context, requestID string, t transition, state *agent.State) error {
	ctx, span := o.tracer.Start(ctx, "workflow."+t.step, trace.WithAttributes(
		attribute.String("request_id", requestID),
		attribute.String("from", string(t.from)),
		attribute.String("to", string(t.to)),
	))
	defer span.End()

	started := time.Now()
	o.logger.Debug("WORKFLOW", "Stage started", map[string]interface{}{
		"request_id": requestID,
		"stage":      t.step,
		"from":       string(t.from),
	})

	if err := t.action(ctx, state); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.logger.Error("WORKFLOW", "Stage failed", map[string]interface{}{
			"request_id": requestID,
			"stage":      t.step,
			"error":      err.Error(),
		})
		return err
	}

	duration := time.Since(started)
	o.logger.Info("WORKFLOW", "Stage completed", map[string]interface{}{
		"request_id":  requestID,
		"stage":       t.step,
		"state":       string(t.to),
		"duration_ms": duration.Milliseconds(),
	})
	o.publish(ctx, events.NewStageCompleted(requestID, t.step, string(t.to), duration))
	return nil
}

// publish never fails the request.
func (o *Orchestrator) publish(ctx context.Context, evt events.Event) {
	if o.publisher == nil {
		return
	}
	if err := o.publisher.Publish(ctx, evt); err != nil {
		o.logger.Warn("EVENTS", "Failed to publish workflow event", map[string]interface{}{
			"type":  evt.EventType(),
			"error": err.Error(),
		})
	}
}
