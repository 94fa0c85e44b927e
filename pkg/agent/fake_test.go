package agent

import (
	"context"
	"errors"

	"omni-backend/pkg/llm"
	"omni-backend/pkg/rag"
)

type generatorCall struct {
	Messages   []llm.Message
	Structured bool
	Options    llm.Options
}

// fakeGenerator answers from a queue of raw replies, parsing them like the real client does.
type fakeGenerator struct {
	replies []string
	err     error
	calls   []generatorCall
}

func (g *fakeGenerator) next(messages []llm.Message, structured bool, options []llm.Option) (string, error) {
	opts := llm.Options{}
	for _, o := range options {
		o(&opts)
	}
	g.calls = append(g.calls, generatorCall{Messages: messages, Structured: structured, Options: opts})
	if g.err != nil {
		return "", g.err
	}
	if len(g.replies) == 0 {
		return "", errors.New("fake generator: no reply queued")
	}
	reply := g.replies[0]
	g.replies = g.replies[1:]
	return reply, nil
}

func (g *fakeGenerator) Complete(_ context.Context, messages []llm.Message, options ...llm.Option) (string, error) {
	return g.next(messages, false, options)
}

func (g *fakeGenerator) CompleteStructured(_ context.Context, messages []llm.Message, options ...llm.Option) (llm.StructuredResult, error) {
	raw, err := g.next(messages, true, options)
	if err != nil {
		return nil, err
	}
	return llm.ParseStructured(raw), nil
}

type fakeRetriever struct {
	result  rag.RagResult
	err     error
	queries []string
}

func (r *fakeRetriever) Run(_ context.Context, query string, _ rag.RunOptions) (rag.RagResult, error) {
	r.queries = append(r.queries, query)
	return r.result, r.err
}
