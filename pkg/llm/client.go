package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"omni-backend/internal/pkg/logger"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/sync/semaphore"
)

const (
	DefaultTemperature   = 0.3
	DefaultMaxTokens     = 128
	DefaultMaxAttempts   = 3
	DefaultHardMaxTokens = 32
	DefaultRetryBackoff  = time.Second
)

// ClientError is returned once every attempt against the provider has failed.
type ClientError struct {
	Attempts int
	Err      error
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("failed to get completion from LLM after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

// Client is the generation boundary shared by every request in the process.
// Calls are gated by a weighted semaphore: with the default capacity of one, provider calls
// from concurrent requests are serialized.
type Client struct {
	provider      LLMProvider
	logger        logger.ILogger
	gate          *semaphore.Weighted
	maxAttempts   int
	backoffStep   time.Duration
	hardMaxTokens int
}

type ClientOption func(*Client)

func WithMaxAttempts(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithRetryBackoff sets the linear backoff step: attempt n waits n*step before retrying.
func WithRetryBackoff(step time.Duration) ClientOption {
	return func(c *Client) {
		if step >= 0 {
			c.backoffStep = step
		}
	}
}

func WithHardMaxTokens(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.hardMaxTokens = n
		}
	}
}

func WithMaxConcurrency(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.gate = semaphore.NewWeighted(int64(n))
		}
	}
}

func WithLogger(l logger.ILogger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func NewClient(provider LLMProvider, opts ...ClientOption) *Client {
	c := &Client{
		provider:      provider,
		logger:        logger.NewNopLogger(),
		gate:          semaphore.NewWeighted(1),
		maxAttempts:   DefaultMaxAttempts,
		backoffStep:   DefaultRetryBackoff,
		hardMaxTokens: DefaultHardMaxTokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EffectiveMaxTokens applies the hard cap to a requested output length.
func (c *Client) EffectiveMaxTokens(requested int) int {
	if requested <= 0 || requested > c.hardMaxTokens {
		return c.hardMaxTokens
	}
	return requested
}

// Complete returns the trimmed text completion for messages.
// Provider failures are retried with linear backoff; after the last attempt a *ClientError is returned.
func (c *Client) Complete(ctx context.Context, messages []Message, options ...Option) (string, error) {
	opts := &Options{
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
	}
	for _, o := range options {
		o(opts)
	}

	callOpts := []Option{
		WithTemperature(opts.Temperature),
		WithMaxTokens(c.EffectiveMaxTokens(opts.MaxTokens)),
	}
	if opts.Model != "" {
		callOpts = append(callOpts, WithModel(opts.Model))
	}
	if opts.JSONOutput {
		callOpts = append(callOpts, WithJSONOutput())
	}

	attempts := 0
	operation := func() (string, error) {
		attempts++

		if err := c.gate.Acquire(ctx, 1); err != nil {
			return "", backoff.Permanent(err)
		}
		text, err := c.provider.Chat(ctx, messages, callOpts...)
		c.gate.Release(1)

		if err != nil {
			c.logger.Warn("LLM", "Provider call failed", map[string]interface{}{
				"attempt":      attempts,
				"max_attempts": c.maxAttempts,
				"error":        err.Error(),
			})
			if errors.Is(err, ErrNotConfigured) || ctx.Err() != nil {
				return "", backoff.Permanent(err)
			}
			return "", err
		}
		return strings.TrimSpace(text), nil
	}

	text, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(&linearBackOff{step: c.backoffStep}),
		backoff.WithMaxTries(uint(c.maxAttempts)),
		backoff.WithMaxElapsedTime(0),
	)
	if err != nil {
		return "", &ClientError{Attempts: attempts, Err: err}
	}
	return text, nil
}

// CompleteStructured asks for JSON output and never fails on malformed output;
// only exhausted retries surface as an error.
func (c *Client) CompleteStructured(ctx context.Context, messages []Message, options ...Option) (StructuredResult, error) {
	raw, err := c.Complete(ctx, messages, append(append([]Option{}, options...), WithJSONOutput())...)
	if err != nil {
		return nil, err
	}
	return ParseStructured(raw), nil
}

// linearBackOff waits step, 2*step, 3*step, ... between attempts.
type linearBackOff struct {
	step    time.Duration
	attempt int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempt++
	return time.Duration(b.attempt) * b.step
}

func (b *linearBackOff) Reset() {
	b.attempt = 0
}
