package answer

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/statute/ai"
	"github.com/poiesic/statute/search"
)

// Resolver finds the articles that ground a question.
type Resolver interface {
	Resolve(ctx context.Context, question string) *search.Resolution
}

// Status tells how an Answer was produced.
type Status string

const (
	StatusAnswered         Status = "answered"
	StatusNoContext        Status = "no_context"
	StatusGenerationFailed Status = "generation_failed"
)

// Answer is the outcome of one question.
type Answer struct {
	Text       string
	Status     Status
	Resolution *search.Resolution
	Duration   time.Duration
}

// Answerer answers questions from retrieved articles only.
type Answerer struct {
	resolver    Resolver
	generator   ai.Generator
	lawName     string
	countTokens TokenCounter
	logger      *slog.Logger
}

// Option configures an Answerer.
type Option func(*Answerer) error

// WithLawName sets the legal text named in the prompt.
// Default is DefaultLawName.
func WithLawName(name string) Option {
	return func(a *Answerer) error {
		if strings.TrimSpace(name) != "" {
			a.lawName = name
		}
		return nil
	}
}

// WithTokenCounter logs the prompt size of every generation at debug level.
func WithTokenCounter(counter TokenCounter) Option {
	return func(a *Answerer) error {
		a.countTokens = counter
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Answerer) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}

// NewAnswerer creates a new answerer.
func NewAnswerer(resolver Resolver, generator ai.Generator, opts ...Option) (*Answerer, error) {
	if resolver == nil {
		return nil, ErrResolverRequired
	}
	if generator == nil {
		return nil, ErrGeneratorRequired
	}

	a := &Answerer{
		resolver:  resolver,
		generator: generator,
		lawName:   DefaultLawName,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	a.logger = a.logger.With("component", "answerer")

	return a, nil
}

// Ask answers question. It never fails: an empty context yields NotFound and
// a generation error or a blank reply yields Failure.
func (a *Answerer) Ask(ctx context.Context, question string) string {
	return a.AskDetailed(ctx, question).Text
}

// AskDetailed answers question and reports how the answer was produced.
func (a *Answerer) AskDetailed(ctx context.Context, question string) *Answer {
	start := time.Now()
	resolution := a.resolver.Resolve(ctx, question)

	answer := &Answer{Resolution: resolution}
	contextText := resolution.Context()
	if contextText == "" {
		a.logger.Info("no context for question", "question", question)
		answer.Text = NotFound
		answer.Status = StatusNoContext
		answer.Duration = time.Since(start)
		return answer
	}

	prompt := BuildPrompt(a.lawName, contextText, question)
	if a.countTokens != nil {
		if n, err := a.countTokens(prompt); err == nil {
			a.logger.Debug("prompt built", "tokens", n, "kind", resolution.Kind)
		}
	}

	text, err := a.generator.Generate(ctx, prompt)
	text = strings.TrimSpace(text)
	switch {
	case err != nil:
		a.logger.Error("generation failed", "err", err)
		answer.Text = Failure
		answer.Status = StatusGenerationFailed
	case text == "":
		a.logger.Warn("generator returned an empty reply")
		answer.Text = Failure
		answer.Status = StatusGenerationFailed
	default:
		answer.Text = text
		answer.Status = StatusAnswered
	}
	answer.Duration = time.Since(start)
	return answer
}
