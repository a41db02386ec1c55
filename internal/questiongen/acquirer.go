// Package questiongen acquires quiz questions: it asks a text generation
// provider for a batch, keeps the records that satisfy the question invariant,
// retries a bounded number of times and otherwise serves the static bank.
package questiongen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"placeprep_backend/internal/difficulty"
	"placeprep_backend/internal/llm"
	"placeprep_backend/internal/question"
	"placeprep_backend/pkg/monitoring"
	"placeprep_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var (
	ErrInvalidRequest = errors.New("topic is required")
	ErrNoQuestions    = errors.New("no questions available for topic")
)

// Request asks for Count questions on a topic at a difficulty band.
type Request struct {
	Topic      string
	Subtopic   string
	Difficulty difficulty.Band
	Count      int
}

// Result is the acquired question set. Questions never holds more than the
// (clamped) requested count.
type Result struct {
	Questions []question.Question
	Source    question.Source
	Requested int

	// Attempts is the number of generation calls made, zero when the bank
	// was used without trying.
	Attempts int
}

// Fallback supplies static questions.
type Fallback interface {
	Lookup(topic, subtopic, band string, count int) []question.Question
}

type Acquirer struct {
	provider llm.Provider
	bank     Fallback
	settings atomic.Pointer[Settings]
	log      *zap.Logger

	sleep func(context.Context, time.Duration) error
}

// New builds an Acquirer. A nil provider means generation is unavailable and
// every request is served from the bank.
func New(provider llm.Provider, bank Fallback, s Settings, log *zap.Logger) *Acquirer {
	if log == nil {
		log = zap.NewNop()
	}
	a := &Acquirer{provider: provider, bank: bank, log: log, sleep: sleepCtx}
	a.Update(s)
	return a
}

// Update swaps the live settings. In-flight acquisitions keep the settings
// they started with.
func (a *Acquirer) Update(s Settings) {
	if s.MaxAttempts < 1 {
		s.MaxAttempts = 1
	}
	if s.MinValid < 1 {
		s.MinValid = 1
	}
	a.settings.Store(&s)
}

func (a *Acquirer) Settings() Settings {
	return *a.settings.Load()
}

// GenerationAvailable reports whether requests will reach the provider.
func (a *Acquirer) GenerationAvailable() bool {
	return a.provider != nil && a.Settings().Enabled
}

// Acquire returns questions for req. Generation failures are never returned
// as errors; they end in the fallback bank.
func (a *Acquirer) Acquire(ctx context.Context, req Request) (*Result, error) {
	req.Topic = strings.TrimSpace(req.Topic)
	req.Subtopic = strings.TrimSpace(req.Subtopic)
	if req.Topic == "" {
		return nil, ErrInvalidRequest
	}
	if !req.Difficulty.Valid() {
		req.Difficulty = difficulty.Beginner
	}

	s := a.Settings()
	count := s.clampCount(req.Count)

	ctx, span := tracing.Tracer.Start(ctx, "questiongen.Acquire", trace.WithAttributes(
		attribute.String("quiz.topic", req.Topic),
		attribute.String("quiz.subtopic", req.Subtopic),
		attribute.String("quiz.difficulty", string(req.Difficulty)),
		attribute.Int("quiz.count", count),
	))
	defer span.End()

	res := &Result{Requested: count}
	if a.provider != nil && s.Enabled {
		qs, attempts := a.generate(ctx, req, s, count)
		res.Attempts = attempts
		if qs != nil {
			res.Questions = qs
			res.Source = question.SourceGenerated
			a.finish(span, res)
			return res, nil
		}
		a.log.Info("question generation exhausted, using fallback bank",
			zap.String("topic", req.Topic),
			zap.String("subtopic", req.Subtopic),
			zap.Int("attempts", attempts),
		)
	}

	qs := a.bank.Lookup(req.Topic, req.Subtopic, string(req.Difficulty), count)
	if len(qs) == 0 {
		span.RecordError(ErrNoQuestions)
		return nil, fmt.Errorf("%w: %s", ErrNoQuestions, req.Topic)
	}
	for i := range qs {
		qs[i].Source = question.SourceFallback
		if qs[i].Difficulty == "" {
			qs[i].Difficulty = string(req.Difficulty)
		}
	}
	res.Questions = qs
	res.Source = question.SourceFallback
	a.finish(span, res)
	return res, nil
}

func (a *Acquirer) finish(span trace.Span, res *Result) {
	span.SetAttributes(
		attribute.String("quiz.source", string(res.Source)),
		attribute.Int("quiz.attempts", res.Attempts),
		attribute.Int("quiz.returned", len(res.Questions)),
	)
	monitoring.QuestionsAcquired.WithLabelValues(string(res.Source)).Add(float64(len(res.Questions)))
}

// generate runs up to MaxAttempts serial calls and returns the first batch
// with enough valid records, or nil.
func (a *Acquirer) generate(ctx context.Context, req Request, s Settings, count int) ([]question.Question, int) {
	need := s.required(count)

	attempts := 0
	for attempt := 1; attempt <= s.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := a.sleep(ctx, s.RetryDelay); err != nil {
				break
			}
		}
		attempts = attempt

		qs, dropped, err := a.attempt(ctx, req, s, count)
		outcome := "accepted"
		switch {
		case err != nil:
			outcome = llm.Kind(err)
		case len(qs) < need:
			outcome = "insufficient"
		}
		monitoring.GenerationAttempts.WithLabelValues(outcome).Inc()

		if outcome == "accepted" {
			if len(qs) > count {
				qs = qs[:count]
			}
			return qs, attempts
		}

		a.log.Warn("question generation attempt rejected",
			zap.String("topic", req.Topic),
			zap.Int("attempt", attempt),
			zap.String("outcome", outcome),
			zap.Int("valid", len(qs)),
			zap.Int("dropped", dropped),
			zap.Int("need", need),
			zap.Error(err),
		)
	}
	return nil, attempts
}

func (a *Acquirer) attempt(ctx context.Context, req Request, s Settings, count int) ([]question.Question, int, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	lreq := llm.UserPrompt(systemPrompt, BuildPrompt(req, count))
	lreq.Schema = batchSchema
	lreq.MaxTokens = s.MaxTokens
	lreq.Temperature = s.Temperature

	resp, err := a.provider.Generate(llm.WithPurpose(ctx, "quiz_questions"), lreq)
	if err != nil {
		return nil, 0, err
	}
	qs, dropped, err := Parse(resp.Content, req.Difficulty)
	if err != nil {
		return nil, 0, &llm.ErrInvalidResponse{Content: resp.Content, Err: err}
	}
	return qs, dropped, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
