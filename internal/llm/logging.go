package llm

import (
	"context"
	"strconv"
	"time"

	"placeprep_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// LoggingProvider records every request in the log and in metrics.
type LoggingProvider struct {
	inner Provider
	log   *zap.Logger
}

func WithLogging(p Provider, log *zap.Logger) Provider {
	if log == nil {
		log = zap.NewNop()
	}
	return &LoggingProvider{inner: p, log: log}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	elapsed := time.Since(start)
	model := l.inner.ModelID()

	fields := []zap.Field{
		zap.String("model", model),
		zap.String("purpose", purpose),
		zap.Duration("latency", elapsed),
		zap.Bool("success", err == nil),
	}
	if resp != nil {
		fields = append(fields,
			zap.Int("input_tokens", resp.Usage.InputTokens),
			zap.Int("output_tokens", resp.Usage.OutputTokens),
			zap.String("stop_reason", string(resp.StopReason)),
		)
		monitoring.LLMTokens.WithLabelValues(model, "input").Add(float64(resp.Usage.InputTokens))
		monitoring.LLMTokens.WithLabelValues(model, "output").Add(float64(resp.Usage.OutputTokens))
	}

	monitoring.LLMRequests.WithLabelValues(model, purpose, strconv.FormatBool(err == nil)).Inc()
	monitoring.LLMDuration.WithLabelValues(model).Observe(elapsed.Seconds())

	if err != nil {
		l.log.Warn("llm request failed", append(fields, zap.String("kind", Kind(err)), zap.Error(err))...)
	} else {
		l.log.Debug("llm request", fields...)
	}
	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}
