package llm

import (
	"context"
	"fmt"
	"strings"

	"placeprep_backend/internal/config"

	"go.uber.org/zap"
)

// Options are the provider-independent connection settings.
type Options struct {
	APIKey  string
	Model   string
	BaseURL string
}

// NewProvider builds the configured provider wrapped with logging.
// A real provider without an API key yields ErrNotConfigured so callers can
// run with generation disabled.
func NewProvider(ctx context.Context, cfg config.AIConfig, log *zap.Logger) (Provider, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	opts := Options{APIKey: cfg.APIKey, Model: cfg.Model, BaseURL: cfg.BaseURL}

	if name != "mock" && opts.APIKey == "" {
		return nil, fmt.Errorf("%w: %s provider has no api key", ErrNotConfigured, name)
	}

	var (
		base Provider
		err  error
	)
	switch name {
	case "openai":
		base, err = NewOpenAIProvider(opts)
	case "anthropic":
		base, err = NewAnthropicProvider(opts)
	case "gemini":
		base, err = NewGeminiProvider(ctx, opts)
	case "mock":
		base = NewMockProvider()
	case "":
		return nil, ErrNotConfigured
	default:
		return nil, fmt.Errorf("unknown text generation provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", name, err)
	}
	return WithLogging(base, log), nil
}

// resolveModel maps a friendly model name to a provider model ID. Unknown
// names pass through so full model IDs work as-is.
func resolveModel(name string, models map[string]string, fallback string) string {
	if name == "" {
		return fallback
	}
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
