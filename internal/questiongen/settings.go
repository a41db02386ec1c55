package questiongen

import (
	"time"

	"placeprep_backend/internal/config"
)

// Settings are the tunables of an Acquirer. They can be swapped at runtime
// with Acquirer.Update.
type Settings struct {
	// Enabled turns generation on. When off every request is served from the bank.
	Enabled bool

	// MaxAttempts is the total number of generation calls per request.
	MaxAttempts int

	// RetryDelay is the fixed pause between attempts.
	RetryDelay time.Duration

	// MinValid is the number of valid records a batch needs to be accepted.
	// Requests for fewer questions need only as many as they asked for.
	MinValid int

	DefaultCount int
	MaxCount     int

	// Timeout bounds a single generation call.
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

func SettingsFrom(cfg *config.Config) Settings {
	return Settings{
		Enabled:      cfg.Quiz.GenerationEnabled,
		MaxAttempts:  cfg.Quiz.MaxAttempts,
		RetryDelay:   cfg.Quiz.RetryDelay(),
		MinValid:     cfg.Quiz.MinValid,
		DefaultCount: cfg.Quiz.DefaultCount,
		MaxCount:     cfg.Quiz.MaxCount,
		Timeout:      cfg.AI.Timeout(),
		MaxTokens:    cfg.AI.MaxTokens,
		Temperature:  cfg.AI.Temperature,
	}
}

// DefaultSettings mirrors the shipped configuration.
func DefaultSettings() Settings {
	return Settings{
		Enabled:      true,
		MaxAttempts:  2,
		RetryDelay:   time.Second,
		MinValid:     3,
		DefaultCount: 10,
		MaxCount:     25,
		Timeout:      30 * time.Second,
		MaxTokens:    4096,
		Temperature:  0.7,
	}
}

// clampCount applies the default for non-positive counts and caps at MaxCount.
func (s Settings) clampCount(n int) int {
	if n <= 0 {
		n = s.DefaultCount
	}
	if n < 1 {
		n = 1
	}
	if s.MaxCount > 0 && n > s.MaxCount {
		n = s.MaxCount
	}
	return n
}

// required is how many valid records a batch needs for count questions.
func (s Settings) required(count int) int {
	return max(1, min(s.MinValid, count))
}
