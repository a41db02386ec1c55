package app

import (
	"context"
	"errors"

	"placeprep_backend/internal/config"
	"placeprep_backend/internal/llm"
	"placeprep_backend/internal/questionbank"
	"placeprep_backend/internal/questiongen"

	"go.uber.org/zap"
)

// NewAcquirer 创建出题器；文本生成服务未配置或初始化失败时只使用题库
func NewAcquirer(ctx context.Context, cfg *config.Config, log *zap.Logger) *questiongen.Acquirer {
	provider, err := llm.NewProvider(ctx, cfg.AI, log)
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		log.Warn("Text generation not configured, serving questions from the fallback bank", zap.Error(err))
		provider = nil
	case err != nil:
		log.Error("Text generation provider unavailable, serving questions from the fallback bank", zap.Error(err))
		provider = nil
	default:
		log.Info("Text generation provider ready", zap.String("provider", cfg.AI.Provider), zap.String("model", provider.ModelID()))
	}
	return questiongen.New(provider, questionbank.Default, questiongen.SettingsFrom(cfg), log)
}
