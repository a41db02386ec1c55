package database

import (
	"placeprep_backend/internal/config"
	"placeprep_backend/pkg/logger"

	"github.com/supabase-community/supabase-go"
	"go.uber.org/zap"
)

// InitSupabase 未配置 url 时返回 nil, nil
func InitSupabase(cfg *config.SupabaseConfig) (*supabase.Client, error) {
	if cfg.URL == "" || cfg.Key == "" {
		return nil, nil
	}
	client, err := supabase.NewClient(cfg.URL, cfg.Key, &supabase.ClientOptions{})
	if err != nil {
		return nil, err
	}
	logger.Log.Info("Supabase client initialized", zap.String("url", cfg.URL))
	return client, nil
}
