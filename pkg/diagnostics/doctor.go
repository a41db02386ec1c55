// Package diagnostics 部署自检：一次检查配置、数据库表、缓存、存储、文本生成服务等依赖
package diagnostics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"placeprep_backend/internal/config"
	"placeprep_backend/internal/llm"
	"placeprep_backend/internal/service"
	"placeprep_backend/internal/util"
	"placeprep_backend/pkg/database"
	"placeprep_backend/pkg/events"

	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Status string

const (
	StatusOK   Status = "ok"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
	StatusSkip Status = "skip"
)

type Check struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
	Detail string `json:"detail"`
}

type Report struct {
	Checks []Check `json:"checks"`
}

func (r *Report) add(name string, status Status, format string, args ...any) {
	r.Checks = append(r.Checks, Check{Name: name, Status: status, Detail: fmt.Sprintf(format, args...)})
}

// Failed 有任意一项失败即返回 true
func (r *Report) Failed() bool {
	for _, c := range r.Checks {
		if c.Status == StatusFail {
			return true
		}
	}
	return false
}

func (r *Report) Print(w io.Writer) {
	width := 0
	for _, c := range r.Checks {
		width = max(width, len(c.Name))
	}
	for _, c := range r.Checks {
		fmt.Fprintf(w, "[%-4s] %-*s  %s\n", strings.ToUpper(string(c.Status)), width, c.Name, c.Detail)
	}
}

type Options struct {
	// Live 向文本生成服务发送一次真实请求
	Live bool
	Log  *zap.Logger
}

// RestClient Supabase REST 接口，*supabase.Client 与 *postgrest.Client 都满足
type RestClient interface {
	From(table string) *postgrest.QueryBuilder
}

// Run 依次执行全部检查，单项失败不会中断后续检查
func Run(ctx context.Context, cfg *config.Config, opts Options) *Report {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	r := &Report{}

	if err := cfg.Validate(); err != nil {
		r.add("config", StatusFail, "%v", err)
	} else {
		r.add("config", StatusOK, "%s (mode=%s)", cfg.File, cfg.Server.Mode)
	}

	db := checkDatabase(ctx, r, cfg)
	if db != nil {
		defer func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		}()
	}
	checkRedis(r, cfg)

	sb, err := database.InitSupabase(&cfg.Supabase)
	if err != nil {
		r.add("supabase", StatusFail, "%v", err)
	}
	checkStorage(ctx, r, cfg, sb)

	if sb == nil {
		r.add("supabase rest", StatusSkip, "supabase.url not set")
	} else if db != nil {
		tables, err := database.TableNames(db)
		if err != nil {
			r.add("supabase rest", StatusFail, "%v", err)
		} else {
			ProbeTables(r, sb, tables)
		}
	}

	CheckProvider(ctx, r, cfg, opts)
	checkEvents(r, cfg)
	checkFFmpeg(r, cfg)
	return r
}

func checkDatabase(ctx context.Context, r *Report, cfg *config.Config) *gorm.DB {
	db, err := database.InitDB(&cfg.Database, false)
	if err != nil {
		r.add("database", StatusFail, "connect %s: %v", cfg.Database.Driver, err)
		return nil
	}
	sqlDB, err := db.DB()
	if err == nil {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = sqlDB.PingContext(pingCtx)
		cancel()
	}
	if err != nil {
		r.add("database", StatusFail, "ping: %v", err)
		return nil
	}
	r.add("database", StatusOK, "%s %s:%d/%s", cfg.Database.Driver, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	missing, err := database.MissingTables(db)
	switch {
	case err != nil:
		r.add("tables", StatusFail, "%v", err)
	case len(missing) > 0:
		r.add("tables", StatusFail, "missing %s, run `placeprep migrate`", strings.Join(missing, ", "))
	default:
		r.add("tables", StatusOK, "all present")
	}
	return db
}

func checkRedis(r *Report, cfg *config.Config) {
	rdb, err := database.InitRedis(&cfg.Redis)
	switch {
	case err != nil:
		r.add("redis", StatusWarn, "%v (logout falls back to in-process revocation)", err)
	case rdb == nil:
		r.add("redis", StatusSkip, "redis.host not set")
	default:
		r.add("redis", StatusOK, "%s", rdb.Options().Addr)
		rdb.Close()
	}
}

func checkStorage(ctx context.Context, r *Report, cfg *config.Config, sb *supabase.Client) {
	storage, err := service.NewStorageService(cfg, sb)
	if err != nil {
		r.add("storage", StatusFail, "%v", err)
		return
	}
	if err := storage.Ping(ctx); err != nil {
		r.add("storage", StatusFail, "%s: %v", storage.Type, err)
		return
	}
	r.add("storage", StatusOK, "%s", storage.Type)
}

// ProbeTables 通过 REST 接口确认每张表可访问
func ProbeTables(r *Report, client RestClient, tables []string) {
	var failed []string
	for _, t := range tables {
		if _, _, err := client.From(t).Select("*", "exact", true).Execute(); err != nil {
			failed = append(failed, fmt.Sprintf("%s (%v)", t, err))
		}
	}
	if len(failed) > 0 {
		r.add("supabase rest", StatusFail, "%s", strings.Join(failed, "; "))
		return
	}
	r.add("supabase rest", StatusOK, "%d tables reachable", len(tables))
}

// CheckProvider 未配置时只是警告：出题会使用静态题库
func CheckProvider(ctx context.Context, r *Report, cfg *config.Config, opts Options) {
	provider, err := llm.NewProvider(ctx, cfg.AI, opts.Log)
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		r.add("llm", StatusWarn, "not configured, quizzes use the fallback bank")
		return
	case err != nil:
		r.add("llm", StatusFail, "%v", err)
		return
	}
	if !cfg.Quiz.GenerationEnabled {
		r.add("llm", StatusWarn, "%s ready but quiz.generation_enabled is false", provider.ModelID())
		return
	}
	if !opts.Live {
		r.add("llm", StatusOK, "%s (not probed, use --live)", provider.ModelID())
		return
	}

	probeCtx, cancel := context.WithTimeout(llm.WithPurpose(ctx, "doctor"), cfg.AI.Timeout())
	defer cancel()
	resp, err := provider.Generate(probeCtx, llm.UserPrompt("Reply with the single word: ready", "ready?"))
	if err != nil {
		r.add("llm", StatusFail, "%s: %s: %v", provider.ModelID(), llm.Kind(err), err)
		return
	}
	r.add("llm", StatusOK, "%s answered %q", provider.ModelID(), strings.TrimSpace(string(resp.Content)))
}

func checkEvents(r *Report, cfg *config.Config) {
	if !cfg.Events.Enabled {
		r.add("events", StatusSkip, "events.enabled is false")
		return
	}
	p, err := events.NewAMQPPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange)
	if err != nil {
		r.add("events", StatusWarn, "%v (events are dropped)", err)
		return
	}
	p.Close()
	r.add("events", StatusOK, "exchange %s", cfg.Events.Exchange)
}

func checkFFmpeg(r *Report, cfg *config.Config) {
	version, err := util.GetFFmpegVersion()
	switch {
	case err == nil:
		r.add("ffmpeg", StatusOK, "%s", version)
	case cfg.Storage.Thumbnails:
		r.add("ffmpeg", StatusWarn, "%v (thumbnails will be skipped)", err)
	default:
		r.add("ffmpeg", StatusSkip, "not installed, thumbnails disabled")
	}
}
