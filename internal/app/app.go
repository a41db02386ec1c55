package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"placeprep_backend/internal/catalog"
	"placeprep_backend/internal/config"
	"placeprep_backend/internal/controller"
	"placeprep_backend/internal/questiongen"
	"placeprep_backend/internal/repository"
	"placeprep_backend/internal/service"
	"placeprep_backend/pkg/configwatcher"
	"placeprep_backend/pkg/database"
	"placeprep_backend/pkg/events"
	"placeprep_backend/pkg/logger"
	"placeprep_backend/pkg/monitoring"
	"placeprep_backend/pkg/security"
	"placeprep_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/supabase-community/supabase-go"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	Supabase *supabase.Client
	Acquirer *questiongen.Acquirer
	Events   events.Publisher

	repos           *repositories
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user        *repository.UserRepository
	score       *repository.ScoreRepository
	progress    *repository.QuizProgressRepository
	certificate *repository.CertificateRepository
	resume      *repository.ResumeRepository
}

type services struct {
	auth        *service.AuthService
	storage     *service.StorageService
	quiz        *service.QuizService
	dashboard   *service.DashboardService
	suggestion  *service.SuggestionService
	resume      *service.ResumeService
	certificate *service.CertificateService
}

type controllers struct {
	auth        *controller.AuthController
	catalog     *controller.CatalogController
	quiz        *controller.QuizController
	dashboard   *controller.DashboardController
	suggestion  *controller.SuggestionController
	resume      *controller.ResumeController
	certificate *controller.CertificateController
	health      *controller.HealthController
	admin       *controller.AdminController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:        repository.NewUserRepository(db),
		score:       repository.NewScoreRepository(db),
		progress:    repository.NewQuizProgressRepository(db),
		certificate: repository.NewCertificateRepository(db),
		resume:      repository.NewResumeRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) (*services, error) {
	s := &services{}

	storage, err := service.NewStorageService(cfg, a.Supabase)
	if err != nil {
		return nil, err
	}
	s.storage = storage

	// Redis 不可用时注销记录只保存在本进程
	var tokens service.TokenStore
	if a.Redis != nil {
		tokens = service.NewRedisTokenStore(a.Redis)
	} else {
		tokens = service.NewMemoryTokenStore()
	}

	s.auth = service.NewAuthService(repos.user, tokens, catalog.Default, cfg)
	s.quiz = service.NewQuizService(repos.score, repos.progress, a.Acquirer, catalog.Default, a.Events, cfg.Quiz.SnapshotTTL())
	s.dashboard = service.NewDashboardService(repos.score)
	s.suggestion = service.NewSuggestionService(repos.score, repos.user, catalog.Default)
	s.resume = service.NewResumeService(repos.resume, repos.certificate, repos.score, repos.user)
	s.certificate = service.NewCertificateService(repos.certificate, s.storage, cfg.Storage.MaxUploadMB, cfg.Storage.Thumbnails)

	return s, nil
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		auth:        controller.NewAuthController(s.auth),
		catalog:     controller.NewCatalogController(catalog.Default),
		quiz:        controller.NewQuizController(s.quiz),
		dashboard:   controller.NewDashboardController(s.dashboard),
		suggestion:  controller.NewSuggestionController(s.suggestion),
		resume:      controller.NewResumeController(s.resume),
		certificate: controller.NewCertificateController(s.certificate),
		health:      controller.NewHealthController(a.DB, a.Redis, a.Acquirer),
		admin:       controller.NewAdminController(a.Config),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks 定期清理过期的测验快照
func (a *App) startBackgroundTasks(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				n, err := a.repos.progress.DeleteExpired(now)
				if err != nil {
					logger.Log.Error("Expired quiz cleanup failed", zap.Error(err))
					continue
				}
				if n > 0 {
					logger.Log.Info("Expired quizzes removed", zap.Int64("count", n))
				}
			}
		}
	}()
}

// NewApp 初始化数据库、缓存、出题器与路由
func NewApp(cfg *config.Config) (*App, error) {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode == "debug")
	if err != nil {
		return nil, err
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Warn("Redis unavailable, token revocation is process-local", zap.Error(err))
		rdb = nil
	}

	sb, err := database.InitSupabase(&cfg.Supabase)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:   cfg,
		DB:       db,
		Redis:    rdb,
		Supabase: sb,
		Acquirer: NewAcquirer(context.Background(), cfg, logger.Named("questiongen")),
		Events:   events.New(cfg.Events, logger.Named("events")),
	}

	// 配置热加载：出题参数与温度
	app.RegisterConfigCallback(func(newCfg *config.Config) {
		app.Acquirer.Update(questiongen.SettingsFrom(newCfg))
	})

	app.repos = app.initRepositories(db)
	svcs, err := app.initServices(app.repos, cfg)
	if err != nil {
		return nil, err
	}
	ctrls := app.initControllers(svcs)

	// 监控初始化
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("placeprep", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Error("Failed to initialize tracing", zap.Error(err))
		} else {
			app.tracer = tp
		}
	}

	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, ctrls, cfg, svcs.auth, app.repos.user)

	if svcs.storage.Type == "local" || svcs.storage.Type == "" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app, nil
}

func (a *App) Run() error {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.startBackgroundTasks(ctx)

	if a.Config.File != "" {
		go func() {
			err := configwatcher.WatchConfig(ctx, a.Config.File, func(newCfg *config.Config) {
				for _, cb := range a.configCallbacks {
					cb(newCfg)
				}
			})
			if err != nil {
				logger.Log.Error("Config watcher stopped", zap.Error(err))
			}
		}()
	}

	// 启动服务器
	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	a.Close(shutdownCtx)
	logger.Log.Info("Server exiting")
	return nil
}

// Close 释放外部连接
func (a *App) Close(ctx context.Context) {
	if a.Events != nil {
		if err := a.Events.Close(); err != nil {
			logger.Log.Warn("Failed to close event publisher", zap.Error(err))
		}
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}
}
