package app

import (
	"placeprep_backend/docs"
	"placeprep_backend/internal/config"
	"placeprep_backend/internal/middleware"
	"placeprep_backend/internal/model"
	"placeprep_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config, revoked middleware.RevocationChecker, activity middleware.UserActivityRepo) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg, revoked), middleware.ActivityMiddleware(activity))
	{
		a.registerStudentRoutes(authGroup, c)
	}

	// 3. 管理员路由
	adminGroup := authGroup.Group("/admin")
	adminGroup.Use(middleware.RoleMiddleware(model.Admin))
	{
		adminGroup.GET("/diagnostics", c.admin.GetDiagnostics)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)

		public.GET("/catalog/branches", c.catalog.ListBranches)
		public.GET("/catalog/topics", c.catalog.ListTopics)
		public.GET("/catalog/topics/:topic/subtopics", c.catalog.ListSubtopics)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.POST("/logout", c.auth.Logout)
	rg.GET("/profile", c.auth.GetProfile)
	rg.PUT("/user/profile", c.auth.UpdateProfile)

	quiz := rg.Group("/quiz")
	{
		quiz.POST("/start", c.quiz.StartQuiz)
		quiz.GET("/active", c.quiz.GetActiveQuiz)
		quiz.GET("/difficulty", c.quiz.GetDifficulty)
		quiz.PUT("/:id/progress", c.quiz.SaveProgress)
		quiz.POST("/:id/submit", c.quiz.SubmitQuiz)
		quiz.DELETE("/:id", c.quiz.AbandonQuiz)
	}
	rg.GET("/scores", c.quiz.ListScores)

	rg.GET("/dashboard", c.dashboard.GetDashboard)
	rg.GET("/suggestions", c.suggestion.GetSuggestions)

	resume := rg.Group("/resume")
	{
		resume.GET("", c.resume.GetResume)
		resume.PUT("", c.resume.SaveResume)
		resume.GET("/download", c.resume.DownloadResume)
	}

	certificates := rg.Group("/certificates")
	{
		certificates.POST("", c.certificate.UploadCertificate)
		certificates.GET("", c.certificate.ListCertificates)
		certificates.DELETE("/:id", c.certificate.DeleteCertificate)
	}
}
