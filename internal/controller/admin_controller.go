package controller

import (
	"context"

	"placeprep_backend/internal/config"
	"placeprep_backend/internal/util"
	"placeprep_backend/pkg/diagnostics"
	"placeprep_backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	Config *config.Config
	// Diagnose 执行自检，默认 diagnostics.Run
	Diagnose func(ctx context.Context, cfg *config.Config, opts diagnostics.Options) *diagnostics.Report
}

func NewAdminController(cfg *config.Config) *AdminController {
	return &AdminController{Config: cfg, Diagnose: diagnostics.Run}
}

// @Summary 依赖自检
// @Description 检查配置、数据库、缓存、存储与文本生成服务，不会向文本生成服务发送真实请求
// @Tags 管理
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=diagnostics.Report}
// @Failure 403 {object} util.Response "非管理员"
// @Router /api/admin/diagnostics [get]
func (c *AdminController) GetDiagnostics(ctx *gin.Context) {
	report := c.Diagnose(ctx.Request.Context(), c.Config, diagnostics.Options{Log: logger.Named("diagnostics")})
	util.Success(ctx, gin.H{
		"healthy": !report.Failed(),
		"checks":  report.Checks,
	})
}
