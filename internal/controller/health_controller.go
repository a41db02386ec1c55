package controller

import (
	"context"
	"time"

	"placeprep_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// GenerationStatus 报告出题服务是否启用
type GenerationStatus interface {
	GenerationAvailable() bool
}

type HealthController struct {
	DB         *gorm.DB
	Redis      *redis.Client
	Generation GenerationStatus
}

func NewHealthController(db *gorm.DB, rdb *redis.Client, gen GenerationStatus) *HealthController {
	return &HealthController{DB: db, Redis: rdb, Generation: gen}
}

// @Summary 健康检查
// @Description 检查服务状态
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Failure 503 {object} util.Response "数据库不可用"
// @Router /api/health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	// 检查数据库连接
	sqlDB, err := c.DB.DB()
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		util.ServiceUnavailable(ctx, "Database unavailable")
		return
	}

	// Redis 只影响注销，不可用时降级
	redisStatus := "disabled"
	if c.Redis != nil {
		redisStatus = "up"
		if err := c.Redis.Ping(pingCtx).Err(); err != nil {
			redisStatus = "down"
		}
	}

	generation := "fallback"
	if c.Generation != nil && c.Generation.GenerationAvailable() {
		generation = "enabled"
	}

	util.Success(ctx, gin.H{
		"status": "ok",
		"components": gin.H{
			"database":   "up",
			"redis":      redisStatus,
			"generation": generation,
		},
	})
}
