package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"placeprep_backend/internal/config"
	"placeprep_backend/internal/model"
	"placeprep_backend/internal/util"
	"placeprep_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RevocationChecker 判断令牌是否已注销
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

func AuthMiddleware(cfg *config.Config, revoked RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			tokenString = strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		}

		// 证书下载等场景无法设置请求头
		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret)
		if err != nil {
			logger.Log.Debug("JWT解析错误", zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		if revoked != nil {
			isRevoked, err := revoked.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				// 黑名单不可用时放行，只记录日志
				logger.Log.Warn("Token revocation check failed", zap.Error(err))
			} else if isRevoked {
				util.Error(c, http.StatusUnauthorized, util.ErrTokenRevoked.Error())
				c.Abort()
				return
			}
		}

		c.Set(util.ContextUserKey, claims)
		c.Next()
	}
}

func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		hasRole := user.Role == model.Admin
		for _, role := range roles {
			if user.Role == role {
				hasRole = true
				break
			}
		}

		if !hasRole {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

type UserActivityRepo interface {
	TouchSeen(userID uint, at time.Time) error
}

// activityInterval 同一用户两次写入最后活跃时间的最小间隔
const activityInterval = 5 * time.Minute

// ActivityMiddleware 异步记录最后活跃时间，每个用户每 activityInterval 最多写一次
func ActivityMiddleware(repo UserActivityRepo) gin.HandlerFunc {
	var lastTouch sync.Map // uint -> time.Time
	return func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		if claims != nil {
			now := time.Now()
			prev, loaded := lastTouch.Load(claims.UserID)
			if !loaded || now.Sub(prev.(time.Time)) >= activityInterval {
				lastTouch.Store(claims.UserID, now)
				go func(id uint) {
					if err := repo.TouchSeen(id, now); err != nil {
						logger.Log.Warn("Failed to record user activity", zap.Uint("user_id", id), zap.Error(err))
					}
				}(claims.UserID)
			}
		}
		c.Next()
	}
}
