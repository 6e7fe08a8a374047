package middleware

import (
	"Inkwell/internal/pkg/consts"
	"Inkwell/internal/pkg/logger"
	"Inkwell/internal/pkg/redis"
	"Inkwell/internal/pkg/response"
	"Inkwell/internal/pkg/security"
	"strings"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 负责验证 JWT 并将用户身份信息注入 Context
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			response.Fail(c, response.Unauthorized, "Token 缺失或格式错误")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		signature, err := security.ExtractSignature(tokenString)
		if err != nil {
			response.Fail(c, response.Unauthorized, "Token 缺失或格式错误")
			c.Abort()
			return
		}

		// 已注销的 Token 以签名为键记入黑名单
		if redis.Enabled() {
			value, err := redis.GetValue(c.Request.Context(), consts.TokenBlacklistKey+signature)
			if err != nil {
				response.Fail(c, response.InternalServerError, "未知错误")
				c.Abort()
				return
			}
			if value != "" {
				response.Fail(c, response.Unauthorized, "Token 无效或已过期")
				c.Abort()
				return
			}
		}

		claims, err := security.ValidateToken(tokenString)
		if err != nil {
			response.Fail(c, response.Unauthorized, "Token 无效或已过期")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("roles", claims.Roles)

		newCtx := logger.WithUserID(c.Request.Context(), claims.UserID)
		c.Request = c.Request.WithContext(newCtx)

		c.Next()
	}
}
