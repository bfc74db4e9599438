package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sakib/jobhive_go_server/internal/pkg/jwt"
	"github.com/sakib/jobhive_go_server/internal/pkg/response"
)

const (
	UserIDKey   = "userID"
	UserRoleKey = "userRole"
)

// Auth JWT 认证中间件
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.AuthError(c, "请提供认证信息")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			response.AuthError(c, "认证格式错误")
			c.Abort()
			return
		}

		claims, err := jwt.ParseToken(tokenString, jwtSecret)
		if err != nil {
			response.AuthError(c, "认证失败或已过期")
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		if claims.Role != "" {
			c.Set(UserRoleKey, claims.Role)
		}
		c.Next()
	}
}

// SharedSecret 共享密钥认证，定时任务触发的批处理接口用
func SharedSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if authHeader == "" || token == authHeader || secret == "" || token != secret {
			response.AuthError(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserID 从上下文获取用户 ID
func GetUserID(c *gin.Context) (int64, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := userID.(int64)
	return id, ok
}

// GetUserRole 从上下文获取用户角色，token 未带角色时取查询参数兜底
func GetUserRole(c *gin.Context) (string, bool) {
	if role, exists := c.Get(UserRoleKey); exists {
		if r, ok := role.(string); ok && r != "" {
			return r, true
		}
	}
	if role := c.Query("role"); role != "" {
		return role, true
	}
	return "", false
}
