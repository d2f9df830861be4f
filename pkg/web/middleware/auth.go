package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/invinciblehaolong/halolab/pkg/security"
)

const (
	// ContextKeyUsername 登录用户名在 gin.Context 中的键
	ContextKeyUsername = "auth.username"
	// ContextKeyRole 登录角色在 gin.Context 中的键
	ContextKeyRole = "auth.role"
)

// JWTAuth 验证 Authorization 头中的 Token，并把用户信息写入上下文
func JWTAuth(jwtMgr *security.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "missing authorization token",
			})
			return
		}

		claims, err := jwtMgr.ValidateToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "invalid or expired token",
			})
			return
		}

		if username, ok := claims.Payload["username"].(string); ok {
			c.Set(ContextKeyUsername, username)
		}
		if role, ok := claims.Payload["role"].(string); ok {
			c.Set(ContextKeyRole, role)
		}

		c.Next()
	}
}

// RequireRole 要求上下文中的角色匹配（需先经过 JWTAuth）
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextKeyRole) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":    403,
				"message": "insufficient permissions",
			})
			return
		}
		c.Next()
	}
}
