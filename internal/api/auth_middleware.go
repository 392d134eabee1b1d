package api

import (
	"strings"

	"dqdash/internal/entity/db"
	"dqdash/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	currentUserContextKey = "current-user"
)

// bearerToken 从 Authorization 头中取出 Bearer Token；格式不对时返回空串
func bearerToken(c *gin.Context) string {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// AuthMiddleware JWT 认证中间件
func (h *HTTPHandler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := h.gate.ResolveIdentity(c.Request.Context(), bearerToken(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.Set(currentUserContextKey, user)
		c.Next()
	}
}

// RequireAdmin 管理员权限守卫中间件，必须挂在 AuthMiddleware 之后
func (h *HTTPHandler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := service.RequireAdmin(CurrentUser(c)); err != nil {
			respondError(c, err)
			return
		}
		c.Next()
	}
}

// CurrentUser 从上下文获取当前认证用户
func CurrentUser(c *gin.Context) *db.User {
	value, exists := c.Get(currentUserContextKey)
	if !exists {
		return nil
	}
	user, ok := value.(*db.User)
	if !ok {
		return nil
	}
	return user
}
