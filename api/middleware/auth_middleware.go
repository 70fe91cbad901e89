package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/anoixa/image-craft/api/common"
	"github.com/anoixa/image-craft/internal/auth"
	"github.com/anoixa/image-craft/internal/profiles"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	ContextUserIDKey = "user_id"
	ContextRoleKey   = "role"
)

// TokenParser 解析 Bearer 令牌
type TokenParser interface {
	ParseToken(token string) (*auth.Identity, error)
}

// JWTAuth 校验 Authorization: Bearer <token>，把 user_id 与 role 写入上下文
func JWTAuth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			common.RespondErrorAbort(c, http.StatusUnauthorized, "No Authorization request header")
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || strings.TrimSpace(token) == "" {
			common.RespondErrorAbort(c, http.StatusBadRequest, "Authorization field format error")
			return
		}
		if !strings.EqualFold(scheme, "Bearer") {
			common.RespondErrorAbort(c, http.StatusUnauthorized, "Unsupported authentication scheme")
			return
		}

		identity, err := parser.ParseToken(strings.TrimSpace(token))
		if err != nil {
			common.RespondErrorAbort(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		c.Set(ContextUserIDKey, identity.UserID)
		c.Set(ContextRoleKey, identity.Role)
		c.Next()
	}
}

// ProvisionProfile 首次出现的用户自动获得 Basic 套餐的资料
func ProvisionProfile(svc *profiles.Service, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			common.RespondErrorAbort(c, http.StatusUnauthorized, "Not authenticated")
			return
		}

		if _, err := svc.Ensure(c.Request.Context(), userID); err != nil {
			log.Error().Err(err).Uint("user_id", userID).Msg("failed to provision profile")
			if errors.Is(err, context.Canceled) {
				c.Abort()
				return
			}
			common.RespondErrorAbort(c, http.StatusInternalServerError, "Failed to provision user profile")
			return
		}
		c.Next()
	}
}

// RequireRole 检查用户是否具有指定的角色
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := Role(c)
		if !ok {
			common.RespondErrorAbort(c, http.StatusForbidden, "Access denied. Role information not found.")
			return
		}

		for _, allowed := range allowedRoles {
			if role == allowed {
				c.Next()
				return
			}
		}

		common.RespondErrorAbort(c, http.StatusForbidden, "Access denied. You do not have the required role to access this resource.")
	}
}

// UserID 从上下文读取当前用户 ID
func UserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(ContextUserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}

// Role 从上下文读取当前角色
func Role(c *gin.Context) (string, bool) {
	v, exists := c.Get(ContextRoleKey)
	if !exists {
		return "", false
	}
	role, ok := v.(string)
	return role, ok
}
