package core

import (
	"context"
	"net/http"
	"time"

	"github.com/anoixa/image-craft/cache"
	"github.com/anoixa/image-craft/config"
	"github.com/anoixa/image-craft/database"
	"github.com/anoixa/image-craft/storage"
	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

// HealthHandler 检查数据库、缓存与存储
type HealthHandler struct {
	db      database.Provider
	cache   cache.Provider
	storage storage.Provider
	timeout time.Duration
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(db database.Provider, c cache.Provider, s storage.Provider) *HealthHandler {
	return &HealthHandler{db: db, cache: c, storage: s, timeout: 3 * time.Second}
}

// Handle 任一检查失败时返回 503
func (h *HealthHandler) Handle(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	checks := gin.H{
		"database": checkDatabaseHealth(h.db),
		"cache":    checkCacheHealth(ctx, h.cache),
		"storage":  checkStorageHealth(ctx, h.storage),
	}

	httpStatus := http.StatusOK
	status := "ok"
	for _, result := range checks {
		if result != "ok" {
			httpStatus = http.StatusServiceUnavailable
			status = "degraded"
			break
		}
	}

	c.JSON(httpStatus, gin.H{
		"status":  status,
		"uptime":  time.Since(startTime).Round(time.Second).String(),
		"version": config.Version,
		"checks":  checks,
	})
}

func checkDatabaseHealth(provider database.Provider) string {
	if provider == nil {
		return "not initialized"
	}
	if err := provider.Ping(); err != nil {
		return "unavailable: " + err.Error()
	}
	return "ok"
}

func checkCacheHealth(ctx context.Context, provider cache.Provider) string {
	if provider == nil {
		return "not initialized"
	}
	if err := provider.Health(ctx); err != nil {
		return "unavailable: " + err.Error()
	}
	return "ok"
}

func checkStorageHealth(ctx context.Context, provider storage.Provider) string {
	if provider == nil {
		return "not initialized"
	}
	if err := provider.Health(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
