package core

import (
	"net/http"
	"time"

	"github.com/anoixa/image-craft/api/middleware"
	"github.com/anoixa/image-craft/cache"
	"github.com/anoixa/image-craft/config"
	"github.com/anoixa/image-craft/database"
	"github.com/anoixa/image-craft/internal/image"
	"github.com/anoixa/image-craft/internal/metrics"
	"github.com/anoixa/image-craft/internal/plans"
	"github.com/anoixa/image-craft/internal/profiles"
	"github.com/anoixa/image-craft/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ServerDependencies 服务器依赖项
type ServerDependencies struct {
	Config   *config.Config
	DB       database.Provider
	Cache    cache.Provider
	Storage  storage.Provider
	Metrics  *metrics.Metrics
	Tokens   middleware.TokenParser
	Plans    *plans.Store
	Profiles *profiles.Service
	Uploads  *image.UploadService
	Access   *image.AccessService
	Log      zerolog.Logger
}

// setupRouter 创建 gin 引擎，返回的 cleanup 用于停止限流器的后台清理
func setupRouter(deps *ServerDependencies) (*gin.Engine, func()) {
	cfg := deps.Config
	router := gin.New()

	if !config.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(deps.Log))
	router.Use(middleware.Metrics(deps.Metrics))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.BaseURL()},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	_ = router.SetTrustedProxies(nil)

	maxUpload := int64(cfg.UploadMaxSizeMB) << 20
	if maxUpload <= 0 {
		maxUpload = 50 << 20
	}
	router.MaxMultipartMemory = maxUpload
	// multipart 边界与其他字段留出余量
	router.Use(middleware.MaxBytesReader(maxUpload + 1<<20))

	router.Use(middleware.NewConcurrencyLimiter(cfg.MaxConcurrency).Middleware())

	limiters := &rateLimiters{
		api:   middleware.NewIPRateLimiter(cfg.RateLimitApiRPS, cfg.RateLimitApiBurst, cfg.RateLimitExpireTime),
		image: middleware.NewIPRateLimiter(cfg.RateLimitImageRPS, cfg.RateLimitImageBurst, cfg.RateLimitExpireTime),
	}

	RegisterRoutes(router, deps, limiters)
	return router, limiters.stop
}

// StartServer 创建 http.Server
func StartServer(deps *ServerDependencies) (*http.Server, func()) {
	cfg := deps.Config
	router, clean := setupRouter(deps)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return srv, clean
}
