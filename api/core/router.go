package core

import (
	"github.com/anoixa/image-craft/api/common"
	"github.com/anoixa/image-craft/api/handler/admin"
	"github.com/anoixa/image-craft/api/handler/images"
	"github.com/anoixa/image-craft/api/middleware"
	"github.com/anoixa/image-craft/config"
	"github.com/anoixa/image-craft/internal/auth"
	"github.com/gin-gonic/gin"
)

type rateLimiters struct {
	api   *middleware.IPRateLimiter
	image *middleware.IPRateLimiter
}

func (r *rateLimiters) stop() {
	r.api.StopCleanup()
	r.image.StopCleanup()
}

// RegisterRoutes 注册所有路由
func RegisterRoutes(router *gin.Engine, deps *ServerDependencies, limiters *rateLimiters) {
	registerBasicRoutes(router, deps)
	registerAPIRoutes(router, deps, limiters)
}

// registerBasicRoutes 注册基础路由
func registerBasicRoutes(router *gin.Engine, deps *ServerDependencies) {
	healthHandler := NewHealthHandler(deps.DB, deps.Cache, deps.Storage)
	router.GET("/health", healthHandler.Handle)

	router.GET("/version", func(context *gin.Context) {
		common.RespondSuccess(context, gin.H{
			"version": config.Version,
			"commit":  config.CommitHash,
		})
	})

	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
}

// registerAPIRoutes 注册 API 路由
func registerAPIRoutes(router *gin.Engine, deps *ServerDependencies, limiters *rateLimiters) {
	imageHandler := images.NewHandler(deps.Uploads, deps.Access, deps.Config.BaseURL(), deps.Config.UploadMaxSizeMB, deps.Log)
	plansHandler := admin.NewPlansHandler(deps.Plans, deps.Profiles, deps.Log)

	apiGroup := router.Group("/api")
	apiGroup.Use(func(context *gin.Context) {
		context.Header("Cache-Control", "no-store")
		context.Next()
	})

	v1 := apiGroup.Group("/v1")
	v1.Use(middleware.JWTAuth(deps.Tokens))
	v1.Use(middleware.ProvisionProfile(deps.Profiles, deps.Log))
	{
		imagesGroup := v1.Group("/images")
		{
			imagesGroup.POST("/upload", limiters.api.Middleware(), imageHandler.UploadImage)    // POST /api/v1/images/upload
			imagesGroup.GET("", limiters.api.Middleware(), imageHandler.ListImages)             // GET /api/v1/images
			imagesGroup.GET("/:id", limiters.api.Middleware(), imageHandler.GetImage)           // GET /api/v1/images/{id}
			imagesGroup.GET("/:id/serve", limiters.image.Middleware(), imageHandler.ServeImage) // GET /api/v1/images/{id}/serve?q=
		}

		adminGroup := v1.Group("/admin")
		adminGroup.Use(limiters.api.Middleware())
		adminGroup.Use(middleware.RequireRole(auth.RoleStaff))
		{
			adminGroup.GET("/plans", plansHandler.ListPlans)                        // GET /api/v1/admin/plans
			adminGroup.POST("/plans/seed", plansHandler.SeedPlans)                  // POST /api/v1/admin/plans/seed
			adminGroup.DELETE("/plans/:id/cache", plansHandler.InvalidatePlanCache) // DELETE /api/v1/admin/plans/{id}/cache
			adminGroup.PUT("/profiles/:user_id/plan", plansHandler.AssignPlan)      // PUT /api/v1/admin/profiles/{user_id}/plan
		}
	}
}
