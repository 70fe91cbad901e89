// Package app 组装各层依赖并管理它们的生命周期
package app

import (
	"context"
	"fmt"
	"log"

	"github.com/anoixa/image-craft/cache"
	"github.com/anoixa/image-craft/config"
	"github.com/anoixa/image-craft/database"
	imagesrepo "github.com/anoixa/image-craft/database/repo/images"
	plansrepo "github.com/anoixa/image-craft/database/repo/plans"
	profilesrepo "github.com/anoixa/image-craft/database/repo/profiles"
	"github.com/anoixa/image-craft/internal/auth"
	"github.com/anoixa/image-craft/internal/image"
	"github.com/anoixa/image-craft/internal/logger"
	"github.com/anoixa/image-craft/internal/metrics"
	"github.com/anoixa/image-craft/internal/plans"
	"github.com/anoixa/image-craft/internal/profiles"
	"github.com/anoixa/image-craft/internal/thumbnail"
	"github.com/anoixa/image-craft/internal/worker"
	"github.com/anoixa/image-craft/storage"
	"github.com/anoixa/image-craft/utils"
	"github.com/rs/zerolog"
)

// Container 依赖注入容器
type Container struct {
	config          *config.Config
	databaseFactory *database.Factory

	Log       zerolog.Logger
	Cache     cache.Provider
	Storage   storage.Provider
	Generator thumbnail.Generator
	Pool      *worker.Pool
	Metrics   *metrics.Metrics
	JWT       *auth.JWTService

	ImagesRepo   *imagesrepo.Repository
	PlansRepo    *plansrepo.Repository
	ProfilesRepo *profilesrepo.Repository

	Plans    *plans.Store
	Profiles *profiles.Service
	Uploads  *image.UploadService
	Access   *image.AccessService
}

// NewContainer 创建新的依赖注入容器
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config: cfg,
		Log:    logger.New(cfg.LogLevel, config.IsDevelopment()),
	}
}

// InitDatabase 只初始化数据库，迁移类命令使用
func (c *Container) InitDatabase() error {
	utils.LogIfDev("Initializing DI container...")

	factory, err := database.NewFactory(c.config)
	if err != nil {
		return fmt.Errorf("failed to initialize database factory: %w", err)
	}
	c.databaseFactory = factory
	c.initRepositories()
	return nil
}

// Init 初始化全部依赖
func (c *Container) Init() error {
	if c.databaseFactory == nil {
		if err := c.InitDatabase(); err != nil {
			return err
		}
	}
	if err := c.InitServices(); err != nil {
		return err
	}
	utils.LogIfDev("DI container initialized successfully")
	return nil
}

// InitServices 初始化缓存、存储、缩略图引擎与业务服务
func (c *Container) InitServices() error {
	var err error

	if c.Cache, err = cache.New(cache.ConfigFrom(c.config)); err != nil {
		return err
	}

	if c.Storage, err = storage.NewProvider(c.config); err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	if c.Generator, err = thumbnail.New(c.config.ThumbnailEngine, c.config.ThumbnailQuality); err != nil {
		return fmt.Errorf("failed to initialize thumbnail engine: %w", err)
	}
	log.Printf("[Container] Thumbnail engine: %s", c.Generator.Name())

	defs, err := plans.LoadDefinitions(c.config.PlansFile)
	if err != nil {
		return err
	}

	c.Metrics = metrics.New()
	c.Pool = worker.NewPool(c.config.GetWorkerCount(), c.config.WorkerQueueSize)

	c.Plans = plans.NewStore(c.PlansRepo, c.Cache, defs, c.Log)
	c.Profiles = profiles.NewService(c.ProfilesRepo, c.Plans, c.Log)

	deps := image.Deps{
		DB:        c.databaseFactory.GetProvider(),
		Repo:      c.ImagesRepo,
		Profiles:  c.Profiles,
		Plans:     c.Plans,
		Storage:   c.Storage,
		Generator: c.Generator,
		Pool:      c.Pool,
		Metrics:   c.Metrics,
		Log:       c.Log,
	}
	c.Uploads = image.NewUploadService(deps)
	c.Access = image.NewAccessService(deps)
	return nil
}

// InitAuth 初始化 JWT 服务，serve 与 token 命令需要
func (c *Container) InitAuth() error {
	svc, err := auth.NewJWTServiceFromConfig(c.config)
	if err != nil {
		return err
	}
	c.JWT = svc
	return nil
}

// initRepositories 初始化所有仓库
func (c *Container) initRepositories() {
	db := c.databaseFactory.GetProvider()
	c.ImagesRepo = imagesrepo.NewRepository(db)
	c.PlansRepo = plansrepo.NewRepository(db)
	c.ProfilesRepo = profilesrepo.NewRepository(db)
	utils.LogIfDev("Repositories initialized")
}

// Migrate 迁移数据库结构
func (c *Container) Migrate() error {
	if c.databaseFactory == nil {
		return fmt.Errorf("database not initialized")
	}
	return c.databaseFactory.AutoMigrate()
}

// SeedPlans 显式初始化套餐
func (c *Container) SeedPlans(ctx context.Context) (int, error) {
	if c.Plans == nil {
		return 0, fmt.Errorf("services not initialized")
	}
	return c.Plans.EnsureDefaultPlans(ctx)
}

// GetDatabaseProvider 获取数据库提供者
func (c *Container) GetDatabaseProvider() database.Provider {
	if c.databaseFactory == nil {
		return nil
	}
	return c.databaseFactory.GetProvider()
}

// GetConfig 获取配置
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// Close 关闭所有服务
func (c *Container) Close() error {
	utils.LogIfDev("Closing DI container...")

	if c.Pool != nil {
		c.Pool.Stop()
		st := c.Pool.Stats()
		utils.LogIfDevf("[Container] Worker pool stopped: executed=%d failed=%d dropped=%d",
			st.Executed, st.Failed, st.Dropped)
	}
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			log.Printf("[Container] Error closing cache: %v", err)
		}
	}
	if c.databaseFactory != nil {
		if err := c.databaseFactory.Close(); err != nil {
			log.Printf("[Container] Error closing database: %v", err)
		}
	}
	thumbnail.ShutdownVips()

	utils.LogIfDev("DI container closed")
	return nil
}
