package cache

import (
	"fmt"
	"log"

	"github.com/anoixa/image-craft/cache/memory"
	"github.com/anoixa/image-craft/cache/redis"
	"github.com/anoixa/image-craft/cache/types"
	"github.com/anoixa/image-craft/config"
)

// Provider 缓存提供者接口
type Provider = types.Provider

// ErrCacheMiss 缓存未命中错误
var ErrCacheMiss = types.ErrCacheMiss

// IsCacheMiss 判断是否为缓存未命中错误
func IsCacheMiss(err error) bool {
	return types.IsCacheMiss(err)
}

// Config 缓存配置
type Config struct {
	Type        string // "memory" or "redis"
	NumCounters int64  // memory only
	MaxCost     int64  // memory only
	BufferItems int64  // memory only
	Metrics     bool   // memory only
	Address     string // redis only
	Password    string // redis only
	DB          int    // redis only
	PoolSize    int    // redis only
}

// ConfigFrom 从全局配置构建缓存配置
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		Type:        cfg.CacheType,
		NumCounters: cfg.CacheMemoryNumCounters,
		MaxCost:     cfg.CacheMemoryMaxCost,
		BufferItems: 64,
		Address:     cfg.CacheRedisAddr,
		Password:    cfg.CacheRedisPassword,
		DB:          cfg.CacheRedisDB,
		PoolSize:    cfg.CacheRedisPoolSize,
	}
}

// New 根据配置创建缓存提供者
func New(cfg Config) (Provider, error) {
	switch cfg.Type {
	case "", "memory":
		p, err := memory.NewMemory(memory.Config{
			NumCounters: cfg.NumCounters,
			MaxCost:     cfg.MaxCost,
			BufferItems: cfg.BufferItems,
			Metrics:     cfg.Metrics,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create memory cache: %w", err)
		}
		log.Println("[Cache] Using in-memory cache")
		return p, nil
	case "redis":
		p, err := redis.NewRedis(redis.Config{
			Address:  cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
			PoolSize: cfg.PoolSize,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Address, err)
		}
		log.Printf("[Cache] Using redis cache at %s", cfg.Address)
		return p, nil
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.Type)
	}
}
