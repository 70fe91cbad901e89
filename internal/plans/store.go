// Package plans 提供带缓存的订阅套餐读取与初始化
package plans

import (
	"context"
	"errors"
	"fmt"

	"github.com/anoixa/image-craft/cache"
	"github.com/anoixa/image-craft/database/models"
	plansrepo "github.com/anoixa/image-craft/database/repo/plans"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// ErrPlanNotFound 套餐不存在
var ErrPlanNotFound = errors.New("subscription plan not found")

// Store 套餐存储，读穿透缓存，不设 TTL
type Store struct {
	repo  *plansrepo.Repository
	cache cache.Provider
	defs  []Definition
	log   zerolog.Logger

	loads singleflight.Group
	seeds singleflight.Group
}

// NewStore 创建套餐存储，defs 为空时使用内置套餐
func NewStore(repo *plansrepo.Repository, c cache.Provider, defs []Definition, log zerolog.Logger) *Store {
	if len(defs) == 0 {
		defs = DefaultDefinitions()
	}
	return &Store{
		repo:  repo,
		cache: c,
		defs:  defs,
		log:   log.With().Str("component", "plan_store").Logger(),
	}
}

// Definitions 返回用于初始化的套餐定义
func (s *Store) Definitions() []Definition {
	out := make([]Definition, len(s.defs))
	copy(out, s.defs)
	return out
}

// Get 根据 ID 获取套餐
func (s *Store) Get(ctx context.Context, id uint) (*models.SubscriptionPlan, error) {
	return s.load(ctx, cache.SubscriptionPlan.BuildID(id), func(ctx context.Context) (*models.SubscriptionPlan, error) {
		return s.repo.GetByID(ctx, id)
	})
}

// GetByName 根据名称获取套餐
// 名称只用来查出 ID，缓存只按 ID 存放，改名后 Invalidate(id) 即可生效
func (s *Store) GetByName(ctx context.Context, name string) (*models.SubscriptionPlan, error) {
	plan, err := s.repo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to load subscription plan: %w", err)
	}
	return s.Get(ctx, plan.ID)
}

// load 先查缓存，未命中时合并并发请求后查库
// 合并后的查询不跟随首个调用方的取消，其它等待者仍能拿到结果
func (s *Store) load(ctx context.Context, key string, fetch func(context.Context) (*models.SubscriptionPlan, error)) (*models.SubscriptionPlan, error) {
	var cached models.SubscriptionPlan
	err := s.cache.Get(ctx, key, &cached)
	if err == nil {
		return &cached, nil
	}
	if !cache.IsCacheMiss(err) {
		s.log.Warn().Err(err).Str("key", key).Msg("plan cache read failed, falling back to database")
	}

	v, err, _ := s.loads.Do(key, func() (interface{}, error) {
		ctx := context.WithoutCancel(ctx)
		plan, err := fetch(ctx)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrPlanNotFound
			}
			return nil, fmt.Errorf("failed to load subscription plan: %w", err)
		}
		if err := s.cache.Set(ctx, key, plan, 0); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("plan cache write failed")
		}
		return plan, nil
	})
	if err != nil {
		return nil, err
	}

	plan := *v.(*models.SubscriptionPlan)
	return &plan, nil
}

// EnsureDefaultPlans 表为空时写入套餐，返回插入的行数
// 可重复调用；进程内的并发调用合并为一次
func (s *Store) EnsureDefaultPlans(ctx context.Context) (int, error) {
	v, err, _ := s.seeds.Do("seed", func() (interface{}, error) {
		ctx := context.WithoutCancel(ctx)
		rows := make([]*models.SubscriptionPlan, 0, len(s.defs))
		for _, d := range s.defs {
			rows = append(rows, d.Model())
		}

		n, err := s.repo.InsertIfEmpty(ctx, rows)
		if err != nil {
			return 0, fmt.Errorf("failed to seed subscription plans: %w", err)
		}
		if n > 0 {
			s.log.Info().Int64("inserted", n).Msg("seeded subscription plans")
		}
		return int(n), nil
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

// Invalidate 删除套餐的缓存项，修改套餐（包括改名）后调用
func (s *Store) Invalidate(ctx context.Context, id uint) error {
	return s.cache.Delete(ctx, cache.SubscriptionPlan.BuildID(id))
}

// List 列出全部套餐，不经过缓存
func (s *Store) List(ctx context.Context) ([]*models.SubscriptionPlan, error) {
	return s.repo.List(ctx)
}

// Warm 预先把全部套餐写入缓存
func (s *Store) Warm(ctx context.Context) (int, error) {
	plans, err := s.repo.List(ctx)
	if err != nil {
		return 0, err
	}
	for _, p := range plans {
		if err := s.cache.Set(ctx, cache.SubscriptionPlan.BuildID(p.ID), p, 0); err != nil {
			return 0, err
		}
	}
	return len(plans), nil
}
