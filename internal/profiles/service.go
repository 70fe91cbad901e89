// Package profiles 管理用户资料及其套餐
package profiles

import (
	"context"
	"errors"
	"fmt"

	"github.com/anoixa/image-craft/database/models"
	profilesrepo "github.com/anoixa/image-craft/database/repo/profiles"
	"github.com/anoixa/image-craft/internal/plans"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// ErrProfileNotFound 用户尚无资料
var ErrProfileNotFound = errors.New("user profile not found")

// Service 用户资料服务
type Service struct {
	repo  *profilesrepo.Repository
	plans *plans.Store
	log   zerolog.Logger
}

// NewService 创建用户资料服务
func NewService(repo *profilesrepo.Repository, planStore *plans.Store, log zerolog.Logger) *Service {
	return &Service{
		repo:  repo,
		plans: planStore,
		log:   log.With().Str("component", "profiles").Logger(),
	}
}

// CreateDefaultProfile 为用户创建绑定 Basic 套餐的资料，已存在时不做修改
func (s *Service) CreateDefaultProfile(ctx context.Context, userID uint) (bool, error) {
	if _, err := s.plans.EnsureDefaultPlans(ctx); err != nil {
		return false, err
	}

	basic, err := s.plans.GetByName(ctx, models.PlanBasic)
	if err != nil {
		return false, fmt.Errorf("failed to resolve default plan: %w", err)
	}

	planID := basic.ID
	created, err := s.repo.CreateIfAbsent(ctx, &models.UserProfile{
		UserID:             userID,
		SubscriptionPlanID: &planID,
	})
	if err != nil {
		return false, fmt.Errorf("failed to create profile: %w", err)
	}
	if created {
		s.log.Info().Uint("user_id", userID).Str("plan", basic.Name).Msg("created default profile")
	}
	return created, nil
}

// Get 获取用户资料
func (s *Service) Get(ctx context.Context, userID uint) (*models.UserProfile, error) {
	profile, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return profile, nil
}

// Ensure 获取用户资料，不存在时创建默认资料
func (s *Service) Ensure(ctx context.Context, userID uint) (*models.UserProfile, error) {
	profile, err := s.Get(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, ErrProfileNotFound) {
		return nil, err
	}

	if _, err := s.CreateDefaultProfile(ctx, userID); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// PlanFor 返回用户当前的套餐
func (s *Service) PlanFor(ctx context.Context, userID uint) (*models.SubscriptionPlan, error) {
	profile, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile.SubscriptionPlanID == nil {
		return nil, fmt.Errorf("%w: profile of user %d has no plan", plans.ErrPlanNotFound, userID)
	}
	return s.plans.Get(ctx, *profile.SubscriptionPlanID)
}

// AssignPlan 修改用户套餐，用户没有资料时先创建
func (s *Service) AssignPlan(ctx context.Context, userID uint, planName string) (*models.SubscriptionPlan, error) {
	plan, err := s.plans.GetByName(ctx, planName)
	if err != nil {
		return nil, err
	}

	if _, err := s.Ensure(ctx, userID); err != nil {
		return nil, err
	}

	if err := s.repo.UpdatePlan(ctx, userID, plan.ID); err != nil {
		return nil, fmt.Errorf("failed to assign plan: %w", err)
	}

	s.log.Info().Uint("user_id", userID).Str("plan", plan.Name).Msg("assigned plan")
	return plan, nil
}
