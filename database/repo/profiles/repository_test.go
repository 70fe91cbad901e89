package profiles

import (
	"context"
	"errors"
	"testing"

	"github.com/anoixa/image-craft/database/dbtest"
	"github.com/anoixa/image-craft/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRepository_CreateIfAbsent(t *testing.T) {
	provider := dbtest.NewProvider(t)
	repo := NewRepository(provider)
	ctx := context.Background()

	plan := &models.SubscriptionPlan{Name: models.PlanBasic, BasicThumbnailSize: 200}
	require.NoError(t, provider.DB().Create(plan).Error)

	created, err := repo.CreateIfAbsent(ctx, &models.UserProfile{UserID: 7, SubscriptionPlanID: &plan.ID})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.CreateIfAbsent(ctx, &models.UserProfile{UserID: 7, SubscriptionPlanID: &plan.ID})
	require.NoError(t, err)
	assert.False(t, created)

	var count int64
	require.NoError(t, provider.DB().Model(&models.UserProfile{}).Where("user_id = ?", 7).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	profile, err := repo.GetByUserID(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, profile.SubscriptionPlanID)
	assert.Equal(t, plan.ID, *profile.SubscriptionPlanID)
}

func TestRepository_GetByUserID_NotFound(t *testing.T) {
	repo := NewRepository(dbtest.NewProvider(t))

	_, err := repo.GetByUserID(context.Background(), 42)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestRepository_UpdatePlan(t *testing.T) {
	provider := dbtest.NewProvider(t)
	repo := NewRepository(provider)
	ctx := context.Background()

	basic := &models.SubscriptionPlan{Name: models.PlanBasic, BasicThumbnailSize: 200}
	premium := &models.SubscriptionPlan{Name: models.PlanPremium, BasicThumbnailSize: 200}
	require.NoError(t, provider.DB().Create(basic).Error)
	require.NoError(t, provider.DB().Create(premium).Error)

	_, err := repo.CreateIfAbsent(ctx, &models.UserProfile{UserID: 3, SubscriptionPlanID: &basic.ID})
	require.NoError(t, err)

	require.NoError(t, repo.UpdatePlan(ctx, 3, premium.ID))
	profile, err := repo.GetByUserID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, premium.ID, *profile.SubscriptionPlanID)

	err = repo.UpdatePlan(ctx, 99, premium.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
