package plans

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/anoixa/image-craft/database/dbtest"
	"github.com/anoixa/image-craft/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func intPtr(v int) *int { return &v }

func seedPlans() []*models.SubscriptionPlan {
	return []*models.SubscriptionPlan{
		{Name: models.PlanBasic, BasicThumbnailSize: 200},
		{Name: models.PlanPremium, BasicThumbnailSize: 200, PremiumThumbnailSize: intPtr(400), GrantsOriginalAccess: true},
		{Name: models.PlanEnterprise, BasicThumbnailSize: 200, PremiumThumbnailSize: intPtr(400), GrantsOriginalAccess: true, GrantsNonExpiringLinks: true},
	}
}

func TestRepository_InsertIfEmpty_Idempotent(t *testing.T) {
	repo := NewRepository(dbtest.NewProvider(t))
	ctx := context.Background()

	inserted, err := repo.InsertIfEmpty(ctx, seedPlans())
	require.NoError(t, err)
	assert.Equal(t, int64(3), inserted)

	inserted, err = repo.InsertIfEmpty(ctx, seedPlans())
	require.NoError(t, err)
	assert.Equal(t, int64(0), inserted)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestRepository_InsertIfEmpty_Concurrent(t *testing.T) {
	repo := NewRepository(dbtest.NewProvider(t))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.InsertIfEmpty(ctx, seedPlans())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestRepository_InsertIfEmpty_SkipsNonEmptyTable(t *testing.T) {
	repo := NewRepository(dbtest.NewProvider(t))
	ctx := context.Background()

	_, err := repo.InsertIfEmpty(ctx, []*models.SubscriptionPlan{{Name: "Custom", BasicThumbnailSize: 120}})
	require.NoError(t, err)

	inserted, err := repo.InsertIfEmpty(ctx, seedPlans())
	require.NoError(t, err)
	assert.Equal(t, int64(0), inserted)

	_, err = repo.GetByName(ctx, models.PlanBasic)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestRepository_Lookups(t *testing.T) {
	repo := NewRepository(dbtest.NewProvider(t))
	ctx := context.Background()

	_, err := repo.InsertIfEmpty(ctx, seedPlans())
	require.NoError(t, err)

	enterprise, err := repo.GetByName(ctx, models.PlanEnterprise)
	require.NoError(t, err)
	assert.True(t, enterprise.GrantsNonExpiringLinks)
	require.NotNil(t, enterprise.PremiumThumbnailSize)
	assert.Equal(t, 400, *enterprise.PremiumThumbnailSize)

	byID, err := repo.GetByID(ctx, enterprise.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanEnterprise, byID.Name)

	_, err = repo.GetByID(ctx, 9999)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, models.PlanBasic, list[0].Name)
}
