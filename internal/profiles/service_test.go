package profiles

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/anoixa/image-craft/cache"
	"github.com/anoixa/image-craft/database/dbtest"
	"github.com/anoixa/image-craft/database/models"
	plansrepo "github.com/anoixa/image-craft/database/repo/plans"
	profilesrepo "github.com/anoixa/image-craft/database/repo/profiles"
	"github.com/anoixa/image-craft/internal/logger"
	"github.com/anoixa/image-craft/internal/plans"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db := dbtest.NewProvider(t)
	c, err := cache.New(cache.Config{Type: "memory", NumCounters: 1000, MaxCost: 1 << 20})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	store := plans.NewStore(plansrepo.NewRepository(db), c, nil, logger.Nop())
	return NewService(profilesrepo.NewRepository(db), store, logger.Nop())
}

func TestService_CreateDefaultProfile(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateDefaultProfile(ctx, 42)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.CreateDefaultProfile(ctx, 42)
	require.NoError(t, err)
	assert.False(t, created)

	plan, err := svc.PlanFor(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, models.PlanBasic, plan.Name)
}

func TestService_Get_NotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Get(context.Background(), 7)
	assert.True(t, errors.Is(err, ErrProfileNotFound))

	_, err = svc.PlanFor(context.Background(), 7)
	assert.True(t, errors.Is(err, ErrProfileNotFound))
}

func TestService_Ensure_Concurrent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := svc.Ensure(ctx, 5)
			if assert.NoError(t, err) {
				assert.Equal(t, uint(5), p.UserID)
			}
		}()
	}
	wg.Wait()
}

func TestService_AssignPlan(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Ensure(ctx, 9)
	require.NoError(t, err)

	plan, err := svc.AssignPlan(ctx, 9, models.PlanEnterprise)
	require.NoError(t, err)
	assert.True(t, plan.GrantsNonExpiringLinks)

	current, err := svc.PlanFor(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, models.PlanEnterprise, current.Name)

	_, err = svc.AssignPlan(ctx, 9, "Gold")
	assert.True(t, errors.Is(err, plans.ErrPlanNotFound))
}

func TestService_AssignPlan_CreatesProfile(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.plans.EnsureDefaultPlans(ctx)
	require.NoError(t, err)

	_, err = svc.AssignPlan(ctx, 11, models.PlanPremium)
	require.NoError(t, err)

	current, err := svc.PlanFor(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, models.PlanPremium, current.Name)
}
