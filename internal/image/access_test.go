package image

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anoixa/image-craft/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadFor(t *testing.T, env *testEnv, userID uint, plan string) *models.ImageAsset {
	t.Helper()
	env.userWithPlan(t, userID, plan)
	res, err := env.upload.CreateImage(context.Background(), CreateImageInput{
		OwnerID: userID,
		Title:   "photo",
		Data:    samplePNG(t, 800, 600),
	})
	require.NoError(t, err)
	return res.Asset
}

func TestServe_ExpiryBoundary(t *testing.T) {
	env := newEnv(t, nil)
	a := uploadFor(t, env, 1, models.PlanBasic)
	ctx := context.Background()
	req := ServeRequest{RequesterID: 1, RequesterRole: RoleUser, ImageID: a.ID, VariantPath: a.BasicThumbnailPath}

	env.clock.Advance(300 * time.Second)
	served, err := env.access.Serve(ctx, req)
	require.NoError(t, err, "link is still valid at exactly expiration_at")
	_ = served.Reader.Close()

	env.clock.Advance(time.Second)
	_, err = env.access.Serve(ctx, req)
	assert.True(t, errors.Is(err, ErrLinkExpired))
}

func TestServe_PremiumExpires(t *testing.T) {
	env := newEnv(t, nil)
	a := uploadFor(t, env, 1, models.PlanPremium)

	env.clock.Advance(time.Hour)
	_, err := env.access.Serve(context.Background(), ServeRequest{
		RequesterID: 1, RequesterRole: RoleUser, ImageID: a.ID, VariantPath: a.PremiumThumbnailPath,
	})
	assert.True(t, errors.Is(err, ErrLinkExpired))
}

func TestServe_EnterpriseNeverExpires(t *testing.T) {
	env := newEnv(t, nil)
	a := uploadFor(t, env, 1, models.PlanEnterprise)

	env.clock.Advance(365 * 24 * time.Hour)
	served, err := env.access.Serve(context.Background(), ServeRequest{
		RequesterID: 1, RequesterRole: RoleUser, ImageID: a.ID, VariantPath: a.OriginalPath,
	})
	require.NoError(t, err)
	assert.Equal(t, a.OriginalPath, served.Path)
	assert.NotEmpty(t, readAll(t, served))
}

func TestServe_PlanChangeAppliesToExistingImages(t *testing.T) {
	env := newEnv(t, nil)
	a := uploadFor(t, env, 1, models.PlanBasic)
	req := ServeRequest{RequesterID: 1, RequesterRole: RoleUser, ImageID: a.ID, VariantPath: a.BasicThumbnailPath}

	env.clock.Advance(time.Hour)
	_, err := env.access.Serve(context.Background(), req)
	require.True(t, errors.Is(err, ErrLinkExpired))

	env.userWithPlan(t, 1, models.PlanEnterprise)
	served, err := env.access.Serve(context.Background(), req)
	require.NoError(t, err)
	_ = served.Reader.Close()
}

func TestServe_NonOwner(t *testing.T) {
	env := newEnv(t, nil)
	a := uploadFor(t, env, 1, models.PlanBasic)
	env.userWithPlan(t, 2, models.PlanEnterprise)

	_, err := env.access.Serve(context.Background(), ServeRequest{
		RequesterID: 2, RequesterRole: RoleUser, ImageID: a.ID, VariantPath: a.BasicThumbnailPath,
	})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestServe_UnknownImage(t *testing.T) {
	env := newEnv(t, nil)
	env.userWithPlan(t, 1, models.PlanBasic)

	_, err := env.access.Serve(context.Background(), ServeRequest{
		RequesterID: 1, RequesterRole: RoleUser, ImageID: 12345, VariantPath: "original/x.png",
	})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestServe_StaffBypassesChecks(t *testing.T) {
	env := newEnv(t, nil)
	a := uploadFor(t, env, 1, models.PlanBasic)

	env.clock.Advance(24 * time.Hour)
	served, err := env.access.Serve(context.Background(), ServeRequest{
		RequesterID: 99, RequesterRole: RoleStaff, ImageID: a.ID, VariantPath: a.BasicThumbnailPath,
	})
	require.NoError(t, err)
	_ = served.Reader.Close()
}

func TestServe_PathFromAnotherImage(t *testing.T) {
	env := newEnv(t, nil)
	first := uploadFor(t, env, 1, models.PlanBasic)
	res, err := env.upload.CreateImage(context.Background(), CreateImageInput{OwnerID: 1, Title: "second", Data: samplePNG(t, 300, 200)})
	require.NoError(t, err)

	_, err = env.access.Serve(context.Background(), ServeRequest{
		RequesterID: 1, RequesterRole: RoleUser, ImageID: first.ID, VariantPath: res.Asset.BasicThumbnailPath,
	})
	assert.True(t, errors.Is(err, ErrAssetMissing))
}

func TestServe_EmptyPremiumPath(t *testing.T) {
	env := newEnv(t, nil)
	a := uploadFor(t, env, 1, models.PlanBasic)

	_, err := env.access.Serve(context.Background(), ServeRequest{
		RequesterID: 1, RequesterRole: RoleUser, ImageID: a.ID, VariantPath: "",
	})
	assert.True(t, errors.Is(err, ErrAssetMissing))
}

func TestServe_BlobMissing(t *testing.T) {
	env := newEnv(t, nil)
	a := uploadFor(t, env, 1, models.PlanBasic)
	ctx := context.Background()
	require.NoError(t, env.storage.DeleteWithContext(ctx, a.BasicThumbnailPath))

	_, err := env.access.Serve(ctx, ServeRequest{
		RequesterID: 1, RequesterRole: RoleUser, ImageID: a.ID, VariantPath: a.BasicThumbnailPath,
	})
	assert.True(t, errors.Is(err, ErrAssetMissing))
}

func TestServe_RequesterWithoutProfile(t *testing.T) {
	env := newEnv(t, nil)
	a := uploadFor(t, env, 1, models.PlanBasic)
	require.NoError(t, env.db.DB().Where("user_id = ?", 1).Delete(&models.UserProfile{}).Error)

	_, err := env.access.Serve(context.Background(), ServeRequest{
		RequesterID: 1, RequesterRole: RoleUser, ImageID: a.ID, VariantPath: a.BasicThumbnailPath,
	})
	assert.True(t, errors.Is(err, ErrProfileNotFound))
}

func TestDetail(t *testing.T) {
	env := newEnv(t, nil)
	basic := uploadFor(t, env, 1, models.PlanBasic)
	enterprise := uploadFor(t, env, 2, models.PlanEnterprise)
	ctx := context.Background()

	d, err := env.access.Detail(ctx, 1, RoleUser, basic.ID)
	require.NoError(t, err)
	assert.False(t, d.FullAccess)
	assert.Equal(t, models.PlanBasic, d.Plan.Name)

	d, err = env.access.Detail(ctx, 2, RoleUser, enterprise.ID)
	require.NoError(t, err)
	assert.True(t, d.FullAccess)

	d, err = env.access.Detail(ctx, 42, RoleStaff, basic.ID)
	require.NoError(t, err)
	assert.True(t, d.FullAccess)

	_, err = env.access.Detail(ctx, 1, RoleUser, enterprise.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestList(t *testing.T) {
	env := newEnv(t, nil)
	for i := 0; i < 3; i++ {
		uploadFor(t, env, 1, models.PlanBasic)
	}
	uploadFor(t, env, 2, models.PlanBasic)
	ctx := context.Background()

	res, err := env.access.List(ctx, 1, RoleUser, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, res.Total)
	assert.Len(t, res.Assets, 2)
	assert.Equal(t, 2, res.TotalPages)
	for _, a := range res.Assets {
		assert.EqualValues(t, 1, a.OwnerID)
	}

	res, err = env.access.List(ctx, 0, RoleStaff, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 4, res.Total)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 20, res.Limit)
}
