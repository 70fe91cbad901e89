package images

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anoixa/image-craft/database/dbtest"
	"github.com/anoixa/image-craft/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAsset(owner uint, createdAt time.Time, seconds int) *models.ImageAsset {
	return &models.ImageAsset{
		Title:                 "sunset",
		OwnerID:               owner,
		OriginalPath:          "original/2024/01/15/k.jpg",
		LinkExpirationSeconds: seconds,
		CreatedAt:             createdAt,
		ExpirationAt:          createdAt.Add(time.Duration(seconds) * time.Second),
	}
}

func createReady(t *testing.T, repo *Repository, asset *models.ImageAsset) {
	t.Helper()
	require.NoError(t, repo.db.Transaction(func(tx *gorm.DB) error {
		if err := repo.CreateWithTx(tx, asset); err != nil {
			return err
		}
		return repo.AttachThumbnailsWithTx(tx, asset.ID, "thumbnails/2024/01/15/k/thumbnail_200.jpeg", "")
	}))
}

func TestRepository_CreateAndAttach(t *testing.T) {
	repo := NewRepository(dbtest.NewProvider(t))
	ctx := context.Background()
	createdAt := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	asset := newAsset(1, createdAt, 600)
	createReady(t, repo, asset)

	got, err := repo.GetReadyByID(ctx, asset.ID)
	require.NoError(t, err)
	assert.True(t, got.Ready)
	assert.Equal(t, "thumbnails/2024/01/15/k/thumbnail_200.jpeg", got.BasicThumbnailPath)
	assert.Empty(t, got.PremiumThumbnailPath)
	assert.True(t, got.ExpirationAt.Equal(createdAt.Add(600*time.Second)))
}

func TestRepository_GetReadyByID_SkipsPending(t *testing.T) {
	provider := dbtest.NewProvider(t)
	repo := NewRepository(provider)
	ctx := context.Background()

	asset := newAsset(1, time.Now().UTC(), 300)
	require.NoError(t, repo.CreateWithTx(provider.DB(), asset))

	_, err := repo.GetReadyByID(ctx, asset.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	pending, err := repo.GetByID(ctx, asset.ID)
	require.NoError(t, err)
	assert.False(t, pending.Ready)
}

func TestRepository_DeletePending(t *testing.T) {
	provider := dbtest.NewProvider(t)
	repo := NewRepository(provider)
	ctx := context.Background()

	pending := newAsset(1, time.Now().UTC(), 300)
	require.NoError(t, repo.CreateWithTx(provider.DB(), pending))
	ready := newAsset(1, time.Now().UTC(), 300)
	createReady(t, repo, ready)

	require.NoError(t, repo.DeletePending(ctx, pending.ID))
	require.NoError(t, repo.DeletePending(ctx, ready.ID))

	_, err := repo.GetByID(ctx, pending.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	_, err = repo.GetReadyByID(ctx, ready.ID)
	assert.NoError(t, err)
}

func TestRepository_TransactionRollback(t *testing.T) {
	provider := dbtest.NewProvider(t)
	repo := NewRepository(provider)
	ctx := context.Background()

	asset := newAsset(1, time.Now().UTC(), 300)
	err := provider.Transaction(func(tx *gorm.DB) error {
		if err := repo.CreateWithTx(tx, asset); err != nil {
			return err
		}
		return errors.New("thumbnail failed")
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, provider.DB().Model(&models.ImageAsset{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
	_ = ctx
}

// TestRepository_Save_KeepsExpiration 再次保存不能延长链接有效期
func TestRepository_Save_KeepsExpiration(t *testing.T) {
	repo := NewRepository(dbtest.NewProvider(t))
	ctx := context.Background()
	createdAt := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	asset := newAsset(1, createdAt, 300)
	createReady(t, repo, asset)

	loaded, err := repo.GetByID(ctx, asset.ID)
	require.NoError(t, err)
	loaded.Title = "renamed"
	loaded.ExpirationAt = createdAt.Add(72 * time.Hour)
	loaded.CreatedAt = createdAt.Add(48 * time.Hour)
	require.NoError(t, repo.Save(ctx, loaded))

	reloaded, err := repo.GetByID(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", reloaded.Title)
	assert.True(t, reloaded.ExpirationAt.Equal(createdAt.Add(300*time.Second)))
	assert.True(t, reloaded.CreatedAt.Equal(createdAt))
}

// TestImageAsset_BeforeUpdateHook 直接更新同样不会修改过期时间
func TestImageAsset_BeforeUpdateHook(t *testing.T) {
	provider := dbtest.NewProvider(t)
	repo := NewRepository(provider)
	createdAt := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	asset := newAsset(1, createdAt, 900)
	createReady(t, repo, asset)

	err := provider.DB().Model(&models.ImageAsset{ID: asset.ID}).Updates(map[string]interface{}{
		"title":         "direct",
		"expiration_at": createdAt.Add(24 * time.Hour),
	}).Error
	require.NoError(t, err)

	reloaded, err := repo.GetByID(context.Background(), asset.ID)
	require.NoError(t, err)
	assert.Equal(t, "direct", reloaded.Title)
	assert.True(t, reloaded.ExpirationAt.Equal(createdAt.Add(900*time.Second)))
}

func TestRepository_List(t *testing.T) {
	repo := NewRepository(dbtest.NewProvider(t))
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		createReady(t, repo, newAsset(1, base.Add(time.Duration(i)*time.Minute), 300))
	}
	createReady(t, repo, newAsset(2, base, 300))

	own, total, err := repo.List(ctx, 1, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, own, 2)
	assert.True(t, own[0].CreatedAt.After(own[1].CreatedAt))

	all, total, err := repo.List(ctx, 0, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, all, 4)
}

func TestRepository_UpdateTitle(t *testing.T) {
	repo := NewRepository(dbtest.NewProvider(t))
	ctx := context.Background()

	asset := newAsset(1, time.Now().UTC(), 300)
	createReady(t, repo, asset)

	require.NoError(t, repo.UpdateTitle(ctx, asset.ID, "new title"))
	err := repo.UpdateTitle(ctx, 12345, "x")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
