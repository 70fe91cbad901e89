package image

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"github.com/anoixa/image-craft/cache"
	"github.com/anoixa/image-craft/database"
	"github.com/anoixa/image-craft/database/dbtest"
	"github.com/anoixa/image-craft/database/models"
	imagesrepo "github.com/anoixa/image-craft/database/repo/images"
	plansrepo "github.com/anoixa/image-craft/database/repo/plans"
	profilesrepo "github.com/anoixa/image-craft/database/repo/profiles"
	"github.com/anoixa/image-craft/internal/logger"
	"github.com/anoixa/image-craft/internal/metrics"
	"github.com/anoixa/image-craft/internal/plans"
	"github.com/anoixa/image-craft/internal/profiles"
	"github.com/anoixa/image-craft/internal/thumbnail"
	"github.com/anoixa/image-craft/storage"
	"github.com/stretchr/testify/require"
)

// fakeClock 可手动推进的时钟
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// failingGenerator 对指定尺寸返回错误
type failingGenerator struct {
	thumbnail.Generator
	failSize int
}

func (g *failingGenerator) Resize(src []byte, maxDimension int) ([]byte, error) {
	if maxDimension == g.failSize {
		return nil, errors.New("encoder exploded")
	}
	return g.Generator.Resize(src, maxDimension)
}

// hookGenerator 在生成缩略图前回调 hook
type hookGenerator struct {
	thumbnail.Generator
	hook func()
}

func (g *hookGenerator) Resize(src []byte, maxDimension int) ([]byte, error) {
	if g.hook != nil {
		g.hook()
	}
	return g.Generator.Resize(src, maxDimension)
}

type testEnv struct {
	db       database.Provider
	root     string
	storage  storage.Provider
	profiles *profiles.Service
	clock    *fakeClock
	upload   *UploadService
	access   *AccessService
	metrics  *metrics.Metrics
}

func newEnv(t *testing.T, gen thumbnail.Generator) *testEnv {
	t.Helper()

	db := dbtest.NewProvider(t)
	root := t.TempDir()
	store, err := storage.NewLocalStorage(root)
	require.NoError(t, err)

	c, err := cache.New(cache.Config{Type: "memory", NumCounters: 1000, MaxCost: 1 << 20})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	planStore := plans.NewStore(plansrepo.NewRepository(db), c, nil, logger.Nop())
	_, err = planStore.EnsureDefaultPlans(context.Background())
	require.NoError(t, err)

	profileSvc := profiles.NewService(profilesrepo.NewRepository(db), planStore, logger.Nop())

	if gen == nil {
		gen = thumbnail.NewDrawGenerator(thumbnail.DefaultQuality)
	}

	clock := &fakeClock{t: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)}
	m := metrics.New()
	deps := Deps{
		DB:        db,
		Repo:      imagesrepo.NewRepository(db),
		Profiles:  profileSvc,
		Plans:     planStore,
		Storage:   store,
		Generator: gen,
		Metrics:   m,
		Log:       logger.Nop(),
		Now:       clock.Now,
	}

	return &testEnv{
		db:       db,
		root:     root,
		storage:  store,
		profiles: profileSvc,
		clock:    clock,
		upload:   NewUploadService(deps),
		access:   NewAccessService(deps),
		metrics:  m,
	}
}

func (e *testEnv) userWithPlan(t *testing.T, userID uint, plan string) {
	t.Helper()
	_, err := e.profiles.AssignPlan(context.Background(), userID, plan)
	require.NoError(t, err)
}

func (e *testEnv) countFiles(t *testing.T) int {
	t.Helper()
	n := 0
	err := filepath.WalkDir(e.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			n++
		}
		return nil
	})
	require.NoError(t, err)
	return n
}

func (e *testEnv) countAssets(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.DB().Model(&models.ImageAsset{}).Count(&n).Error)
	return n
}

func samplePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func readAll(t *testing.T, served *ServedAsset) []byte {
	t.Helper()
	defer func() { _ = served.Reader.Close() }()
	data, err := io.ReadAll(served.Reader)
	require.NoError(t, err)
	return data
}

func jpegSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}
