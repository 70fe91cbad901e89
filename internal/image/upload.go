package image

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anoixa/image-craft/database/models"
	"github.com/anoixa/image-craft/internal/metrics"
	"github.com/anoixa/image-craft/internal/worker"
	"github.com/anoixa/image-craft/utils"
	"github.com/anoixa/image-craft/utils/generator"
	imgvalidator "github.com/anoixa/image-craft/utils/validator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// CreateImageInput 上传参数，LinkExpirationSeconds 为 0 时使用默认值
type CreateImageInput struct {
	OwnerID               uint   `validate:"required"`
	Title                 string `validate:"required,min=1,max=255"`
	Data                  []byte `validate:"required"`
	LinkExpirationSeconds int    `validate:"min=300,max=30000"`
}

// UploadResult 上传结果，附带上传者当时的套餐
type UploadResult struct {
	Asset *models.ImageAsset
	Plan  *models.SubscriptionPlan
}

// UploadService 上传编排：校验、存原图、生成缩略图、落库
type UploadService struct {
	deps     Deps
	now      func() time.Time
	validate *validator.Validate
	paths    *generator.PathGenerator
	log      zerolog.Logger
}

// NewUploadService 创建上传服务
func NewUploadService(deps Deps) *UploadService {
	return &UploadService{
		deps:     deps,
		now:      deps.clock(),
		validate: validator.New(),
		paths:    generator.NewPathGenerator(),
		log:      deps.Log.With().Str("component", "upload").Logger(),
	}
}

// CreateImage 创建图片
// 记录先以未就绪状态插入，缩略图生成与文件写入不占用数据库事务；
// 任何一步失败都会删除该记录并异步清理已写入的文件
func (s *UploadService) CreateImage(ctx context.Context, in CreateImageInput) (res *UploadResult, err error) {
	defer func() {
		s.deps.Metrics.ObserveUpload(uploadOutcome(err))
	}()

	in.Title = strings.TrimSpace(in.Title)
	if in.LinkExpirationSeconds == 0 {
		in.LinkExpirationSeconds = models.DefaultLinkExpirationSeconds
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidParameter, describeValidation(err))
	}

	ok, mimeType := imgvalidator.IsImageBytes(in.Data)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mimeType)
	}

	plan, err := s.resolvePlan(ctx, in.OwnerID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	key := uuid.NewString()
	asset := &models.ImageAsset{
		Title:                 in.Title,
		OwnerID:               in.OwnerID,
		OriginalPath:          s.paths.OriginalPath(key, imgvalidator.ExtensionFor(mimeType), now),
		LinkExpirationSeconds: in.LinkExpirationSeconds,
		CreatedAt:             now,
		ExpirationAt:          now.Add(time.Duration(in.LinkExpirationSeconds) * time.Second),
	}

	var written []string
	if err := s.build(ctx, asset, plan, key, now, in.Data, &written); err != nil {
		s.rollback(ctx, asset.ID, written)
		if !errors.Is(err, context.Canceled) {
			s.log.Error().Err(err).Uint("user_id", in.OwnerID).Msg("upload failed")
		}
		return nil, err
	}

	s.log.Info().
		Uint("user_id", in.OwnerID).
		Uint("image_id", asset.ID).
		Str("title", utils.SanitizeLogTitle(asset.Title)).
		Str("plan", plan.Name).
		Bool("premium", asset.PremiumThumbnailPath != "").
		Msg("image created")

	return &UploadResult{Asset: asset, Plan: plan}, nil
}

// build 写原图、插入未就绪记录、生成并写入缩略图，最后标记就绪
func (s *UploadService) build(ctx context.Context, asset *models.ImageAsset, plan *models.SubscriptionPlan,
	key string, now time.Time, data []byte, written *[]string) error {
	if err := s.save(ctx, asset.OriginalPath, data, written); err != nil {
		return fmt.Errorf("failed to store original: %w", err)
	}

	if err := s.deps.DB.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		return s.deps.Repo.CreateWithTx(tx, asset)
	}); err != nil {
		return fmt.Errorf("failed to create image record: %w", err)
	}

	basic, premium, err := s.generateThumbnails(ctx, data, plan)
	if err != nil {
		return err
	}

	basicPath := s.paths.ThumbnailPath(key, plan.BasicThumbnailSize, now)
	if err := s.save(ctx, basicPath, basic, written); err != nil {
		return fmt.Errorf("failed to store thumbnail: %w", err)
	}

	premiumPath := ""
	if premium != nil {
		premiumPath = s.paths.ThumbnailPath(key, plan.PremiumSize(), now)
		if err := s.save(ctx, premiumPath, premium, written); err != nil {
			return fmt.Errorf("failed to store premium thumbnail: %w", err)
		}
	}

	if err := s.deps.DB.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		return s.deps.Repo.AttachThumbnailsWithTx(tx, asset.ID, basicPath, premiumPath)
	}); err != nil {
		return fmt.Errorf("failed to attach thumbnails: %w", err)
	}

	asset.BasicThumbnailPath = basicPath
	asset.PremiumThumbnailPath = premiumPath
	asset.Ready = true
	return nil
}

// rollback 删除未就绪的记录并清理文件，请求被取消时同样执行
func (s *UploadService) rollback(ctx context.Context, id uint, written []string) {
	if id != 0 {
		if err := s.deps.Repo.DeletePending(context.WithoutCancel(ctx), id); err != nil {
			s.log.Error().Err(err).Uint("image_id", id).Msg("failed to remove pending image record")
		}
	}
	s.cleanup(written)
}

// resolvePlan 读取上传者的资料与套餐，缺失时记录异常
func (s *UploadService) resolvePlan(ctx context.Context, userID uint) (*models.SubscriptionPlan, error) {
	plan, err := s.deps.Profiles.PlanFor(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) || errors.Is(err, ErrPlanNotFound) {
			s.log.Warn().Err(err).Uint("user_id", userID).Msg("upload without a usable profile")
		}
		return nil, err
	}
	return plan, nil
}

// generateThumbnails 并行生成基础与高级缩略图，premium 为 nil 表示套餐不需要
func (s *UploadService) generateThumbnails(ctx context.Context, src []byte, plan *models.SubscriptionPlan) (basic, premium []byte, err error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var g errgroup.Group
	g.Go(func() error {
		out, err := s.resize(src, plan.BasicThumbnailSize)
		if err != nil {
			return thumbnailError(ErrThumbnailGenerationFailed, err)
		}
		basic = out
		return nil
	})

	if size := plan.PremiumSize(); size > 0 {
		g.Go(func() error {
			out, err := s.resize(src, size)
			if err != nil {
				return thumbnailError(ErrPremiumThumbnailFailed, err)
			}
			premium = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return basic, premium, nil
}

func (s *UploadService) resize(src []byte, size int) ([]byte, error) {
	start := time.Now()
	out, err := s.deps.Generator.Resize(src, size)
	s.deps.Metrics.ObserveThumbnail(s.deps.Generator.Name(), time.Since(start))
	return out, err
}

// thumbnailError 生成失败一律带上 kind，无法解码时同时保留 ErrUnsupportedFormat
func thumbnailError(kind, err error) error {
	return fmt.Errorf("%w: %w", kind, err)
}

func (s *UploadService) save(ctx context.Context, path string, data []byte, written *[]string) error {
	if err := s.deps.Storage.SaveWithContext(ctx, path, bytes.NewReader(data)); err != nil {
		return err
	}
	*written = append(*written, path)
	return nil
}

// cleanup 删除失败上传留下的文件，优先交给 worker 池
func (s *UploadService) cleanup(paths []string) {
	if len(paths) == 0 {
		return
	}
	task := &worker.BlobCleanupTask{
		Storage: s.deps.Storage,
		Paths:   paths,
		Log:     s.log,
	}
	if s.deps.Pool != nil && s.deps.Pool.TrySubmit(task, 3, 10*time.Millisecond) {
		return
	}
	task.Execute()
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Field() {
		case "LinkExpirationSeconds":
			parts = append(parts, fmt.Sprintf("link_expiration_time must be between %d and %d",
				models.MinLinkExpirationSeconds, models.MaxLinkExpirationSeconds))
		case "Title":
			parts = append(parts, "title must be 1 to 255 characters")
		case "Data":
			parts = append(parts, "image is required")
		case "OwnerID":
			parts = append(parts, "owner is required")
		default:
			parts = append(parts, fe.Error())
		}
	}
	return strings.Join(parts, "; ")
}

func uploadOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, ErrInvalidParameter), errors.Is(err, ErrUnsupportedFormat):
		return metrics.ResultInvalid
	case errors.Is(err, ErrProfileNotFound), errors.Is(err, ErrPlanNotFound):
		return metrics.ResultNotFound
	default:
		return metrics.ResultError
	}
}
