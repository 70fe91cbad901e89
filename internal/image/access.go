package image

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/anoixa/image-craft/database/models"
	"github.com/anoixa/image-craft/internal/metrics"
	"github.com/anoixa/image-craft/storage"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// ServeRequest 访问请求，VariantPath 为查询参数 q
type ServeRequest struct {
	RequesterID   uint
	RequesterRole string
	ImageID       uint
	VariantPath   string
}

// ServedAsset 可以直接写回客户端的文件流，调用方负责关闭 Reader
type ServedAsset struct {
	Reader      io.ReadCloser
	ContentType string
	Path        string
	Asset       *models.ImageAsset
}

// DetailResult 图片详情，FullAccess 决定响应中包含哪些链接
type DetailResult struct {
	Asset      *models.ImageAsset
	Plan       *models.SubscriptionPlan
	FullAccess bool
}

// ListResult 分页结果
type ListResult struct {
	Assets     []*models.ImageAsset
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// AccessService 按所有权、套餐与过期时间控制图片访问
type AccessService struct {
	deps Deps
	now  func() time.Time
	log  zerolog.Logger
}

// NewAccessService 创建访问服务
func NewAccessService(deps Deps) *AccessService {
	return &AccessService{
		deps: deps,
		now:  deps.clock(),
		log:  deps.Log.With().Str("component", "access").Logger(),
	}
}

// Serve 依次检查记录、所有权、过期、路径归属，全部通过后打开文件
func (s *AccessService) Serve(ctx context.Context, req ServeRequest) (res *ServedAsset, err error) {
	defer func() {
		s.deps.Metrics.ObserveServe(serveOutcome(err))
	}()

	asset, err := s.visibleAsset(ctx, req.RequesterID, req.RequesterRole, req.ImageID)
	if err != nil {
		return nil, err
	}

	if req.RequesterRole != RoleStaff {
		plan, err := s.requesterPlan(ctx, req.RequesterID)
		if err != nil {
			return nil, err
		}
		if asset.IsExpired(s.now()) && !plan.GrantsNonExpiringLinks {
			return nil, ErrLinkExpired
		}
	}

	if !asset.OwnsPath(req.VariantPath) {
		return nil, ErrAssetMissing
	}

	reader, err := s.deps.Storage.GetWithContext(ctx, req.VariantPath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.log.Warn().Uint("image_id", asset.ID).Str("path", req.VariantPath).Msg("blob missing from storage")
			return nil, ErrAssetMissing
		}
		return nil, fmt.Errorf("failed to open asset: %w", err)
	}

	return &ServedAsset{
		Reader:      reader,
		ContentType: "image/jpeg",
		Path:        req.VariantPath,
		Asset:       asset,
	}, nil
}

// Detail 返回图片记录以及请求者的套餐，管理员视为拥有全部权限
func (s *AccessService) Detail(ctx context.Context, requesterID uint, role string, imageID uint) (*DetailResult, error) {
	asset, err := s.visibleAsset(ctx, requesterID, role, imageID)
	if err != nil {
		return nil, err
	}

	if role == RoleStaff {
		return &DetailResult{Asset: asset, FullAccess: true}, nil
	}

	plan, err := s.requesterPlan(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	return &DetailResult{Asset: asset, Plan: plan, FullAccess: plan.GrantsOriginalAccess}, nil
}

// List 分页列出图片，管理员可以看到全部用户的图片
func (s *AccessService) List(ctx context.Context, requesterID uint, role string, page, limit int) (*ListResult, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	owner := requesterID
	if role == RoleStaff {
		owner = 0
	}

	assets, total, err := s.deps.Repo.List(ctx, owner, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	return &ListResult{
		Assets:     assets,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

// visibleAsset 未就绪或不属于请求者的记录一律视为不存在
func (s *AccessService) visibleAsset(ctx context.Context, requesterID uint, role string, imageID uint) (*models.ImageAsset, error) {
	asset, err := s.deps.Repo.GetReadyByID(ctx, imageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load image: %w", err)
	}

	if role != RoleStaff && asset.OwnerID != requesterID {
		return nil, ErrNotFound
	}
	return asset, nil
}

func (s *AccessService) requesterPlan(ctx context.Context, userID uint) (*models.SubscriptionPlan, error) {
	plan, err := s.deps.Profiles.PlanFor(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) || errors.Is(err, ErrPlanNotFound) {
			s.log.Warn().Err(err).Uint("user_id", userID).Msg("requester has no usable profile")
		}
		return nil, err
	}
	return plan, nil
}

func serveOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, ErrLinkExpired):
		return metrics.ResultExpired
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrAssetMissing),
		errors.Is(err, ErrProfileNotFound), errors.Is(err, ErrPlanNotFound):
		return metrics.ResultNotFound
	default:
		return metrics.ResultError
	}
}
