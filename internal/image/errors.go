package image

import (
	"errors"

	"github.com/anoixa/image-craft/internal/plans"
	"github.com/anoixa/image-craft/internal/profiles"
	"github.com/anoixa/image-craft/internal/thumbnail"
)

var (
	// ErrInvalidParameter 输入不合法（标题、有效期等）
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrProfileNotFound 请求者没有用户资料
	ErrProfileNotFound = profiles.ErrProfileNotFound
	// ErrPlanNotFound 用户资料引用的套餐不存在
	ErrPlanNotFound = plans.ErrPlanNotFound
	// ErrUnsupportedFormat 上传内容不是支持的图片
	ErrUnsupportedFormat = thumbnail.ErrUnsupportedFormat
	// ErrThumbnailGenerationFailed 基础缩略图生成失败
	ErrThumbnailGenerationFailed = errors.New("thumbnail generation failed")
	// ErrPremiumThumbnailFailed 高级缩略图生成失败，整个上传被拒绝
	ErrPremiumThumbnailFailed = errors.New("premium thumbnail generation failed")
	// ErrLinkExpired 链接已过期
	ErrLinkExpired = errors.New("link has expired")
	// ErrNotFound 图片不存在或无权访问
	ErrNotFound = errors.New("image not found")
	// ErrAssetMissing 请求的文件不属于该图片或已从存储中丢失
	ErrAssetMissing = errors.New("requested asset not found")
)
