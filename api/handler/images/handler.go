// Package images 图片上传、列表、详情与访问接口
package images

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/anoixa/image-craft/database/models"
	"github.com/anoixa/image-craft/internal/image"
	"github.com/rs/zerolog"
)

// Handler 图片处理器
type Handler struct {
	uploads        *image.UploadService
	access         *image.AccessService
	baseURL        string
	maxUploadBytes int64
	log            zerolog.Logger
}

// NewHandler 图片处理器，maxUploadMB 为单个文件的大小上限
func NewHandler(uploads *image.UploadService, access *image.AccessService, baseURL string, maxUploadMB int, log zerolog.Logger) *Handler {
	if maxUploadMB <= 0 {
		maxUploadMB = 50
	}
	return &Handler{
		uploads:        uploads,
		access:         access,
		baseURL:        strings.TrimRight(baseURL, "/"),
		maxUploadBytes: int64(maxUploadMB) << 20,
		log:            log.With().Str("component", "images_handler").Logger(),
	}
}

// serveURL 生成某个文件的访问地址，path 为空时返回空串
func (h *Handler) serveURL(asset *models.ImageAsset, path string) string {
	if path == "" {
		return ""
	}
	return fmt.Sprintf("%s/api/v1/images/%d/serve?q=%s", h.baseURL, asset.ID, url.QueryEscape(path))
}
