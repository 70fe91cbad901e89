package images

import (
	"net/http"
	"strconv"

	"github.com/anoixa/image-craft/api/common"
	"github.com/anoixa/image-craft/api/middleware"
	"github.com/gin-gonic/gin"
)

// BasicImageResponse 不含原图权限的套餐只能看到基础缩略图
type BasicImageResponse struct {
	ID             uint   `json:"id"`
	Title          string `json:"title"`
	ThumbnailBasic string `json:"thumbnail_Basic"`
	ExpirationAt   int64  `json:"expiration_at"`
}

// FullImageResponse 含原图权限的套餐
type FullImageResponse struct {
	ID                  uint   `json:"id"`
	Title               string `json:"title"`
	ThumbnailBasic      string `json:"thumbnail_Basic"`
	ThumbnailPremiumURL string `json:"thumbnail_premium_url"`
	OriginalURL         string `json:"original_url"`
	ExpirationAt        int64  `json:"expiration_at"`
}

// GetImage 图片详情，返回的字段取决于请求者的套餐
func (h *Handler) GetImage(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	userID, _ := middleware.UserID(c)
	role, _ := middleware.Role(c)

	detail, err := h.access.Detail(c.Request.Context(), userID, role, id)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	a := detail.Asset
	if !detail.FullAccess {
		common.RespondSuccess(c, BasicImageResponse{
			ID:             a.ID,
			Title:          a.Title,
			ThumbnailBasic: h.serveURL(a, a.BasicThumbnailPath),
			ExpirationAt:   a.ExpirationAt.UnixMilli(),
		})
		return
	}

	common.RespondSuccess(c, FullImageResponse{
		ID:                  a.ID,
		Title:               a.Title,
		ThumbnailBasic:      h.serveURL(a, a.BasicThumbnailPath),
		ThumbnailPremiumURL: h.serveURL(a, a.PremiumThumbnailPath),
		OriginalURL:         h.serveURL(a, a.OriginalPath),
		ExpirationAt:        a.ExpirationAt.UnixMilli(),
	})
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		common.RespondError(c, http.StatusNotFound, "Image not found")
		return 0, false
	}
	return uint(id), true
}
