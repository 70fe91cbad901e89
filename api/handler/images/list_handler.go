package images

import (
	"strconv"

	"github.com/anoixa/image-craft/api/middleware"
	"github.com/anoixa/image-craft/api/common"
	"github.com/anoixa/image-craft/database/models"
	"github.com/gin-gonic/gin"
)

// ImageDTO 列表项
type ImageDTO struct {
	ID                 uint   `json:"id"`
	Title              string `json:"title"`
	OwnerID            uint   `json:"owner_id"`
	ThumbnailURL       string `json:"thumbnail_url"`
	LinkExpirationTime int    `json:"link_expiration_time"`
	CreatedAt          int64  `json:"created_at"`
	ExpirationAt       int64  `json:"expiration_at"`
}

// ImageListResponse 分页列表
type ImageListResponse struct {
	Images     []*ImageDTO `json:"images"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"total_pages"`
}

// ListImages 获取图片列表，?page=&limit=
func (h *Handler) ListImages(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	role, _ := middleware.Role(c)

	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	result, err := h.access.List(c.Request.Context(), userID, role, page, limit)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	items := make([]*ImageDTO, 0, len(result.Assets))
	for _, a := range result.Assets {
		items = append(items, h.toDTO(a))
	}

	common.RespondSuccess(c, ImageListResponse{
		Images:     items,
		Total:      result.Total,
		Page:       result.Page,
		Limit:      result.Limit,
		TotalPages: result.TotalPages,
	})
}

func (h *Handler) toDTO(a *models.ImageAsset) *ImageDTO {
	return &ImageDTO{
		ID:                 a.ID,
		Title:              a.Title,
		OwnerID:            a.OwnerID,
		ThumbnailURL:       h.serveURL(a, a.BasicThumbnailPath),
		LinkExpirationTime: a.LinkExpirationSeconds,
		CreatedAt:          a.CreatedAt.UnixMilli(),
		ExpirationAt:       a.ExpirationAt.UnixMilli(),
	}
}
