package images

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/anoixa/image-craft/api/common"
	"github.com/anoixa/image-craft/api/middleware"
	"github.com/anoixa/image-craft/internal/image"
	imgvalidator "github.com/anoixa/image-craft/utils/validator"
	"github.com/gin-gonic/gin"
)

// UploadResponse 上传结果
type UploadResponse struct {
	ID                 uint   `json:"id"`
	Title              string `json:"title"`
	Image              string `json:"image"`
	LinkExpirationTime int    `json:"link_expiration_time"`
}

// UploadImage 处理单图片上传，字段为 title、image、link_expiration_time
func (h *Handler) UploadImage(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "image: this field is required")
		return
	}
	if fileHeader.Size > h.maxUploadBytes {
		common.RespondError(c, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("File size exceeds maximum allowed (%d MB)", h.maxUploadBytes>>20))
		return
	}

	expiration := 0
	if raw := strings.TrimSpace(c.PostForm("link_expiration_time")); raw != "" {
		expiration, err = strconv.Atoi(raw)
		if err != nil {
			common.RespondError(c, http.StatusBadRequest, "link_expiration_time must be an integer")
			return
		}
	}

	file, err := fileHeader.Open()
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}
	defer func() { _ = file.Close() }()

	// 先嗅探文件头，非图片不必整体读入内存
	if ok, _, err := imgvalidator.IsImage(file); err != nil || !ok {
		common.RespondError(c, http.StatusUnprocessableEntity, "Unsupported image format")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}
	if int64(len(data)) > h.maxUploadBytes {
		common.RespondError(c, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("File size exceeds maximum allowed (%d MB)", h.maxUploadBytes>>20))
		return
	}

	result, err := h.uploads.CreateImage(c.Request.Context(), image.CreateImageInput{
		OwnerID:               userID,
		Title:                 c.PostForm("title"),
		Data:                  data,
		LinkExpirationSeconds: expiration,
	})
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	asset := result.Asset
	common.RespondCreated(c, UploadResponse{
		ID:                 asset.ID,
		Title:              asset.Title,
		Image:              h.serveURL(asset, asset.OriginalPath),
		LinkExpirationTime: asset.LinkExpirationSeconds,
	})
}
