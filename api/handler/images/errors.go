package images

import (
	"errors"
	"net/http"

	"github.com/anoixa/image-craft/api/common"
	"github.com/anoixa/image-craft/internal/image"
	"github.com/gin-gonic/gin"
)

// expiredBody 过期响应体，不使用统一封装
var expiredBody = gin.H{"detail": "This link has expired."}

// respondServiceError 把服务层错误映射为 HTTP 状态码
func (h *Handler) respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, image.ErrLinkExpired):
		c.JSON(http.StatusForbidden, expiredBody)
	case errors.Is(err, image.ErrInvalidParameter):
		common.RespondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, image.ErrUnsupportedFormat):
		common.RespondError(c, http.StatusUnprocessableEntity, "Unsupported image format")
	case errors.Is(err, image.ErrProfileNotFound):
		common.RespondError(c, http.StatusNotFound, "User profile not found")
	case errors.Is(err, image.ErrPlanNotFound):
		common.RespondError(c, http.StatusNotFound, "Subscription plan not found")
	case errors.Is(err, image.ErrNotFound):
		common.RespondError(c, http.StatusNotFound, "Image not found")
	case errors.Is(err, image.ErrAssetMissing):
		common.RespondError(c, http.StatusNotFound, "Requested file not found")
	case errors.Is(err, image.ErrThumbnailGenerationFailed), errors.Is(err, image.ErrPremiumThumbnailFailed):
		common.RespondError(c, http.StatusInternalServerError, "Failed to generate thumbnails")
	default:
		_ = c.Error(err)
		common.RespondError(c, http.StatusInternalServerError, "Internal server error")
	}
}
