package images

import (
	"errors"
	"io"
	"net/http"
	"syscall"

	"github.com/anoixa/image-craft/api/common"
	"github.com/anoixa/image-craft/api/middleware"
	"github.com/anoixa/image-craft/internal/image"
	"github.com/gin-gonic/gin"
)

// ServeImage 返回图片文件，?q= 为该图片自己的某个存储路径
func (h *Handler) ServeImage(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	path := c.Query("q")
	if path == "" {
		common.RespondError(c, http.StatusNotFound, "Requested file not found")
		return
	}

	userID, _ := middleware.UserID(c)
	role, _ := middleware.Role(c)

	served, err := h.access.Serve(c.Request.Context(), image.ServeRequest{
		RequesterID:   userID,
		RequesterRole: role,
		ImageID:       id,
		VariantPath:   path,
	})
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	defer func() { _ = served.Reader.Close() }()

	c.Header("Content-Type", served.ContentType)
	c.Header("Cache-Control", "private, no-store")
	c.Status(http.StatusOK)

	if _, err := io.Copy(c.Writer, served.Reader); err != nil && !isClientGone(err) {
		h.log.Warn().Err(err).Uint("image_id", id).Msg("failed to stream image")
	}
}

func isClientGone(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET)
}
