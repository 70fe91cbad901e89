package generator

import (
	"fmt"
	"strings"
	"time"
)

// PathGenerator 分层路径生成器
type PathGenerator struct{}

// NewPathGenerator 创建路径生成器
func NewPathGenerator() *PathGenerator {
	return &PathGenerator{}
}

// OriginalPath 生成原图存储路径，如 original/2024/01/15/<key>.jpg
func (pg *PathGenerator) OriginalPath(key, ext string, uploadTime time.Time) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return fmt.Sprintf("original/%s/%s%s", uploadTime.Format("2006/01/02"), key, ext)
}

// ThumbnailPath 生成缩略图存储路径，如 thumbnails/2024/01/15/<key>/thumbnail_200.jpeg
func (pg *PathGenerator) ThumbnailPath(key string, size int, uploadTime time.Time) string {
	return fmt.Sprintf("thumbnails/%s/%s/thumbnail_%d.jpeg", uploadTime.Format("2006/01/02"), key, size)
}
