package generator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPathGenerator_OriginalPath(t *testing.T) {
	pg := NewPathGenerator()
	uploadTime := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		key  string
		ext  string
		want string
	}{
		{"jpg file", "a1b2c3d4", ".jpg", "original/2024/01/15/a1b2c3d4.jpg"},
		{"ext without dot", "a1b2c3d4", "png", "original/2024/01/15/a1b2c3d4.png"},
		{"no ext", "a1b2c3d4", "", "original/2024/01/15/a1b2c3d4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pg.OriginalPath(tt.key, tt.ext, uploadTime))
		})
	}
}

func TestPathGenerator_ThumbnailPath(t *testing.T) {
	pg := NewPathGenerator()
	uploadTime := time.Date(2024, 12, 3, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "thumbnails/2024/12/03/k1/thumbnail_200.jpeg", pg.ThumbnailPath("k1", 200, uploadTime))
	assert.Equal(t, "thumbnails/2024/12/03/k1/thumbnail_400.jpeg", pg.ThumbnailPath("k1", 400, uploadTime))
}
