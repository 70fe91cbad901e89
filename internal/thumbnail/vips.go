//go:build vips

package thumbnail

import (
	"fmt"
	"sync"

	"github.com/davidbyttow/govips/v2/vips"
)

var vipsOnce sync.Once

// VipsGenerator 基于 libvips 的生成器，需要 cgo
type VipsGenerator struct {
	quality int
}

// NewVipsGenerator 创建 libvips 生成器，首次调用时启动 libvips
func NewVipsGenerator(quality int) (*VipsGenerator, error) {
	vipsOnce.Do(func() {
		vips.LoggingSettings(nil, vips.LogLevelWarning)
		vips.Startup(nil)
	})
	return &VipsGenerator{quality: quality}, nil
}

// ShutdownVips 释放 libvips，进程退出前调用
func ShutdownVips() {
	vips.Shutdown()
}

// Resize 实现 Generator
func (g *VipsGenerator) Resize(src []byte, maxDimension int) ([]byte, error) {
	if maxDimension <= 0 {
		return nil, ErrInvalidDimension
	}

	img, err := vips.NewImageFromBuffer(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	defer img.Close()

	width, height := img.Width(), img.Height()
	if width <= 0 || height <= 0 || width*height > maxSourcePixels {
		return nil, fmt.Errorf("%w: invalid source size %dx%d", ErrUnsupportedFormat, width, height)
	}

	w, _ := TargetSize(width, height, maxDimension)
	if w != width {
		if err := img.Resize(float64(w)/float64(width), vips.KernelLanczos3); err != nil {
			return nil, fmt.Errorf("failed to resize image: %w", err)
		}
	}

	if img.HasAlpha() {
		if err := img.Flatten(&vips.Color{R: 255, G: 255, B: 255}); err != nil {
			return nil, fmt.Errorf("failed to flatten alpha: %w", err)
		}
	}

	out, _, err := img.ExportJpeg(&vips.JpegExportParams{
		Quality:       g.quality,
		StripMetadata: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to export jpeg: %w", err)
	}
	return out, nil
}

// Name 实现 Generator
func (g *VipsGenerator) Name() string {
	return "vips"
}
