// Package thumbnail 将任意支持的图片缩放为 JPEG 缩略图
package thumbnail

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidDimension 目标尺寸必须大于 0
	ErrInvalidDimension = errors.New("thumbnail: max dimension must be positive")
	// ErrUnsupportedFormat 源数据无法解码为图片
	ErrUnsupportedFormat = errors.New("thumbnail: unsupported image format")
)

// DefaultQuality JPEG 默认质量
const DefaultQuality = 85

// maxSourcePixels 源图最大像素数，超出视为无法处理
const maxSourcePixels = 100_000_000

// Generator 缩略图生成器
// 实现必须是无状态的，可以被多个 goroutine 同时调用
type Generator interface {
	// Resize 等比缩放使长边不超过 maxDimension，不放大，输出 JPEG
	Resize(src []byte, maxDimension int) ([]byte, error)
	// Name 引擎名称
	Name() string
}

// New 按引擎名称创建生成器
func New(engine string, quality int) (Generator, error) {
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}

	switch engine {
	case "", "draw":
		return NewDrawGenerator(quality), nil
	case "vips":
		g, err := NewVipsGenerator(quality)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown thumbnail engine: %s", engine)
	}
}

// TargetSize 计算缩放后的宽高
// 长边取 min(maxDimension, 源长边)，短边按比例四舍五入且至少为 1
func TargetSize(width, height, maxDimension int) (int, int) {
	longer := width
	if height > longer {
		longer = height
	}
	if longer <= maxDimension {
		return width, height
	}

	scale := float64(maxDimension) / float64(longer)
	w := int(math.Round(float64(width) * scale))
	h := int(math.Round(float64(height) * scale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}
