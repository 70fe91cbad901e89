//go:build !vips

package thumbnail

import "errors"

// ErrVipsUnavailable 未使用 vips 构建标签编译
var ErrVipsUnavailable = errors.New("thumbnail: vips engine requires building with -tags vips")

// VipsGenerator 占位类型，未启用 vips 时不可用
type VipsGenerator struct{}

// NewVipsGenerator 未启用 vips 构建标签时总是返回错误
func NewVipsGenerator(quality int) (*VipsGenerator, error) {
	return nil, ErrVipsUnavailable
}

// ShutdownVips 未启用 vips 时为空操作
func ShutdownVips() {}

// Resize 实现 Generator
func (g *VipsGenerator) Resize(src []byte, maxDimension int) ([]byte, error) {
	return nil, ErrVipsUnavailable
}

// Name 实现 Generator
func (g *VipsGenerator) Name() string {
	return "vips"
}
