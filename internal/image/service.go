// Package image 实现图片上传与带过期控制的访问
package image

import (
	"time"

	"github.com/anoixa/image-craft/database"
	imagesrepo "github.com/anoixa/image-craft/database/repo/images"
	"github.com/anoixa/image-craft/internal/metrics"
	"github.com/anoixa/image-craft/internal/plans"
	"github.com/anoixa/image-craft/internal/profiles"
	"github.com/anoixa/image-craft/internal/thumbnail"
	"github.com/anoixa/image-craft/internal/worker"
	"github.com/anoixa/image-craft/storage"
	"github.com/rs/zerolog"
)

// 请求者角色
const (
	RoleStaff = "staff"
	RoleUser  = "user"
)

// Deps 图片服务的依赖，Pool、Metrics、Now 可以为空
type Deps struct {
	DB        database.Provider
	Repo      *imagesrepo.Repository
	Profiles  *profiles.Service
	Plans     *plans.Store
	Storage   storage.Provider
	Generator thumbnail.Generator
	Pool      *worker.Pool
	Metrics   *metrics.Metrics
	Log       zerolog.Logger
	Now       func() time.Time
}

func (d Deps) clock() func() time.Time {
	if d.Now != nil {
		return d.Now
	}
	return time.Now
}
