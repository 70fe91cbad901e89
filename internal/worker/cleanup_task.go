package worker

import (
	"context"
	"errors"
	"time"

	"github.com/anoixa/image-craft/storage"
	"github.com/rs/zerolog"
)

// BlobCleanupTask 删除上传失败后残留的存储对象
// 使用独立的 context，不受原请求取消的影响
type BlobCleanupTask struct {
	Storage storage.Provider
	Paths   []string
	Timeout time.Duration
	Log     zerolog.Logger
}

// Execute 实现 Task
func (t *BlobCleanupTask) Execute() {
	timeout := t.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for _, p := range t.Paths {
		if p == "" {
			continue
		}
		err := t.Storage.DeleteWithContext(ctx, p)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			t.Log.Warn().Err(err).Str("path", p).Msg("failed to remove orphan blob")
		}
	}
}
