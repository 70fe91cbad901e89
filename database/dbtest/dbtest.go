// Package dbtest 为仓库与服务测试提供内存 sqlite 数据库
package dbtest

import (
	"fmt"
	"testing"

	"github.com/anoixa/image-craft/database"
	"github.com/anoixa/image-craft/database/models"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewProvider 创建已迁移的独立内存数据库，测试结束时自动关闭
func NewProvider(t testing.TB) database.Provider {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// 单连接，避免共享缓存模式下的表锁冲突
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	provider := database.NewGormProviderFromDB(db, "sqlite")
	t.Cleanup(func() {
		_ = provider.Close()
	})
	return provider
}
