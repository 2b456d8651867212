package models

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite" // 纯 Go SQLite 驱动（基于 modernc.org/sqlite）
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitDB 初始化站点本地数据库（SQLite）
func InitDB(dsn string) error {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		dsn = "./db/fenjian.db"
	}
	if dir := filepath.Dir(dsn); dir != "." && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	var err error
	DB, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	return err
}

// AutoMigrate 自动迁移本地库表
func AutoMigrate() error {
	return DB.AutoMigrate(
		&Package{},
		&Operator{},
	)
}
