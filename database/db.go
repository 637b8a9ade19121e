package database

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"filekeeper/models"
)

// Init 初始化元数据数据库并返回连接，由 main 注入到各服务
func Init(dbPath string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 自动迁移数据库结构
	if err := db.AutoMigrate(
		&models.File{},
		&models.User{},
	); err != nil {
		return nil, fmt.Errorf("迁移数据库结构失败: %w", err)
	}

	return db, nil
}
