package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"filekeeper/models"
)

// MetadataStore 文件元数据的事务性访问层
type MetadataStore interface {
	// Create 插入新记录
	Create(ctx context.Context, file *models.File) error
	// GetLive 按 (bucket, name) 查找有效记录（排除软删除）。不存在时返回 (nil, nil)。
	GetLive(ctx context.Context, bucket, fileName string) (*models.File, error)
	// GetByIDs 按 id 集合批量查询
	GetByIDs(ctx context.Context, ids []string) ([]models.File, error)
	// FindExpired 查询已过期且尚未软删除的记录
	FindExpired(ctx context.Context, now time.Time) ([]models.File, error)
	// MarkDeleted 将指定记录软删除（status=DELETED, deleted_at=at）。
	// 只更新 deleted_at 仍为空的行，保证 deleted_at 一经写入不再改变。
	MarkDeleted(ctx context.Context, ids []string, at time.Time) (int64, error)
	// Transaction 在单个数据库事务内执行 fn
	Transaction(ctx context.Context, fn func(tx MetadataStore) error) error
}

// GormMetadataStore 基于 gorm 的元数据访问实现
type GormMetadataStore struct {
	db *gorm.DB
}

func NewGormMetadataStore(db *gorm.DB) *GormMetadataStore {
	return &GormMetadataStore{db: db}
}

func (s *GormMetadataStore) Create(ctx context.Context, file *models.File) error {
	if err := s.db.WithContext(ctx).Create(file).Error; err != nil {
		return fmt.Errorf("创建文件记录失败: %w", err)
	}
	return nil
}

func (s *GormMetadataStore) GetLive(ctx context.Context, bucket, fileName string) (*models.File, error) {
	var file models.File
	err := s.db.WithContext(ctx).
		Where("bucket = ? AND file_name = ? AND deleted_at IS NULL", bucket, fileName).
		First(&file).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询文件记录失败: %w", err)
	}
	return &file, nil
}

func (s *GormMetadataStore) GetByIDs(ctx context.Context, ids []string) ([]models.File, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var files []models.File
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&files).Error; err != nil {
		return nil, fmt.Errorf("批量查询文件记录失败: %w", err)
	}
	return files, nil
}

func (s *GormMetadataStore) FindExpired(ctx context.Context, now time.Time) ([]models.File, error) {
	var files []models.File
	err := s.db.WithContext(ctx).
		Where("expires_at < ? AND deleted_at IS NULL", now).
		Find(&files).Error
	if err != nil {
		return nil, fmt.Errorf("查询过期文件失败: %w", err)
	}
	return files, nil
}

func (s *GormMetadataStore) MarkDeleted(ctx context.Context, ids []string, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := s.db.WithContext(ctx).Model(&models.File{}).
		Where("id IN ? AND deleted_at IS NULL", ids).
		Updates(map[string]interface{}{
			"status":     models.FileStatusDeleted,
			"deleted_at": at,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("软删除文件记录失败: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *GormMetadataStore) Transaction(ctx context.Context, fn func(tx MetadataStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormMetadataStore{db: tx})
	})
}
