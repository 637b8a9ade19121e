package models

import (
	"time"

	"github.com/google/uuid"
)

// FileStatus 文件状态枚举
type FileStatus string

const (
	FileStatusPending  FileStatus = "PENDING"  // 等待上传
	FileStatusUploaded FileStatus = "UPLOADED" // 已上传
	FileStatusExpired  FileStatus = "EXPIRED"  // 已过期（逻辑状态，回收时直接转为 DELETED）
	FileStatusDeleted  FileStatus = "DELETED"  // 已删除（软删除）
)

// RetentionDays 文件保留天数，创建后固定 7 天过期
const RetentionDays = 7

// File 文件元数据记录。只有当对象存储中的 blob 与本记录同时存在、
// 且 deleted_at 为空时，文件才视为有效。
type File struct {
	ID          string     `json:"id" gorm:"type:varchar(36);primaryKey"`
	FileName    string     `json:"file_name" gorm:"type:varchar(255);not null;index"`
	LocationURI string     `json:"location_uri" gorm:"type:varchar(500);not null"`
	Bucket      string     `json:"bucket" gorm:"type:varchar(255);not null"`
	Size        int64      `json:"size"`
	ContentType string     `json:"content_type" gorm:"type:varchar(100)"`
	PublicURL   string     `json:"public_url" gorm:"type:varchar(1000)"`
	Version     string     `json:"version" gorm:"type:varchar(50)"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   time.Time  `json:"expires_at" gorm:"index"`
	DeletedAt   *time.Time `json:"deleted_at"`
	Status      FileStatus `json:"status" gorm:"type:varchar(20);not null"`
}

// NewFile 创建一条新的文件记录。expires_at 固定为创建时间 + 7 天，
// 与其他可配置的时间参数无关。
func NewFile(fileName, locationURI, bucket, contentType string, size int64) *File {
	now := time.Now().UTC()
	return &File{
		ID:          uuid.New().String(),
		FileName:    fileName,
		LocationURI: locationURI,
		Bucket:      bucket,
		Size:        size,
		ContentType: contentType,
		Version:     "0.0.1",
		CreatedAt:   now,
		ExpiresAt:   now.Add(RetentionDays * 24 * time.Hour),
		Status:      FileStatusUploaded,
	}
}

// IsLive 记录是否有效（未被软删除）
func (f *File) IsLive() bool {
	return f.DeletedAt == nil
}

// ExpiredFileInfo 过期文件的精简信息，供外部清理触发器使用
type ExpiredFileInfo struct {
	ID       string `json:"id"`
	FileName string `json:"file_name"`
}

// RemoveExpiredRequest 批量回收过期文件的请求体
type RemoveExpiredRequest struct {
	ExpiredFiles []string `json:"expired_files" binding:"required"`
}

// DownloadURLResponse 下载签名URL响应
type DownloadURLResponse struct {
	DownloadURL     string `json:"download_url"`
	ValidForSeconds int    `json:"valid_for_seconds"`
}

// UploadURLResponse 上传签名URL响应
type UploadURLResponse struct {
	UploadURL       string `json:"upload_url"`
	ValidForSeconds int    `json:"valid_for_seconds"`
}
