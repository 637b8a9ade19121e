// config/storage.go
package config

import (
	"fmt"
	"os"
)

// StorageConfig 对象存储配置
type StorageConfig struct {
	S3AccessKey string
	S3SecretKey string
	S3Region    string
	S3Bucket    string
	S3Endpoint  string // 可选，用于兼容MinIO等S3服务
}

// LoadStorageConfig 从环境变量加载对象存储配置
func LoadStorageConfig() *StorageConfig {
	return &StorageConfig{
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3Bucket:    os.Getenv("S3_BUCKET"),
		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
	}
}

// Validate 验证配置
func (c *StorageConfig) Validate() error {
	if c.S3AccessKey == "" {
		return fmt.Errorf("S3_ACCESS_KEY 未设置")
	}
	if c.S3SecretKey == "" {
		return fmt.Errorf("S3_SECRET_KEY 未设置")
	}
	if c.S3Bucket == "" {
		return fmt.Errorf("S3_BUCKET 未设置")
	}
	return nil
}
