package config

import (
	"strings"
)

type ClickHouseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Database string
	Username string
	Password string
}

// GetClickHouseConfig 审计事件存储配置。未启用时审计事件只写本地日志。
func GetClickHouseConfig() *ClickHouseConfig {
	auditStorageType := strings.ToLower(getEnv("AUDIT_STORAGE_TYPE", "none"))
	return &ClickHouseConfig{
		Enabled:  auditStorageType == "clickhouse",
		Host:     getEnv("CLICKHOUSE_HOST", "localhost"),
		Port:     getEnvAsInt("CLICKHOUSE_PORT", 9000),
		Database: getEnv("CLICKHOUSE_DB", "filekeeper_audit"),
		Username: getEnv("CLICKHOUSE_USER", "filekeeper"),
		Password: getEnv("CLICKHOUSE_PASSWORD", "filekeeper"),
	}
}
