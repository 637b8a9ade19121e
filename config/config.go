package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	ServerPort string
	JWTSecret  string
	// APIToken 预共享的静态令牌，供外部清理触发器等服务端调用方使用
	APIToken string
	DBPath   string
	// URLExpirationSeconds 签名URL有效期（秒）
	URLExpirationSeconds int
	// CleanupSchedule 过期文件清理任务的 cron 表达式
	CleanupSchedule string
	// RateLimitPerMinute 文件接口每分钟请求上限
	RateLimitPerMinute int
}

var config *Config

// GetConfig 获取配置
func GetConfig() *Config {
	if config == nil {
		config = &Config{
			ServerPort: getEnv("SERVER_PORT", "3001"),
			JWTSecret:  getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			APIToken:   getEnv("API_TOKEN", ""),
			// 使用绝对路径，方便 Docker 挂载
			DBPath:               getEnv("DB_PATH", "/app/data/filekeeper.db"),
			URLExpirationSeconds: getEnvAsInt("URL_EXPIRATION_SECONDS", 3600),
			CleanupSchedule:      getEnv("CLEANUP_SCHEDULE", "@every 24h"),
			RateLimitPerMinute:   getEnvAsInt("RATE_LIMIT_PER_MINUTE", 120),
		}

		log.Printf("Config loaded - ServerPort: %s, DBPath: %s", config.ServerPort, config.DBPath)
	}
	return config
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt 获取环境变量并转换为整数
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s: %s, using default %d", key, valueStr, defaultValue)
		return defaultValue
	}

	return value
}
