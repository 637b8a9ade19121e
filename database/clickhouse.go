package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"filekeeper/config"
)

// InitClickHouse 初始化审计事件存储连接并建表
func InitClickHouse(cfg *config.ClickHouseConfig) (driver.Conn, error) {
	log.Printf("🔗 正在连接 ClickHouse: %s:%d", cfg.Host, cfg.Port)

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		DialTimeout: 10 * time.Second,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
	})
	if err != nil {
		return nil, fmt.Errorf("连接 ClickHouse 失败: %w", err)
	}

	ctx := context.Background()
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping ClickHouse 失败: %w", err)
	}

	if err := createAuditTable(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("创建审计表失败: %w", err)
	}

	log.Printf("✅ ClickHouse 初始化完成 - 数据库: %s", cfg.Database)
	return conn, nil
}

// createAuditTable 创建文件审计事件表
func createAuditTable(ctx context.Context, conn driver.Conn) error {
	createTableSQL := `
    CREATE TABLE IF NOT EXISTS file_audit_log (
        timestamp DateTime64(3) COMMENT '事件时间（毫秒精度）',
        date Date DEFAULT toDate(timestamp) COMMENT '日期（用于分区）',
        event_type String COMMENT '事件类型（UPLOAD/DELETE/EXPIRE）',
        file_name String COMMENT '文件名',
        outcome String COMMENT '结果（SUCCESS/FAILURE）',
        metadata Map(String, String) COMMENT '附加信息'
    ) ENGINE = MergeTree()
    PARTITION BY toYYYYMM(date)
    ORDER BY (date, event_type, timestamp)
    TTL date + INTERVAL 90 DAY
    SETTINGS index_granularity = 8192
    COMMENT '文件审计事件表'
    `

	if err := conn.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("创建 file_audit_log 表失败: %w", err)
	}
	return nil
}

// CheckClickHouseHealth 健康检查
func CheckClickHouseHealth(conn driver.Conn) error {
	if conn == nil {
		return fmt.Errorf("ClickHouse 连接未初始化")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.Ping(ctx); err != nil {
		return fmt.Errorf("ClickHouse 健康检查失败: %w", err)
	}
	return nil
}
