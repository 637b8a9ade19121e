package services

import (
	"context"
	"log"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// 审计事件类型
const (
	EventUpload = "UPLOAD"
	EventDelete = "DELETE"
	EventExpire = "EXPIRE"
)

// 审计事件结果
const (
	OutcomeSuccess = "SUCCESS"
	OutcomeFailure = "FAILURE"
)

// AuditLogger 审计事件接收方。尽力而为：写入失败只记日志，
// 绝不阻塞或影响核心操作。
type AuditLogger interface {
	LogEvent(eventType, fileName, outcome string, metadata map[string]string)
}

// ClickHouseAuditLogger 将审计事件异步写入 ClickHouse
type ClickHouseAuditLogger struct {
	conn driver.Conn
}

func NewClickHouseAuditLogger(conn driver.Conn) *ClickHouseAuditLogger {
	return &ClickHouseAuditLogger{conn: conn}
}

// LogEvent 异步写入一条审计事件，失败只告警
func (l *ClickHouseAuditLogger) LogEvent(eventType, fileName, outcome string, metadata map[string]string) {
	if metadata == nil {
		metadata = map[string]string{}
	}
	ts := time.Now().UTC()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := l.conn.Exec(ctx,
			"INSERT INTO file_audit_log (timestamp, event_type, file_name, outcome, metadata) VALUES (?, ?, ?, ?, ?)",
			ts, eventType, fileName, outcome, metadata,
		)
		if err != nil {
			log.Printf("⚠️ 写入审计事件失败 [%s %s]: %v", eventType, fileName, err)
		}
	}()
}

// NoopAuditLogger 未配置审计存储时的空实现，事件只写本地日志
type NoopAuditLogger struct{}

func (NoopAuditLogger) LogEvent(eventType, fileName, outcome string, metadata map[string]string) {
	log.Printf("📋 审计事件 [%s] 文件=%s 结果=%s", eventType, fileName, outcome)
}
