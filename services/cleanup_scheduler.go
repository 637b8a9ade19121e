package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// 单轮清理内的重试上限与间隔
const (
	sweepMaxAttempts   = 3
	sweepRetryInterval = 30 * time.Second
)

// CleanupScheduler 过期文件清理调度器。独立于请求链路，按 cron 表达式
// 周期触发清理。任何一轮的失败都只记日志，不会终止调度；
// 进程退出时 Stop 会等待当前轮次结束。
type CleanupScheduler struct {
	svc      *LifecycleService
	cronSpec string
	cron     *cron.Cron

	mutex   sync.Mutex
	running bool

	// 测试可注入，缩短重试等待
	retryInterval time.Duration
}

func NewCleanupScheduler(svc *LifecycleService, cronSpec string) *CleanupScheduler {
	return &CleanupScheduler{
		svc:           svc,
		cronSpec:      cronSpec,
		cron:          cron.New(),
		retryInterval: sweepRetryInterval,
	}
}

// Start 启动调度
func (s *CleanupScheduler) Start() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.running {
		return fmt.Errorf("清理调度器已经在运行")
	}

	_, err := s.cron.AddFunc(s.cronSpec, func() {
		// 一轮清理的任何失败都已在 RunOnce 内记录，这里只需继续等下一轮
		_ = s.RunOnce(context.Background())
	})
	if err != nil {
		return fmt.Errorf("注册清理任务失败: %w", err)
	}

	s.cron.Start()
	s.running = true

	log.Printf("✅ 过期文件清理调度器启动成功 (%s)", s.cronSpec)
	return nil
}

// Stop 停止调度，等待进行中的轮次结束
func (s *CleanupScheduler) Stop() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.running {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.running = false
	log.Printf("🛑 过期文件清理调度器已停止")
}

// RunOnce 同步执行一轮清理，带有界重试。测试可直接调用而无需等真实时钟。
func (s *CleanupScheduler) RunOnce(ctx context.Context) error {
	var lastErr error

	for attempt := 1; attempt <= sweepMaxAttempts; attempt++ {
		count, err := s.svc.SweepExpired(ctx)
		if err == nil {
			log.Printf("✅ 过期清理完成: 回收 %d 条记录", count)
			return nil
		}

		lastErr = err
		log.Printf("❌ 过期清理失败 (第 %d/%d 次): %v", attempt, sweepMaxAttempts, err)

		if attempt < sweepMaxAttempts {
			select {
			case <-time.After(s.retryInterval):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return lastErr
}
