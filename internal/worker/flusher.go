package worker

import (
	"context"
	"time"

	"github.com/fenjian-next/internal/service"
)

// Flusher 重试队列定时重放服务
type Flusher struct {
	sync *service.SyncService
}

// NewFlusher 创建重放服务
func NewFlusher(sync *service.SyncService) *Flusher {
	return &Flusher{sync: sync}
}

// Name 服务名称
func (f *Flusher) Name() string {
	return "sync-flusher"
}

// Start 按固定周期重放同步积压
func (f *Flusher) Start(ctx context.Context) error {
	ticker := time.NewTicker(f.sync.RetryInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			f.sync.FlushRetryQueue(ctx)
		}
	}
}

// Stop 停止重放
func (f *Flusher) Stop(ctx context.Context) error {
	return nil
}
