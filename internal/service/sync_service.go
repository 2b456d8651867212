package service

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/fenjian-next/internal/config"
	"github.com/fenjian-next/internal/constants"
	"github.com/fenjian-next/internal/logger"
	"github.com/fenjian-next/internal/models"
	"github.com/fenjian-next/internal/replica"
	"github.com/fenjian-next/internal/repository"
)

// SyncQueueEntry 待重试的远端写入
type SyncQueueEntry struct {
	TrackingNumber string           `json:"tracking_number"`
	Patch          models.ScanPatch `json:"patch"`
	Attempts       int              `json:"attempts"`
	NextAttempt    time.Time        `json:"next_attempt"`
}

// SyncService 同步协调器。
// 扫描先落内存索引与本地库，远端推送在后台进行；
// 推送失败转为离线状态 + 重试队列，按固定周期带退避重放。
type SyncService struct {
	cfg     config.SyncConfig
	scanner *ScannerService
	repo    repository.PackageRepository
	store   replica.Store      // 可为 nil（纯离线站点）
	feed    replica.ChangeFeed // 可为 nil

	mu     sync.Mutex
	queue  []SyncQueueEntry
	status string
}

// NewSyncService 创建同步协调器
func NewSyncService(cfg config.SyncConfig, scanner *ScannerService, repo repository.PackageRepository, store replica.Store, feed replica.ChangeFeed) *SyncService {
	if cfg.RetryIntervalSeconds <= 0 {
		cfg.RetryIntervalSeconds = 10
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 1000
	}
	if cfg.BackoffBaseSeconds <= 0 {
		cfg.BackoffBaseSeconds = cfg.RetryIntervalSeconds
	}
	if cfg.BackoffMaxSeconds <= 0 {
		cfg.BackoffMaxSeconds = 300
	}
	return &SyncService{
		cfg:     cfg,
		scanner: scanner,
		repo:    repo,
		store:   store,
		feed:    feed,
		status:  constants.ConnStatusSyncing,
	}
}

// Status 当前连接状态
func (s *SyncService) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// QueueLen 重试队列长度
func (s *SyncService) QueueLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// RetryInterval 重放周期
func (s *SyncService) RetryInterval() time.Duration {
	return time.Duration(s.cfg.RetryIntervalSeconds) * time.Second
}

func (s *SyncService) setStatus(status string) {
	s.mu.Lock()
	if s.status != status {
		logger.Infow("conn_status_changed", "from", s.status, "to", status)
		s.status = status
	}
	s.mu.Unlock()
}

// Scan 扫描入口：判定 + 状态迁移，命中后后台提交本地与远端写入。
// 扫描路径上的所有失败都吸收为 ScanResult，不向上抛错。
func (s *SyncService) Scan(code, operatorID string) models.ScanResult {
	result := s.scanner.ResolveAndApply(code, operatorID)
	if result.Outcome == constants.ScanOutcomeSuccess && result.Package != nil {
		pkg := result.Package.Clone()
		go s.CommitScan(pkg)
	}
	return result
}

// CommitScan 提交一次已完成迁移的扫描：
// 判定阶段已在索引锁内写入，此处只做本地库落盘（失败仅记日志）与远端推送；
// 若记录在提交前被批次删除清出索引，则整体放弃，避免复活已删除的记录。
func (s *SyncService) CommitScan(pkg *models.Package) {
	if pkg == nil {
		return
	}
	if s.scanner.Get(pkg.TrackingNumber) == nil {
		logger.Debugw("scan_commit_dropped", "tracking_number", pkg.TrackingNumber)
		return
	}

	if err := s.repo.Save(pkg); err != nil {
		logger.Errorw("local_save_failed", "tracking_number", pkg.TrackingNumber, "error", err)
	}

	patch := models.ScanPatch{
		Status:     pkg.Status,
		ScannedAt:  pkg.ScannedAt,
		OperatorID: pkg.OperatorID,
		Revision:   pkg.Revision,
	}
	s.pushRemote(pkg.TrackingNumber, patch)
}

func (s *SyncService) pushRemote(trackingNumber string, patch models.ScanPatch) {
	if s.store == nil {
		return
	}
	if err := s.store.UpdateByTracking(context.Background(), trackingNumber, patch); err != nil {
		logger.Warnw("remote_push_failed", "tracking_number", trackingNumber, "error", err)
		s.setStatus(constants.ConnStatusOffline)
		s.enqueue(SyncQueueEntry{TrackingNumber: trackingNumber, Patch: patch})
		return
	}
	logger.Debugw("remote_push_ok", "tracking_number", trackingNumber)
}

// enqueue 追加重试条目；队列达到上限时丢弃最旧的一条。
// 远端按修订号收敛，丢弃旧条目不会回退更新的写入。
func (s *SyncService) enqueue(entry SyncQueueEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) >= s.cfg.MaxQueueSize {
		dropped := s.queue[0]
		s.queue = s.queue[1:]
		logger.Warnw("sync_queue_full_dropped_oldest", "tracking_number", dropped.TrackingNumber)
	}
	s.queue = append(s.queue, entry)
}

// FlushRetryQueue 重放当前积压：快照后清空，逐条尝试，失败的带退避重新入队。
// 离线状态下同样尝试到期条目，作为远端恢复的探测；成功即拉回 online。
// 周期内一旦失败，其余条目原样放回等待下一周期，不再冲击不可达的远端。
func (s *SyncService) FlushRetryQueue(ctx context.Context) {
	if s.store == nil {
		return
	}

	s.mu.Lock()
	if len(s.queue) == 0 {
		s.mu.Unlock()
		return
	}
	pending := s.queue
	s.queue = nil
	s.mu.Unlock()

	logger.Infow("sync_queue_flush", "pending", len(pending))
	now := time.Now()
	for i, entry := range pending {
		if ctx.Err() != nil {
			s.requeue(entry)
			continue
		}
		if entry.NextAttempt.After(now) {
			s.requeue(entry)
			continue
		}

		if err := s.store.UpdateByTracking(ctx, entry.TrackingNumber, entry.Patch); err != nil {
			entry.Attempts++
			entry.NextAttempt = now.Add(s.backoff(entry.Attempts))
			logger.Warnw("sync_queue_retry_failed",
				"tracking_number", entry.TrackingNumber,
				"attempts", entry.Attempts,
				"error", err,
			)
			s.setStatus(constants.ConnStatusOffline)
			s.requeue(entry)
			for _, rest := range pending[i+1:] {
				s.requeue(rest)
			}
			return
		}
		logger.Infow("sync_queue_retry_ok", "tracking_number", entry.TrackingNumber)
		s.setStatus(constants.ConnStatusOnline)
	}
}

func (s *SyncService) requeue(entry SyncQueueEntry) {
	s.mu.Lock()
	s.queue = append(s.queue, entry)
	s.mu.Unlock()
}

// backoff 指数退避 + 抖动，封顶 backoff_max_seconds
func (s *SyncService) backoff(attempts int) time.Duration {
	base := time.Duration(s.cfg.BackoffBaseSeconds) * time.Second
	max := time.Duration(s.cfg.BackoffMaxSeconds) * time.Second

	delay := base
	for i := 1; i < attempts && delay < max; i++ {
		delay *= 2
	}
	if delay > max {
		delay = max
	}

	jitterFraction := s.cfg.BackoffJitterFraction
	if jitterFraction <= 0 || jitterFraction >= 100 {
		return delay
	}
	maxJitter := int64(delay) * int64(jitterFraction) / 100
	if maxJitter <= 0 {
		return delay
	}
	// 在 delay ± maxJitter/2 区间内取随机值
	return delay - time.Duration(maxJitter/2) + time.Duration(rand.Int63n(maxJitter))
}

// LoadData 启动加载：本地优先，远端后台刷新。
// 远端失败时保留本地数据并转入离线状态。
func (s *SyncService) LoadData(ctx context.Context) {
	s.setStatus(constants.ConnStatusSyncing)

	local, err := s.repo.GetAll()
	if err != nil {
		logger.Errorw("local_load_failed", "error", err)
	} else {
		s.scanner.ReplaceIndex(local)
		logger.Infow("local_load_ok", "count", len(local))
		s.setStatus(constants.ConnStatusOnline)
	}

	if s.store == nil {
		if err != nil {
			s.setStatus(constants.ConnStatusOffline)
		} else {
			s.setStatus(constants.ConnStatusOnline)
		}
		return
	}

	remote, err := s.store.FetchAll(ctx)
	if err != nil {
		logger.Warnw("remote_load_failed", "error", err)
		s.setStatus(constants.ConnStatusOffline)
		return
	}

	if len(remote) > 0 {
		s.scanner.ReplaceIndex(remote)
		saved := make([]*models.Package, len(remote))
		for i := range remote {
			saved[i] = &remote[i]
		}
		if err := s.repo.SaveAll(saved); err != nil {
			logger.Errorw("local_refresh_failed", "error", err)
		}
	}
	logger.Infow("remote_load_ok", "count", len(remote))
	s.setStatus(constants.ConnStatusOnline)
}

// ApplyChange 摄入一条远端变更事件（修订号保护在索引层）
func (s *SyncService) ApplyChange(event replica.ChangeEvent) {
	if event.Record.TrackingNumber == "" {
		return
	}
	if s.scanner.ApplyRemote(event.Record) {
		logger.Debugw("realtime_applied", "event", event.Event, "tracking_number", event.Record.TrackingNumber)
		return
	}
	logger.Debugw("realtime_stale_dropped", "tracking_number", event.Record.TrackingNumber)
}

// Name 服务名称
func (s *SyncService) Name() string {
	return "sync"
}

// Start 启动同步：初始加载后维持变更订阅，断开后按周期重连
func (s *SyncService) Start(ctx context.Context) error {
	s.LoadData(ctx)

	if s.feed == nil {
		<-ctx.Done()
		return nil
	}

	for {
		err := s.feed.Subscribe(ctx, s.ApplyChange, func(subscribed bool) {
			if subscribed {
				s.setStatus(constants.ConnStatusOnline)
			} else {
				s.setStatus(constants.ConnStatusOffline)
			}
		})
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return nil
		}
		if err != nil {
			logger.Warnw("realtime_subscribe_failed", "error", err)
			s.setStatus(constants.ConnStatusOffline)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(s.RetryInterval()):
		}
	}
}

// Stop 停止同步
func (s *SyncService) Stop(ctx context.Context) error {
	return nil
}
