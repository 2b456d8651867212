package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fenjian-next/internal/logger"
	"github.com/fenjian-next/internal/models"
	"github.com/fenjian-next/internal/queue"
	"github.com/fenjian-next/internal/replica"
	"github.com/fenjian-next/internal/repository"
)

// ImportService 批次导入与删除编排。
// 先更新内存索引（乐观），再落本地库，远端写入失败时转入后台任务补偿。
type ImportService struct {
	scanner *ScannerService
	repo    repository.PackageRepository
	store   replica.Store // 可为 nil
	queue   *queue.Client // 可为 nil
}

// NewImportService 创建导入编排器
func NewImportService(scanner *ScannerService, repo repository.PackageRepository, store replica.Store, q *queue.Client) *ImportService {
	return &ImportService{
		scanner: scanner,
		repo:    repo,
		store:   store,
		queue:   q,
	}
}

// ImportResult 一次导入的结算
type ImportResult struct {
	BatchID      string `json:"batch_id"`
	Count        int    `json:"count"`
	RemoteSynced bool   `json:"remote_synced"`
}

// Import 导入一车包裹：生成批次元数据，构造记录后合入索引、本地库与远端。
// 远端失败不回滚本地结果，改为入队补偿任务并在返回值中标记。
func (s *ImportService) Import(ctx context.Context, rows []models.ImportRow, vehicleNumber string) (*ImportResult, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyImport
	}

	now := time.Now()
	meta := models.BatchMeta{
		BatchID:       models.NewBatchID(vehicleNumber, now),
		VehicleNumber: vehicleNumber,
		ImportedAt:    now,
	}
	records := models.NewImportedRecords(rows, meta)

	s.scanner.UpsertMany(records)

	if err := s.repo.SaveAll(records); err != nil {
		return nil, fmt.Errorf("保存导入批次失败: %w", err)
	}
	logger.Infow("batch_imported", "batch_id", meta.BatchID, "count", len(records))

	result := &ImportResult{BatchID: meta.BatchID, Count: len(records), RemoteSynced: true}
	if s.store == nil {
		result.RemoteSynced = false
		return result, nil
	}

	if err := s.store.Upsert(ctx, records); err != nil {
		logger.Warnw("batch_import_remote_failed", "batch_id", meta.BatchID, "error", err)
		result.RemoteSynced = false
		s.deferUpsert(records)
		return result, ErrRemoteSync
	}
	return result, nil
}

// DeleteBatch 删除一个批次：索引清理、本地库重写、远端按批次删除。
// 远端失败同样入队补偿，本地删除结果保留。
func (s *ImportService) DeleteBatch(ctx context.Context, key models.BatchKey) (int, error) {
	removed := s.scanner.RemoveBatch(key)

	all, err := s.repo.GetAll()
	if err != nil {
		return removed, fmt.Errorf("读取本地包裹失败: %w", err)
	}
	kept := make([]*models.Package, 0, len(all))
	for i := range all {
		if !key.Matches(all[i].BatchID) {
			kept = append(kept, &all[i])
		}
	}
	if err := s.repo.ReplaceAll(kept); err != nil {
		return removed, fmt.Errorf("重写本地包裹失败: %w", err)
	}
	logger.Infow("batch_deleted", "batch_id", key.Token(), "removed", removed)

	if s.store == nil {
		return removed, nil
	}
	if err := s.store.DeleteBatch(ctx, key); err != nil {
		logger.Warnw("batch_delete_remote_failed", "batch_id", key.Token(), "error", err)
		s.deferBatchDelete(key)
		return removed, ErrRemoteSync
	}
	return removed, nil
}

func (s *ImportService) deferUpsert(records []*models.Package) {
	if s.queue == nil {
		return
	}
	plain := make([]models.Package, len(records))
	for i, r := range records {
		plain[i] = *r
	}
	if err := s.queue.EnqueueRemoteUpsert(plain); err != nil {
		logger.Errorw("defer_remote_upsert_failed", "error", err)
	}
}

func (s *ImportService) deferBatchDelete(key models.BatchKey) {
	if s.queue == nil {
		return
	}
	if err := s.queue.EnqueueRemoteBatchDelete(key.Token()); err != nil {
		logger.Errorw("defer_remote_batch_delete_failed", "error", err)
	}
}
