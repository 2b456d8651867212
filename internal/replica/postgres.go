package replica

import (
	"context"
	"errors"
	"time"

	"github.com/fenjian-next/internal/config"
	"github.com/fenjian-next/internal/logger"
	"github.com/fenjian-next/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

const defaultCallTimeout = 5 * time.Second

// PostgresStore 基于共享 Postgres 的远端副本实现
type PostgresStore struct {
	db      *gorm.DB
	timeout time.Duration
	feed    ChangeFeed
}

// NewPostgresStore 连接远端副本库并确保表结构存在。
// feed 可为 nil，此时写入不广播变更事件。
func NewPostgresStore(cfg config.ReplicaConfig, feed ChangeFeed) (*PostgresStore, error) {
	if !cfg.Enabled {
		return nil, errors.New("replica disabled")
	}
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&models.Package{}); err != nil {
		return nil, err
	}

	timeout := defaultCallTimeout
	if cfg.TimeoutMS > 0 {
		timeout = time.Duration(cfg.TimeoutMS) * time.Millisecond
	}
	return &PostgresStore{db: db, timeout: timeout, feed: feed}, nil
}

// FetchAll 拉取远端全量记录
func (s *PostgresStore) FetchAll(ctx context.Context) ([]models.Package, error) {
	ctx, cancel := s.callContext(ctx)
	defer cancel()

	var pkgs []models.Package
	if err := s.db.WithContext(ctx).Find(&pkgs).Error; err != nil {
		return nil, err
	}
	return pkgs, nil
}

// UpdateByTracking 按单号下发扫描增量并广播 update 事件
func (s *PostgresStore) UpdateByTracking(ctx context.Context, trackingNumber string, patch models.ScanPatch) error {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	updates := map[string]interface{}{
		"status":      patch.Status,
		"scanned_at":  patch.ScannedAt,
		"operator_id": patch.OperatorID,
		"revision":    patch.Revision,
	}
	if err := s.db.WithContext(callCtx).Model(&models.Package{}).
		Where("tracking_number = ?", trackingNumber).
		Updates(updates).Error; err != nil {
		return err
	}

	s.publishCurrent(ctx, trackingNumber, ChangeEventUpdate)
	return nil
}

// Upsert 批量写入，tracking_number 冲突时覆盖而非重复插入
func (s *PostgresStore) Upsert(ctx context.Context, pkgs []*models.Package) error {
	if len(pkgs) == 0 {
		return nil
	}
	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	if err := s.db.WithContext(callCtx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tracking_number"}},
		UpdateAll: true,
	}).CreateInBatches(pkgs, 200).Error; err != nil {
		return err
	}

	if s.feed != nil {
		for _, pkg := range pkgs {
			event := ChangeEvent{Event: ChangeEventInsert, Record: *pkg}
			if err := s.feed.Publish(ctx, event); err != nil {
				logger.Warnw("replica_publish_failed", "tracking_number", pkg.TrackingNumber, "error", err)
				break
			}
		}
	}
	return nil
}

// DeleteBatch 删除一个批次的全部远端记录
func (s *PostgresStore) DeleteBatch(ctx context.Context, key models.BatchKey) error {
	ctx, cancel := s.callContext(ctx)
	defer cancel()

	query := s.db.WithContext(ctx)
	if key.Known() {
		query = query.Where("batch_id = ?", key.ID())
	} else {
		query = query.Where("batch_id IS NULL OR batch_id = ''")
	}
	return query.Delete(&models.Package{}).Error
}

func (s *PostgresStore) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *PostgresStore) publishCurrent(ctx context.Context, trackingNumber string, event string) {
	if s.feed == nil {
		return
	}
	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	var pkg models.Package
	if err := s.db.WithContext(callCtx).Where("tracking_number = ?", trackingNumber).First(&pkg).Error; err != nil {
		logger.Warnw("replica_fetch_for_publish_failed", "tracking_number", trackingNumber, "error", err)
		return
	}
	if err := s.feed.Publish(ctx, ChangeEvent{Event: event, Record: pkg}); err != nil {
		logger.Warnw("replica_publish_failed", "tracking_number", trackingNumber, "error", err)
	}
}
