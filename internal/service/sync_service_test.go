package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fenjian-next/internal/config"
	"github.com/fenjian-next/internal/constants"
	"github.com/fenjian-next/internal/models"
	"github.com/fenjian-next/internal/replica"
	"github.com/fenjian-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type fakeStore struct {
	mu       sync.Mutex
	failing  bool
	fetched  []models.Package
	updates  map[string]models.ScanPatch
	upserted int
	deleted  []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{updates: map[string]models.ScanPatch{}}
}

func (f *fakeStore) setFailing(failing bool) {
	f.mu.Lock()
	f.failing = failing
	f.mu.Unlock()
}

func (f *fakeStore) FetchAll(ctx context.Context) ([]models.Package, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, errors.New("connection refused")
	}
	return f.fetched, nil
}

func (f *fakeStore) UpdateByTracking(ctx context.Context, trackingNumber string, patch models.ScanPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("connection refused")
	}
	f.updates[trackingNumber] = patch
	return nil
}

func (f *fakeStore) Upsert(ctx context.Context, pkgs []*models.Package) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("connection refused")
	}
	f.upserted += len(pkgs)
	return nil
}

func (f *fakeStore) DeleteBatch(ctx context.Context, key models.BatchKey) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("connection refused")
	}
	f.deleted = append(f.deleted, key.Token())
	return nil
}

func (f *fakeStore) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

func setupSyncTest(t *testing.T, store replica.Store) (*SyncService, *ScannerService, repository.PackageRepository) {
	t.Helper()
	dsn := fmt.Sprintf("file:sync_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Package{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	repo := repository.NewPackageRepository(db)
	scanner := NewScannerService(config.ScanConfig{}, nil)
	syncCfg := config.SyncConfig{
		RetryIntervalSeconds: 10,
		MaxQueueSize:         100,
		BackoffBaseSeconds:   10,
		BackoffMaxSeconds:    300,
	}
	return NewSyncService(syncCfg, scanner, repo, store, nil), scanner, repo
}

func TestCommitScanPersistsLocallyAndRemotely(t *testing.T) {
	store := newFakeStore()
	sync, scanner, repo := setupSyncTest(t, store)

	seedBatch(t, scanner, "b1", "粤B12345", "SF100")
	key := models.KnownBatch("b1")
	scanner.SetActiveBatch(&key)

	result := scanner.ResolveAndApply("SF100", "op01")
	if result.Outcome != constants.ScanOutcomeSuccess {
		t.Fatalf("expected success, got %s", result.Outcome)
	}
	sync.CommitScan(result.Package)

	saved, err := repo.GetByTracking("SF100")
	if err != nil || saved == nil {
		t.Fatalf("expected local record saved: %v", err)
	}
	if !saved.Scanned() || saved.Revision != 2 {
		t.Fatalf("unexpected saved record: %+v", saved)
	}

	patch, ok := store.updates["SF100"]
	if !ok {
		t.Fatalf("expected remote update pushed")
	}
	if patch.Status != constants.PackageStatusScanned || patch.Revision != 2 {
		t.Fatalf("unexpected remote patch: %+v", patch)
	}
	if sync.QueueLen() != 0 {
		t.Fatalf("expected empty retry queue, got %d", sync.QueueLen())
	}
}

func TestCommitScanFailureGoesToRetryQueue(t *testing.T) {
	store := newFakeStore()
	store.setFailing(true)
	sync, scanner, repo := setupSyncTest(t, store)

	seedBatch(t, scanner, "b1", "粤B12345", "SF100")
	key := models.KnownBatch("b1")
	scanner.SetActiveBatch(&key)

	result := scanner.ResolveAndApply("SF100", "op01")
	sync.CommitScan(result.Package)

	// 本地提交不受远端失败影响
	saved, err := repo.GetByTracking("SF100")
	if err != nil || saved == nil || !saved.Scanned() {
		t.Fatalf("local commit must survive remote failure: %v %+v", err, saved)
	}
	if sync.Status() != constants.ConnStatusOffline {
		t.Fatalf("expected offline after push failure, got %s", sync.Status())
	}
	if sync.QueueLen() != 1 {
		t.Fatalf("expected one queued entry, got %d", sync.QueueLen())
	}
}

func TestFlushRetryQueueRecoversThroughFlush(t *testing.T) {
	store := newFakeStore()
	store.setFailing(true)
	sync, scanner, _ := setupSyncTest(t, store)

	seedBatch(t, scanner, "b1", "粤B12345", "SF100", "SF200")
	key := models.KnownBatch("b1")
	scanner.SetActiveBatch(&key)

	sync.CommitScan(scanner.ResolveAndApply("SF100", "op01").Package)
	sync.CommitScan(scanner.ResolveAndApply("SF200", "op01").Package)
	if sync.Status() != constants.ConnStatusOffline {
		t.Fatalf("expected offline after push failures, got %s", sync.Status())
	}
	if sync.QueueLen() != 2 {
		t.Fatalf("expected two queued entries, got %d", sync.QueueLen())
	}

	// 远端仍不可达：重放作为探测，失败后其余条目原样放回
	sync.FlushRetryQueue(context.Background())
	if sync.Status() != constants.ConnStatusOffline {
		t.Fatalf("failed replay must keep offline, got %s", sync.Status())
	}
	if sync.QueueLen() != 2 || store.updateCount() != 0 {
		t.Fatalf("failed replay must keep queue intact: len=%d updates=%d", sync.QueueLen(), store.updateCount())
	}

	// 远端恢复：清除探测失败留下的退避时间，一轮重放即收敛并回到 online
	store.setFailing(false)
	sync.mu.Lock()
	for i := range sync.queue {
		sync.queue[i].NextAttempt = time.Time{}
	}
	sync.mu.Unlock()
	sync.FlushRetryQueue(context.Background())

	if sync.QueueLen() != 0 {
		t.Fatalf("expected drained queue, got %d", sync.QueueLen())
	}
	if store.updateCount() != 2 {
		t.Fatalf("expected both updates delivered, got %d", store.updateCount())
	}
	if sync.Status() != constants.ConnStatusOnline {
		t.Fatalf("successful replay must restore online, got %s", sync.Status())
	}
}

func TestFlushRetryQueueBacksOffFailures(t *testing.T) {
	store := newFakeStore()
	sync, _, _ := setupSyncTest(t, store)

	store.setFailing(true)
	sync.enqueue(SyncQueueEntry{TrackingNumber: "SF100"})

	sync.FlushRetryQueue(context.Background())
	if sync.QueueLen() != 1 {
		t.Fatalf("failed entry must be requeued, got %d", sync.QueueLen())
	}

	// 第一次失败后的条目带退避时间，紧接着的一轮不再尝试
	store.setFailing(false)
	sync.FlushRetryQueue(context.Background())
	if store.updateCount() != 0 {
		t.Fatalf("entry with pending backoff must not be retried yet")
	}
	if sync.QueueLen() != 1 {
		t.Fatalf("entry must remain queued, got %d", sync.QueueLen())
	}
}

func TestCommitScanSkipsRecordDeletedMeanwhile(t *testing.T) {
	store := newFakeStore()
	sync, scanner, repo := setupSyncTest(t, store)

	seedBatch(t, scanner, "b1", "粤B12345", "SF100")
	key := models.KnownBatch("b1")
	scanner.SetActiveBatch(&key)

	result := scanner.ResolveAndApply("SF100", "op01")
	pkg := result.Package.Clone()

	// 批次删除先于后台提交落地
	scanner.RemoveBatch(models.KnownBatch("b1"))

	sync.CommitScan(pkg)

	if scanner.Get("SF100") != nil {
		t.Fatalf("deleted record must not reappear in index")
	}
	saved, err := repo.GetByTracking("SF100")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if saved != nil {
		t.Fatalf("deleted record must not be saved locally: %+v", saved)
	}
	if store.updateCount() != 0 {
		t.Fatalf("deleted record must not be pushed remotely")
	}
}

func TestEnqueueDropsOldestAtCapacity(t *testing.T) {
	store := newFakeStore()
	sync, scanner, repo := setupSyncTest(t, store)
	_ = scanner
	_ = repo
	sync.cfg.MaxQueueSize = 3

	for i := 0; i < 5; i++ {
		sync.enqueue(SyncQueueEntry{TrackingNumber: fmt.Sprintf("SF%d", i)})
	}
	if sync.QueueLen() != 3 {
		t.Fatalf("expected queue capped at 3, got %d", sync.QueueLen())
	}
	sync.mu.Lock()
	first := sync.queue[0].TrackingNumber
	sync.mu.Unlock()
	if first != "SF2" {
		t.Fatalf("expected oldest entries dropped, head is %s", first)
	}
}

func TestLoadDataLocalFirstRemoteRefresh(t *testing.T) {
	store := newFakeStore()
	sync, scanner, repo := setupSyncTest(t, store)

	importedAt := time.Now()
	if err := repo.Save(&models.Package{
		TrackingNumber: "LOCAL1",
		Zone:           "10-1",
		Status:         constants.PackageStatusPending,
		BatchID:        "b1",
		ImportedAt:     &importedAt,
		Revision:       1,
	}); err != nil {
		t.Fatalf("seed local failed: %v", err)
	}
	store.fetched = []models.Package{
		{TrackingNumber: "REMOTE1", Zone: "11-1", Status: constants.PackageStatusPending, BatchID: "b2", Revision: 1},
	}

	sync.LoadData(context.Background())

	if sync.Status() != constants.ConnStatusOnline {
		t.Fatalf("expected online after load, got %s", sync.Status())
	}
	// 远端全量替换了索引
	if scanner.Get("REMOTE1") == nil {
		t.Fatalf("expected remote record in index")
	}
	// 远端拉取结果写回本地库
	saved, err := repo.GetByTracking("REMOTE1")
	if err != nil || saved == nil {
		t.Fatalf("expected remote record persisted locally: %v", err)
	}
}

func TestLoadDataRemoteFailureKeepsLocal(t *testing.T) {
	store := newFakeStore()
	sync, scanner, repo := setupSyncTest(t, store)

	if err := repo.Save(&models.Package{
		TrackingNumber: "LOCAL1",
		Zone:           "10-1",
		Status:         constants.PackageStatusPending,
		BatchID:        "b1",
		Revision:       1,
	}); err != nil {
		t.Fatalf("seed local failed: %v", err)
	}
	store.setFailing(true)

	sync.LoadData(context.Background())

	if sync.Status() != constants.ConnStatusOffline {
		t.Fatalf("expected offline after remote failure, got %s", sync.Status())
	}
	if scanner.Get("LOCAL1") == nil {
		t.Fatalf("local data must survive remote failure")
	}
}

func TestApplyChangeRevisionGuard(t *testing.T) {
	sync, scanner, _ := setupSyncTest(t, newFakeStore())

	seedBatch(t, scanner, "b1", "粤B12345", "SF100")
	key := models.KnownBatch("b1")
	scanner.SetActiveBatch(&key)
	scanner.ResolveAndApply("SF100", "op01") // Revision 2

	sync.ApplyChange(replica.ChangeEvent{
		Event: replica.ChangeEventUpdate,
		Record: models.Package{
			TrackingNumber: "SF100",
			Status:         constants.PackageStatusPending,
			BatchID:        "b1",
			Revision:       1,
		},
	})

	if pkg := scanner.Get("SF100"); !pkg.Scanned() {
		t.Fatalf("stale realtime echo must not roll back local scan")
	}
}

func TestLoadDataLocalFailureWithoutReplicaGoesOffline(t *testing.T) {
	// 不建表，本地读取必然失败
	dsn := fmt.Sprintf("file:sync_local_fail_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}

	repo := repository.NewPackageRepository(db)
	scanner := NewScannerService(config.ScanConfig{}, nil)
	sync := NewSyncService(config.SyncConfig{RetryIntervalSeconds: 10}, scanner, repo, nil, nil)

	sync.LoadData(context.Background())

	if sync.Status() != constants.ConnStatusOffline {
		t.Fatalf("local load failure without replica must go offline, got %s", sync.Status())
	}
}

func TestBackoffJitterStaysWithinBounds(t *testing.T) {
	sync := NewSyncService(config.SyncConfig{
		RetryIntervalSeconds:  10,
		BackoffBaseSeconds:    100,
		BackoffMaxSeconds:     300,
		BackoffJitterFraction: 20,
	}, nil, nil, nil, nil)

	base := 100 * time.Second
	half := 10 * time.Second // 抖动幅度 20% 的一半
	for i := 0; i < 200; i++ {
		d := sync.backoff(1)
		if d < base-half || d >= base+half {
			t.Fatalf("jitter out of ±%v around %v: got %v", half, base, d)
		}
	}
}

func TestScanAbsorbsResolutionErrors(t *testing.T) {
	store := newFakeStore()
	sync, _, _ := setupSyncTest(t, store)

	result := sync.Scan("", "op01")
	if result.Outcome != constants.ScanOutcomeError {
		t.Fatalf("expected error outcome, got %s", result.Outcome)
	}
	// 错误结果不触发远端写入
	if store.updateCount() != 0 {
		t.Fatalf("error outcome must not push remote")
	}
}
