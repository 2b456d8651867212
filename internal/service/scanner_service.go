package service

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fenjian-next/internal/config"
	"github.com/fenjian-next/internal/constants"
	"github.com/fenjian-next/internal/models"
	"github.com/fenjian-next/internal/speech"
)

// ScannerService 包裹索引与扫描判定。
// 索引是扫描判定和统计的唯一事实来源：启动时由本地库重建，
// 扫描、导入和远端推送都只通过这里修改，展示层拿到的永远是副本。
type ScannerService struct {
	mu          sync.RWMutex
	index       map[string]*models.Package
	history     []models.ScanResult
	lastScan    *models.ScanResult
	activeBatch *models.BatchKey

	historySize int
	sepWord     string
	speaker     speech.Speaker
}

// NewScannerService 创建扫描服务
func NewScannerService(cfg config.ScanConfig, speaker speech.Speaker) *ScannerService {
	historySize := cfg.HistorySize
	if historySize <= 0 {
		historySize = constants.ScanHistoryLimit
	}
	sepWord := strings.TrimSpace(cfg.ZoneSeparatorWord)
	if sepWord == "" {
		sepWord = "杠"
	}
	return &ScannerService{
		index:       make(map[string]*models.Package),
		historySize: historySize,
		sepWord:     sepWord,
		speaker:     speaker,
	}
}

// ReplaceIndex 整体替换索引内容（启动加载与远端全量刷新用）
func (s *ScannerService) ReplaceIndex(pkgs []models.Package) {
	next := make(map[string]*models.Package, len(pkgs))
	for i := range pkgs {
		pkg := pkgs[i]
		next[pkg.TrackingNumber] = &pkg
	}

	s.mu.Lock()
	s.index = next
	s.mu.Unlock()
}

// Get 按单号读取索引中的记录副本
func (s *ScannerService) Get(trackingNumber string) *models.Package {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index[trackingNumber].Clone()
}

// Upsert 写入单条记录
func (s *ScannerService) Upsert(pkg *models.Package) {
	if pkg == nil {
		return
	}
	s.mu.Lock()
	s.index[pkg.TrackingNumber] = pkg.Clone()
	s.mu.Unlock()
}

// UpsertMany 批量写入记录
func (s *ScannerService) UpsertMany(pkgs []*models.Package) {
	s.mu.Lock()
	for _, pkg := range pkgs {
		if pkg == nil {
			continue
		}
		s.index[pkg.TrackingNumber] = pkg.Clone()
	}
	s.mu.Unlock()
}

// ApplyRemote 应用远端推送的记录。
// 修订号低于本地的陈旧回显会被丢弃，避免覆盖尚未同步完成的本地乐观状态。
func (s *ScannerService) ApplyRemote(pkg models.Package) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.index[pkg.TrackingNumber]; ok && pkg.Revision < existing.Revision {
		return false
	}
	s.index[pkg.TrackingNumber] = &pkg
	return true
}

// RemoveBatch 从索引删除一个批次的全部记录。
// 若删除的是当前活动批次，同时清除活动批次与扫描历史。
func (s *ScannerService) RemoveBatch(key models.BatchKey) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for tracking, pkg := range s.index {
		if key.Matches(pkg.BatchID) {
			delete(s.index, tracking)
			removed++
		}
	}

	if s.activeBatch != nil && s.activeBatch.Token() == key.Token() {
		s.activeBatch = nil
		s.history = nil
		s.lastScan = nil
	}
	return removed
}

// Snapshot 返回索引的只读快照
func (s *ScannerService) Snapshot() []models.Package {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pkgs := make([]models.Package, 0, len(s.index))
	for _, pkg := range s.index {
		pkgs = append(pkgs, *pkg)
	}
	return pkgs
}

// Size 返回索引记录数
func (s *ScannerService) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.index)
}

// ActiveBatch 返回当前活动批次
func (s *ScannerService) ActiveBatch() (models.BatchKey, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.activeBatch == nil {
		return models.BatchKey{}, false
	}
	return *s.activeBatch, true
}

// SetActiveBatch 切换活动批次；key 为 nil 表示取消选择。
// 切换会清空扫描历史，避免把上一批次的结果留在面板上。
func (s *ScannerService) SetActiveBatch(key *models.BatchKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if key == nil {
		s.activeBatch = nil
	} else {
		k := *key
		s.activeBatch = &k
	}
	s.history = nil
	s.lastScan = nil
}

// Stats 面板统计。选中活动批次时只统计该批次，否则统计全量。
func (s *ScannerService) Stats() models.DashboardStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	scanned := 0
	for _, pkg := range s.index {
		if s.activeBatch != nil && !s.activeBatch.Matches(pkg.BatchID) {
			continue
		}
		total++
		if pkg.Scanned() {
			scanned++
		}
	}

	progress := 0
	if total > 0 {
		progress = int(math.Round(float64(scanned) / float64(total) * 100))
	}
	return models.DashboardStats{
		Total:    total,
		Scanned:  scanned,
		Pending:  total - scanned,
		Progress: progress,
	}
}

// Batches 派生批次列表：按导入时间倒序，同刻按批次号字典序。
// 没有导入时间的批次排在最后。
func (s *ScannerService) Batches() []models.BatchSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	grouped := make(map[string]*models.BatchSummary)
	for _, pkg := range s.index {
		key := models.ParseBatchKey(pkg.BatchID)
		token := key.Token()
		summary, ok := grouped[token]
		if !ok {
			summary = &models.BatchSummary{
				BatchID: token,
				Label:   key.Label(),
			}
			grouped[token] = summary
		}

		summary.Total++
		if pkg.Scanned() {
			summary.Scanned++
		}
		if pkg.ImportedAt != nil && (summary.ImportedAt == nil || pkg.ImportedAt.Before(*summary.ImportedAt)) {
			at := *pkg.ImportedAt
			summary.ImportedAt = &at
		}
		if summary.VehicleNumber == "" && pkg.VehicleNumber != "" {
			summary.VehicleNumber = pkg.VehicleNumber
		}
	}

	summaries := make([]models.BatchSummary, 0, len(grouped))
	for _, summary := range grouped {
		summary.Pending = summary.Total - summary.Scanned
		summaries = append(summaries, *summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		left, right := summaries[i].ImportedAt, summaries[j].ImportedAt
		switch {
		case left == nil && right == nil:
			return summaries[i].BatchID < summaries[j].BatchID
		case left == nil:
			return false
		case right == nil:
			return true
		case left.Equal(*right):
			return summaries[i].BatchID < summaries[j].BatchID
		default:
			return left.After(*right)
		}
	})
	return summaries
}

// History 返回扫描历史（最新在前）
func (s *ScannerService) History() []models.ScanResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := make([]models.ScanResult, len(s.history))
	copy(history, s.history)
	return history
}

// LastScan 返回最近一次扫描结果
func (s *ScannerService) LastScan() *models.ScanResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastScan == nil {
		return nil
	}
	result := *s.lastScan
	return &result
}

// ResolveAndApply 执行一次扫描判定并在命中时完成状态迁移。
// 判定与迁移在同一把锁内完成，同一单号并发扫描只会产生一次 success。
// 所有结果都会进入历史并更新"最近一次扫描"。
func (s *ScannerService) ResolveAndApply(code, operatorID string) models.ScanResult {
	now := time.Now()
	cleanCode := strings.TrimSpace(code)

	s.mu.Lock()
	result := s.resolveLocked(cleanCode, operatorID, now)
	s.appendHistoryLocked(result)
	s.mu.Unlock()

	s.announce(result)
	return result
}

// resolveLocked 扫描判定算法本体，调用方需持有写锁
func (s *ScannerService) resolveLocked(cleanCode, operatorID string, now time.Time) models.ScanResult {
	if cleanCode == "" {
		return models.ScanResult{
			Timestamp: now,
			Outcome:   constants.ScanOutcomeError,
			Message:   "单号为空，无法判断",
		}
	}

	if s.activeBatch == nil {
		return models.ScanResult{
			Code:      cleanCode,
			Timestamp: now,
			Outcome:   constants.ScanOutcomeError,
			Message:   "请先在批次管理中选择要扫描的批次",
		}
	}

	pkg, ok := s.index[cleanCode]
	if !ok {
		return models.ScanResult{
			Code:      cleanCode,
			Timestamp: now,
			Outcome:   constants.ScanOutcomeError,
			Message:   "单号不存在，无法判断",
		}
	}

	if !s.activeBatch.Matches(pkg.BatchID) {
		vehicle := pkg.VehicleNumber
		if vehicle == "" {
			vehicle = constants.VehicleUnknownLabel
		}
		return models.ScanResult{
			Code:      cleanCode,
			Timestamp: now,
			Outcome:   constants.ScanOutcomeError,
			Message:   fmt.Sprintf("此单号属于其他批次（%s）", vehicle),
			Package:   pkg.Clone(),
		}
	}

	if pkg.Scanned() {
		return models.ScanResult{
			Code:      cleanCode,
			Timestamp: now,
			Outcome:   constants.ScanOutcomeDuplicate,
			Message:   "已扫描",
			Package:   pkg.Clone(),
		}
	}

	updated := pkg.Clone()
	updated.Status = constants.PackageStatusScanned
	scannedAt := now
	updated.ScannedAt = &scannedAt
	if operatorID != "" {
		updated.OperatorID = operatorID
	}
	updated.Revision = pkg.Revision + 1
	s.index[cleanCode] = updated

	return models.ScanResult{
		Code:      cleanCode,
		Timestamp: now,
		Outcome:   constants.ScanOutcomeSuccess,
		Message:   "扫描成功",
		Package:   updated.Clone(),
	}
}

func (s *ScannerService) appendHistoryLocked(result models.ScanResult) {
	s.history = append([]models.ScanResult{result}, s.history...)
	if len(s.history) > s.historySize {
		s.history = s.history[:s.historySize]
	}
	last := result
	s.lastScan = &last
}

// announce 按结果类型播报。播报失败不影响扫描状态。
func (s *ScannerService) announce(result models.ScanResult) {
	if s.speaker == nil {
		return
	}
	switch result.Outcome {
	case constants.ScanOutcomeSuccess:
		s.speaker.Speak(speech.ZoneSpeechText(result.Package.Zone, s.sepWord), constants.SpeechToneSuccess)
	case constants.ScanOutcomeDuplicate:
		s.speaker.Speak("重复扫描", constants.SpeechToneError)
	default:
		if result.Code == "" {
			s.speaker.Speak("无法判断", constants.SpeechToneError)
			return
		}
		if s.activeBatchMissing() {
			s.speaker.Speak("请先选择批次", constants.SpeechToneError)
			return
		}
		if result.Package != nil {
			s.speaker.Speak("不属于当前批次", constants.SpeechToneError)
			return
		}
		s.speaker.Speak("无法判断", constants.SpeechToneError)
	}
}

func (s *ScannerService) activeBatchMissing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeBatch == nil
}
