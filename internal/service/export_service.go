package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/fenjian-next/internal/constants"
	"github.com/fenjian-next/internal/models"
)

// 导出范围
const (
	ExportScopeAll     = "all"
	ExportScopeScanned = "scanned"
	ExportScopePending = "pending"
)

// ExportService 报表导出
type ExportService struct {
	scanner *ScannerService
}

// NewExportService 创建导出服务
func NewExportService(scanner *ScannerService) *ExportService {
	return &ExportService{scanner: scanner}
}

// ExportFile 导出产物
type ExportFile struct {
	Filename string
	Content  []byte
}

// CSV 按范围导出 CSV 报表；batch 非 nil 时限定到单个批次。
// 内容带 UTF-8 BOM，便于表格软件直接识别中文。
func (s *ExportService) CSV(scope string, batch *models.BatchKey) (*ExportFile, error) {
	snapshot := s.scanner.Snapshot()

	rows := make([]models.Package, 0, len(snapshot))
	for _, pkg := range snapshot {
		if batch != nil && !batch.Matches(pkg.BatchID) {
			continue
		}
		switch scope {
		case ExportScopeScanned:
			if pkg.Status != constants.PackageStatusScanned {
				continue
			}
		case ExportScopePending:
			if pkg.Status != constants.PackageStatusPending {
				continue
			}
		case ExportScopeAll:
		default:
			return nil, fmt.Errorf("未知的导出范围: %s", scope)
		}
		rows = append(rows, pkg)
	}

	var buf bytes.Buffer
	buf.WriteString("\xEF\xBB\xBF")
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"单号", "分区", "门店", "状态", "扫描时间"}); err != nil {
		return nil, err
	}
	for _, pkg := range rows {
		tracking := pkg.TrackingNumber
		if pkg.IsEmptyTracking {
			tracking = ""
		}
		scannedAt := ""
		if pkg.ScannedAt != nil {
			scannedAt = pkg.ScannedAt.Format("2006-01-02 15:04:05")
		}
		if err := w.Write([]string{tracking, pkg.Zone, pkg.StoreName, statusLabel(pkg.Status), scannedAt}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return &ExportFile{
		Filename: exportFilename(scope, batch, time.Now()),
		Content:  buf.Bytes(),
	}, nil
}

func statusLabel(status string) string {
	if status == constants.PackageStatusScanned {
		return constants.StatusLabelScanned
	}
	return constants.StatusLabelPending
}

func exportFilename(scope string, batch *models.BatchKey, at time.Time) string {
	date := at.Format("2006-01-02")
	if batch != nil {
		return fmt.Sprintf("批次报表_%s_%s.csv", batch.Label(), date)
	}
	switch scope {
	case ExportScopeScanned:
		return fmt.Sprintf("已扫描报表_%s.csv", date)
	case ExportScopePending:
		return fmt.Sprintf("未扫描报表_%s.csv", date)
	default:
		return fmt.Sprintf("分拣报表_%s.csv", date)
	}
}
