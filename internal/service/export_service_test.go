package service

import (
	"strings"
	"testing"
	"time"

	"github.com/fenjian-next/internal/config"
	"github.com/fenjian-next/internal/constants"
	"github.com/fenjian-next/internal/models"
)

func setupExportTest(t *testing.T) (*ExportService, *ScannerService) {
	t.Helper()
	scanner := NewScannerService(config.ScanConfig{}, nil)
	scannedAt := time.Date(2026, 9, 1, 10, 30, 0, 0, time.Local)
	importedAt := time.Now()
	scanner.UpsertMany([]*models.Package{
		{TrackingNumber: "SF100", Zone: "10-1", StoreName: "华强北店", Status: constants.PackageStatusScanned, ScannedAt: &scannedAt, BatchID: "b1", ImportedAt: &importedAt},
		{TrackingNumber: "SF200", Zone: "10-2", StoreName: "南山店", Status: constants.PackageStatusPending, BatchID: "b1", ImportedAt: &importedAt},
		{TrackingNumber: "EMPTY_abc", Zone: "11-1", StoreName: "福田店", Status: constants.PackageStatusPending, BatchID: "b2", IsEmptyTracking: true, ImportedAt: &importedAt},
	})
	return NewExportService(scanner), scanner
}

func TestExportCSVAll(t *testing.T) {
	svc, _ := setupExportTest(t)

	file, err := svc.CSV(ExportScopeAll, nil)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !strings.HasPrefix(file.Filename, "分拣报表_") || !strings.HasSuffix(file.Filename, ".csv") {
		t.Fatalf("unexpected filename: %s", file.Filename)
	}

	content := string(file.Content)
	if !strings.HasPrefix(content, "\xEF\xBB\xBF") {
		t.Fatalf("expected UTF-8 BOM prefix")
	}
	if !strings.Contains(content, "单号,分区,门店,状态,扫描时间") {
		t.Fatalf("missing header row: %s", content)
	}
	if !strings.Contains(content, "SF100,10-1,华强北店,已扫描,2026-09-01 10:30:00") {
		t.Fatalf("missing scanned row: %s", content)
	}
	if !strings.Contains(content, "SF200,10-2,南山店,未扫描,") {
		t.Fatalf("missing pending row: %s", content)
	}
	// 空单号行导出时单号留空
	if strings.Contains(content, "EMPTY_abc") {
		t.Fatalf("surrogate tracking number must not leak into export")
	}
}

func TestExportCSVScopes(t *testing.T) {
	svc, _ := setupExportTest(t)

	scanned, err := svc.CSV(ExportScopeScanned, nil)
	if err != nil {
		t.Fatalf("scanned export failed: %v", err)
	}
	if !strings.HasPrefix(scanned.Filename, "已扫描报表_") {
		t.Fatalf("unexpected scanned filename: %s", scanned.Filename)
	}
	if strings.Contains(string(scanned.Content), "SF200") {
		t.Fatalf("pending row leaked into scanned export")
	}

	pending, err := svc.CSV(ExportScopePending, nil)
	if err != nil {
		t.Fatalf("pending export failed: %v", err)
	}
	if !strings.HasPrefix(pending.Filename, "未扫描报表_") {
		t.Fatalf("unexpected pending filename: %s", pending.Filename)
	}
	if strings.Contains(string(pending.Content), "SF100,") {
		t.Fatalf("scanned row leaked into pending export")
	}

	if _, err := svc.CSV("bogus", nil); err == nil {
		t.Fatalf("expected error for unknown scope")
	}
}

func TestExportCSVBatchFilter(t *testing.T) {
	svc, _ := setupExportTest(t)

	key := models.KnownBatch("b2")
	file, err := svc.CSV(ExportScopeAll, &key)
	if err != nil {
		t.Fatalf("batch export failed: %v", err)
	}
	if !strings.HasPrefix(file.Filename, "批次报表_") {
		t.Fatalf("unexpected batch filename: %s", file.Filename)
	}
	content := string(file.Content)
	if strings.Contains(content, "SF100") || strings.Contains(content, "SF200") {
		t.Fatalf("other batch rows leaked into batch export")
	}
	if !strings.Contains(content, "福田店") {
		t.Fatalf("batch rows missing from export")
	}
}
