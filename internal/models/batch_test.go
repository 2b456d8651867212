package models

import (
	"strings"
	"testing"
	"time"
)

func TestParseBatchKey(t *testing.T) {
	for _, raw := range []string{"", "  ", "unassigned", "未知批次"} {
		key := ParseBatchKey(raw)
		if key.Known() {
			t.Fatalf("ParseBatchKey(%q) should be unassigned", raw)
		}
		if !key.Matches("") || key.Matches("b1") {
			t.Fatalf("unassigned key matching broken for %q", raw)
		}
		if key.Token() != "unassigned" || key.Label() != "未知批次" {
			t.Fatalf("unexpected token/label: %s / %s", key.Token(), key.Label())
		}
	}

	key := ParseBatchKey(" 粤B12345_080000 ")
	if !key.Known() || key.ID() != "粤B12345_080000" {
		t.Fatalf("unexpected known key: %+v", key)
	}
	if !key.Matches("粤B12345_080000") || key.Matches("") {
		t.Fatalf("known key matching broken")
	}
}

func TestNewBatchID(t *testing.T) {
	at := time.Date(2026, 9, 1, 8, 15, 30, 0, time.Local)
	if got := NewBatchID("粤B12345", at); got != "粤B12345_081530" {
		t.Fatalf("unexpected batch id: %s", got)
	}
	if got := NewBatchID("  ", at); got != "NOPLATE_081530" {
		t.Fatalf("unexpected fallback batch id: %s", got)
	}
}

func TestNewImportedRecords(t *testing.T) {
	meta := BatchMeta{
		BatchID:       "粤B12345_081530",
		VehicleNumber: "粤B12345",
		ImportedAt:    time.Now(),
	}
	records := NewImportedRecords([]ImportRow{
		{TrackingNumber: " SF100 ", Zone: " 10-1 ", StoreName: " 华强北店 "},
		{TrackingNumber: "", Zone: "", StoreName: ""},
	}, meta)

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first.TrackingNumber != "SF100" || first.Zone != "10-1" || first.StoreName != "华强北店" {
		t.Fatalf("fields not trimmed: %+v", first)
	}
	if first.Status != "pending" || first.Revision != 1 || first.BatchID != meta.BatchID {
		t.Fatalf("unexpected defaults: %+v", first)
	}
	if first.ImportedAt == nil {
		t.Fatalf("expected imported_at set")
	}

	second := records[1]
	if !second.IsEmptyTracking || !strings.HasPrefix(second.TrackingNumber, "EMPTY_") {
		t.Fatalf("expected surrogate tracking, got %+v", second)
	}
	if second.Zone != "未分配区域" || second.StoreName != "未知门店" {
		t.Fatalf("expected label defaults, got %+v", second)
	}

	// 两条空单号行不会撞出同一个替代单号
	more := NewImportedRecords([]ImportRow{{}, {}}, meta)
	if more[0].TrackingNumber == more[1].TrackingNumber {
		t.Fatalf("surrogate tracking numbers must be unique")
	}
}
