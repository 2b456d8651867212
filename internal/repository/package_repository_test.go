package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/fenjian-next/internal/constants"
	"github.com/fenjian-next/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupPackageRepo(t *testing.T) PackageRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:package_repository_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Package{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewPackageRepository(db)
}

func TestSaveUpsertsByTrackingNumber(t *testing.T) {
	repo := setupPackageRepo(t)

	pkg := &models.Package{TrackingNumber: "SF100", Zone: "10-1", Status: constants.PackageStatusPending, Revision: 1}
	if err := repo.Save(pkg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	pkg.Status = constants.PackageStatusScanned
	pkg.Revision = 2
	if err := repo.Save(pkg); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	got, err := repo.GetByTracking("SF100")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil || got.Status != constants.PackageStatusScanned || got.Revision != 2 {
		t.Fatalf("unexpected record: %+v", got)
	}

	all, err := repo.GetAll()
	if err != nil || len(all) != 1 {
		t.Fatalf("expected single record, got %d (%v)", len(all), err)
	}
}

func TestGetByTrackingNotFound(t *testing.T) {
	repo := setupPackageRepo(t)
	got, err := repo.GetByTracking("missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing record, got %+v", got)
	}
}

func TestReplaceAll(t *testing.T) {
	repo := setupPackageRepo(t)

	if err := repo.SaveAll([]*models.Package{
		{TrackingNumber: "A1", Zone: "10-1", Status: constants.PackageStatusPending},
		{TrackingNumber: "A2", Zone: "10-2", Status: constants.PackageStatusPending},
	}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	if err := repo.ReplaceAll([]*models.Package{
		{TrackingNumber: "B1", Zone: "11-1", Status: constants.PackageStatusPending},
	}); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	all, err := repo.GetAll()
	if err != nil || len(all) != 1 {
		t.Fatalf("expected single record after replace, got %d (%v)", len(all), err)
	}
	if all[0].TrackingNumber != "B1" {
		t.Fatalf("unexpected survivor: %s", all[0].TrackingNumber)
	}

	// 替换为空集合等价于清空
	if err := repo.ReplaceAll(nil); err != nil {
		t.Fatalf("replace with empty failed: %v", err)
	}
	all, err = repo.GetAll()
	if err != nil || len(all) != 0 {
		t.Fatalf("expected empty table, got %d (%v)", len(all), err)
	}
}

func TestClear(t *testing.T) {
	repo := setupPackageRepo(t)

	if err := repo.SaveAll([]*models.Package{
		{TrackingNumber: "A1", Zone: "10-1", Status: constants.PackageStatusPending},
	}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if err := repo.Clear(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	all, err := repo.GetAll()
	if err != nil || len(all) != 0 {
		t.Fatalf("expected empty table after clear, got %d (%v)", len(all), err)
	}
}
