package repository

import (
	"errors"

	"github.com/fenjian-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PackageRepository 包裹本地持久化接口（站点本机库）
type PackageRepository interface {
	GetAll() ([]models.Package, error)
	GetByTracking(trackingNumber string) (*models.Package, error)
	Save(pkg *models.Package) error
	SaveAll(pkgs []*models.Package) error
	Clear() error
	ReplaceAll(pkgs []*models.Package) error
}

// GormPackageRepository GORM 实现
type GormPackageRepository struct {
	db *gorm.DB
}

// NewPackageRepository 创建包裹仓库
func NewPackageRepository(db *gorm.DB) *GormPackageRepository {
	return &GormPackageRepository{db: db}
}

// GetAll 读取全部记录
func (r *GormPackageRepository) GetAll() ([]models.Package, error) {
	var pkgs []models.Package
	if err := r.db.Find(&pkgs).Error; err != nil {
		return nil, err
	}
	return pkgs, nil
}

// GetByTracking 按单号读取单条记录
func (r *GormPackageRepository) GetByTracking(trackingNumber string) (*models.Package, error) {
	var pkg models.Package
	if err := r.db.Where("tracking_number = ?", trackingNumber).First(&pkg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pkg, nil
}

// Save 写入单条记录，已存在则整行覆盖
func (r *GormPackageRepository) Save(pkg *models.Package) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tracking_number"}},
		UpdateAll: true,
	}).Create(pkg).Error
}

// SaveAll 批量写入记录，已存在则整行覆盖
func (r *GormPackageRepository) SaveAll(pkgs []*models.Package) error {
	if len(pkgs) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tracking_number"}},
		UpdateAll: true,
	}).CreateInBatches(pkgs, 200).Error
}

// Clear 清空本地库
func (r *GormPackageRepository) Clear() error {
	return r.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Package{}).Error
}

// ReplaceAll 清空后整库重写。
// 删除批次时用它覆盖"整个本地库都属于被删批次"的情况。
func (r *GormPackageRepository) ReplaceAll(pkgs []*models.Package) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Package{}).Error; err != nil {
			return err
		}
		if len(pkgs) == 0 {
			return nil
		}
		return tx.CreateInBatches(pkgs, 200).Error
	})
}
