package models

import (
	"strings"
	"time"

	"github.com/fenjian-next/internal/constants"

	"github.com/google/uuid"
)

// Package 包裹记录
// 本地库与远端副本库共用同一张表结构，以 tracking_number 为主键。
type Package struct {
	TrackingNumber  string     `gorm:"primarykey;type:varchar(64)" json:"tracking_number"`                     // 单号（主键）
	Zone            string     `gorm:"type:varchar(60);not null" json:"zone"`                                  // 分区
	StoreName       string     `gorm:"type:varchar(120)" json:"store_name"`                                    // 门店
	Status          string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`        // pending / scanned
	ScannedAt       *time.Time `json:"scanned_at"`                                                             // 扫描时间
	ImportedAt      *time.Time `gorm:"index" json:"imported_at"`                                               // 导入时间
	OperatorID      string     `gorm:"type:varchar(64)" json:"operator_id"`                                    // 扫描操作员
	VehicleNumber   string     `gorm:"type:varchar(32)" json:"vehicle_number"`                                 // 车牌号
	BatchID         string     `gorm:"type:varchar(64);index" json:"batch_id"`                                 // 批次ID，空串表示未知批次
	IsEmptyTracking bool       `gorm:"default:false" json:"is_empty_tracking"`                                 // 是否为空单号行
	Revision        int64      `gorm:"default:0" json:"revision"`                                              // 本地修订号，远端回显只升不降
	UpdatedAt       time.Time  `json:"updated_at"`                                                             // 更新时间
}

// TableName 指定表名
func (Package) TableName() string {
	return "packages"
}

// Clone 返回记录的副本，供展示层只读使用
func (p *Package) Clone() *Package {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

// Scanned 判断是否已扫描
func (p *Package) Scanned() bool {
	return p != nil && p.Status == constants.PackageStatusScanned
}

// ScanPatch 一次扫描产生的远端增量
type ScanPatch struct {
	Status     string     `json:"status"`
	ScannedAt  *time.Time `json:"scanned_at"`
	OperatorID string     `json:"operator_id"`
	Revision   int64      `json:"revision"`
}

// ImportRow 导入输入行，由解析层归一化列名后传入
type ImportRow struct {
	TrackingNumber string `json:"tracking_number"`
	Zone           string `json:"zone"`
	StoreName      string `json:"store_name"`
}

// BatchMeta 一次导入的批次元信息
type BatchMeta struct {
	BatchID       string
	VehicleNumber string
	ImportedAt    time.Time
}

const (
	defaultZoneLabel  = "未分配区域"
	defaultStoreLabel = "未知门店"
)

// NewImportedRecords 在导入边界构建校验过的包裹记录。
// 空单号行会获得合成的唯一替代单号并打上空单号标记，状态统一初始化为 pending。
func NewImportedRecords(rows []ImportRow, meta BatchMeta) []*Package {
	importedAt := meta.ImportedAt
	if importedAt.IsZero() {
		importedAt = time.Now()
	}

	records := make([]*Package, 0, len(rows))
	for _, row := range rows {
		tracking := strings.TrimSpace(row.TrackingNumber)
		isEmpty := tracking == ""
		if isEmpty {
			tracking = "EMPTY_" + uuid.NewString()
		}

		zone := strings.TrimSpace(row.Zone)
		if zone == "" {
			zone = defaultZoneLabel
		}
		store := strings.TrimSpace(row.StoreName)
		if store == "" {
			store = defaultStoreLabel
		}

		at := importedAt
		records = append(records, &Package{
			TrackingNumber:  tracking,
			Zone:            zone,
			StoreName:       store,
			Status:          constants.PackageStatusPending,
			ImportedAt:      &at,
			VehicleNumber:   strings.TrimSpace(meta.VehicleNumber),
			BatchID:         strings.TrimSpace(meta.BatchID),
			IsEmptyTracking: isEmpty,
			Revision:        1,
		})
	}
	return records
}

// NewBatchID 生成批次标识：车牌号 + 导入时刻
func NewBatchID(vehicleNumber string, at time.Time) string {
	vehicle := strings.TrimSpace(vehicleNumber)
	if vehicle == "" {
		vehicle = "NOPLATE"
	}
	return vehicle + "_" + at.Format("150405")
}
