package main

import (
	"fmt"
	"time"

	"github.com/fenjian-next/internal/config"
	"github.com/fenjian-next/internal/logger"
	"github.com/fenjian-next/internal/models"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if err := models.InitDB(cfg.Database.DSN); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	now := time.Now()

	// 示例批次一：粤B12345 早班车
	morning := models.BatchMeta{
		BatchID:       models.NewBatchID("粤B12345", now.Add(-2*time.Hour)),
		VehicleNumber: "粤B12345",
		ImportedAt:    now.Add(-2 * time.Hour),
	}
	morningRows := []models.ImportRow{
		{TrackingNumber: "SF1001", Zone: "10-1", StoreName: "华强北店"},
		{TrackingNumber: "SF1002", Zone: "10-2", StoreName: "华强北店"},
		{TrackingNumber: "SF1003", Zone: "11-1", StoreName: "南山店"},
		{TrackingNumber: "", Zone: "11-2", StoreName: "南山店"},
	}

	// 示例批次二：粤B67890 午班车
	noon := models.BatchMeta{
		BatchID:       models.NewBatchID("粤B67890", now.Add(-30*time.Minute)),
		VehicleNumber: "粤B67890",
		ImportedAt:    now.Add(-30 * time.Minute),
	}
	noonRows := []models.ImportRow{
		{TrackingNumber: "YT2001", Zone: "12-1", StoreName: "福田店"},
		{TrackingNumber: "YT2002", Zone: "12-3", StoreName: "福田店"},
	}

	total := 0
	for _, batch := range []struct {
		meta models.BatchMeta
		rows []models.ImportRow
	}{
		{morning, morningRows},
		{noon, noonRows},
	} {
		records := models.NewImportedRecords(batch.rows, batch.meta)
		for _, record := range records {
			if err := models.DB.Create(record).Error; err != nil {
				stdLog.Fatalf("Failed to seed package %s: %v", record.TrackingNumber, err)
			}
		}
		total += len(records)
		fmt.Printf("批次 %s 已写入 %d 条记录\n", batch.meta.BatchID, len(records))
	}

	fmt.Printf("示例数据写入完成，共 %d 条\n", total)
}
