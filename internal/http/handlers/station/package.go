package station

import (
	"sort"
	"strconv"
	"strings"

	handlershared "github.com/fenjian-next/internal/http/handlers/shared"
	"github.com/fenjian-next/internal/http/response"
	"github.com/fenjian-next/internal/models"

	"github.com/gin-gonic/gin"
)

// Packages 包裹列表（内存索引快照，支持批次 / 状态 / 关键字过滤）
func (h *Handler) Packages(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	var batch *models.BatchKey
	if raw := strings.TrimSpace(c.Query("batch_id")); raw != "" {
		key := models.ParseBatchKey(raw)
		batch = &key
	}
	status := strings.TrimSpace(c.Query("status"))
	search := strings.TrimSpace(c.Query("search"))

	snapshot := h.ScannerService.Snapshot()
	filtered := make([]models.Package, 0, len(snapshot))
	for _, pkg := range snapshot {
		if batch != nil && !batch.Matches(pkg.BatchID) {
			continue
		}
		if status != "" && pkg.Status != status {
			continue
		}
		if search != "" &&
			!strings.Contains(pkg.TrackingNumber, search) &&
			!strings.Contains(pkg.Zone, search) &&
			!strings.Contains(pkg.StoreName, search) {
			continue
		}
		filtered = append(filtered, pkg)
	}
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].TrackingNumber < filtered[j].TrackingNumber
	})

	start := (page - 1) * pageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	end := start + pageSize
	if end > len(filtered) {
		end = len(filtered)
	}

	pagination := response.NewPagination(page, pageSize, int64(len(filtered)))
	response.SuccessWithPage(c, filtered[start:end], pagination)
}
