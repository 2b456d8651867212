package station

import (
	"net/url"
	"strings"

	"github.com/fenjian-next/internal/http/response"
	"github.com/fenjian-next/internal/models"
	"github.com/fenjian-next/internal/service"

	"github.com/gin-gonic/gin"
)

// Export 导出 CSV 报表。
// scope: all / scanned / pending；batch_id 限定单个批次。
func (h *Handler) Export(c *gin.Context) {
	scope := c.DefaultQuery("scope", service.ExportScopeAll)

	var batch *models.BatchKey
	if raw := strings.TrimSpace(c.Query("batch_id")); raw != "" {
		key := models.ParseBatchKey(raw)
		batch = &key
	}

	file, err := h.ExportService.CSV(scope, batch)
	if err != nil {
		respondError(c, response.CodeBadRequest, err.Error(), nil)
		return
	}

	encoded := url.PathEscape(file.Filename)
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encoded)
	c.Data(200, "text/csv; charset=utf-8", file.Content)
}
