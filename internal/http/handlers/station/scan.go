package station

import (
	"github.com/fenjian-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ScanRequest 扫描请求
type ScanRequest struct {
	Code string `json:"code"`
}

// Scan 处理一次扫描输入。
// 判定结果总是以 200 返回，错误类结果承载在 outcome / message 中。
func (h *Handler) Scan(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	operator := ""
	if value, ok := c.Get("username"); ok {
		if name, ok := value.(string); ok {
			operator = name
		}
	}

	result := h.SyncService.Scan(req.Code, operator)
	response.Success(c, result)
}

// ScanHistory 最近扫描记录（最新在前）
func (h *Handler) ScanHistory(c *gin.Context) {
	response.Success(c, h.ScannerService.History())
}

// LastScan 最近一次扫描结果
func (h *Handler) LastScan(c *gin.Context) {
	last := h.ScannerService.LastScan()
	if last == nil {
		response.Success(c, nil)
		return
	}
	response.Success(c, last)
}

// Stats 当前批次的扫描进度
func (h *Handler) Stats(c *gin.Context) {
	response.Success(c, h.ScannerService.Stats())
}

// SyncStatus 同步连接状态
func (h *Handler) SyncStatus(c *gin.Context) {
	response.Success(c, gin.H{
		"status":     h.SyncService.Status(),
		"queue_size": h.SyncService.QueueLen(),
	})
}
