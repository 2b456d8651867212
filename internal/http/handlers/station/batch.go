package station

import (
	"errors"

	"github.com/fenjian-next/internal/http/response"
	"github.com/fenjian-next/internal/models"
	"github.com/fenjian-next/internal/service"

	"github.com/gin-gonic/gin"
)

// Batches 批次列表（按导入时间倒序）
func (h *Handler) Batches(c *gin.Context) {
	response.Success(c, h.ScannerService.Batches())
}

// ActiveBatch 当前选中的批次
func (h *Handler) ActiveBatch(c *gin.Context) {
	key, ok := h.ScannerService.ActiveBatch()
	if !ok {
		response.Success(c, nil)
		return
	}
	response.Success(c, gin.H{
		"batch_id": key.Token(),
		"label":    key.Label(),
	})
}

// SetActiveBatchRequest 切换批次请求
type SetActiveBatchRequest struct {
	BatchID *string `json:"batch_id"` // null 表示清除选择
}

// SetActiveBatch 切换当前批次，历史与最近结果同时清空
func (h *Handler) SetActiveBatch(c *gin.Context) {
	var req SetActiveBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	if req.BatchID == nil {
		h.ScannerService.SetActiveBatch(nil)
		response.SuccessWithMsg(c, "已清除批次选择", nil)
		return
	}
	key := models.ParseBatchKey(*req.BatchID)
	h.ScannerService.SetActiveBatch(&key)
	response.SuccessWithMsg(c, "已切换批次", gin.H{"batch_id": key.Token()})
}

// ImportRequest 批次导入请求
type ImportRequest struct {
	VehicleNumber string             `json:"vehicle_number"`
	Rows          []models.ImportRow `json:"rows" binding:"required"`
}

// ImportBatch 导入一车包裹
func (h *Handler) ImportBatch(c *gin.Context) {
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	result, err := h.ImportService.Import(c.Request.Context(), req.Rows, req.VehicleNumber)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyImport):
			respondError(c, response.CodeBadRequest, err.Error(), nil)
		case errors.Is(err, service.ErrRemoteSync):
			// 本地导入已完成，仅云端待补偿
			response.SuccessWithMsg(c, err.Error(), result)
		default:
			respondError(c, response.CodeInternal, "导入失败", err)
		}
		return
	}
	response.Success(c, result)
}

// DeleteBatch 删除一个批次
func (h *Handler) DeleteBatch(c *gin.Context) {
	key := models.ParseBatchKey(c.Param("id"))

	removed, err := h.ImportService.DeleteBatch(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, service.ErrRemoteSync) {
			response.SuccessWithMsg(c, err.Error(), gin.H{"removed": removed})
			return
		}
		respondError(c, response.CodeInternal, "删除批次失败", err)
		return
	}
	response.Success(c, gin.H{"removed": removed})
}
