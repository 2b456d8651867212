package models

import (
	"strings"
	"time"

	"github.com/fenjian-next/internal/constants"
)

// BatchKey 批次键：已知批次或未知批次。
// 未知批次归集所有没有 batch_id 的记录，避免用魔法字符串做特判。
type BatchKey struct {
	id    string
	known bool
}

// KnownBatch 构建已知批次键
func KnownBatch(id string) BatchKey {
	return BatchKey{id: strings.TrimSpace(id), known: true}
}

// UnassignedBatch 构建未知批次键
func UnassignedBatch() BatchKey {
	return BatchKey{}
}

// ParseBatchKey 从 API 参数解析批次键。
// 空串、"unassigned" 与历史展示名都归一到未知批次。
func ParseBatchKey(raw string) BatchKey {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == constants.BatchUnassignedToken || trimmed == constants.BatchUnassignedLabel {
		return UnassignedBatch()
	}
	return KnownBatch(trimmed)
}

// Known 是否为已知批次
func (k BatchKey) Known() bool {
	return k.known
}

// ID 已知批次的批次号；未知批次返回空串
func (k BatchKey) ID() string {
	return k.id
}

// Matches 判断记录的 batch_id 是否属于该批次
func (k BatchKey) Matches(batchID string) bool {
	if !k.known {
		return strings.TrimSpace(batchID) == ""
	}
	return batchID == k.id
}

// Token 返回 API 参数形式
func (k BatchKey) Token() string {
	if !k.known {
		return constants.BatchUnassignedToken
	}
	return k.id
}

// Label 返回展示名称
func (k BatchKey) Label() string {
	if !k.known {
		return constants.BatchUnassignedLabel
	}
	return k.id
}

// BatchSummary 一个批次的聚合信息
type BatchSummary struct {
	BatchID       string     `json:"batch_id"` // Token 形式，未知批次为 "unassigned"
	Label         string     `json:"label"`
	VehicleNumber string     `json:"vehicle_number"`
	ImportedAt    *time.Time `json:"imported_at"`
	Total         int        `json:"total"`
	Scanned       int        `json:"scanned"`
	Pending       int        `json:"pending"`
}
