package replica

import (
	"context"

	"github.com/fenjian-next/internal/models"
)

// Store 远端副本库访问接口。
// 远端是最终一致的镜像：调用可能失败或超时，失败语义与断网等同。
type Store interface {
	// FetchAll 拉取远端全量记录
	FetchAll(ctx context.Context) ([]models.Package, error)
	// UpdateByTracking 按单号下发扫描增量
	UpdateByTracking(ctx context.Context, trackingNumber string, patch models.ScanPatch) error
	// Upsert 批量写入，按 tracking_number 冲突时覆盖
	Upsert(ctx context.Context, pkgs []*models.Package) error
	// DeleteBatch 删除一个批次的全部记录（未知批次按 batch_id 为空匹配）
	DeleteBatch(ctx context.Context, key models.BatchKey) error
}

// ChangeEventInsert / ChangeEventUpdate 变更事件类型
const (
	ChangeEventInsert = "insert"
	ChangeEventUpdate = "update"
)

// ChangeEvent 远端推送的变更事件
type ChangeEvent struct {
	Event  string         `json:"event"` // insert / update
	Record models.Package `json:"record"`
}

// ChangeFeed 变更推送通道。
// Subscribe 阻塞消费直到 ctx 取消或通道出错；onStatus 上报订阅生命周期。
type ChangeFeed interface {
	Publish(ctx context.Context, event ChangeEvent) error
	Subscribe(ctx context.Context, handler func(ChangeEvent), onStatus func(subscribed bool)) error
}
