package worker

import (
	"context"
	"encoding/json"

	"github.com/fenjian-next/internal/logger"
	"github.com/fenjian-next/internal/models"
	"github.com/fenjian-next/internal/provider"
	"github.com/fenjian-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskRemoteUpsert, c.handleRemoteUpsert)
	mux.HandleFunc(queue.TaskRemoteBatchDelete, c.handleRemoteBatchDelete)
}

func (c *Consumer) handleRemoteUpsert(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.RemoteUpsertPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_remote_upsert_unmarshal_failed", "error", err)
		return err
	}
	if len(payload.Records) == 0 {
		logger.Debugw("worker_remote_upsert_skip_empty")
		return nil
	}
	if c.ReplicaStore == nil {
		logger.Warnw("worker_remote_upsert_skip_store_nil")
		return nil
	}
	records := make([]*models.Package, len(payload.Records))
	for i := range payload.Records {
		records[i] = &payload.Records[i]
	}
	if err := c.ReplicaStore.Upsert(ctx, records); err != nil {
		logger.Warnw("worker_remote_upsert_failed", "count", len(records), "error", err)
		return err
	}
	logger.Infow("worker_remote_upsert_ok", "count", len(records))
	return nil
}

func (c *Consumer) handleRemoteBatchDelete(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.RemoteBatchDeletePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_remote_batch_delete_unmarshal_failed", "error", err)
		return err
	}
	if c.ReplicaStore == nil {
		logger.Warnw("worker_remote_batch_delete_skip_store_nil")
		return nil
	}
	key := models.ParseBatchKey(payload.BatchToken)
	if err := c.ReplicaStore.DeleteBatch(ctx, key); err != nil {
		logger.Warnw("worker_remote_batch_delete_failed", "batch_id", key.Token(), "error", err)
		return err
	}
	logger.Infow("worker_remote_batch_delete_ok", "batch_id", key.Token())
	return nil
}
