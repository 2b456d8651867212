package queue

import (
	"encoding/json"

	"github.com/fenjian-next/internal/constants"
	"github.com/fenjian-next/internal/models"

	"github.com/hibiken/asynq"
)

const (
	// TaskRemoteUpsert 云端批量写入补偿任务
	TaskRemoteUpsert = constants.TaskRemoteUpsert
	// TaskRemoteBatchDelete 云端批次删除补偿任务
	TaskRemoteBatchDelete = constants.TaskRemoteBatchDelete
)

// RemoteUpsertPayload 云端写入任务载荷
type RemoteUpsertPayload struct {
	Records []models.Package `json:"records"`
}

// RemoteBatchDeletePayload 云端批次删除任务载荷
type RemoteBatchDeletePayload struct {
	BatchToken string `json:"batch_token"`
}

// NewRemoteUpsertTask 创建云端写入补偿任务
func NewRemoteUpsertTask(payload RemoteUpsertPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRemoteUpsert, body), nil
}

// NewRemoteBatchDeleteTask 创建云端批次删除补偿任务
func NewRemoteBatchDeleteTask(payload RemoteBatchDeletePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRemoteBatchDelete, body), nil
}
