package constants

// 包裹状态常量
const (
	PackageStatusPending = "pending"
	PackageStatusScanned = "scanned"
)

// 扫描结果类型常量
const (
	ScanOutcomeSuccess   = "success"
	ScanOutcomeDuplicate = "duplicate"
	ScanOutcomeError     = "error"
)

// 连接状态常量
const (
	ConnStatusSyncing = "syncing"
	ConnStatusOnline  = "online"
	ConnStatusOffline = "offline"
)

// 批次常量
const (
	// BatchUnassignedToken 未知批次在 API 参数中的标识
	BatchUnassignedToken = "unassigned"
	// BatchUnassignedLabel 未知批次的展示名称
	BatchUnassignedLabel = "未知批次"
	// VehicleUnknownLabel 未知车辆的展示名称
	VehicleUnknownLabel = "未知车辆"
)

// 扫描历史上限
const ScanHistoryLimit = 50

// 语音播报音色常量
const (
	SpeechToneSuccess = "success"
	SpeechToneError   = "error"
)

// 队列名称常量
const (
	QueueDefault = "default"
)

// 异步任务类型常量
const (
	TaskRemoteUpsert      = "replica:upsert"
	TaskRemoteBatchDelete = "replica:batch_delete"
)

// 状态展示标签
const (
	StatusLabelScanned = "已扫描"
	StatusLabelPending = "未扫描"
)
