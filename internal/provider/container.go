package provider

import (
	"github.com/fenjian-next/internal/cache"
	"github.com/fenjian-next/internal/config"
	"github.com/fenjian-next/internal/logger"
	"github.com/fenjian-next/internal/models"
	"github.com/fenjian-next/internal/queue"
	"github.com/fenjian-next/internal/replica"
	"github.com/fenjian-next/internal/repository"
	"github.com/fenjian-next/internal/service"
	"github.com/fenjian-next/internal/speech"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	PackageRepo  repository.PackageRepository
	OperatorRepo repository.OperatorRepository

	// 远端副本
	ReplicaStore replica.Store
	ChangeFeed   replica.ChangeFeed

	// Services
	AuthService     *service.AuthService
	OperatorService *service.OperatorService
	ScannerService  *service.ScannerService
	SyncService     *service.SyncService
	ImportService   *service.ImportService
	ExportService   *service.ExportService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.initRepositories()
	c.initReplica()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.PackageRepo = repository.NewPackageRepository(db)
	c.OperatorRepo = repository.NewOperatorRepository(db)
}

func (c *Container) initReplica() {
	if !c.Config.Replica.Enabled {
		logger.Infow("replica_disabled_local_only")
		return
	}
	var feed replica.ChangeFeed
	if cache.Enabled() {
		feed = replica.NewRedisFeed(cache.Client(), c.Config.Replica.Channel)
	}

	store, err := replica.NewPostgresStore(c.Config.Replica, feed)
	if err != nil {
		logger.Errorw("provider_init_replica_failed", "error", err)
		return
	}
	c.ReplicaStore = store
	c.ChangeFeed = feed
}

func (c *Container) initServices() {
	c.AuthService = service.NewAuthService(c.Config, c.OperatorRepo)
	c.OperatorService = service.NewOperatorService(c.OperatorRepo, c.AuthService)

	speaker := speech.NewLogSpeaker()
	c.ScannerService = service.NewScannerService(c.Config.Scan, speaker)
	c.SyncService = service.NewSyncService(c.Config.Sync, c.ScannerService, c.PackageRepo, c.ReplicaStore, c.ChangeFeed)
	c.ImportService = service.NewImportService(c.ScannerService, c.PackageRepo, c.ReplicaStore, c.QueueClient)
	c.ExportService = service.NewExportService(c.ScannerService)
}
