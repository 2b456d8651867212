package router

import (
	"fmt"
	"strings"

	"github.com/fenjian-next/internal/cache"
	"github.com/fenjian-next/internal/config"
	adminhandlers "github.com/fenjian-next/internal/http/handlers/admin"
	stationhandlers "github.com/fenjian-next/internal/http/handlers/station"
	"github.com/fenjian-next/internal/logger"
	"github.com/fenjian-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	stationHandler := stationhandlers.New(c)
	adminHandler := adminhandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "fj"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// 认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("username")), stationHandler.Login)
		}

		// 扫描站接口（需鉴权）
		station := apiV1.Group("")
		station.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.OperatorRepo))
		{
			station.GET("/me", stationHandler.Profile)
			station.PUT("/me/password", stationHandler.UpdatePassword)

			station.POST("/scan", stationHandler.Scan)
			station.GET("/scan/history", stationHandler.ScanHistory)
			station.GET("/scan/last", stationHandler.LastScan)
			station.GET("/stats", stationHandler.Stats)
			station.GET("/sync/status", stationHandler.SyncStatus)

			station.GET("/batches", stationHandler.Batches)
			station.GET("/batches/active", stationHandler.ActiveBatch)
			station.PUT("/batches/active", stationHandler.SetActiveBatch)
			station.POST("/batches/import", stationHandler.ImportBatch)
			station.DELETE("/batches/:id", stationHandler.DeleteBatch)

			station.GET("/packages", stationHandler.Packages)
			station.GET("/export", stationHandler.Export)
		}

		// 管理端接口（需管理员身份）
		admin := apiV1.Group("/admin")
		admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.OperatorRepo))
		admin.Use(AdminOnlyMiddleware())
		{
			admin.GET("/operators", adminHandler.ListOperators)
			admin.POST("/operators", adminHandler.CreateOperator)
			admin.PUT("/operators/:id/active", adminHandler.SetOperatorActive)
			admin.PUT("/operators/:id/password", adminHandler.ResetOperatorPassword)
		}
	}

	return r
}
