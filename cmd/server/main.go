package main

import (
	"github.com/gin-gonic/gin"
	"github.com/wheelhub/internal/config"
	"github.com/wheelhub/internal/db"
	"github.com/wheelhub/internal/logger"
	"github.com/wheelhub/internal/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", map[string]interface{}{"error": err.Error()})
	}

	logger.Init(cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(db.Options{
		Driver:          cfg.DatabaseDriver,
		Path:            cfg.DatabasePath,
		URL:             cfg.DatabaseURL,
		SlugMaxAttempts: cfg.SlugMaxAttempts,
		Logger:          logger.NewGormLogger(),
	}); err != nil {
		logger.Fatal("failed to initialize database", map[string]interface{}{"error": err.Error()})
	}

	if err := db.EnsureUser(cfg.SuperRootUserName, cfg.SuperRootPassword); err != nil {
		logger.Fatal("failed to ensure super root user", map[string]interface{}{"error": err.Error()})
	}

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(cfg, db.DB)
	logger.Info("server starting", map[string]interface{}{
		"addr":   cfg.ListenAddr,
		"driver": cfg.DatabaseDriver,
	})
	if err := r.Run(cfg.ListenAddr); err != nil {
		logger.Fatal("failed to run server", map[string]interface{}{"error": err.Error()})
	}
}
