package main

import (
	"fmt"

	"github.com/wheelhub/internal/config"
	"github.com/wheelhub/internal/db"
	"github.com/wheelhub/internal/logger"
)

const (
	defaultUsername = "admin"
	defaultPassword = "admin123"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("配置加载失败", map[string]interface{}{"error": err.Error()})
	}
	logger.Init(cfg.LogLevel)

	// 初始化数据库
	if err := db.Init(db.Options{
		Driver:          cfg.DatabaseDriver,
		Path:            cfg.DatabasePath,
		URL:             cfg.DatabaseURL,
		SlugMaxAttempts: cfg.SlugMaxAttempts,
	}); err != nil {
		logger.Fatal("数据库初始化失败", map[string]interface{}{"error": err.Error()})
	}

	// 检查是否已存在用户
	var count int64
	if err := db.DB.Model(&db.User{}).Count(&count).Error; err != nil {
		logger.Fatal("查询用户失败", map[string]interface{}{"error": err.Error()})
	}
	if count > 0 {
		fmt.Println("用户已存在，无需初始化")
		return
	}

	username, password := cfg.SuperRootUserName, cfg.SuperRootPassword
	if username == "" || password == "" {
		username, password = defaultUsername, defaultPassword
	}

	if err := db.EnsureUser(username, password); err != nil {
		logger.Fatal("创建用户失败", map[string]interface{}{"error": err.Error()})
	}

	fmt.Println("默认管理员用户创建成功")
	fmt.Println("用户名:", username)
	if password == defaultPassword {
		fmt.Println("密码:", defaultPassword)
	}
}
