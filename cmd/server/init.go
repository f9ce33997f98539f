package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"bot_admin/config"
	authmodels "bot_admin/internal/api/auth/models"
	"bot_admin/internal/botconfig"
	"bot_admin/internal/database"
	"bot_admin/internal/global"
)

// Hàm khởi tạo các biến toàn cục
func InitGlobal() {
	initColNames()         // Khởi tạo tên các collection trong database
	initValidator()        // Khởi tạo validator
	initConfig()           // Khởi tạo cấu hình server
	initDatabase_MongoDB() // Khởi tạo kết nối database
	initRedis()            // Khởi tạo Redis (tùy chọn)
}

// Hàm khởi tạo tên các collection trong database
func initColNames() {
	global.MongoDB_ColNames.Users = "auth_users"
	global.MongoDB_ColNames.BotConfigs = "bot_configs"
	logrus.Info("Initialized collection names")
}

// Hàm khởi tạo validator (đăng ký custom validators: no_xss, strong_password, user_role, bot_color)
func initValidator() {
	global.InitValidator()
	logrus.Info("Initialized validator")
}

// Hàm khởi tạo cấu hình server
func initConfig() {
	global.MongoDB_ServerConfig = config.NewConfig()
	if global.MongoDB_ServerConfig == nil {
		logrus.Fatalf("Failed to initialize config: config is nil")
	}
	logrus.Info("Initialized server config")
}

// Hàm khởi tạo kết nối database, tạo collection và index còn thiếu
func initDatabase_MongoDB() {
	var err error
	global.MongoDB_Session, err = database.GetInstance(global.MongoDB_ServerConfig)
	if err != nil {
		logrus.Fatalf("Failed to get database instance: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := global.MongoDB_Session.Database(global.MongoDB_ServerConfig.MongoDB_DBName)
	names := global.MongoDB_ColNames
	if err := database.EnsureCollections(ctx, db, names.Users, names.BotConfigs); err != nil {
		logrus.Fatalf("Failed to ensure collections: %v", err)
	}
	logrus.Info("Ensured database and collections")

	if err := database.CreateIndexes(ctx, db.Collection(names.Users), authmodels.User{}); err != nil {
		logrus.Errorf("Failed to create indexes for %s: %v", names.Users, err)
	}
	if err := database.CreateIndexes(ctx, db.Collection(names.BotConfigs), botconfig.Document{}); err != nil {
		logrus.Errorf("Failed to create indexes for %s: %v", names.BotConfigs, err)
	}
}

// initRedis kết nối Redis nếu có REDIS_ADDR. Lỗi kết nối chỉ tắt cache, server vẫn chạy.
func initRedis() {
	client, err := database.GetRedisClient(global.MongoDB_ServerConfig)
	if err != nil {
		logrus.Warnf("Redis unavailable, falling back to in-memory cache: %v", err)
		return
	}
	global.Redis_Client = client
}
