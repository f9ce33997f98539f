package global

import (
	"bot_admin/config"
	"bot_admin/internal/registry"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoDB_CollectionName chứa tên các collection trong MongoDB
type MongoDB_CollectionName struct {
	Users      string // Người dùng quản trị
	BotConfigs string // Cấu hình bot theo merchant
}

// Các biến toàn cục
var MongoDB_Session *mongo.Client                     // Phiên kết nối tới MongoDB
var MongoDB_ServerConfig *config.Configuration        // Cấu hình của server
var MongoDB_ColNames = MongoDB_CollectionName{}       // Tên các collection
var Redis_Client *redis.Client                        // Client Redis, nil nếu không cấu hình REDIS_ADDR

// Các Registry
var RegistryCollections = registry.NewRegistry[*mongo.Collection]() // Registry chứa các collections
