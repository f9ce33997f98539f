package database

import (
	"context"
	"fmt"
	"time"

	"bot_admin/config"
	"bot_admin/internal/logger"

	"github.com/go-redis/redis/v8"
)

// GetRedisClient tạo client Redis và ping kiểm tra.
// Trả về nil, nil khi REDIS_ADDR để trống (cache bị tắt).
func GetRedisClient(c *config.Configuration) (*redis.Client, error) {
	if c.Redis_Addr == "" {
		logger.GetAppLogger().Info("REDIS_ADDR trống, bỏ qua cache Redis")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     c.Redis_Addr,
		Password: c.Redis_Password,
		DB:       c.Redis_DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis at %s: %w", c.Redis_Addr, err)
	}

	logger.GetAppLogger().WithField("addr", c.Redis_Addr).Info("Successfully connected to Redis")
	return client, nil
}
