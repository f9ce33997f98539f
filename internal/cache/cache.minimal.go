// Package cache lưu minimal config (bản flatten) của merchant để các kênh chat
// đọc nhanh mà không phải load cả document. Lỗi cache chỉ được ghi log.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"bot_admin/internal/logger"
	"bot_admin/internal/utility"

	"github.com/go-redis/redis/v8"
)

const (
	keyPrefix = "botcfg:minimal:"
	genPrefix = "botcfg:minimal-gen:"
)

var errStaleGeneration = errors.New("minimal config generation changed")

// MinimalCache là cache key merchant id → minimal config.
// Mỗi merchant có một generation tăng sau mỗi lần Invalidate. Người đọc lấy
// Generation trước khi load document và chỉ ghi được cache nếu generation chưa đổi,
// nhờ đó bản đọc cũ không đè lên dữ liệu đã được cập nhật.
type MinimalCache interface {
	Get(ctx context.Context, merchantID string) (map[string]any, bool)
	Generation(ctx context.Context, merchantID string) int64
	SetIfGeneration(ctx context.Context, merchantID string, gen int64, flat map[string]any) bool
	Invalidate(ctx context.Context, merchantID string)
}

// NewMinimalCache dùng Redis nếu có client, ngược lại dùng cache trong bộ nhớ
func NewMinimalCache(client *redis.Client, ttl time.Duration) MinimalCache {
	if client != nil {
		return &RedisMinimalCache{client: client, ttl: ttl}
	}
	return NewMemoryMinimalCache(ttl)
}

// Key trả về key Redis của merchant
func Key(merchantID string) string {
	return keyPrefix + merchantID
}

// GenerationKey trả về key Redis giữ generation của merchant
func GenerationKey(merchantID string) string {
	return genPrefix + merchantID
}

// RedisMinimalCache lưu minimal config dạng JSON trong Redis
type RedisMinimalCache struct {
	client *redis.Client
	ttl    time.Duration
}

func (c *RedisMinimalCache) Get(ctx context.Context, merchantID string) (map[string]any, bool) {
	data, err := c.client.Get(ctx, Key(merchantID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.WithModule("cache").WithError(err).Warn("Không đọc được minimal config từ Redis")
		}
		return nil, false
	}
	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		logger.WithModule("cache").WithError(err).Warn("Minimal config trong Redis bị hỏng")
		return nil, false
	}
	return flat, true
}

// Generation trả -1 khi không đọc được Redis, khi đó SetIfGeneration luôn bỏ qua
func (c *RedisMinimalCache) Generation(ctx context.Context, merchantID string) int64 {
	gen, err := c.client.Get(ctx, GenerationKey(merchantID)).Int64()
	if err != nil && err != redis.Nil {
		logger.WithModule("cache").WithError(err).Warn("Không đọc được generation minimal config")
		return -1
	}
	return gen
}

// SetIfGeneration ghi cache trong transaction WATCH trên key generation
func (c *RedisMinimalCache) SetIfGeneration(ctx context.Context, merchantID string, gen int64, flat map[string]any) bool {
	if gen < 0 {
		return false
	}
	data, err := json.Marshal(flat)
	if err != nil {
		return false
	}
	genKey := GenerationKey(merchantID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Int64()
		if err != nil && err != redis.Nil {
			return err
		}
		if cur != gen {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, Key(merchantID), data, c.ttl)
			return nil
		})
		return err
	}, genKey)
	switch {
	case err == nil:
		return true
	case errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		return false
	default:
		logger.WithModule("cache").WithError(err).Warn("Không ghi được minimal config vào Redis")
		return false
	}
}

func (c *RedisMinimalCache) Invalidate(ctx context.Context, merchantID string) {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, GenerationKey(merchantID))
		pipe.Del(ctx, Key(merchantID))
		return nil
	})
	if err != nil {
		logger.WithModule("cache").WithError(err).Warn("Không xóa được minimal config trong Redis")
	}
}

// MemoryMinimalCache lưu minimal config trong bộ nhớ tiến trình
type MemoryMinimalCache struct {
	mu    sync.Mutex
	gens  map[string]int64
	cache *utility.Cache
}

func NewMemoryMinimalCache(ttl time.Duration) *MemoryMinimalCache {
	return &MemoryMinimalCache{gens: make(map[string]int64), cache: utility.NewCache(ttl, time.Minute)}
}

func (c *MemoryMinimalCache) Get(_ context.Context, merchantID string) (map[string]any, bool) {
	v, ok := c.cache.Get(merchantID)
	if !ok {
		return nil, false
	}
	flat, ok := v.(map[string]any)
	return flat, ok
}

func (c *MemoryMinimalCache) Generation(_ context.Context, merchantID string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[merchantID]
}

func (c *MemoryMinimalCache) SetIfGeneration(_ context.Context, merchantID string, gen int64, flat map[string]any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[merchantID] != gen {
		return false
	}
	c.cache.Set(merchantID, flat)
	return true
}

func (c *MemoryMinimalCache) Invalidate(_ context.Context, merchantID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[merchantID]++
	c.cache.Delete(merchantID)
}

// Close dừng vòng dọn dẹp
func (c *MemoryMinimalCache) Close() {
	c.cache.Stop()
}
