package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"mmarau-music/backend/config"
)

// Client Redis 客户端封装
// 当前用于分析接口结果缓存与速率限制；后续可扩展分布式锁等场景
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── 结果缓存 ──

const cachePrefix = "cache:"

// GetCache 读取缓存的 JSON 字节；未命中返回 (nil, nil)
func (c *Client) GetCache(ctx context.Context, key string) ([]byte, error) {
	b, err := c.rdb.Get(ctx, cachePrefix+key).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// SetCache 写入缓存的 JSON 字节
func (c *Client) SetCache(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, cachePrefix+key, value, ttl).Err()
}

// InvalidateCache 删除指定缓存键
func (c *Client) InvalidateCache(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = cachePrefix + k
	}
	return c.rdb.Del(ctx, prefixed...).Err()
}

// ── 速率限制 ──

// CheckRateLimit 固定窗口计数器：窗口内请求数超过 limit 返回 false
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	n, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		if err := c.rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return n <= int64(limit), nil
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
