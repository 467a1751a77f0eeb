package cache

import (
	"bytes"
	"context"
	"encoding/gob"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"SRRStocks/internal/model"
)

// RedisCache shares frames between dashboard instances through Redis.
// Frames are gob-encoded because JSON cannot carry NaN cells.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
	logger *zap.Logger
}

// NewRedis creates a RedisCache against addr.
func NewRedis(addr, password string, db int, ttl time.Duration, logger *zap.Logger) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		ttl:    ttl,
		prefix: "srrstocks:history:",
		logger: logger,
	}
}

func (c *RedisCache) Name() string { return "redis" }

// Ping checks connectivity.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (*model.PriceFrame, bool) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Redis cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	frame, err := decodeFrame(data)
	if err != nil {
		c.logger.Warn("Redis cache entry undecodable", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return frame, true
}

func (c *RedisCache) Set(ctx context.Context, key string, frame *model.PriceFrame) {
	data, err := encodeFrame(frame)
	if err != nil {
		c.logger.Warn("Redis cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("Redis cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func encodeFrame(frame *model.PriceFrame) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(frame); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeFrame(data []byte) (*model.PriceFrame, error) {
	var frame model.PriceFrame
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&frame); err != nil {
		return nil, err
	}
	return &frame, nil
}

// Close releases the client's connections.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
