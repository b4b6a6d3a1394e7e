package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Client wraps go-redis for the API-key lookup cache on the download and
// upload hot paths. When disabled every operation is a no-op miss, so
// callers always fall back to the database.
type Client struct {
	rdb     *redis.Client
	enabled bool
	ttl     time.Duration
	logger  *zap.Logger
}

type Config struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	PoolSize int
	CacheTTL time.Duration
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if !cfg.Enabled {
		return &Client{enabled: false, logger: logger}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	return &Client{
		rdb:     rdb,
		enabled: true,
		ttl:     cfg.CacheTTL,
		logger:  logger,
	}
}

func (c *Client) IsEnabled() bool {
	return c.enabled
}

func (c *Client) Ping(ctx context.Context) error {
	if !c.enabled {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	if !c.enabled {
		return nil
	}
	return c.rdb.Close()
}

const projectKeyPrefix = "apikey:project:"

// GetProject returns the cached project payload for an API key, or
// (nil, false) on miss. Cache errors degrade to a miss.
func (c *Client) GetProject(ctx context.Context, apiKey string, dest any) bool {
	if !c.enabled {
		return false
	}

	data, err := c.rdb.Get(ctx, projectKeyPrefix+apiKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Redis lookup failed, falling back to database", zap.Error(err))
		}
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Warn("Corrupt cache entry, dropping", zap.Error(err))
		c.rdb.Del(ctx, projectKeyPrefix+apiKey)
		return false
	}
	return true
}

func (c *Client) SetProject(ctx context.Context, apiKey string, project any) {
	if !c.enabled {
		return
	}

	data, err := json.Marshal(project)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, projectKeyPrefix+apiKey, data, c.ttl).Err(); err != nil {
		c.logger.Warn("Failed to cache project lookup", zap.Error(err))
	}
}

// InvalidateProject drops the cache entry for an API key. Called when a
// key is rotated or its project changes visibility.
func (c *Client) InvalidateProject(ctx context.Context, apiKey string) {
	if !c.enabled {
		return
	}
	if err := c.rdb.Del(ctx, projectKeyPrefix+apiKey).Err(); err != nil {
		c.logger.Warn("Failed to invalidate project cache entry", zap.Error(err))
	}
}
