package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/septivank/attendance-ingestion-worker/internal/domain"
	"github.com/septivank/attendance-ingestion-worker/internal/geo"
	"go.uber.org/zap"
)

const officesKey = "attendease:offices"

// Client is the subset of the redis client the cache uses.
type Client interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
}

// OfficeCache keeps the office list in Redis in front of the store. The
// cached list preserves storage order. Redis failures fall back to the store.
type OfficeCache struct {
	source geo.OfficeSource
	client Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewOfficeCache(source geo.OfficeSource, client Client, ttl time.Duration, logger *zap.Logger) *OfficeCache {
	return &OfficeCache{
		source: source,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *OfficeCache) ListOffices(ctx context.Context) ([]domain.Office, error) {
	data, err := c.client.Get(ctx, officesKey).Bytes()
	switch {
	case err == nil:
		var offices []domain.Office
		uerr := json.Unmarshal(data, &offices)
		if uerr == nil {
			return offices, nil
		}
		c.logger.Warn("discarding unreadable office cache entry", zap.Error(uerr))
	case errors.Is(err, goredis.Nil):
	default:
		c.logger.Warn("office cache read failed, using store", zap.Error(err))
	}

	offices, err := c.source.ListOffices(ctx)
	if err != nil {
		return nil, err
	}

	b, err := json.Marshal(offices)
	if err != nil {
		return offices, nil
	}
	if err := c.client.Set(ctx, officesKey, b, c.ttl).Err(); err != nil {
		c.logger.Warn("office cache write failed", zap.Error(err))
	}

	return offices, nil
}
