package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/septivank/attendance-ingestion-worker/internal/cache"
	"github.com/septivank/attendance-ingestion-worker/internal/domain"
	"github.com/septivank/attendance-ingestion-worker/internal/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"go.uber.org/zap"
)

func TestOfficeCache_RealRedis(t *testing.T) {
	if os.Getenv("INTEGRATION_TESTS") != "1" {
		t.Skip("set INTEGRATION_TESTS=1 to run redis integration tests")
	}

	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := goredis.ParseURL(uri)
	require.NoError(t, err)
	client := goredis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	store := memstore.New()
	store.AddOffice(domain.Office{ID: "o1", Name: "HQ", Point: domain.Point{Latitude: -6.2, Longitude: 106.8}})
	store.AddOffice(domain.Office{ID: "o2", Name: "Branch", Point: domain.Point{Latitude: -6.3, Longitude: 106.9}})

	c := cache.NewOfficeCache(store, client, time.Minute, zap.NewNop())

	first, err := c.ListOffices(ctx)
	require.NoError(t, err)
	require.Len(t, first, 2)

	ttl, err := client.TTL(ctx, "attendease:offices").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	// served from redis once populated
	store.AddOffice(domain.Office{ID: "o3", Name: "Late", Point: domain.Point{Latitude: 0, Longitude: 0}})
	second, err := c.ListOffices(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
