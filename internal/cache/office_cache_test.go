package cache_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/septivank/attendance-ingestion-worker/internal/cache"
	"github.com/septivank/attendance-ingestion-worker/internal/domain"
	"github.com/septivank/attendance-ingestion-worker/internal/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRedis struct {
	mu      sync.Mutex
	data    map[string][]byte
	ttls    map[string]time.Duration
	getErr  error
	setErr  error
	getHits int
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *goredis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return goredis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return goredis.NewStringResult("", goredis.Nil)
	}
	f.getHits++
	return goredis.NewStringResult(string(v), nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return goredis.NewStatusResult("", f.setErr)
	}
	f.data[key] = value.([]byte)
	f.ttls[key] = expiration
	return goredis.NewStatusResult("OK", nil)
}

func newStore() *memstore.Store {
	s := memstore.New()
	s.AddOffice(domain.Office{ID: "first", Point: domain.Point{Latitude: 12.97, Longitude: 77.59}})
	s.AddOffice(domain.Office{ID: "second", Point: domain.Point{Latitude: 12.98, Longitude: 77.60}})
	return s
}

func TestOfficeCache_MissThenHit(t *testing.T) {
	s := newStore()
	r := newFakeRedis()
	c := cache.NewOfficeCache(s, r, time.Minute, zap.NewNop())

	offices, err := c.ListOffices(context.Background())
	require.NoError(t, err)
	require.Len(t, offices, 2)
	assert.Equal(t, time.Minute, r.ttls["attendease:offices"])

	// store going away must not matter while the entry is cached
	s.Err = errors.New("down")

	offices, err = c.ListOffices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, r.getHits)
	assert.Equal(t, "first", offices[0].ID)
	assert.Equal(t, "second", offices[1].ID)
}

func TestOfficeCache_RedisDownFallsBackToStore(t *testing.T) {
	r := newFakeRedis()
	r.getErr = errors.New("connection refused")
	r.setErr = errors.New("connection refused")

	offices, err := cache.NewOfficeCache(newStore(), r, time.Minute, zap.NewNop()).ListOffices(context.Background())
	require.NoError(t, err)
	assert.Len(t, offices, 2)
}

func TestOfficeCache_CorruptEntryReloads(t *testing.T) {
	r := newFakeRedis()
	r.data["attendease:offices"] = []byte("{not json")

	offices, err := cache.NewOfficeCache(newStore(), r, time.Minute, zap.NewNop()).ListOffices(context.Background())
	require.NoError(t, err)
	assert.Len(t, offices, 2)
}

func TestOfficeCache_StoreErrorPropagates(t *testing.T) {
	s := newStore()
	s.Err = errors.New("down")

	_, err := cache.NewOfficeCache(s, newFakeRedis(), time.Minute, zap.NewNop()).ListOffices(context.Background())
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}
