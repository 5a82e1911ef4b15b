package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rLg1290/7crm-sub003/internal/models"
)

func storeContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	other := Key{Actor: "agent-1", Scope: models.ScopeInternational}

	_, found, err := store.Get(ctx, testKey)
	require.NoError(t, err)
	assert.False(t, found)

	expires := time.Now().Add(TTL).UTC().Truncate(time.Millisecond)
	require.NoError(t, store.Set(ctx, testKey, Record{Data: []byte(`{"v":1}`), ExpiresAt: expires}))
	require.NoError(t, store.Set(ctx, other, Record{Data: []byte(`{"v":3}`), ExpiresAt: expires}))

	rec, found, err := store.Get(ctx, testKey)
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `{"v":1}`, string(rec.Data))
	assert.True(t, rec.ExpiresAt.Equal(expires))

	require.NoError(t, store.Set(ctx, testKey, Record{Data: []byte(`{"v":2}`), ExpiresAt: expires}))
	rec, _, err = store.Get(ctx, testKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(rec.Data))

	require.NoError(t, store.Delete(ctx, testKey))
	_, found, err = store.Get(ctx, testKey)
	require.NoError(t, err)
	assert.False(t, found)

	rec, found, err = store.Get(ctx, other)
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `{"v":3}`, string(rec.Data))
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	storeContract(t, store)

	require.NoError(t, store.Close())
	_, _, err := store.Get(context.Background(), testKey)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStoreWithClient(client)
	defer store.Close()

	storeContract(t, store)
}

func TestRedisStore_ExpiresWithEntry(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewRedisStoreWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, testKey, Record{Data: []byte(`{}`), ExpiresAt: time.Now().Add(TTL)}))
	assert.True(t, mr.Exists(testKey.String()))

	mr.FastForward(TTL + time.Second)
	_, found, err := store.Get(ctx, testKey)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, testKey, Record{Data: []byte(`{}`), ExpiresAt: time.Now().Add(-time.Second)}))
	assert.False(t, mr.Exists(testKey.String()))
}

func TestSQLStore_SQLite(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSQLStore(ctx, SQLConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "cache.db"),
	})
	require.NoError(t, err)
	defer store.Close()

	storeContract(t, store)
}

func TestSQLStore_WithResultCache(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSQLStore(ctx, SQLConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "cache.db"),
	})
	require.NoError(t, err)
	defer store.Close()

	clock := newClock()
	c := NewResultCache(store, WithClock(clock.Now))
	_, err = c.Save(ctx, testKey, sampleParams(), nil, sampleLines())
	require.NoError(t, err)

	entry, ok := c.Load(ctx, testKey)
	require.True(t, ok)
	assert.True(t, entry.CapturedAt.Equal(clock.Now()))

	clock.Advance(TTL + time.Millisecond)
	_, ok = c.Load(ctx, testKey)
	assert.False(t, ok)

	_, found, err := store.Get(ctx, testKey)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestOpenSQLStore_UnknownDriver(t *testing.T) {
	_, err := OpenSQLStore(context.Background(), SQLConfig{Driver: "mysql"})
	assert.Error(t, err)
}
