package tokenstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStoreTest(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return NewRedis(rdb, "", ""), mr
}

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Load(ctx)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Save(ctx, "tok-1", time.Now().Add(time.Hour)))
	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", got)

	require.NoError(t, s.Save(ctx, "tok-2", time.Time{}))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", got, "latest save wins")

	require.NoError(t, s.Clear(ctx))
	_, err = s.Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Clear(ctx), "clear is idempotent")
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestFileStore(t *testing.T) {
	exerciseStore(t, NewFile(filepath.Join(t.TempDir(), "state", "session.json"), ""))
}

func TestRedisStore(t *testing.T) {
	s, _ := newRedisStoreTest(t)
	exerciseStore(t, s)
}

func TestMemoryStoreDropsExpiredToken(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Save(context.Background(), "tok", time.Now().Add(-time.Second)))
	_, err := m.Load(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreDropsExpiredToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	f := NewFile(path, "")
	ctx := context.Background()
	require.NoError(t, f.Save(ctx, "tok", time.Now().Add(-time.Second)))

	_, err := f.Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "tok")
}

func TestFileStoreKeepsOtherKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	ctx := context.Background()
	a := NewFile(path, "accessToken")
	b := NewFile(path, "otherToken")

	require.NoError(t, a.Save(ctx, "a", time.Time{}))
	require.NoError(t, b.Save(ctx, "b", time.Time{}))
	require.NoError(t, a.Clear(ctx))

	got, err := b.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", got)
}

func TestFileStorePermissionsAndCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	f := NewFile(path, "")
	ctx := context.Background()
	require.NoError(t, f.Save(ctx, "tok", time.Time{}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, err = f.Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreTTLFollowsExpiry(t *testing.T) {
	s, mr := newRedisStoreTest(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "tok", time.Now().Add(time.Minute)))
	ttl := mr.TTL(s.Key())
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)

	mr.FastForward(2 * time.Minute)
	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreRefusesDeadToken(t *testing.T) {
	s, mr := newRedisStoreTest(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "live", time.Time{}))
	require.NoError(t, s.Save(ctx, "dead", time.Now().Add(-time.Minute)))
	assert.False(t, mr.Exists(s.Key()))
}

func TestRedisStoreUnavailable(t *testing.T) {
	s, mr := newRedisStoreTest(t)
	mr.Close()

	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, s.Save(context.Background(), "tok", time.Time{}), ErrUnavailable)
}
