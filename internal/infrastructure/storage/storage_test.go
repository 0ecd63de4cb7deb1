package storage

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// testStoreContract runs the behaviour every Store has to share
func testStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("missing key reports not found", func(t *testing.T) {
		s := newStore(t)
		v, ok, err := s.Get(ctx, "absent")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, v)
	})

	t.Run("set then get returns value", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, KeyToken, "abc.def.ghi"))

		v, ok, err := s.Get(ctx, KeyToken)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "abc.def.ghi", v)
	})

	t.Run("set overwrites previous value", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, KeyCart, `{"state":{"items":[]},"version":0}`))
		require.NoError(t, s.Set(ctx, KeyCart, `{"state":{"items":[{"id":"p1"}]},"version":0}`))

		v, ok, err := s.Get(ctx, KeyCart)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Contains(t, v, "p1")
	})

	t.Run("empty string is a stored value", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, KeyUser, ""))

		_, ok, err := s.Get(ctx, KeyUser)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("remove deletes key and is idempotent", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, KeyToken, "t"))
		require.NoError(t, s.Remove(ctx, KeyToken))
		require.NoError(t, s.Remove(ctx, KeyToken))

		_, ok, err := s.Get(ctx, KeyToken)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("concurrent writers do not lose keys", func(t *testing.T) {
		s := newStore(t)
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				assert.NoError(t, s.Set(ctx, "k"+strconv.Itoa(i), strconv.Itoa(i)))
			}(i)
		}
		wg.Wait()

		for i := 0; i < 20; i++ {
			v, ok, err := s.Get(ctx, "k"+strconv.Itoa(i))
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, strconv.Itoa(i), v)
		}
	})
}

func TestMemoryStore(t *testing.T) {
	testStoreContract(t, func(t *testing.T) Store {
		s := NewMemoryStore()
		t.Cleanup(func() { _ = s.Close() })
		return s
	})

	t.Run("operations fail after close", func(t *testing.T) {
		s := NewMemoryStore()
		require.NoError(t, s.Close())

		_, _, err := s.Get(context.Background(), KeyToken)
		assert.ErrorIs(t, err, ErrClosed)
		assert.ErrorIs(t, s.Set(context.Background(), KeyToken, "x"), ErrClosed)
		assert.ErrorIs(t, s.Remove(context.Background(), KeyToken), ErrClosed)
	})
}

func TestFileStore(t *testing.T) {
	testStoreContract(t, func(t *testing.T) Store {
		s, err := NewFileStore(filepath.Join(t.TempDir(), "storage.json"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})

	t.Run("values survive reopen", func(t *testing.T) {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "nested", "storage.json")

		s, err := NewFileStore(path)
		require.NoError(t, err)
		require.NoError(t, s.Set(ctx, KeyToken, "persisted"))
		require.NoError(t, s.Close())

		reopened, err := NewFileStore(path)
		require.NoError(t, err)
		v, ok, err := reopened.Get(ctx, KeyToken)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "persisted", v)
	})

	t.Run("file is private to the user", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "storage.json")
		s, err := NewFileStore(path)
		require.NoError(t, err)
		require.NoError(t, s.Set(context.Background(), KeyToken, "secret"))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("corrupt document is reported", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "storage.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

		_, err := NewFileStore(path)
		assert.Error(t, err)
	})

	t.Run("empty path is rejected", func(t *testing.T) {
		_, err := NewFileStore("")
		assert.Error(t, err)
	})
}

func TestSQLiteStore(t *testing.T) {
	testStoreContract(t, func(t *testing.T) Store {
		s, err := NewSQLiteStore(":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})

	t.Run("values survive reopen", func(t *testing.T) {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "storage.db")

		s, err := NewSQLiteStore(path)
		require.NoError(t, err)
		require.NoError(t, s.Set(ctx, KeyUser, `{"id":"u1"}`))
		require.NoError(t, s.Close())

		reopened, err := NewSQLiteStore(path)
		require.NoError(t, err)
		defer reopened.Close()

		v, ok, err := reopened.Get(ctx, KeyUser)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `{"id":"u1"}`, v)
	})

	t.Run("operations fail after close", func(t *testing.T) {
		s, err := NewSQLiteStore(":memory:")
		require.NoError(t, err)
		require.NoError(t, s.Close())
		require.NoError(t, s.Close())

		_, _, err = s.Get(context.Background(), KeyToken)
		assert.ErrorIs(t, err, ErrClosed)
	})
}

// TestRedisStore needs a reachable server; set STOREFRONT_TEST_REDIS_ADDR=host:port.
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("STOREFRONT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("STOREFRONT_TEST_REDIS_ADDR not set")
	}
	host, portStr, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	testStoreContract(t, func(t *testing.T) Store {
		prefix := "storefront-test:" + t.Name() + ":"
		s, err := NewRedisStore(context.Background(), RedisConfig{Host: host, Port: port}, prefix)
		require.NoError(t, err)
		t.Cleanup(func() {
			ctx := context.Background()
			for _, k := range []string{KeyToken, KeyUser, KeyCart} {
				_ = s.Remove(ctx, k)
			}
			for i := 0; i < 20; i++ {
				_ = s.Remove(ctx, "k"+strconv.Itoa(i))
			}
			_ = s.Close()
		})
		return s
	})
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("memory driver", func(t *testing.T) {
		s, err := Open(ctx, Config{Driver: "memory"}, nil)
		require.NoError(t, err)
		assert.IsType(t, &MemoryStore{}, s)
	})

	t.Run("empty driver defaults to file", func(t *testing.T) {
		s, err := Open(ctx, Config{Path: filepath.Join(t.TempDir(), "s.json")}, nil)
		require.NoError(t, err)
		assert.IsType(t, &FileStore{}, s)
	})

	t.Run("sqlite driver", func(t *testing.T) {
		s, err := Open(ctx, Config{Driver: "sqlite", Path: ":memory:"}, nil)
		require.NoError(t, err)
		defer s.Close()
		assert.IsType(t, &SQLiteStore{}, s)
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := Open(ctx, Config{Driver: "etcd"}, nil)
		assert.ErrorIs(t, err, ErrUnknownDriver)
	})

	t.Run("unreachable backend fails without fallback", func(t *testing.T) {
		_, err := Open(ctx, Config{Driver: "file"}, nil)
		assert.Error(t, err)
	})

	t.Run("unreachable backend falls back to memory and warns", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)

		s, err := Open(ctx, Config{Driver: "file", FallbackToMemory: true}, zap.New(core))
		require.NoError(t, err)
		assert.IsType(t, &MemoryStore{}, s)
		assert.Equal(t, 1, logs.FilterMessageSnippet("falling back").Len())
	})
}
