package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "auth_token")
	require.NoError(t, err)
	assert.False(t, ok, "fresh store should be empty")

	require.NoError(t, store.Set(ctx, "auth_token", "tok123"))

	value, ok, err := store.Get(ctx, "auth_token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok123", value)

	require.NoError(t, store.Set(ctx, "auth_token", "tok456"))
	value, _, err = store.Get(ctx, "auth_token")
	require.NoError(t, err)
	assert.Equal(t, "tok456", value)

	require.NoError(t, store.Set(ctx, "empty", ""))
	value, ok, err = store.Get(ctx, "empty")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "", value)

	require.NoError(t, store.Delete(ctx, "auth_token"))
	require.NoError(t, store.Delete(ctx, "auth_token"), "deleting twice is not an error")

	_, ok, err = store.Get(ctx, "auth_token")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "localhost_8000")
	require.NoError(t, err)
	exerciseStore(t, store)
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewFileStore(dir, "api.urbanflow.example")
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "auth_token", "abc"))

	second, err := NewFileStore(dir, "api.urbanflow.example")
	require.NoError(t, err)

	value, ok, err := second.Get(ctx, "auth_token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", value)

	info, err := os.Stat(filepath.Join(dir, "api.urbanflow.example.yaml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileStore_CorruptFileIsReinitialized(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewFileStore(dir, "broken")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.Path(), []byte("values: [unterminated"), 0600))

	_, ok, err := store.Get(ctx, "auth_token")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "auth_token", "fresh"))
	value, _, err := store.Get(ctx, "auth_token")
	require.NoError(t, err)
	assert.Equal(t, "fresh", value)
}

func TestFileStore_RequiresDirectory(t *testing.T) {
	_, err := NewFileStore("", "default")
	assert.Error(t, err)
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(t.TempDir(), "localhost_8000")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	exerciseStore(t, store)
}

func TestOpenSQLiteStore_InMemory(t *testing.T) {
	store, err := OpenSQLiteStore("file:"+t.Name()+"?mode=memory&cache=shared", "localhost_8000")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	exerciseStore(t, store)
}

func TestOpenSQLiteStore_MigrationFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urbanflow.db")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("not a sqlite database ", 64)), 0600))

	_, err := OpenSQLiteStore(path, "localhost_8000")
	assert.Error(t, err)
}

func TestSQLiteStore_NamespacesAreIsolated(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	staging, err := NewSQLiteStore(dir, "staging")
	require.NoError(t, err)
	t.Cleanup(func() { _ = staging.Close() })

	production, err := NewSQLiteStore(dir, "production")
	require.NoError(t, err)
	t.Cleanup(func() { _ = production.Close() })

	require.NoError(t, staging.Set(ctx, "auth_token", "staging-token"))

	_, ok, err := production.Get(ctx, "auth_token")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSealedStore(t *testing.T) {
	sealed, err := NewSealedStore(NewMemoryStore(), "correct horse battery staple", "")
	require.NoError(t, err)
	exerciseStore(t, sealed)
}

func TestSealedStore_NeverWritesPlaintext(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()

	sealed, err := NewSealedStore(inner, "secret", "salt")
	require.NoError(t, err)
	require.NoError(t, sealed.Set(ctx, "auth_token", "tok123"))

	raw, ok, err := inner.Get(ctx, "auth_token")
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotContains(t, raw, "tok123")

}

func TestSealedStore_DiscardsValueSealedWithOtherSecret(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()

	sealedA, err := NewSealedStore(inner, "secret-a", "salt")
	require.NoError(t, err)
	require.NoError(t, sealedA.Set(ctx, "auth_token", "tok123"))

	sealedB, err := NewSealedStore(inner, "secret-b", "salt")
	require.NoError(t, err)

	value, ok, err := sealedB.Get(ctx, "auth_token")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, value)

	_, ok, err = inner.Get(ctx, "auth_token")
	require.NoError(t, err)
	assert.False(t, ok, "undecryptable value should be removed")

	require.NoError(t, sealedB.Set(ctx, "auth_token", "tok456"))
	value, ok, err = sealedB.Get(ctx, "auth_token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok456", value)
}

func TestSealedStore_DiscardsGarbage(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	require.NoError(t, inner.Set(ctx, "auth_token", "not-sealed"))

	sealed, err := NewSealedStore(inner, "secret", "")
	require.NoError(t, err)

	_, ok, err := sealed.Get(ctx, "auth_token")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSealedStore_RequiresSecret(t *testing.T) {
	_, err := NewSealedStore(NewMemoryStore(), "", "")
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		opts     Options
		expected any
	}{
		{"default is file", Options{Path: t.TempDir(), Namespace: "a"}, &FileStore{}},
		{"file", Options{Driver: DriverFile, Path: t.TempDir(), Namespace: "a"}, &FileStore{}},
		{"sqlite", Options{Driver: DriverSQLite, Path: t.TempDir(), Namespace: "a"}, &SQLiteStore{}},
		{"memory", Options{Driver: "MEMORY"}, &MemoryStore{}},
		{"sealed memory", Options{Driver: DriverMemory, Secret: "s"}, &SealedStore{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := Open(ctx, tt.opts)
			require.NoError(t, err)
			t.Cleanup(func() { _ = store.Close() })
			assert.IsType(t, tt.expected, store)
		})
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "etcd"})
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestNamespace(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"http://localhost:8000/api", "localhost_8000"},
		{"https://API.urbanflow.example/", "api.urbanflow.example"},
		{"localhost:8000", "localhost_8000"},
		{"", "default"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Namespace(tt.input), "Namespace(%q)", tt.input)
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("URBANFLOW_TEST_REDIS_ADDR")
	if len(strings.TrimSpace(addr)) == 0 {
		t.Skip("URBANFLOW_TEST_REDIS_ADDR not set")
	}

	store, err := NewRedisStore(context.Background(), RedisOptions{
		Addr:   addr,
		Prefix: "urbanflow:test:" + t.Name() + ":",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	exerciseStore(t, store)
}
