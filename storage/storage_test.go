package storage

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-client/core"
	"github.com/trezcool/masomo-client/storage/file"
	"github.com/trezcool/masomo-client/storage/inmem"
)

// the behaviour every adapter must share
func testStorage(t *testing.T, s core.Storage) {
	ctx := context.Background()

	got, err := s.Get(ctx, core.AuthTokenKey)
	require.NoError(t, err)
	assert.Empty(t, got, "missing key reads as empty")

	require.NoError(t, s.Set(ctx, core.AuthTokenKey, "abc"))
	require.NoError(t, s.Set(ctx, core.LanguageKey, "pt"))
	got, err = s.Get(ctx, core.AuthTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "abc", got)

	require.NoError(t, s.Set(ctx, core.AuthTokenKey, "def"))
	got, _ = s.Get(ctx, core.AuthTokenKey)
	assert.Equal(t, "def", got)

	require.NoError(t, s.Remove(ctx, core.AuthTokenKey))
	got, _ = s.Get(ctx, core.AuthTokenKey)
	assert.Empty(t, got)
	require.NoError(t, s.Remove(ctx, core.AuthTokenKey), "removing twice is fine")

	got, _ = s.Get(ctx, core.LanguageKey)
	assert.Equal(t, "pt", got)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Set(ctx, core.AuthTokenKey, "concurrent")
			_, _ = s.Get(ctx, core.AuthTokenKey)
		}()
	}
	wg.Wait()
	got, _ = s.Get(ctx, core.AuthTokenKey)
	assert.Equal(t, "concurrent", got)
}

func TestInmem(t *testing.T) {
	testStorage(t, inmem.New())
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "storage.json")
	testStorage(t, file.New(path))

	// values survive a new instance
	got, err := file.New(path).Get(context.Background(), core.LanguageKey)
	require.NoError(t, err)
	assert.Equal(t, "pt", got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	t.Run("replaces atomically", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "storage.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"language": "fr"}`), 0o644))

		s := file.New(path)
		require.NoError(t, s.Set(context.Background(), core.AuthTokenKey, "abc"))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1, "no temp file left behind")
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

		got, err := file.New(path).Get(context.Background(), core.LanguageKey)
		require.NoError(t, err)
		assert.Equal(t, "fr", got)
	})

	t.Run("corrupt file", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "storage.json")
		require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o600))
		_, err := file.New(bad).Get(context.Background(), core.AuthTokenKey)
		assert.Error(t, err)
	})
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		driver  string
		wantErr bool
	}{
		{name: "default", driver: ""},
		{name: "memory", driver: DriverMemory},
		{name: "file", driver: DriverFile},
		{name: "unknown", driver: "floppy", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := &core.Config{}
			conf.Storage.Driver = tt.driver
			conf.Storage.FilePath = filepath.Join(t.TempDir(), "storage.json")

			s, closer, err := New(conf)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, s)
			assert.NoError(t, closer.Close())
		})
	}
}
