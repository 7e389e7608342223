package preferences

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testBackendContract exercises the behaviour every Backend must share
func testBackendContract(t *testing.T, b Backend) {
	ctx := context.Background()

	t.Run("get absent", func(t *testing.T) {
		_, ok, err := b.Get(ctx, "contract", "missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("put overwrites", func(t *testing.T) {
		require.NoError(t, b.Put(ctx, "contract", "k", "v1"))
		require.NoError(t, b.Put(ctx, "contract", "k", "v2"))
		v, ok, err := b.Get(ctx, "contract", "k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "v2", v)
	})

	t.Run("delete reports removal", func(t *testing.T) {
		require.NoError(t, b.Put(ctx, "contract", "gone", "x"))
		removed, err := b.Delete(ctx, "contract", "gone")
		require.NoError(t, err)
		assert.True(t, removed)

		removed, err = b.Delete(ctx, "contract", "gone")
		require.NoError(t, err)
		assert.False(t, removed)
	})

	t.Run("clear is scoped to namespace", func(t *testing.T) {
		require.NoError(t, b.Put(ctx, "clear-me", "a", "1"))
		require.NoError(t, b.Put(ctx, "clear-me", "b", "2"))
		require.NoError(t, b.Put(ctx, "keep-me", "a", "3"))

		keys, err := b.Clear(ctx, "clear-me")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, keys)

		_, ok, err := b.Get(ctx, "clear-me", "a")
		require.NoError(t, err)
		assert.False(t, ok)

		v, ok, err := b.Get(ctx, "keep-me", "a")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "3", v)
	})
}

func TestMemoryBackend(t *testing.T) {
	testBackendContract(t, NewMemoryBackend())
}

func TestGormBackend(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "prefs.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Entry{}))

	testBackendContract(t, NewGormBackend(db))
}

func TestGormBackend_PersistsAcrossStores(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.db")
	ctx := context.Background()

	open := func() *gorm.DB {
		db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
		require.NoError(t, err)
		require.NoError(t, db.AutoMigrate(&Entry{}))
		return db
	}

	first := New(NewGormBackend(open()), NamespaceSession, nil)
	require.NoError(t, first.Save(ctx, KeyUserUID, "alice"))
	first.Close()

	second := New(NewGormBackend(open()), NamespaceSession, nil)
	defer second.Close()
	v, ok, err := second.Get(ctx, KeyUserUID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "alice", v)
}
