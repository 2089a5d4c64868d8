package client

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")

	store, err := OpenSQLiteStore(path)
	require.NoError(t, err)

	_, ok, err := store.Get(ctx, storeKeyToken)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, storeKeyToken, "first"))
	require.NoError(t, store.Set(ctx, storeKeyToken, "second"))
	require.NoError(t, store.Set(ctx, storeKeyUser, `{"idUsuario":1}`))
	require.NoError(t, store.Close())

	store, err = OpenSQLiteStore(path)
	require.NoError(t, err)
	defer store.Close()

	v, ok, err := store.Get(ctx, storeKeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "second", v)

	require.NoError(t, store.Delete(ctx, storeKeyToken, storeKeyUser))
	_, ok, err = store.Get(ctx, storeKeyUser)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, "k", "v"))
	v, ok, _ := store.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	require.NoError(t, store.Delete(ctx, "k", "missing"))
	_, ok, _ = store.Get(ctx, "k")
	assert.False(t, ok)
}
