package blob

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_ContentAddressed(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	id1, err := store.Put(ctx, []byte("img"), "image/png")
	require.NoError(t, err)
	id2, err := store.Put(ctx, []byte("img"), "image/png")
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
	assert.Equal(t, Key([]byte("img")), id1)
	assert.Len(t, id1, 64)
	assert.Equal(t, 1, store.Len())

	b, err := store.Get(ctx, id1)
	require.NoError(t, err)
	assert.Equal(t, []byte("img"), b.Data)
	assert.Equal(t, "image/png", b.ContentType)
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	id, _ := store.Put(ctx, []byte("abc"), "image/jpeg")

	b, err := store.Get(ctx, id)
	require.NoError(t, err)
	b.Data[0] = 'z'

	again, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again.Data)
}

func TestMemoryStore_Delete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	id, _ := store.Put(ctx, []byte("abc"), "image/jpeg")

	require.NoError(t, store.Delete(ctx, id))
	require.NoError(t, store.Delete(ctx, id))

	_, err := store.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}
