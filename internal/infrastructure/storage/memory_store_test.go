package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryImageStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryImageStore("http://localhost:8080/images")

	data := []byte{0x89, 'P', 'N', 'G'}
	require.NoError(t, store.Upload(ctx, "t1/p1.png", data, "image/png"))
	data[0] = 0

	obj, ok := store.Object("t1/p1.png")
	require.True(t, ok)
	assert.Equal(t, byte(0x89), obj.Data[0])
	assert.Equal(t, "image/png", obj.ContentType)

	link, expiresAt, err := store.GenerateDownloadURL(ctx, "t1/p1.png", time.Minute)
	require.NoError(t, err)
	assert.Contains(t, link, "http://localhost:8080/images/t1/p1.png?expires=")
	assert.True(t, expiresAt.After(time.Now()))

	require.NoError(t, store.DeleteObject(ctx, "t1/p1.png"))
	assert.Equal(t, 0, store.Len())
	require.NoError(t, store.DeleteObject(ctx, "missing.png"))
}

func TestMemoryImageStore_EmptyKey(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryImageStore("")

	assert.Equal(t, "http://localhost/images", store.BaseURL)
	assert.Error(t, store.Upload(ctx, "", nil, ""))
	_, _, err := store.GenerateDownloadURL(ctx, "", time.Minute)
	assert.Error(t, err)
	assert.Error(t, store.DeleteObject(ctx, ""))
}
