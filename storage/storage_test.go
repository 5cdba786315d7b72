package storage

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoragePutDownloadDelete(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	key := SnapshotKey("great-wall-space-2024", time.Date(2024, 10, 4, 14, 30, 0, 0, time.UTC))
	assert.Equal(t, "results/great-wall-space-2024/20241004T143000.000Z.json", key)

	require.NoError(t, s.Put(ctx, key, "application/json", strings.NewReader(`{"v":1}`)))
	require.NoError(t, s.Put(ctx, key, "application/json", strings.NewReader(`{"v":2}`)))

	rc, err := s.Download(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, `{"v":2}`, string(data))

	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Download(ctx, key)
	assert.ErrorIs(t, err, ErrObjectNotFound)
	assert.NoError(t, s.Delete(ctx, key), "deleting a missing object is not an error")
}

func TestLocalStoragePing(t *testing.T) {
	dir := t.TempDir() + "/files"
	s, err := NewLocalStorage(dir)
	require.NoError(t, err)
	assert.NoError(t, s.Ping(context.Background()))

	require.NoError(t, os.RemoveAll(dir))
	assert.Error(t, s.Ping(context.Background()))
}

func TestLocalStorageRejectsEscapingKeys(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	err = s.Put(context.Background(), "../outside.json", "application/json", strings.NewReader("{}"))
	assert.Error(t, err)
}

func TestUpload(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	id := uuid.MustParse("3f2b8c1e-0000-4000-8000-000000000001")
	key, err := Upload(context.Background(), s, id, "my meme.PNG", strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, "uploads/3f/3f2b8c1e-0000-4000-8000-000000000001_my_meme.png", key)
	assert.Equal(t, "image/png", getContentType("x.PNG"))
}

func TestNewStorage(t *testing.T) {
	_, err := NewStorage(StorageConfig{Type: StorageTypeS3})
	assert.Error(t, err)

	_, err = NewStorage(StorageConfig{Type: "ftp"})
	assert.Error(t, err)

	s, err := NewStorage(StorageConfig{Type: StorageTypeLocal, LocalPath: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "local", s.Name())
}
