package filesystem_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	res25joy "github.com/KinkiKnights/res25-joy"
	"github.com/KinkiKnights/res25-joy/filesystem"
)

func newTestStore(t *testing.T) (*filesystem.Store, string) {
	t.Helper()

	dir := t.TempDir()
	root, err := os.OpenRoot(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = root.Close() })

	return filesystem.NewStore(root, 64), dir
}

func patternBytes(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 251)
	}
	return b
}

func TestStore_SaveOpenRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	// 3 chunks + remainder at the store's 64-byte chunk size.
	content := patternBytes(64*3 + 17)

	saved, err := store.Save(ctx, "sub/dir/file.bin", bytes.NewReader(content), int64(len(content)))
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), saved.BytesWritten)
	assert.NotEmpty(t, saved.Etag)

	info, reader, err := store.Open(ctx, "sub/dir/file.bin")
	require.NoError(t, err)
	defer func() { _ = reader.Close() }()

	assert.Equal(t, int64(len(content)), info.Size)
	assert.Equal(t, "application/octet-stream", info.ContentType)

	got, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestStore_SaveHonorsDeclaredLimit(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	content := patternBytes(200)

	// Client sends 200 bytes but only 150 are declared.
	saved, err := store.Save(ctx, "capped.bin", bytes.NewReader(content), 150)
	require.NoError(t, err)
	assert.Equal(t, int64(150), saved.BytesWritten)

	info, reader, err := store.Open(ctx, "capped.bin")
	require.NoError(t, err)
	defer func() { _ = reader.Close() }()

	assert.Equal(t, int64(150), info.Size)
	got, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, content[:150], got)
}

func TestStore_SaveShortBody(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	// Declared 500 bytes, connection yields only 80: short file, no error.
	saved, err := store.Save(ctx, "short.bin", bytes.NewReader(patternBytes(80)), 500)
	require.NoError(t, err)
	assert.Equal(t, int64(80), saved.BytesWritten)

	info, reader, err := store.Open(ctx, "short.bin")
	require.NoError(t, err)
	_ = reader.Close()
	assert.Equal(t, int64(80), info.Size)
}

type failingReader struct {
	data []byte
	pos  int
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, errors.New("connection reset")
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

func TestStore_FailedSaveLeavesPartialFile(t *testing.T) {
	store, dir := newTestStore(t)
	ctx := context.Background()

	_, err := store.Save(ctx, "partial.bin", &failingReader{data: patternBytes(100)}, 500)
	require.Error(t, err)

	// The partial destination stays on disk; uploads are not atomic.
	stat, statErr := os.Stat(filepath.Join(dir, "partial.bin"))
	require.NoError(t, statErr)
	assert.Equal(t, int64(100), stat.Size())
}

func TestStore_SaveLastWriterWins(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Save(ctx, "same.bin", bytes.NewReader(patternBytes(100)), 100)
	require.NoError(t, err)

	second := []byte("second")
	_, err = store.Save(ctx, "same.bin", bytes.NewReader(second), int64(len(second)))
	require.NoError(t, err)

	info, reader, err := store.Open(ctx, "same.bin")
	require.NoError(t, err)
	defer func() { _ = reader.Close() }()

	assert.Equal(t, int64(len(second)), info.Size)
	got, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, second, got)
}

func TestStore_OpenMissing(t *testing.T) {
	store, _ := newTestStore(t)

	_, _, err := store.Open(context.Background(), "nope.txt")

	assert.ErrorIs(t, err, res25joy.ErrNotFound)
}

func TestStore_OpenDirectory(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Save(ctx, "docs/readme.txt", bytes.NewReader([]byte("hi")), 2)
	require.NoError(t, err)

	_, _, err = store.Open(ctx, "docs")
	assert.ErrorIs(t, err, res25joy.ErrIsDir)

	// Empty path is the root itself.
	_, _, err = store.Open(ctx, "")
	assert.ErrorIs(t, err, res25joy.ErrIsDir)
}

func TestStore_OpenDetectsContentType(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Save(ctx, "page.html", bytes.NewReader([]byte("<html></html>")), 13)
	require.NoError(t, err)

	info, reader, err := store.Open(ctx, "page.html")
	require.NoError(t, err)
	_ = reader.Close()

	assert.Contains(t, info.ContentType, "text/html")
}

func TestStore_ReadDir(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Save(ctx, "b.txt", bytes.NewReader([]byte("bb")), 2)
	require.NoError(t, err)
	_, err = store.Save(ctx, "a.txt", bytes.NewReader([]byte("a")), 1)
	require.NoError(t, err)
	_, err = store.Save(ctx, "sub/c.txt", bytes.NewReader([]byte("ccc")), 3)
	require.NoError(t, err)

	entries, err := store.ReadDir(ctx, "")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Sorted by name.
	assert.Equal(t, "a.txt", entries[0].Name)
	assert.Equal(t, int64(1), entries[0].Size)
	assert.Equal(t, "b.txt", entries[1].Name)
	assert.Equal(t, "sub", entries[2].Name)
	assert.True(t, entries[2].IsDir)

	_, err = store.ReadDir(ctx, "missing")
	assert.ErrorIs(t, err, res25joy.ErrNotFound)
}

func TestStore_List(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Save(ctx, "top.txt", bytes.NewReader([]byte("top")), 3)
	require.NoError(t, err)
	_, err = store.Save(ctx, "nested/deep/file.bin", bytes.NewReader(patternBytes(10)), 10)
	require.NoError(t, err)

	files, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, files, 2)

	paths := []string{files[0].Path, files[1].Path}
	assert.Contains(t, paths, "top.txt")
	assert.Contains(t, paths, filepath.Join("nested", "deep", "file.bin"))
}

func TestStore_CancelledContext(t *testing.T) {
	store, _ := newTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := store.Open(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)

	_, err = store.Save(ctx, "x", bytes.NewReader(nil), 0)
	assert.ErrorIs(t, err, context.Canceled)
}
