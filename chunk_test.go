package res25joy_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	res25joy "github.com/KinkiKnights/res25-joy"
)

func patternBytes(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 251)
	}
	return b
}

func TestCopyChunks_Integrity(t *testing.T) {
	const chunkSize = 64

	tt := []struct {
		Name string
		Size int
	}{
		{Name: "empty", Size: 0},
		{Name: "smaller than chunk", Size: chunkSize - 1},
		{Name: "exactly one chunk", Size: chunkSize},
		{Name: "multiple of chunk", Size: chunkSize * 4},
		{Name: "not a multiple of chunk", Size: chunkSize*3 + 17},
		{Name: "single byte", Size: 1},
	}

	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			src := patternBytes(tc.Size)
			var dst bytes.Buffer

			n, err := res25joy.CopyChunks(&dst, bytes.NewReader(src), chunkSize, int64(tc.Size))

			require.NoError(t, err)
			assert.Equal(t, int64(tc.Size), n)
			assert.Equal(t, src, dst.Bytes())
		})
	}
}

func TestCopyChunks_LimitIsAuthoritative(t *testing.T) {
	src := patternBytes(100)
	var dst bytes.Buffer

	// Client "sends more" than declared: only the declared bytes move.
	n, err := res25joy.CopyChunks(&dst, bytes.NewReader(src), 16, 40)

	require.NoError(t, err)
	assert.Equal(t, int64(40), n)
	assert.Equal(t, src[:40], dst.Bytes())
}

func TestCopyChunks_NegativeLimitCopiesToEOF(t *testing.T) {
	src := patternBytes(130)
	var dst bytes.Buffer

	n, err := res25joy.CopyChunks(&dst, bytes.NewReader(src), 32, -1)

	require.NoError(t, err)
	assert.Equal(t, int64(130), n)
	assert.Equal(t, src, dst.Bytes())
}

func TestCopyChunks_PrematureEOFIsShortNotError(t *testing.T) {
	src := patternBytes(30)
	var dst bytes.Buffer

	// Declared 100 bytes but the "connection" closes after 30.
	n, err := res25joy.CopyChunks(&dst, bytes.NewReader(src), 16, 100)

	require.NoError(t, err)
	assert.Equal(t, int64(30), n)
	assert.Equal(t, src, dst.Bytes())
}

type errWriter struct {
	failAfter int
	written   int
}

func (w *errWriter) Write(p []byte) (int, error) {
	if w.written+len(p) > w.failAfter {
		n := w.failAfter - w.written
		w.written = w.failAfter
		return n, errors.New("disk full")
	}
	w.written += len(p)
	return len(p), nil
}

func TestCopyChunks_WriteErrorPropagates(t *testing.T) {
	src := patternBytes(100)

	n, err := res25joy.CopyChunks(&errWriter{failAfter: 40}, bytes.NewReader(src), 32, 100)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Less(t, n, int64(100))
}

type errReader struct {
	data []byte
	err  error
	pos  int
}

func (r *errReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, r.err
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

func TestCopyChunks_ReadErrorPropagates(t *testing.T) {
	r := &errReader{data: patternBytes(20), err: errors.New("connection reset")}
	var dst bytes.Buffer

	n, err := res25joy.CopyChunks(&dst, r, 8, 100)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, int64(20), n)
}

func TestCopyChunks_EOFReaderAtLimit(t *testing.T) {
	// Reader that returns data and io.EOF in the same call.
	r := io.LimitReader(bytes.NewReader(patternBytes(50)), 50)
	var dst bytes.Buffer

	n, err := res25joy.CopyChunks(&dst, r, 50, 50)

	require.NoError(t, err)
	assert.Equal(t, int64(50), n)
}
