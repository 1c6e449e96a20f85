package res25joy

import (
	"fmt"
	"io"
)

// DefaultChunkSize is the fallback chunk size when none is configured.
const DefaultChunkSize = 1 << 20 // 1 MiB

// CopyChunks copies up to limit bytes from src to dst using reads no larger
// than chunkSize. The buffer is allocated once per call, so one chunk is the
// upper bound on memory held for the transfer. Each chunk is fully written
// before the next read starts.
//
// A negative limit copies until EOF. With a non-negative limit, EOF before
// limit bytes is not an error: the copy stops and the short count is
// returned. The limit is authoritative; bytes past it are never read.
func CopyChunks(dst io.Writer, src io.Reader, chunkSize int, limit int64) (int64, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	buf := make([]byte, chunkSize)
	var written int64

	for limit < 0 || written < limit {
		n := chunkSize
		if limit >= 0 && limit-written < int64(n) {
			n = int(limit - written)
		}

		nr, readErr := src.Read(buf[:n])
		if nr > 0 {
			nw, writeErr := dst.Write(buf[:nr])
			written += int64(nw)
			if writeErr != nil {
				return written, fmt.Errorf("copy chunks: write: %w", writeErr)
			}
			if nw < nr {
				return written, fmt.Errorf("copy chunks: %w", io.ErrShortWrite)
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				return written, nil
			}
			return written, fmt.Errorf("copy chunks: read: %w", readErr)
		}
		if nr == 0 {
			// Connection yielded nothing without an error. Treat as a
			// premature close and report the short count.
			return written, nil
		}
	}

	return written, nil
}
