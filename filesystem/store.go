// Package filesystem provides the filesystem storage backend for the
// transfer server. Reads and writes go through os.Root so every path stays
// sandboxed under the served directory, and uploads are written in place in
// bounded chunks with a SHA256 etag computed during streaming.
package filesystem

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"sort"

	res25joy "github.com/KinkiKnights/res25-joy"
)

// Store provides file system storage operations under a sandboxed root.
type Store struct {
	root      *os.Root
	chunkSize int
}

// NewStore creates a Store over the given root directory. chunkSize bounds
// the buffer used for streaming writes; zero or negative selects the
// default.
func NewStore(root *os.Root, chunkSize int) *Store {
	if chunkSize <= 0 {
		chunkSize = res25joy.DefaultChunkSize
	}
	return &Store{root: root, chunkSize: chunkSize}
}

// Open opens a file for reading. Returns res25joy.ErrNotFound if the path
// does not exist and res25joy.ErrIsDir if it names a directory. The empty
// path resolves to the root directory itself.
func (s *Store) Open(ctx context.Context, path string) (res25joy.FileInfo, io.ReadSeekCloser, error) {
	if err := ctx.Err(); err != nil {
		return res25joy.FileInfo{}, nil, err
	}

	target := path
	if target == "" {
		target = "."
	}

	stat, err := s.root.Stat(target)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return res25joy.FileInfo{}, nil, res25joy.ErrNotFound
		}
		return res25joy.FileInfo{}, nil, fmt.Errorf("failed to stat file: %w", err)
	}

	if stat.IsDir() {
		return res25joy.FileInfo{}, nil, res25joy.ErrIsDir
	}

	f, err := s.root.Open(target)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return res25joy.FileInfo{}, nil, res25joy.ErrNotFound
		}
		return res25joy.FileInfo{}, nil, fmt.Errorf("failed to open file: %w", err)
	}

	info := res25joy.FileInfo{
		Path:        path,
		Size:        stat.Size(),
		ContentType: detectContentType(path),
		ModTime:     stat.ModTime(),
	}

	return info, f, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// Save streams at most declared bytes of content into the file at path,
// creating intermediate directories as needed. The destination is written
// in place: a failed or cancelled save leaves the partial file on disk, and
// concurrent saves to the same path race with last writer wins. The
// returned SaveResult carries the byte count and a SHA256-based etag of
// what was written.
func (s *Store) Save(ctx context.Context, path string, content io.Reader, declared int64) (res25joy.SaveResult, error) {
	if err := ctx.Err(); err != nil {
		return res25joy.SaveResult{}, err
	}

	destDir := filepath.Dir(path)
	if destDir != "." {
		if err := s.root.MkdirAll(destDir, 0o755); err != nil {
			return res25joy.SaveResult{}, fmt.Errorf("could not create intermediate directories: %w", err)
		}
	}

	f, err := s.root.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return res25joy.SaveResult{}, fmt.Errorf("could not open destination file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("failed to close destination file", "path", path, "err", closeErr)
		}
	}()

	h := sha256.New()
	w := io.MultiWriter(h, f)

	written, err := res25joy.CopyChunks(w, &ctxReader{ctx: ctx, r: content}, s.chunkSize, declared)
	if err != nil {
		return res25joy.SaveResult{}, fmt.Errorf("could not copy file contents: %w", err)
	}

	if err := f.Sync(); err != nil {
		return res25joy.SaveResult{}, fmt.Errorf("could not sync written file: %w", err)
	}

	etag := hex.EncodeToString(h.Sum(nil))

	return res25joy.SaveResult{BytesWritten: written, Etag: etag}, nil
}

// ReadDir returns the entries of a directory under the root, sorted by
// name. The empty path lists the root itself. Returns res25joy.ErrNotFound
// if the directory does not exist.
func (s *Store) ReadDir(ctx context.Context, path string) ([]res25joy.DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	target := path
	if target == "" {
		target = "."
	}

	dirEntries, err := fs.ReadDir(s.root.FS(), target)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, res25joy.ErrNotFound
		}
		return nil, fmt.Errorf("could not read directory: %w", err)
	}

	entries := make([]res25joy.DirEntry, 0, len(dirEntries))
	for _, entry := range dirEntries {
		info, infoErr := entry.Info()
		if infoErr != nil {
			return nil, fmt.Errorf("read dir: %w", infoErr)
		}

		entries = append(entries, res25joy.DirEntry{
			Name:    entry.Name(),
			Size:    info.Size(),
			IsDir:   entry.IsDir(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	return entries, nil
}

// List recursively walks the root directory and returns all regular files
// with their size, content type, and modification time. Intended for the
// one-time startup inventory.
func (s *Store) List(ctx context.Context) ([]res25joy.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var files []res25joy.FileInfo

	err := fs.WalkDir(s.root.FS(), ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return infoErr
		}

		files = append(files, res25joy.FileInfo{
			Path:        path,
			Size:        info.Size(),
			ContentType: detectContentType(path),
			ModTime:     info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	return files, nil
}

func detectContentType(path string) string {
	ext := filepath.Ext(path)
	contentType := mime.TypeByExtension(ext)

	if contentType == "" {
		return "application/octet-stream"
	}

	return contentType
}
