package res25joy

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Storage defines the interface for file access under the served root.
// Implementations must be safe for concurrent use; the service shares one
// Storage across all in-flight requests.
//
// All methods accept a context for cancellation and timeout control.
type Storage interface {
	// Open opens a file for reading. It returns ErrNotFound if the path
	// does not exist and ErrIsDir if it names a directory (including the
	// empty path, which resolves to the root itself).
	//
	// The caller is responsible for closing the returned ReadSeekCloser.
	Open(ctx context.Context, path string) (FileInfo, io.ReadSeekCloser, error)

	// Save streams content to a file at the given path, reading at most
	// declared bytes. The destination is written in place as chunks
	// arrive: a failed or cancelled save leaves the partial file on disk,
	// and concurrent saves to the same path race with last writer wins.
	// Callers must not assume atomicity.
	Save(ctx context.Context, path string, content io.Reader, declared int64) (SaveResult, error)

	// ReadDir returns the entries of a directory under the root, sorted
	// by name. Returns ErrNotFound if the directory does not exist.
	ReadDir(ctx context.Context, path string) ([]DirEntry, error)

	// List recursively walks the root and returns every regular file.
	// Intended for startup inventory, not per-request use.
	List(ctx context.Context) ([]FileInfo, error)
}

// TransferService implements the chunked transfer operations on top of a
// Storage backend. It is read-only after construction and safe for
// concurrent use.
type TransferService struct {
	storage        Storage
	chunkSize      int
	maxUploadSize  int64
	largeThreshold int64
	log            *slog.Logger
}

// ServiceConfig holds configuration options for TransferService.
type ServiceConfig struct {
	ChunkSize          int   // per-transfer buffer bound (default: 1 MiB)
	MaxUploadSize      int64 // hard cap on declared upload length
	LargeFileThreshold int64 // downloads above this log a large-transfer line (default: 5 MiB)
	Logger             *slog.Logger
}

func NewTransferService(storage Storage, cfg ServiceConfig) (*TransferService, error) {
	if storage == nil {
		return nil, fmt.Errorf("new transfer service: storage cannot be nil")
	}
	if cfg.MaxUploadSize <= 0 {
		return nil, fmt.Errorf("new transfer service: max upload size must be positive, got %d", cfg.MaxUploadSize)
	}

	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	largeThreshold := cfg.LargeFileThreshold
	if largeThreshold <= 0 {
		largeThreshold = 5 << 20
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &TransferService{
		storage:        storage,
		chunkSize:      chunkSize,
		maxUploadSize:  cfg.MaxUploadSize,
		largeThreshold: largeThreshold,
		log:            logger,
	}, nil
}

// ChunkSize returns the configured per-transfer buffer bound.
func (s *TransferService) ChunkSize() int { return s.chunkSize }

// MaxUploadSize returns the configured upload cap in bytes.
func (s *TransferService) MaxUploadSize() int64 { return s.maxUploadSize }

// Fetch resolves a download path and opens it for streaming.
//
// Returns ErrNotFound if the path does not exist, ErrIsDir if it names a
// directory (callers typically render a listing instead), and the file's
// info plus an open reader otherwise. Downloads larger than the configured
// threshold log a large-transfer line before the first byte moves.
func (s *TransferService) Fetch(ctx context.Context, path string) (FileInfo, io.ReadSeekCloser, error) {
	if err := ctx.Err(); err != nil {
		return FileInfo{}, nil, fmt.Errorf("fetch %s: %w", path, err)
	}

	if path != "" && !IsValidPath(path) {
		return FileInfo{}, nil, fmt.Errorf("fetch %s: %w", path, ErrInvalidInput)
	}

	info, content, err := s.storage.Open(ctx, path)
	if err != nil {
		return FileInfo{}, nil, fmt.Errorf("fetch %s: %w", path, err)
	}

	if info.Size > s.largeThreshold {
		s.log.Info("large transfer starting", "path", info.Path, "size", info.Size)
	}

	return info, content, nil
}

// Receive streams an upload body to storage.
//
// The declared length is authoritative: at most declared bytes are read
// from body even if the client sends more, and Receive rejects the upload
// with ErrTooLarge before reading anything when declared exceeds the
// configured maximum. An empty path synthesizes a timestamp-based
// destination name. A body that closes early yields a short file and no
// error; the result reports the actual byte count.
func (s *TransferService) Receive(ctx context.Context, path string, body io.Reader, declared int64) (UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return UploadResult{}, fmt.Errorf("receive %s: %w", path, err)
	}

	if declared < 0 {
		return UploadResult{}, fmt.Errorf("receive %s: %w: negative declared length", path, ErrInvalidInput)
	}

	if declared > s.maxUploadSize {
		return UploadResult{}, fmt.Errorf("receive %s: declared %d bytes: %w", path, declared, ErrTooLarge)
	}

	name := path
	if name == "" {
		name = SynthesizeUploadName(time.Now())
	}

	if !IsValidPath(name) {
		return UploadResult{}, fmt.Errorf("receive %s: %w", name, ErrInvalidInput)
	}

	result, err := s.storage.Save(ctx, name, body, declared)
	if err != nil {
		return UploadResult{}, fmt.Errorf("receive %s: %w", name, err)
	}

	if result.BytesWritten < declared {
		s.log.Warn("short upload", "path", name, "declared", declared, "received", result.BytesWritten)
	}
	s.log.Info("upload stored", "path", name, "size", result.BytesWritten)

	return UploadResult{
		Filename:     name,
		BytesWritten: result.BytesWritten,
		Etag:         result.Etag,
	}, nil
}

// Browse returns the listing entries for a directory path.
func (s *TransferService) Browse(ctx context.Context, path string) ([]DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("browse %s: %w", path, err)
	}

	if path != "" && !IsValidPath(path) {
		return nil, fmt.Errorf("browse %s: %w", path, ErrInvalidInput)
	}

	entries, err := s.storage.ReadDir(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("browse %s: %w", path, err)
	}

	return entries, nil
}

// Inventory walks the served root and returns every stored file. Used for
// the startup banner.
func (s *TransferService) Inventory(ctx context.Context) ([]FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("inventory: %w", err)
	}

	files, err := s.storage.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("inventory: %w", err)
	}

	return files, nil
}
