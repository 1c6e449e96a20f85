package res25joy

import "time"

// FileInfo describes a file (or directory) under the served root.
type FileInfo struct {
	Path        string    `json:"path"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	ModTime     time.Time `json:"mod_time"`
	IsDir       bool      `json:"is_dir"`
}

// DirEntry is a single row of a directory listing.
type DirEntry struct {
	Name    string
	Size    int64
	IsDir   bool
	ModTime time.Time
}

// SaveResult reports the outcome of a storage write.
type SaveResult struct {
	BytesWritten int64
	Etag         string
}

// UploadResult reports the outcome of a completed upload.
type UploadResult struct {
	Filename     string
	BytesWritten int64
	Etag         string
}
