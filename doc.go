// Package res25joy implements a chunked HTTP file-transfer server library.
//
// The server streams large files between sockets and the filesystem in
// fixed-size chunks, so per-transfer memory never exceeds one chunk
// regardless of file size. Downloads stream existing files, uploads stream
// request bodies to disk with a hard size cap, and every response carries
// CORS and Accept-Ranges capability headers.
//
// # Key Components
//
//   - TransferService: combines a Storage backend with transfer limits
//   - Storage: interface for file operations under the served root
//   - CopyChunks: the bounded-memory copy primitive both directions share
//
// # Example Usage
//
//	root, err := os.OpenRoot(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	store := filesystem.NewStore(root, 1<<20)
//
//	service, err := res25joy.NewTransferService(store, res25joy.ServiceConfig{
//	    ChunkSize:     1 << 20,
//	    MaxUploadSize: 50 << 20,
//	})
//
//	// Stream a stored file
//	info, content, err := service.Fetch(ctx, "videos/demo.mp4")
//
//	// Store an upload of a declared length
//	result, err := service.Receive(ctx, "incoming.bin", body, declared)
//
// See the http package for the REST surface and the filesystem package for
// the storage backend.
package res25joy
