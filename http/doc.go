// Package http provides the HTTP surface of the transfer server.
//
// The router exposes three operations against the served root:
//
//   - GET /<path>: stream a stored file in fixed-size chunks, render an
//     HTML listing for directories, or 404
//   - POST /<path>: stream an upload of a declared length to disk,
//     replying with a small JSON body on success
//   - OPTIONS /<any>: CORS preflight, 200 with an empty body
//
// Every response, errors included, carries the configured CORS headers and
// an Accept-Ranges capability flag. Bodies never pass through memory whole:
// both directions use the chunked copy primitive from the root package, so
// a multi-gigabyte transfer holds at most one chunk at a time.
//
// # Usage
//
//	handlerCfg := http.HandlerConfig{
//	    CORS: http.CORSConfig{AllowedOrigins: []string{"*"}},
//	}
//	handler := http.NewHandler(&handlerCfg, service)
//	srv := &nethttp.Server{Handler: handler.Router()}
//
// The service parameter must implement the Service interface with Fetch,
// Receive, Browse, and ChunkSize methods.
package http
