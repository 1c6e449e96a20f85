// Package config loads and validates the transfer server configuration.
//
// Values are resolved with the usual precedence: command-line flags over
// environment variables (RES25_ prefix) over config files over built-in
// defaults. The defaults describe a permissive LAN file server: listen on
// 0.0.0.0:8000, 1 MiB chunks, 300 second socket timeout, 50 MiB upload
// cap, 100 concurrent connections, wide-open CORS.
package config
