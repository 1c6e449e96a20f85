package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/net/netutil"

	res25joy "github.com/KinkiKnights/res25-joy"
	"github.com/KinkiKnights/res25-joy/filesystem"
	joyhttp "github.com/KinkiKnights/res25-joy/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve [port]",
	Short: "Start the HTTP transfer server",
	Long: `Start the HTTP transfer server.

An optional positional port argument overrides the configured port and
must be a valid integer.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("host", "", "listen address (default: 0.0.0.0)")
	serveCmd.Flags().Int("port", 0, "listen port (default: 8000)")
	serveCmd.Flags().Int("max-connections", 0, "simultaneous connection cap (default: 100)")
	serveCmd.Flags().Int("timeout", 0, "socket timeout in seconds (default: 300)")
	serveCmd.Flags().Int("chunk-size", 0, "transfer chunk size in bytes (default: 1 MiB)")
	serveCmd.Flags().Int64("max-upload-size", 0, "upload size cap in bytes (default: 50 MiB)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg, err := configFromContext(ctx)
	if err != nil {
		return err
	}

	if len(args) == 1 {
		port, convErr := strconv.Atoi(args[0])
		if convErr != nil || port < 1 || port > 65535 {
			return fmt.Errorf("invalid port number: %s", args[0])
		}
		cfg.Server.Port = port
	}

	root, err := os.OpenRoot(cfg.Server.Root)
	if err != nil {
		return fmt.Errorf("open document root: %w", err)
	}
	defer func() { _ = root.Close() }()

	store := filesystem.NewStore(root, cfg.Transfer.ChunkSize)

	service, err := res25joy.NewTransferService(store, res25joy.ServiceConfig{
		ChunkSize:          cfg.Transfer.ChunkSize,
		MaxUploadSize:      cfg.Transfer.MaxUploadSize,
		LargeFileThreshold: cfg.Transfer.LargeFileThreshold,
	})
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	printBanner(ctx, cfg, service)

	handlerConfig := joyhttp.HandlerConfig{
		CORS:      cfg.CORS,
		Gzip:      cfg.Transfer.EnableGzip,
		GzipLevel: cfg.Transfer.GzipLevel,
	}
	handler := joyhttp.NewHandler(&handlerConfig, service)

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	// Connection cap: accepts beyond the limit queue in the listener
	// until an active connection finishes.
	ln = netutil.LimitListener(ln, cfg.Server.MaxConnections)

	timeout := time.Duration(cfg.Server.Timeout) * time.Second
	server := &http.Server{
		Handler:      handler.Router(),
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
		IdleTimeout:  timeout,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
		cancel()
	}()

	slog.Info("starting server", "addr", addr, "root", cfg.Server.Root,
		"chunk_size", cfg.Transfer.ChunkSize, "max_upload_size", cfg.Transfer.MaxUploadSize)
	if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
