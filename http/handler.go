package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	res25joy "github.com/KinkiKnights/res25-joy"
)

type Service interface {
	Fetch(ctx context.Context, path string) (res25joy.FileInfo, io.ReadSeekCloser, error)
	Receive(ctx context.Context, path string, body io.Reader, declared int64) (res25joy.UploadResult, error)
	Browse(ctx context.Context, path string) ([]res25joy.DirEntry, error)
	ChunkSize() int
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
	ExposedHeaders []string `mapstructure:"exposed_headers"`
	MaxAge         int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	CORS      CORSConfig
	Gzip      bool
	GzipLevel int
}

// Handler provides the HTTP handlers for chunked file transfer.
type Handler struct {
	config  HandlerConfig
	service Service
}

// NewHandler creates a new Handler with the given configuration and service.
// Empty CORS fields fall back to permissive defaults matching the server's
// wire contract.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	h := &Handler{
		config:  *config,
		service: service,
	}

	if len(h.config.CORS.AllowedOrigins) == 0 {
		h.config.CORS.AllowedOrigins = []string{"*"}
	}
	if len(h.config.CORS.AllowedMethods) == 0 {
		h.config.CORS.AllowedMethods = []string{"GET", "POST", "OPTIONS", "PUT", "DELETE"}
	}
	if len(h.config.CORS.AllowedHeaders) == 0 {
		h.config.CORS.AllowedHeaders = []string{"Content-Type", "Content-Length", "Range"}
	}
	if len(h.config.CORS.ExposedHeaders) == 0 {
		h.config.CORS.ExposedHeaders = []string{"Content-Length", "Content-Range"}
	}

	return h
}

// Router returns the configured http.Handler. The transfer-header
// middleware runs outermost so every response, including preflights and
// errors, carries the CORS and Accept-Ranges headers.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestLogger)
	r.Use(h.transferHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.config.CORS.AllowedOrigins,
		AllowedMethods: h.config.CORS.AllowedMethods,
		AllowedHeaders: h.config.CORS.AllowedHeaders,
		ExposedHeaders: h.config.CORS.ExposedHeaders,
		MaxAge:         h.config.CORS.MaxAge,
	}))
	if h.config.Gzip {
		r.Use(middleware.Compress(h.config.GzipLevel, "text/html", "text/plain", "text/css", "application/json", "application/javascript"))
	}

	r.Get("/*", h.handleGet)
	r.Post("/*", h.handlePost)
	r.Options("/*", h.handleOptions)

	return r
}

// transferHeaders applies the fixed header set carried by every response.
func (h *Handler) transferHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := w.Header()
		header.Set("Access-Control-Allow-Origin", strings.Join(h.config.CORS.AllowedOrigins, ", "))
		header.Set("Access-Control-Allow-Methods", strings.Join(h.config.CORS.AllowedMethods, ", "))
		header.Set("Access-Control-Allow-Headers", strings.Join(h.config.CORS.AllowedHeaders, ", "))
		header.Set("Access-Control-Expose-Headers", strings.Join(h.config.CORS.ExposedHeaders, ", "))
		header.Set("Accept-Ranges", "bytes")
		next.ServeHTTP(w, r)
	})
}

func requestPath(r *http.Request) string {
	return strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/"), "/")
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	path := requestPath(r)

	if path != "" && !res25joy.IsValidPath(path) {
		WriteError(w, http.StatusBadRequest, "invalid_path", "Invalid path")
		return
	}

	info, content, err := h.service.Fetch(r.Context(), path)
	if err != nil {
		switch {
		case errors.Is(err, res25joy.ErrIsDir):
			// Directory URLs must end in a slash so the listing's
			// relative hrefs resolve against the directory itself.
			if path != "" && !strings.HasSuffix(r.URL.Path, "/") {
				target := r.URL.Path + "/"
				if r.URL.RawQuery != "" {
					target += "?" + r.URL.RawQuery
				}
				http.Redirect(w, r, target, http.StatusMovedPermanently)
				return
			}
			h.renderListing(w, r, path)
		case errors.Is(err, res25joy.ErrNotFound):
			writeNotFoundPage(w)
		default:
			HandleError(w, err)
		}
		return
	}
	defer func() { _ = content.Close() }()

	w.Header().Set("Content-Type", info.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	w.Header().Set("Last-Modified", info.ModTime.UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)

	// Headers are committed; a failure past this point can only tear the
	// connection down.
	if _, copyErr := res25joy.CopyChunks(w, content, h.service.ChunkSize(), info.Size); copyErr != nil {
		slog.Error("download aborted mid-stream", "path", path, "error", copyErr)
	}
}

func (h *Handler) handlePost(w http.ResponseWriter, r *http.Request) {
	path := requestPath(r)

	if path != "" && !res25joy.IsValidPath(path) {
		WriteError(w, http.StatusBadRequest, "invalid_path", "Invalid path")
		return
	}

	declared := r.ContentLength
	if declared < 0 {
		declared = 0
	}

	result, err := h.service.Receive(r.Context(), path, r.Body, declared)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, UploadResponse{
		Status:   "success",
		Filename: result.Filename,
	})
}

// handleOptions answers non-preflight OPTIONS requests. Browser preflights
// carrying Access-Control-Request-Method are intercepted by the cors
// middleware before reaching here; either way the reply is 200 with an
// empty body and the full header set already applied by transferHeaders.
func (h *Handler) handleOptions(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}
