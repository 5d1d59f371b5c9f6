// Package server exposes the import pipeline over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ginjaninja78/pallet-manifest/internal/importer"
	"github.com/ginjaninja78/pallet-manifest/pkg/utils"
)

// Server is the HTTP server for the manifest importer.
type Server struct {
	importer  *importer.Importer
	router    *chi.Mux
	server    *http.Server
	maxUpload int64
	nameFmt   string
	logger    zerolog.Logger

	// importMu serializes imports so that replacing and cleaning the
	// session rows happens as one step.
	importMu sync.Mutex
}

// Options configures a Server.
type Options struct {
	// MaxUploadMB caps the size of an uploaded manifest.
	MaxUploadMB int

	// FileNameFormat names download files. See utils.GenerateOutputFileName.
	FileNameFormat string
}

// New creates a Server serving im.
func New(im *importer.Importer, opts Options, logger zerolog.Logger) *Server {
	if opts.MaxUploadMB <= 0 {
		opts.MaxUploadMB = 32
	}
	if opts.FileNameFormat == "" {
		opts.FileNameFormat = "{original}_{kind}_{timestamp}"
	}

	s := &Server{
		importer:  im,
		router:    chi.NewRouter(),
		maxUpload: int64(opts.MaxUploadMB) << 20,
		nameFmt:   opts.FileNameFormat,
		logger:    logger.With().Str("component", "server").Logger(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/import", s.handleImport)

		r.Get("/items", s.handleItems)
		r.Get("/summary", s.handleSummary)
		r.Get("/errors", s.handleErrors)
		r.Get("/report", s.handleReport)

		r.Get("/pallets", s.handlePallets)
		r.Get("/pallets/{palletNo}", s.handlePalletDetail)

		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handlePutSettings)

		r.Get("/export/items.csv", s.handleExportItems)
		r.Get("/export/report.xlsx", s.handleExportReport)
		r.Get("/export/items.xml", s.handleExportXML)
	})
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.logger.Info().Str("addr", addr).Msg("starting server")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// requestLogger logs one line per request with the chi request id.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

// writeJSON encodes v as JSON and writes it to w. The body is encoded before
// the status goes out so an encoding failure can still become a 500.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("json encode error")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"failed to encode response"}` + "\n"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// writeError writes a JSON error body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.logger.Warn().
		Str("request_id", middleware.GetReqID(r.Context())).
		Str("path", r.URL.Path).
		Int("status", status).
		Msg(message)
	s.writeJSON(w, status, map[string]string{"error": message})
}

// attachment sets download headers for a generated file.
func (s *Server) attachment(w http.ResponseWriter, contentType, kind, ext string) {
	name := utils.GenerateOutputFileName(s.nameFmt, ext, map[string]string{
		"kind":     kind,
		"original": utils.BaseName(s.importer.Session().Snapshot().Source),
	}, time.Now())
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
}
