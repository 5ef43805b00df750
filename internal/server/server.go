// Package server exposes the extraction and question generation pipeline
// over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/abhisek/docquiz/internal/pipeline"
	"github.com/abhisek/docquiz/internal/questiongen"
)

// Uploader extracts text from an uploaded file.
type Uploader interface {
	ExtractUpload(name string, r io.Reader) (string, error)
}

// Runner generates questions from extracted text.
type Runner interface {
	RunText(ctx context.Context, source, text string, types []questiongen.QuestionType, count int) (*pipeline.Result, error)
}

// Config holds server settings.
type Config struct {
	Addr           string
	DefaultCount   int
	MaxUploadBytes int64
	// Unavailable, when set, is returned by the generation endpoint instead
	// of running the pipeline. It carries the provider setup error, for
	// example a missing credential.
	Unavailable error
}

// DefaultConfig returns the settings used by "docquiz serve".
func DefaultConfig() Config {
	return Config{
		Addr:           ":8080",
		DefaultCount:   questiongen.DefaultCount,
		MaxUploadBytes: 32 << 20,
	}
}

// Server is the HTTP API.
type Server struct {
	config   Config
	uploader Uploader
	runner   Runner
	logger   *zap.Logger
	router   *chi.Mux
}

// New creates a Server. runner may be nil when cfg.Unavailable is set.
func New(cfg Config, uploader Uploader, runner Runner, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultCount == 0 {
		cfg.DefaultCount = questiongen.DefaultCount
	}
	if cfg.MaxUploadBytes == 0 {
		cfg.MaxUploadBytes = DefaultConfig().MaxUploadBytes
	}

	s := &Server{config: cfg, uploader: uploader, runner: runner, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/v1", func(r chi.Router) {
		r.Post("/questions", s.handleQuestions)
		r.Post("/extract", s.handleExtract)
	})

	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server started", zap.String("addr", s.config.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("stopping server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}
	return nil
}

// requestLogger logs one line per request through zap.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("http request",
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
