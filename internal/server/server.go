// Package server exposes the conversion pipeline over HTTP: generate a PDF
// from a CSV table, download it later by id, and report liveness and an
// OpenAPI description.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-cv2pdf"
	"github.com/alnah/go-cv2pdf/internal/store"
)

// Timeouts for the HTTP server.
const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

// Converter runs one conversion. *cv2pdf.Converter satisfies it for
// sequential use; PoolConverter for concurrent requests.
type Converter interface {
	Convert(ctx context.Context, input cv2pdf.Input) (*cv2pdf.Result, error)
}

// Compile-time interface implementation checks.
var (
	_ Converter = (*cv2pdf.Converter)(nil)
	_ Converter = (*PoolConverter)(nil)
)

// PoolConverter runs each conversion on a converter borrowed from a pool.
type PoolConverter struct {
	Pool *cv2pdf.ConverterPool
}

// Convert implements Converter.
func (p *PoolConverter) Convert(ctx context.Context, input cv2pdf.Input) (*cv2pdf.Result, error) {
	conv, err := p.Pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer p.Pool.Release(conv)
	return conv.Convert(ctx, input)
}

// Options configures a Server.
type Options struct {
	// MaxUploadBytes limits request bodies; 0 disables the limit.
	MaxUploadBytes int64
	// PublicURL is the base of download links and of the OpenAPI server
	// entry. Empty means derived from each request.
	PublicURL string
}

// Server holds the handlers' dependencies.
type Server struct {
	conv  Converter
	store *store.FileStore
	log   *zap.Logger
	opts  Options
	now   func() time.Time
}

// New returns a Server. A nil logger disables logging.
func New(conv Converter, st *store.FileStore, log *zap.Logger, opts Options) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{conv: conv, store: st, log: log, opts: opts, now: time.Now}
}

// Handler returns the routed handler wrapped with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /generate-cv", s.handleGenerate)
	mux.HandleFunc("GET /download-cv/{cv_id}", s.handleDownload)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /openapi.json", s.handleOpenAPI)
	return s.withRequestLog(mux)
}

// Run listens on addr and serves until ctx is done, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done. In-flight requests get
// shutdownTimeout to complete.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		ErrorLog:          zap.NewStdLog(s.log),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
