// Package server exposes the scan pipeline over HTTP.
package server

import (
	_ "embed"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/label-scanner/internal/common"
	"github.com/joseph-ayodele/label-scanner/internal/pipeline"
)

//go:embed web/index.html
var indexPage []byte

// Service holds the handler dependencies.
type Service struct {
	processor *pipeline.Processor
	logger    *slog.Logger
}

func NewService(processor *pipeline.Processor, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{processor: processor, logger: logger}
}

// Handler returns the routed HTTP handler with request-ID and access
// logging applied.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /{$}", s.handleScan)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	return s.withRequestID(mux)
}

// NewHTTPServer builds the http.Server for the configured address.
func NewHTTPServer(cfg common.ServerConfig, svc *Service) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      svc.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Service) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := uuid.New().String()
		ctx := common.WithRequestID(r.Context(), rid)
		w.Header().Set("X-Request-ID", rid)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(ctx))

		s.logger.Info("http.request",
			"req_id", rid,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	})
}
