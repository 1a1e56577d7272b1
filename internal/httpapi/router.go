package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/acornley/hookgate/internal/health"
	"github.com/acornley/hookgate/internal/logging"
)

// NewRouter mounts the gateway API, health probes, and prometheus metrics.
func NewRouter(h *Handler, src health.Source, reg *prometheus.Registry, logger *logging.Logger) *chi.Mux {
	if logger == nil {
		logger = logging.New("hookgate-http")
	}

	r := chi.NewMux()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", SignatureHeader},
		MaxAge:         300,
	}))

	r.Post("/webhook", h.HandleWebhook)
	r.Get("/generate-test-token", h.HandleGenerateTestToken)
	r.Get("/queue-status", h.HandleQueueStatus)

	healthHandler := health.HTTPHandler(src)
	r.Get("/health", healthHandler)
	r.Get("/healthz", healthHandler)

	if reg != nil {
		r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}
	return r
}

// requestLogger emits one structured line per request.
func requestLogger(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.WithContext(r.Context()).WithFields(map[string]any{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      ww.Status(),
				"duration_ms": time.Since(start).Milliseconds(),
			}).Info("request")
		})
	}
}
