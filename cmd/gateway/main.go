package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/acornley/hookgate/internal/auth"
	"github.com/acornley/hookgate/internal/config"
	"github.com/acornley/hookgate/internal/delivery"
	"github.com/acornley/hookgate/internal/httpapi"
	"github.com/acornley/hookgate/internal/intake"
	"github.com/acornley/hookgate/internal/logging"
	"github.com/acornley/hookgate/internal/metrics"
	"github.com/acornley/hookgate/internal/tracing"
)

func main() {
	cfg := config.FromEnv()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize structured logging
	logger := logging.New("hookgate-gateway")

	// Initialize OpenTelemetry tracing
	shutdownTracing, err := tracing.InitTracing(ctx, "hookgate-gateway")
	if err != nil {
		logger.Plain().WithError(err).Fatal("Failed to initialize tracing")
	}
	defer shutdownTracing()

	// Prom metrics
	reg := prometheus.NewRegistry()
	metrics.MustRegister(reg)

	// Signature verification and delivery target
	verifier := auth.NewTokenVerifier(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.Audience)
	deliverer := delivery.NewHTTPDeliverer(cfg.Delivery.TargetURL, cfg.Delivery.SigningSecret, cfg.Delivery.Timeout)

	// Queue service + worker
	svc := intake.NewService(deliverer, cfg.Queue.MaxAttempts, cfg.Queue.HistoryCapacity, logger)
	go svc.Run(ctx)

	handler := httpapi.NewHandler(svc, verifier, verifier, cfg.Auth.TokenTTL, logger)
	router := httpapi.NewRouter(handler, svc, reg, logger)

	httpSrv := &http.Server{
		Addr:         cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Plain().WithField("addr", httpSrv.Addr).Info("gateway HTTP server starting")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Plain().WithError(err).Fatal("gateway HTTP server failed")
		}
	}()

	// Graceful stop
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
	<-stop

	logger.Plain().Info("Shutting down gateway")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = httpSrv.Shutdown(shutdownCtx)

	// Let in-flight work settle, then stop the worker.
	svc.ProcessAvailable(shutdownCtx)
	cancel()
	logger.Plain().Info("gateway stopped")
}
