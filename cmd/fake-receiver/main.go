package main

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/acornley/hookgate/internal/config"
	"github.com/acornley/hookgate/internal/delivery"
	"github.com/acornley/hookgate/internal/logging"
)

type receiver struct {
	failFirstN int64
	secret     string
	maxSkew    time.Duration
	reqCount   atomic.Int64
	logger     *logging.Logger
}

func main() {
	cfg := config.FromEnv()
	logger := logging.New("hookgate-fake-receiver")

	rcv := &receiver{
		failFirstN: int64(cfg.Receiver.FailFirstN),
		secret:     cfg.Receiver.Secret,
		maxSkew:    time.Duration(cfg.Receiver.LeewaySeconds) * time.Second,
		logger:     logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`{"ok":true}`)) })
	mux.HandleFunc("/hook", rcv.handleHook)

	srv := &http.Server{
		Addr:         cfg.Receiver.Port,
		Handler:      mux,
		ReadTimeout:  cfg.Receiver.ReadTimeout,
		WriteTimeout: cfg.Receiver.WriteTimeout,
		IdleTimeout:  cfg.Receiver.IdleTimeout,
	}
	logger.Plain().WithField("addr", srv.Addr).Info("fake-receiver listening")
	if err := srv.ListenAndServe(); err != nil {
		logger.Plain().WithError(err).Fatal("fake-receiver failed")
	}
}

func (rc *receiver) handleHook(w http.ResponseWriter, r *http.Request) {
	n := rc.reqCount.Add(1)
	b, _ := io.ReadAll(r.Body)
	defer r.Body.Close()

	if rc.secret != "" {
		ts := r.Header.Get(delivery.TimestampHeader)
		sig := r.Header.Get(delivery.SignatureHeader)
		if ok, msg := verifySignature(rc.secret, b, ts, sig, rc.maxSkew); !ok {
			rc.logger.Plain().WithField("reason", msg).Warn("signature verification failed")
			http.Error(w, "invalid signature: "+msg, http.StatusUnauthorized)
			return
		}
	}

	// Simulate flakiness: first N requests -> 500
	if n <= rc.failFirstN {
		rc.logger.Plain().WithFields(map[string]any{
			"request": n,
			"of":      rc.failFirstN,
			"body":    truncate(string(b), 160),
		}).Info("failing on purpose")
		http.Error(w, "temporary failure", http.StatusInternalServerError)
		return
	}

	rc.logger.Plain().WithField("body", truncate(string(b), 160)).Info("webhook received")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`ok`))
}

func verifySignature(secret string, body []byte, ts, sigHeaderVal string, leeway time.Duration) (bool, string) {
	if ts == "" || sigHeaderVal == "" {
		return false, "missing headers"
	}
	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return false, "invalid timestamp"
	}
	// reject if timestamp is too old/new
	now := time.Now().Unix()
	if abs64(now-unix) > int64(leeway.Seconds()) {
		return false, "timestamp too far from now (outside leeway)"
	}
	got := strings.TrimPrefix(sigHeaderVal, "sha256=")
	if !delivery.VerifySignature(secret, body, ts, got) {
		return false, "sig mismatch"
	}
	return true, ""
}

// abs64 returns the absolute value of an int64
func abs64(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}

// truncate truncates a string to the specified length and adds an ellipsis if truncated
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return fmt.Sprintf("%s...", s[:n])
}
