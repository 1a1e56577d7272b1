package delivery

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/acornley/hookgate/internal/queue"
)

const (
	SignatureHeader = "X-Hookgate-Signature" // sha256=<hex>
	TimestampHeader = "X-Hookgate-Timestamp" // unix seconds
)

// HTTPDeliverer posts events to a fixed downstream endpoint, signing each
// request with HMAC-SHA256 over body||timestamp. One instance serves the
// whole queue; a worker-pool upgrade would shard events across several.
type HTTPDeliverer struct {
	targetURL string
	secret    string
	client    *http.Client
}

// NewHTTPDeliverer builds a deliverer for the given target. The timeout
// bounds every attempt; a timed-out attempt counts as a failure.
func NewHTTPDeliverer(targetURL, secret string, timeout time.Duration) *HTTPDeliverer {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPDeliverer{
		targetURL: targetURL,
		secret:    secret,
		client:    &http.Client{Timeout: timeout},
	}
}

// Deliver performs one delivery attempt. Non-2xx responses are reported as
// a StatusError so the processor can classify them.
func (d *HTTPDeliverer) Deliver(ctx context.Context, ev queue.Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ts := strconv.FormatInt(time.Now().Unix(), 10)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.targetURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(TimestampHeader, ts)
	req.Header.Set(SignatureHeader, "sha256="+Sign(d.secret, body, ts))

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &queue.StatusError{Code: resp.StatusCode}
	}
	return nil
}

// Sign computes the hex HMAC-SHA256 of body||timestamp.
func Sign(secret string, body []byte, ts string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	mac.Write([]byte(ts))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks an inbound signature the way receivers should.
func VerifySignature(secret string, body []byte, ts, signature string) bool {
	want := Sign(secret, body, ts)
	return hmac.Equal([]byte(want), []byte(signature))
}
