package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/acornley/hookgate/internal/delivery"
	"github.com/acornley/hookgate/internal/logging"
)

func testLogger() *logging.Logger {
	l := logging.New("test")
	l.SetOutput(io.Discard)
	return l
}

func TestVerifySignature(t *testing.T) {
	secret := "test-secret"
	body := []byte("test payload")
	now := time.Now().Unix()
	nowStr := strconv.FormatInt(now, 10)
	leeway := 5 * time.Minute

	validSig := "sha256=" + delivery.Sign(secret, body, nowStr)

	tests := []struct {
		name        string
		timestamp   string
		signature   string
		expectValid bool
		expectedMsg string
	}{
		{
			name:        "valid signature",
			timestamp:   nowStr,
			signature:   validSig,
			expectValid: true,
		},
		{
			name:        "valid signature without prefix",
			timestamp:   nowStr,
			signature:   strings.TrimPrefix(validSig, "sha256="),
			expectValid: true,
		},
		{
			name:        "missing timestamp",
			timestamp:   "",
			signature:   validSig,
			expectValid: false,
			expectedMsg: "missing headers",
		},
		{
			name:        "missing signature",
			timestamp:   nowStr,
			signature:   "",
			expectValid: false,
			expectedMsg: "missing headers",
		},
		{
			name:        "invalid timestamp format",
			timestamp:   "not-a-number",
			signature:   validSig,
			expectValid: false,
			expectedMsg: "invalid timestamp",
		},
		{
			name:        "timestamp too old",
			timestamp:   strconv.FormatInt(now-600, 10),
			signature:   validSig,
			expectValid: false,
			expectedMsg: "timestamp too far from now (outside leeway)",
		},
		{
			name:        "signature mismatch",
			timestamp:   nowStr,
			signature:   "sha256=deadbeef",
			expectValid: false,
			expectedMsg: "sig mismatch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, msg := verifySignature(secret, body, tt.timestamp, tt.signature, leeway)

			if ok != tt.expectValid {
				t.Errorf("verifySignature() valid = %v, want %v (msg %q)", ok, tt.expectValid, msg)
			}
			if msg != tt.expectedMsg {
				t.Errorf("verifySignature() msg = %q, want %q", msg, tt.expectedMsg)
			}
		})
	}
}

func TestAbs64(t *testing.T) {
	tests := []struct {
		name string
		in   int64
		want int64
	}{
		{name: "positive", in: 5, want: 5},
		{name: "negative", in: -5, want: 5},
		{name: "zero", in: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := abs64(tt.in); got != tt.want {
				t.Errorf("abs64(%d) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		s    string
		n    int
		want string
	}{
		{name: "shorter than limit", s: "hello", n: 10, want: "hello"},
		{name: "exactly at limit", s: "hello", n: 5, want: "hello"},
		{name: "longer than limit", s: "hello world", n: 5, want: "hello..."},
		{name: "empty string", s: "", n: 5, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncate(tt.s, tt.n); got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.s, tt.n, got, tt.want)
			}
		})
	}
}

func TestHandleHook(t *testing.T) {
	tests := []struct {
		name       string
		failFirstN int64
		secret     string
		sign       bool
		requests   int
		wantCodes  []int
	}{
		{
			name:       "always succeeds with no flakiness",
			failFirstN: 0,
			requests:   2,
			wantCodes:  []int{http.StatusOK, http.StatusOK},
		},
		{
			name:       "fails first N then succeeds",
			failFirstN: 2,
			requests:   3,
			wantCodes:  []int{http.StatusInternalServerError, http.StatusInternalServerError, http.StatusOK},
		},
		{
			name:       "signed request accepted",
			secret:     "hook-secret",
			sign:       true,
			requests:   1,
			wantCodes:  []int{http.StatusOK},
		},
		{
			name:       "unsigned request rejected when secret set",
			secret:     "hook-secret",
			sign:       false,
			requests:   1,
			wantCodes:  []int{http.StatusUnauthorized},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := &receiver{
				failFirstN: tt.failFirstN,
				secret:     tt.secret,
				maxSkew:    5 * time.Minute,
				logger:     testLogger(),
			}

			for i := 0; i < tt.requests; i++ {
				body := []byte(`{"event":"user.created"}`)
				req := httptest.NewRequest(http.MethodPost, "/hook", strings.NewReader(string(body)))
				if tt.sign {
					ts := strconv.FormatInt(time.Now().Unix(), 10)
					req.Header.Set(delivery.TimestampHeader, ts)
					req.Header.Set(delivery.SignatureHeader, "sha256="+delivery.Sign(tt.secret, body, ts))
				}
				rec := httptest.NewRecorder()

				rc.handleHook(rec, req)

				if rec.Code != tt.wantCodes[i] {
					t.Errorf("request %d status = %d, want %d", i+1, rec.Code, tt.wantCodes[i])
				}
			}
		})
	}
}
