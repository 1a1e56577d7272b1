package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/acornley/hookgate/internal/queue"
)

func TestHTTPDeliverer_Deliver(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantErr    bool
		wantStatus int
	}{
		{name: "200 ok", statusCode: http.StatusOK, wantErr: false},
		{name: "204 no content", statusCode: http.StatusNoContent, wantErr: false},
		{name: "500 server error", statusCode: http.StatusInternalServerError, wantErr: true, wantStatus: 500},
		{name: "404 not found", statusCode: http.StatusNotFound, wantErr: true, wantStatus: 404},
		{name: "429 throttled", statusCode: http.StatusTooManyRequests, wantErr: true, wantStatus: 429},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))
			defer srv.Close()

			d := NewHTTPDeliverer(srv.URL, "secret", 5*time.Second)
			err := d.Deliver(context.Background(), queue.Event{Type: "user.created"})

			if (err != nil) != tt.wantErr {
				t.Fatalf("Deliver() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var se *queue.StatusError
				if !errors.As(err, &se) {
					t.Fatalf("Deliver() error = %v, want StatusError", err)
				}
				if se.Code != tt.wantStatus {
					t.Errorf("StatusError.Code = %d, want %d", se.Code, tt.wantStatus)
				}
			}
		})
	}
}

func TestHTTPDeliverer_SignsRequests(t *testing.T) {
	const secret = "endpoint-secret"
	var (
		gotBody []byte
		gotTS   string
		gotSig  string
		gotCT   string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotTS = r.Header.Get(TimestampHeader)
		gotSig = r.Header.Get(SignatureHeader)
		gotCT = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewHTTPDeliverer(srv.URL, secret, 5*time.Second)
	ev := queue.Event{Type: "order.paid", Data: map[string]any{"amount": 42}}
	if err := d.Deliver(context.Background(), ev); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	if gotCT != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotCT)
	}
	if gotTS == "" {
		t.Fatal("timestamp header missing")
	}
	if !strings.HasPrefix(gotSig, "sha256=") {
		t.Fatalf("signature header = %q, want sha256= prefix", gotSig)
	}
	sig := strings.TrimPrefix(gotSig, "sha256=")
	if !VerifySignature(secret, gotBody, gotTS, sig) {
		t.Error("signature does not verify against the delivered body")
	}

	var decoded map[string]any
	if err := json.Unmarshal(gotBody, &decoded); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if decoded["event"] != "order.paid" {
		t.Errorf("body event = %v, want order.paid", decoded["event"])
	}
}

func TestHTTPDeliverer_UnreachableTarget(t *testing.T) {
	d := NewHTTPDeliverer("http://127.0.0.1:1/hook", "secret", 500*time.Millisecond)
	err := d.Deliver(context.Background(), queue.Event{Type: "user.created"})
	if err == nil {
		t.Fatal("Deliver() to unreachable target returned nil")
	}
	var se *queue.StatusError
	if errors.As(err, &se) {
		t.Errorf("transport failure classified as StatusError: %v", err)
	}
}

func TestVerifySignature(t *testing.T) {
	tests := []struct {
		name      string
		secret    string
		body      string
		ts        string
		signature func() string
		want      bool
	}{
		{
			name:      "matching signature",
			secret:    "s3cret",
			body:      `{"event":"a"}`,
			ts:        "1700000000",
			signature: func() string { return Sign("s3cret", []byte(`{"event":"a"}`), "1700000000") },
			want:      true,
		},
		{
			name:      "wrong secret",
			secret:    "s3cret",
			body:      `{"event":"a"}`,
			ts:        "1700000000",
			signature: func() string { return Sign("other", []byte(`{"event":"a"}`), "1700000000") },
			want:      false,
		},
		{
			name:      "tampered body",
			secret:    "s3cret",
			body:      `{"event":"b"}`,
			ts:        "1700000000",
			signature: func() string { return Sign("s3cret", []byte(`{"event":"a"}`), "1700000000") },
			want:      false,
		},
		{
			name:      "tampered timestamp",
			secret:    "s3cret",
			body:      `{"event":"a"}`,
			ts:        "1700000001",
			signature: func() string { return Sign("s3cret", []byte(`{"event":"a"}`), "1700000000") },
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VerifySignature(tt.secret, []byte(tt.body), tt.ts, tt.signature())
			if got != tt.want {
				t.Errorf("VerifySignature() = %v, want %v", got, tt.want)
			}
		})
	}
}
