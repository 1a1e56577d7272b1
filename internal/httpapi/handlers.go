package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/acornley/hookgate/internal/auth"
	"github.com/acornley/hookgate/internal/intake"
	"github.com/acornley/hookgate/internal/logging"
	"github.com/acornley/hookgate/internal/metrics"
	"github.com/acornley/hookgate/internal/queue"
)

// SignatureHeader carries the caller's JWT on webhook posts.
const SignatureHeader = "x-signature"

// TokenIssuer mints tokens for the test-token endpoint.
type TokenIssuer interface {
	IssueTestToken(ttl time.Duration) (string, error)
}

// Handler serves the gateway's JSON API on top of the intake service.
type Handler struct {
	svc      *intake.Service
	verifier auth.Verifier
	issuer   TokenIssuer
	tokenTTL time.Duration
	logger   *logging.Logger
}

func NewHandler(svc *intake.Service, verifier auth.Verifier, issuer TokenIssuer, tokenTTL time.Duration, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.New("hookgate-http")
	}
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	return &Handler{svc: svc, verifier: verifier, issuer: issuer, tokenTTL: tokenTTL, logger: logger}
}

type webhookRequest struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type webhookResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type queueStatusResponse struct {
	QueueLength    int              `json:"queueLength"`
	ProcessedCount uint64           `json:"processedCount"`
	MaxRetries     int              `json:"maxRetries"`
	Items          []queue.ItemView `json:"items"`
	RecentEvents   []queue.Outcome  `json:"recentEvents"`
}

// HandleWebhook admits a signed event. The body is validated before the
// signature is checked; neither failure reaches the queue.
func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.RecordEventRejected("bad_request")
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Event == "" {
		metrics.RecordEventRejected("bad_request")
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "event is required"})
		return
	}

	if err := h.verifier.Verify(r.Header.Get(SignatureHeader)); err != nil {
		metrics.RecordEventRejected("invalid_signature")
		h.logger.WithContext(r.Context()).WithEventType(req.Event).WithError(err).Warn("webhook rejected")
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Invalid signature"})
		return
	}

	if err := h.svc.Admit(r.Context(), queue.Event{Type: req.Event, Data: req.Data}); err != nil {
		metrics.RecordEventRejected("bad_request")
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, webhookResponse{OK: true, Message: "event accepted for delivery"})
}

// HandleGenerateTestToken mints a short-lived token accepted by /webhook.
func (h *Handler) HandleGenerateTestToken(w http.ResponseWriter, r *http.Request) {
	token, err := h.issuer.IssueTestToken(h.tokenTTL)
	if err != nil {
		h.logger.WithContext(r.Context()).WithError(err).Error("test token generation failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "token generation failed"})
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

// HandleQueueStatus reports the queue snapshot and recent outcomes. Read
// only: neither the queue nor the history is mutated.
func (h *Handler) HandleQueueStatus(w http.ResponseWriter, r *http.Request) {
	st := h.svc.Status()
	resp := queueStatusResponse{
		QueueLength:    st.QueueLength,
		ProcessedCount: st.ProcessedCount,
		MaxRetries:     st.MaxRetries,
		Items:          st.Items,
		RecentEvents:   st.Recent,
	}
	if resp.Items == nil {
		resp.Items = []queue.ItemView{}
	}
	if resp.RecentEvents == nil {
		resp.RecentEvents = []queue.Outcome{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
