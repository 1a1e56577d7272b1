package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/acornley/hookgate/internal/logging"
	"github.com/acornley/hookgate/internal/metrics"
	"github.com/acornley/hookgate/internal/tracing"
)

// Deliverer performs one delivery attempt for an event. A nil return marks
// the attempt successful; any error counts as a failed attempt against the
// retry budget. Implementations doing real I/O should honor ctx and bound
// each attempt with a timeout.
type Deliverer interface {
	Deliver(ctx context.Context, ev Event) error
}

// DelivererFunc adapts a function to the Deliverer interface.
type DelivererFunc func(ctx context.Context, ev Event) error

func (f DelivererFunc) Deliver(ctx context.Context, ev Event) error { return f(ctx, ev) }

// StatusError reports a delivery attempt rejected by the downstream
// endpoint with an HTTP status code.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("endpoint returned status %d", e.Code)
}

// PassStats summarizes one processing pass.
type PassStats struct {
	Visited   int
	Delivered int
	Dropped   int
	Retained  int
}

// Processor runs processing passes over a DeliveryQueue, writing terminal
// outcomes to a HistoryLog. At most one pass runs at a time; Enqueue and
// Snapshot remain safe to call while a pass is in flight.
type Processor struct {
	queue     *DeliveryQueue
	history   *HistoryLog
	policy    RetryPolicy
	deliverer Deliverer
	logger    *logging.Logger

	passMu sync.Mutex
}

func NewProcessor(q *DeliveryQueue, h *HistoryLog, policy RetryPolicy, d Deliverer, logger *logging.Logger) *Processor {
	if logger == nil {
		logger = logging.New("hookgate-processor")
	}
	return &Processor{queue: q, history: h, policy: policy, deliverer: d, logger: logger}
}

// RunPass visits every item present in the queue at pass start exactly
// once, in enqueue order. Successful deliveries and exhausted items leave
// the queue and are recorded in the history; everything else stays pending
// for the next pass. Items enqueued while the pass runs are not visited.
func (p *Processor) RunPass(ctx context.Context) PassStats {
	p.passMu.Lock()
	defer p.passMu.Unlock()

	snapshot := p.queue.pending()
	ctx, span := tracing.StartSpan(ctx, "queue.run_pass",
		attribute.Int("pass.size", len(snapshot)),
	)
	defer span.End()

	stats := PassStats{Visited: len(snapshot)}
	resolved := make(map[*Item]struct{})

	for _, it := range snapshot {
		start := time.Now()
		err := p.deliverer.Deliver(ctx, it.Event)
		latency := time.Since(start)

		if err == nil {
			resolved[it] = struct{}{}
			p.history.Record(it.Event.Type, ResultSuccess)
			metrics.RecordDelivery("delivered", latency)
			stats.Delivered++
			continue
		}

		attempts := p.queue.incrementAttempts(it)
		reason := classifyReason(err)
		metrics.RecordRetry(reason)

		if p.policy.ShouldDrop(attempts) {
			resolved[it] = struct{}{}
			p.history.Record(it.Event.Type, ResultFailed)
			metrics.RecordDelivery("dropped", latency)
			stats.Dropped++
			p.logger.WithContext(ctx).WithEventType(it.Event.Type).WithFields(map[string]any{
				"attempts": attempts,
				"reason":   reason,
			}).WithError(err).Warn("delivery dropped after max attempts")
			continue
		}

		stats.Retained++
		p.logger.WithContext(ctx).WithEventType(it.Event.Type).WithField("attempts", attempts).Debug("delivery failed, retained for next pass")
	}

	p.queue.remove(resolved)
	metrics.SetQueueDepth(p.queue.Len())

	span.SetAttributes(
		attribute.Int("pass.delivered", stats.Delivered),
		attribute.Int("pass.dropped", stats.Dropped),
		attribute.Int("pass.retained", stats.Retained),
	)
	return stats
}

// classifyReason buckets a delivery failure for metrics.
func classifyReason(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		switch {
		case se.Code >= 500:
			return "http_5xx"
		case se.Code == 429:
			return "http_429"
		case se.Code >= 400:
			return "http_4xx"
		}
		return "other"
	}
	errLower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errLower, "timeout") || strings.Contains(errLower, "deadline exceeded"):
		return "timeout"
	case strings.Contains(errLower, "connection refused"):
		return "connection_refused"
	case strings.Contains(errLower, "no such host") || strings.Contains(errLower, "dns"):
		return "dns_error"
	}
	return "other"
}
