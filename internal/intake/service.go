package intake

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/acornley/hookgate/internal/logging"
	"github.com/acornley/hookgate/internal/metrics"
	"github.com/acornley/hookgate/internal/queue"
	"github.com/acornley/hookgate/internal/tracing"
)

// ErrEmptyEventType rejects admissions without an event type.
var ErrEmptyEventType = errors.New("event type is required")

// Service owns the delivery queue, outcome history, and processor for one
// gateway instance. It is constructed at service start and passed by
// handle to the HTTP layer; nothing here is ambient state.
type Service struct {
	queue     *queue.DeliveryQueue
	history   *queue.HistoryLog
	policy    queue.RetryPolicy
	processor *queue.Processor
	logger    *logging.Logger

	notify  chan struct{}
	started time.Time
}

// Status is a read-only view of the service for observability endpoints.
type Status struct {
	QueueLength    int
	ProcessedCount uint64
	MaxRetries     int
	Items          []queue.ItemView
	Recent         []queue.Outcome
}

// NewService wires a queue, history, and processor around the given
// deliverer. maxAttempts and historyCapacity fall back to package defaults
// when non-positive.
func NewService(d queue.Deliverer, maxAttempts, historyCapacity int, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.New("hookgate-intake")
	}
	q := queue.NewDeliveryQueue()
	h := queue.NewHistoryLog(historyCapacity)
	policy := queue.NewRetryPolicy(maxAttempts)
	return &Service{
		queue:     q,
		history:   h,
		policy:    policy,
		processor: queue.NewProcessor(q, h, policy, d, logger),
		logger:    logger,
		notify:    make(chan struct{}, 1),
		started:   time.Now(),
	}
}

// Admit validates and enqueues an event, then wakes the worker. The caller
// has already authenticated the request; a queued event's delivery outcome
// is never surfaced back to the original sender.
func (s *Service) Admit(ctx context.Context, ev queue.Event) error {
	ctx, span := tracing.StartSpan(ctx, "intake.admit",
		attribute.String("event_type", ev.Type),
	)
	defer span.End()

	if ev.Type == "" {
		tracing.SetSpanError(ctx, ErrEmptyEventType)
		return ErrEmptyEventType
	}

	s.queue.Enqueue(ev)
	metrics.RecordEventReceived()
	metrics.SetQueueDepth(s.queue.Len())
	s.logger.WithContext(ctx).WithEventType(ev.Type).Info("event admitted")

	// Non-blocking: a pending wakeup already covers this admission.
	select {
	case s.notify <- struct{}{}:
	default:
	}
	return nil
}

// Run is the worker loop. A single goroutine owns pass execution: it waits
// for an admission wakeup and drains the queue, so passes never overlap
// and admissions never block on in-flight deliveries.
func (s *Service) Run(ctx context.Context) {
	s.logger.Plain().Info("intake worker started")
	for {
		select {
		case <-ctx.Done():
			s.logger.Plain().Info("intake worker stopping")
			return
		case <-s.notify:
			s.ProcessAvailable(ctx)
		}
	}
}

// ProcessAvailable runs passes until the queue is empty. Every item
// terminates within MaxAttempts passes, so this is bounded even when all
// deliveries fail. No delay between passes; retries are immediate.
func (s *Service) ProcessAvailable(ctx context.Context) {
	for s.queue.Len() > 0 {
		if ctx.Err() != nil {
			return
		}
		stats := s.processor.RunPass(ctx)
		if stats.Visited == 0 {
			return
		}
	}
}

// Status reports the queue snapshot and recent outcomes without mutating
// either structure.
func (s *Service) Status() Status {
	return Status{
		QueueLength:    s.queue.Len(),
		ProcessedCount: s.history.TotalRecorded(),
		MaxRetries:     s.policy.MaxAttempts,
		Items:          s.queue.Snapshot(),
		Recent:         s.history.Recent(10),
	}
}

// QueueDepth returns the number of pending items.
func (s *Service) QueueDepth() int {
	return s.queue.Len()
}

// ProcessedTotal returns the number of terminal outcomes recorded so far.
func (s *Service) ProcessedTotal() uint64 {
	return s.history.TotalRecorded()
}

// Uptime reports time since the service was constructed.
func (s *Service) Uptime() time.Duration {
	return time.Since(s.started)
}
