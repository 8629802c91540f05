package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tripwise/travel-agent/internal/core/docdb"
	"github.com/tripwise/travel-agent/internal/domain/models"
	"github.com/tripwise/travel-agent/internal/metrics"
	"github.com/tripwise/travel-agent/internal/pkg/logging"
)

// Recorder accepts guard events. Record must not block the caller.
type Recorder interface {
	Record(event models.GuardEvent)
}

// Nop discards every event.
type Nop struct{}

// Record implements Recorder.
func (Nop) Record(models.GuardEvent) {}

// Defaults for a Writer.
const (
	DefaultWorkers      = 2
	DefaultQueueSize    = 256
	DefaultWriteTimeout = 5 * time.Second
	DefaultDrainTimeout = 5 * time.Second
)

// WriterConfig configures a Writer.
type WriterConfig struct {
	Workers      int
	QueueSize    int
	WriteTimeout time.Duration
	DrainTimeout time.Duration
}

// Writer persists guard events to a document collection through a Queue.
type Writer struct {
	collection docdb.Collection
	queue      *Queue[models.GuardEvent]
	workers    int
	timeout    time.Duration
	drain      time.Duration
	logger     zerolog.Logger
}

// NewWriter creates a Writer. Call Run (or Start and Stop) to process events.
func NewWriter(collection docdb.Collection, cfg WriterConfig) *Writer {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = DefaultDrainTimeout
	}

	w := &Writer{
		collection: collection,
		workers:    cfg.Workers,
		timeout:    cfg.WriteTimeout,
		drain:      cfg.DrainTimeout,
		logger:     logging.WithComponent("audit"),
	}
	w.queue = NewQueue(cfg.QueueSize, w.write)
	return w
}

// Record enqueues event, assigning an id and timestamp when missing.
func (w *Writer) Record(event models.GuardEvent) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	if !w.queue.Enqueue(event) {
		metrics.AuditEventsTotal.WithLabelValues("dropped").Inc()
		w.logger.Warn().
			Str("session_id", event.SessionID).
			Str("verdict", event.Verdict).
			Msg("audit queue full, guard event dropped")
	}
}

// Start starts the workers.
func (w *Writer) Start() {
	w.queue.Start(w.workers)
}

// Stop drains buffered events until ctx ends.
func (w *Writer) Stop(ctx context.Context) error {
	return w.queue.Stop(ctx)
}

// Run starts the workers and drains them once ctx is cancelled.
func (w *Writer) Run(ctx context.Context) error {
	w.Start()
	w.logger.Info().Int("workers", w.workers).Msg("audit writer started")
	<-ctx.Done()

	drainCtx, cancel := context.WithTimeout(context.Background(), w.drain)
	defer cancel()
	if err := w.Stop(drainCtx); err != nil {
		w.logger.Warn().Err(err).Int("pending", w.queue.Len()).Msg("audit writer stopped before draining")
		return nil
	}
	w.logger.Info().Msg("audit writer stopped")
	return nil
}

func (w *Writer) write(ctx context.Context, event models.GuardEvent) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	if _, err := w.collection.InsertOne(ctx, event); err != nil {
		metrics.AuditEventsTotal.WithLabelValues("failed").Inc()
		w.logger.Error().Err(err).Str("event_id", event.ID).Msg("failed to write guard event")
		return
	}
	metrics.AuditEventsTotal.WithLabelValues("written").Inc()
}
