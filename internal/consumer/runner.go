package consumer

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"
)

var (
	enrollmentsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "worker_enrollments_processed_total",
		Help: "The total number of processed enrollments",
	})
	messagesDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "worker_messages_discarded_total",
		Help: "The total number of poison or redundant messages discarded",
	})
	messagesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "worker_messages_dropped_total",
		Help: "The total number of messages dropped after a processing failure",
	})
	processingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "worker_processing_duration_seconds",
		Help:    "Time taken to process an enrollment",
		Buckets: []float64{0.1, 0.5, 1, 2, 5},
	})
)

// queueReader is the slice of the queue consumer the runner needs.
type queueReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Runner drives the sequential consume loop: fetch one message, run the
// processor, commit only after the store write is done. Per-message errors
// never terminate the loop.
type Runner struct {
	queue queueReader
	proc  *Processor
}

func NewRunner(queue queueReader, proc *Processor) *Runner {
	return &Runner{queue: queue, proc: proc}
}

func (r *Runner) Run(ctx context.Context) error {
	for {
		msg, err := r.queue.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Error("failed to fetch message", "error", err)
			time.Sleep(1 * time.Second)
			continue
		}

		started := time.Now()
		outcome := r.proc.Handle(ctx, msg.Value)

		if outcome == OutcomeFailed && ctx.Err() != nil {
			// Shutdown interrupted the message; leave it uncommitted so
			// the broker redelivers it.
			return nil
		}

		switch outcome {
		case OutcomeSuccess:
			enrollmentsProcessed.Inc()
			processingDuration.Observe(time.Since(started).Seconds())
		case OutcomeDiscard:
			messagesDiscarded.Inc()
		case OutcomeFailed:
			messagesDropped.Inc()
			slog.Error("dropping message without requeue", "outcome", outcome.String())
		}

		// Persist-before-ack: the offset moves only after Handle returned,
		// and Handle returns only after the store write (or discard
		// decision) is final.
		if err := r.queue.CommitMessages(ctx, msg); err != nil {
			slog.Error("failed to commit message", "error", err)
		}
	}
}
