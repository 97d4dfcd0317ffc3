package consumer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/lksmaxx/enroll-api/internal/domain/enrollment"
)

// Outcome tags the result of handling one message. The loop driver decides
// what to do with the broker offset based on the tag; stage functions never
// use errors for control flow.
type Outcome int

const (
	// OutcomeSuccess: processing finished, commit the message.
	OutcomeSuccess Outcome = iota
	// OutcomeDiscard: poison or redundant message, commit without work.
	OutcomeDiscard
	// OutcomeFailed: unexpected failure, drop without requeue so a
	// deterministically failing message cannot block the queue.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeDiscard:
		return "discard"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

const processedMessage = "enrollment processed successfully"

// Processor advances a single queued task through the per-message state
// machine: parse, reconcile against the store, process, persist. The store
// is the source of truth; the task only triggers the work.
type Processor struct {
	store enrollment.Store
	// floor is the minimum processing duration per enrollment.
	floor time.Duration
}

func NewProcessor(store enrollment.Store, floor time.Duration) *Processor {
	return &Processor{store: store, floor: floor}
}

func (p *Processor) Handle(ctx context.Context, payload []byte) Outcome {
	if len(bytes.TrimSpace(payload)) == 0 {
		slog.Warn("empty payload, discarding")
		return OutcomeDiscard
	}

	var task enrollment.Task
	if err := json.Unmarshal(payload, &task); err != nil {
		slog.Warn("malformed task payload, discarding", "error", err)
		return OutcomeDiscard
	}
	if task.ID == "" {
		slog.Warn("task without id, discarding")
		return OutcomeDiscard
	}

	rec, err := p.store.GetByID(ctx, task.ID)
	if errors.Is(err, enrollment.ErrNotFound) {
		// Orphan: record deleted out-of-band, a stale test message, or
		// the producer's store write is not visible yet.
		slog.Warn("enrollment not found, discarding orphan", "id", task.ID)
		return OutcomeDiscard
	}
	if err != nil {
		slog.Error("failed to load enrollment", "id", task.ID, "error", err)
		return OutcomeFailed
	}

	if rec.Status == enrollment.StatusProcessed {
		// Idempotency guard: redelivery of an already completed task.
		slog.Info("enrollment already processed, discarding", "id", task.ID)
		return OutcomeDiscard
	}

	slog.Info("processing enrollment", "id", task.ID, "name", rec.Name)

	select {
	case <-ctx.Done():
		return OutcomeFailed
	case <-time.After(p.floor):
	}

	ok, err := p.store.MarkProcessed(ctx, task.ID, processedMessage)
	if err != nil {
		slog.Error("failed to persist processed status", "id", task.ID, "error", err)
		if _, ferr := p.store.MarkFailed(ctx, task.ID, "processing failed"); ferr != nil {
			slog.Error("failed to mark enrollment failed", "id", task.ID, "error", ferr)
		}
		return OutcomeFailed
	}
	if !ok {
		// Lost race or status already changed; not a failure.
		slog.Warn("no pending enrollment matched, status unchanged", "id", task.ID)
	}

	slog.Info("enrollment processed", "id", task.ID)
	return OutcomeSuccess
}
