package gormdb

import (
	"context"
	"fmt"
	"time"

	"backoffice/infrastructure/notify"
	"backoffice/infrastructure/persistence/gormdb/po"
	"backoffice/pkg/logger"
	"backoffice/pkg/metrics"

	"go.uber.org/zap"
)

// OutboxRelay polls pending outbox rows and hands their stored envelope to
// a notify sink.
type OutboxRelay struct {
	repository   *OutboxRepository
	sink         notify.Sink
	pollInterval time.Duration
	batchSize    int
	maxRetries   int
	// claims older than this are assumed abandoned
	staleAfter time.Duration
	log        *zap.Logger
}

func NewOutboxRelay(
	repository *OutboxRepository,
	sink notify.Sink,
	pollInterval time.Duration,
	batchSize int,
	maxRetries int,
) (*OutboxRelay, error) {
	if repository == nil {
		return nil, fmt.Errorf("outbox repository is required")
	}
	if sink == nil {
		return nil, fmt.Errorf("outbox sink is required")
	}
	if pollInterval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive")
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive")
	}
	if maxRetries <= 0 {
		return nil, fmt.Errorf("max retries must be positive")
	}

	return &OutboxRelay{
		repository:   repository,
		sink:         sink,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		maxRetries:   maxRetries,
		staleAfter:   staleClaimAge(pollInterval),
		log:          logger.Named("outbox"),
	}, nil
}

func staleClaimAge(pollInterval time.Duration) time.Duration {
	if age := 10 * pollInterval; age > time.Minute {
		return age
	}
	return time.Minute
}

// Run blocks until ctx is cancelled.
func (w *OutboxRelay) Run(ctx context.Context) error {
	fields := []zap.Field{
		zap.String("sink", w.sink.Name()),
		zap.Duration("poll_interval", w.pollInterval),
		zap.Int("batch_size", w.batchSize),
	}
	if backlog, err := w.repository.Backlog(ctx); err == nil {
		fields = append(fields, zap.Int64("pending", backlog[po.EventStatusPending]),
			zap.Int64("failed", backlog[po.EventStatusFailed]))
	}
	w.log.Info("Outbox relay started", fields...)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Outbox relay stopped")
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.ProcessBatch(ctx); err != nil {
				w.log.Error("Outbox batch processing failed", zap.Error(err))
			}
		}
	}
}

// ProcessBatch relays one batch and returns how many rows were published.
func (w *OutboxRelay) ProcessBatch(ctx context.Context) (int, error) {
	released, err := w.repository.ReleaseStale(ctx, time.Now().Add(-w.staleAfter))
	if err != nil {
		return 0, err
	}
	if released > 0 {
		w.log.Warn("Released stale outbox claims", zap.Int64("rows", released))
	}

	rows, err := w.repository.Claim(ctx, w.batchSize)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, row := range rows {
		if w.relay(ctx, row) {
			published++
		}
	}
	return published, nil
}

func (w *OutboxRelay) relay(ctx context.Context, row *po.OutboxEventPO) bool {
	log := w.log.With(zap.String("event_id", row.ID), zap.String("event_type", row.EventType))

	if err := w.sink.Deliver(ctx, row.EventType, []byte(row.Payload)); err != nil {
		metrics.ObserveRelay(metrics.OutcomeFailure)
		log.Warn("Outbox event delivery failed", zap.Int("retry_count", row.RetryCount), zap.Error(err))
		if nackErr := w.repository.Nack(ctx, row, w.maxRetries); nackErr != nil {
			log.Error("Failed to record outbox delivery failure", zap.Error(nackErr))
		} else if row.Status == string(po.EventStatusFailed) {
			log.Error("Outbox event parked after max retries", zap.Int("max_retries", w.maxRetries))
		}
		return false
	}

	if err := w.repository.Ack(ctx, row); err != nil {
		log.Error("Failed to mark outbox event as published", zap.Error(err))
		return false
	}
	metrics.ObserveRelay(metrics.OutcomeSuccess)
	return true
}
