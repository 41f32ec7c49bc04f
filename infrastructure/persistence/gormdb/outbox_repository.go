package gormdb

import (
	"context"
	"fmt"
	"time"

	"backoffice/domain/shared"
	"backoffice/infrastructure/persistence"
	"backoffice/infrastructure/persistence/gormdb/po"

	"gorm.io/gorm"
)

// OutboxRepository stores events next to the state change that raised them.
// Rows move PENDING -> PROCESSING -> PUBLISHED, or back to PENDING on a
// failed delivery until they are parked as FAILED.
type OutboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

func (r *OutboxRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

func (r *OutboxRepository) rows(ctx context.Context) *gorm.DB {
	return r.getDB(ctx).Model(&po.OutboxEventPO{})
}

// SaveEvent joins the unit of work transaction when ctx carries one.
func (r *OutboxRepository) SaveEvent(ctx context.Context, event shared.DomainEvent) error {
	if err := shared.ValidateEvent(event); err != nil {
		return fmt.Errorf("invalid domain event: %w", err)
	}
	row, err := po.FromDomainEvent(event)
	if err != nil {
		return fmt.Errorf("encode %s for outbox: %w", event.EventName(), err)
	}
	if err := r.getDB(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("save %s to outbox: %w", row.EventType, err)
	}
	return nil
}

// Pending lists up to limit PENDING rows, oldest first.
func (r *OutboxRepository) Pending(ctx context.Context, limit int) ([]*po.OutboxEventPO, error) {
	var rows []*po.OutboxEventPO
	err := r.getDB(ctx).
		Where("status = ?", string(po.EventStatusPending)).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list pending outbox rows: %w", err)
	}
	return rows, nil
}

// Claim moves up to limit PENDING rows to PROCESSING and returns the ones
// this caller won. Rows taken by a concurrent relay are skipped.
func (r *OutboxRepository) Claim(ctx context.Context, limit int) ([]*po.OutboxEventPO, error) {
	candidates, err := r.Pending(ctx, limit)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	claimed := candidates[:0]
	for _, row := range candidates {
		res := r.rows(ctx).
			Where("id = ? AND status = ?", row.ID, string(po.EventStatusPending)).
			Updates(map[string]interface{}{"status": string(po.EventStatusProcessing), "updated_at": now})
		if res.Error != nil {
			return claimed, fmt.Errorf("claim outbox row %s: %w", row.ID, res.Error)
		}
		if res.RowsAffected == 1 {
			row.Status = string(po.EventStatusProcessing)
			claimed = append(claimed, row)
		}
	}
	return claimed, nil
}

// Ack marks a claimed row as delivered.
func (r *OutboxRepository) Ack(ctx context.Context, row *po.OutboxEventPO) error {
	return r.settle(ctx, row, po.EventStatusPublished, row.RetryCount)
}

// Nack records a failed delivery. The row goes back to PENDING until
// maxRetries deliveries have failed, then it is parked as FAILED.
func (r *OutboxRepository) Nack(ctx context.Context, row *po.OutboxEventPO, maxRetries int) error {
	retries := row.RetryCount + 1
	next := po.EventStatusPending
	if retries >= maxRetries {
		next = po.EventStatusFailed
	}
	return r.settle(ctx, row, next, retries)
}

func (r *OutboxRepository) settle(ctx context.Context, row *po.OutboxEventPO, status po.EventStatus, retries int) error {
	res := r.rows(ctx).
		Where("id = ? AND status = ?", row.ID, string(po.EventStatusProcessing)).
		Updates(map[string]interface{}{
			"status":      string(status),
			"retry_count": retries,
			"updated_at":  time.Now().UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("mark outbox row %s %s: %w", row.ID, status, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("outbox row %s is no longer claimed", row.ID)
	}
	row.Status = string(status)
	row.RetryCount = retries
	return nil
}

// ReleaseStale returns PROCESSING rows untouched since before cutoff to
// PENDING, recovering claims left behind by a relay that died mid-batch.
func (r *OutboxRepository) ReleaseStale(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.rows(ctx).
		Where("status = ? AND updated_at < ?", string(po.EventStatusProcessing), cutoff.UTC()).
		Updates(map[string]interface{}{"status": string(po.EventStatusPending), "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return 0, fmt.Errorf("release stale outbox rows: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Backlog counts rows per status.
func (r *OutboxRepository) Backlog(ctx context.Context) (map[po.EventStatus]int64, error) {
	var counts []struct {
		Status string
		N      int64
	}
	if err := r.rows(ctx).Select("status, COUNT(*) AS n").Group("status").Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("count outbox rows: %w", err)
	}
	out := make(map[po.EventStatus]int64, len(counts))
	for _, c := range counts {
		out[po.EventStatus(c.Status)] = c.N
	}
	return out, nil
}

var _ shared.OutboxRepository = (*OutboxRepository)(nil)
