package gormdb

import (
	"context"
	"fmt"

	"backoffice/domain/shared"
	"backoffice/infrastructure/persistence"
	"backoffice/infrastructure/persistence/retry"

	"gorm.io/gorm"
)

// UnitOfWork runs one business operation in a GORM transaction.
//
// Events pulled from registered aggregates and events recorded directly are
// written to the outbox inside the transaction when an outbox is configured,
// and handed to the notifier only after commit. A rolled back attempt
// publishes nothing.
type UnitOfWork struct {
	db               *gorm.DB
	aggregates       []shared.AggregateRoot
	recorded         []shared.DomainEvent
	outboxRepository shared.OutboxRepository
	notifier         shared.Notifier
	retryConfig      retry.Config
}

func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{
		db:          db,
		notifier:    shared.NopNotifier{},
		retryConfig: retry.DefaultConfig,
	}
}

func (u *UnitOfWork) SetRetryConfig(config retry.Config) {
	u.retryConfig = config
}

func (u *UnitOfWork) SetNotifier(notifier shared.Notifier) {
	if notifier == nil {
		notifier = shared.NopNotifier{}
	}
	u.notifier = notifier
}

// SetOutbox enables the transactional outbox. nil disables it.
func (u *UnitOfWork) SetOutbox(outbox shared.OutboxRepository) {
	u.outboxRepository = outbox
}

func (u *UnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	var committed []shared.DomainEvent

	executeOnce := func(ctx context.Context) error {
		// Reset state for this attempt
		u.aggregates = nil
		u.recorded = nil

		tx := u.db.WithContext(ctx).Begin()
		if tx.Error != nil {
			return fmt.Errorf("failed to begin transaction: %w", tx.Error)
		}
		txCtx := persistence.ContextWithTx(ctx, tx)

		if err := fn(txCtx); err != nil {
			tx.Rollback()
			return err
		}

		events := u.collectEvents()
		if u.outboxRepository != nil {
			for _, event := range events {
				if err := u.outboxRepository.SaveEvent(txCtx, event); err != nil {
					tx.Rollback()
					return fmt.Errorf("failed to save event to outbox: %w", err)
				}
			}
		}

		if err := tx.Commit().Error; err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		committed = events
		return nil
	}

	if err := retry.Do(ctx, u.retryConfig, executeOnce); err != nil {
		return err
	}

	if len(committed) > 0 {
		u.notifier.Publish(ctx, committed...)
	}
	return nil
}

func (u *UnitOfWork) collectEvents() []shared.DomainEvent {
	var events []shared.DomainEvent
	for _, agg := range u.aggregates {
		events = append(events, agg.PullEvents()...)
	}
	events = append(events, u.recorded...)
	u.recorded = nil
	return events
}

func (u *UnitOfWork) RegisterNew(aggregate shared.AggregateRoot) {
	u.aggregates = append(u.aggregates, aggregate)
}

func (u *UnitOfWork) RegisterDirty(aggregate shared.AggregateRoot) {
	u.aggregates = append(u.aggregates, aggregate)
}

func (u *UnitOfWork) RegisterRemoved(aggregate shared.AggregateRoot) {
	u.aggregates = append(u.aggregates, aggregate)
}

func (u *UnitOfWork) RecordEvents(events ...shared.DomainEvent) {
	u.recorded = append(u.recorded, events...)
}

var _ shared.UnitOfWork = (*UnitOfWork)(nil)
