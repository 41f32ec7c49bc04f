package shared

import "context"

// UnitOfWork owns a transaction boundary and the domain events raised inside it.
// Events are delivered to the Notifier only after a successful commit.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
	RegisterNew(aggregate AggregateRoot)
	RegisterDirty(aggregate AggregateRoot)
	RegisterRemoved(aggregate AggregateRoot)

	// RecordEvents queues events that do not belong to a loaded aggregate,
	// e.g. bulk updates issued straight through a repository.
	RecordEvents(events ...DomainEvent)
}

// UnitOfWorkFactory hands out one UnitOfWork per business operation.
type UnitOfWorkFactory interface {
	New() UnitOfWork
}

// OutboxRepository stores events in the same transaction as the state change.
type OutboxRepository interface {
	SaveEvent(ctx context.Context, event DomainEvent) error
}
