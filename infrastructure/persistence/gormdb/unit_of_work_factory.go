package gormdb

import (
	"backoffice/domain/shared"
	"backoffice/infrastructure/persistence/retry"

	"gorm.io/gorm"
)

type UnitOfWorkFactory struct {
	db          *gorm.DB
	retryConfig retry.Config
	notifier    shared.Notifier
	outbox      shared.OutboxRepository
}

func NewUnitOfWorkFactory(db *gorm.DB, retryConfig retry.Config, notifier shared.Notifier) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{
		db:          db,
		retryConfig: retryConfig,
		notifier:    notifier,
	}
}

// WithOutbox makes every unit of work persist its events to outbox.
func (f *UnitOfWorkFactory) WithOutbox(outbox shared.OutboxRepository) *UnitOfWorkFactory {
	f.outbox = outbox
	return f
}

func (f *UnitOfWorkFactory) New() shared.UnitOfWork {
	uow := NewUnitOfWork(f.db)
	uow.SetRetryConfig(f.retryConfig)
	uow.SetNotifier(f.notifier)
	uow.SetOutbox(f.outbox)
	return uow
}

var _ shared.UnitOfWorkFactory = (*UnitOfWorkFactory)(nil)
