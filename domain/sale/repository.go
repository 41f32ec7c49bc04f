package sale

import (
	"context"

	"backoffice/domain/shared"
)

// Repository persists Sale aggregates. Implementations pick up the
// transaction from ctx when running inside a unit of work.
type Repository interface {
	// Create inserts the sale and its pending orders and assigns identities
	Create(ctx context.Context, s *Sale) error

	// FindByID returns NewSaleNotFoundError when the sale does not exist
	FindByID(ctx context.Context, id int64) (*Sale, error)

	// Save writes paid and date_paid back
	Save(ctx context.Context, s *Sale) error

	// Delete removes the sale and cascades to its orders
	Delete(ctx context.Context, id int64) error
}

// OrderRepository persists orders. Bulk methods issue a single statement.
type OrderRepository interface {
	InsertBatch(ctx context.Context, orders []*Order) error

	// FindByID returns NewOrderNotFoundError when the order does not exist
	FindByID(ctx context.Context, id int64) (*Order, error)

	// FindByIDs silently skips unknown ids
	FindByIDs(ctx context.Context, ids []int64) ([]*Order, error)

	// Save writes delivery state back
	Save(ctx context.Context, o *Order) error

	// DeleteFromSale removes only those ids that belong to saleID
	DeleteFromSale(ctx context.Context, saleID int64, ids []int64) (int64, error)

	AssignStaff(ctx context.Context, staffID int64, ids []int64) (int64, error)
	ClearStaff(ctx context.Context, ids []int64) (int64, error)
}

// QueryService is the read side: denormalised views for listing and detail.
type QueryService interface {
	GetSaleDetail(ctx context.Context, id int64) (*SaleDetail, error)
	ListSales(ctx context.Context, spec shared.Specification[*SaleView], page Page) (*SalePage, error)
}
