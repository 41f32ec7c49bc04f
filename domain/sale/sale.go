/*
Package sale is the Sale/Order bounded context.

A Sale groups the orders of one customer transaction. Paid sales are
immutable except for the delivery state and staff assignment of their
orders. Only this package flips Sale.paid, Order.delivered and Order.staffID.
*/
package sale

import (
	"strconv"
	"time"

	"backoffice/domain/identity"
	"backoffice/domain/shared"
)

// Sale aggregate root
type Sale struct {
	id          int64
	customerID  int64
	location    string
	paid        bool
	dateOrdered time.Time
	datePaid    *time.Time

	// orders created together with the sale, only populated by NewSale
	orders []*Order

	events []shared.DomainEvent
}

// Item is one requested order line
type Item struct {
	ProductID int64
	Quantity  int
}

// NewSale validates the requested items and builds an unpaid sale.
// Product existence is checked by the workflow against the catalog.
func NewSale(customerID int64, location string, items []Item, now time.Time) (*Sale, error) {
	orders, err := NewOrders(0, items)
	if err != nil {
		return nil, err
	}
	return &Sale{
		customerID:  customerID,
		location:    location,
		dateOrdered: now,
		orders:      orders,
	}, nil
}

// NewOrders builds unsaved orders for saleID, rejecting empty or non-positive lines.
func NewOrders(saleID int64, items []Item) ([]*Order, error) {
	if len(items) == 0 {
		return nil, NewEmptyItemsError()
	}
	orders := make([]*Order, 0, len(items))
	for _, item := range items {
		o, err := NewOrder(saleID, item.ProductID, item.Quantity)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// ProductIDs returns the distinct product ids referenced by items.
func ProductIDs(items []Item) []int64 {
	seen := make(map[int64]struct{}, len(items))
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

// AssignIdentity is called by the repository once the row exists.
// Pending orders inherit the sale id.
func (s *Sale) AssignIdentity(id int64) {
	s.id = id
	for _, o := range s.orders {
		o.saleID = id
	}
}

// EnsureOrdersCanBeAdded fails once the sale is paid.
func (s *Sale) EnsureOrdersCanBeAdded() error {
	if s.paid {
		return NewSalePaidError("This sale is already paid for. Please create another sale.")
	}
	return nil
}

// EnsureOrdersCanBeRemoved fails once the sale is paid.
func (s *Sale) EnsureOrdersCanBeRemoved() error {
	if s.paid {
		return NewSalePaidError("This sale is already paid for and cannot be edited")
	}
	return nil
}

// MarkPaid flips paid once. Returns false when the sale was already paid,
// in which case nothing changes and no event is recorded.
func (s *Sale) MarkPaid(now time.Time) bool {
	if s.paid {
		return false
	}
	s.paid = true
	s.datePaid = &now
	s.events = append(s.events, NewSalePaidEvent(s.id, s.customerID, now))
	return true
}

// EnsureDeletableBy checks paid state first, then ownership.
func (s *Sale) EnsureDeletableBy(p identity.Principal) error {
	if s.paid {
		return NewSalePaidError("This sale has been paid for and therefore cannot be deleted")
	}
	customerID, ok := p.CustomerID()
	if !ok || customerID != s.customerID {
		return NewNotOwnerError()
	}
	return nil
}

func (s *Sale) PullEvents() []shared.DomainEvent {
	events := s.events
	s.events = nil
	return events
}

func (s *Sale) ID() string             { return strconv.FormatInt(s.id, 10) }
func (s *Sale) SaleID() int64          { return s.id }
func (s *Sale) CustomerID() int64      { return s.customerID }
func (s *Sale) Location() string       { return s.location }
func (s *Sale) Paid() bool             { return s.paid }
func (s *Sale) DateOrdered() time.Time { return s.dateOrdered }
func (s *Sale) DatePaid() *time.Time   { return s.datePaid }
func (s *Sale) Orders() []*Order       { return s.orders }

var _ shared.AggregateRoot = (*Sale)(nil)

// ReconstructionDTO carries persisted state back into the aggregate.
// Only repositories should use it.
type ReconstructionDTO struct {
	ID          int64
	CustomerID  int64
	Location    string
	Paid        bool
	DateOrdered time.Time
	DatePaid    *time.Time
}

func RebuildFromDTO(dto ReconstructionDTO) *Sale {
	return &Sale{
		id:          dto.ID,
		customerID:  dto.CustomerID,
		location:    dto.Location,
		paid:        dto.Paid,
		dateOrdered: dto.DateOrdered,
		datePaid:    dto.DatePaid,
	}
}
