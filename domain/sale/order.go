package sale

import (
	"strconv"
	"time"

	"backoffice/domain/identity"
	"backoffice/domain/shared"
)

// Order is one product line of a sale, tracked until delivery.
// It is loaded and saved on its own for delivery, so it also acts as an
// aggregate root for the unit of work.
type Order struct {
	id            int64
	saleID        int64
	productID     int64
	quantity      int
	staffID       *int64
	delivered     bool
	dateDelivered *time.Time

	events []shared.DomainEvent
}

func NewOrder(saleID, productID int64, quantity int) (*Order, error) {
	if quantity <= 0 {
		return nil, NewInvalidQuantityError()
	}
	return &Order{saleID: saleID, productID: productID, quantity: quantity}, nil
}

// AssignIdentity is called by the repository once the row exists.
func (o *Order) AssignIdentity(id int64) {
	o.id = id
}

// Deliver marks the order delivered by its assigned staff.
// Delivering an already delivered order is a no-op.
func (o *Order) Deliver(by identity.Principal, now time.Time) error {
	if o.staffID == nil {
		return NewOrderNotAssignedError()
	}
	staffID, ok := by.StaffID()
	if !ok || staffID != *o.staffID {
		return NewNotAssigneeError()
	}
	if o.delivered {
		return nil
	}
	o.delivered = true
	o.dateDelivered = &now
	o.events = append(o.events, NewOrderDeliveredEvent(o.id, o.saleID, staffID, now))
	return nil
}

// EnsureAssignable rejects orders that already have staff or were delivered.
func (o *Order) EnsureAssignable() error {
	if o.staffID != nil {
		return NewAlreadyAssignedError()
	}
	if o.delivered {
		return NewAlreadyDeliveredError()
	}
	return nil
}

// EnsureUnassignable rejects delivered orders.
func (o *Order) EnsureUnassignable() error {
	if o.delivered {
		return NewAlreadyDeliveredError()
	}
	return nil
}

func (o *Order) PullEvents() []shared.DomainEvent {
	events := o.events
	o.events = nil
	return events
}

func (o *Order) ID() string                { return strconv.FormatInt(o.id, 10) }
func (o *Order) OrderID() int64            { return o.id }
func (o *Order) SaleID() int64             { return o.saleID }
func (o *Order) ProductID() int64          { return o.productID }
func (o *Order) Quantity() int             { return o.quantity }
func (o *Order) StaffID() *int64           { return o.staffID }
func (o *Order) Delivered() bool           { return o.delivered }
func (o *Order) DateDelivered() *time.Time { return o.dateDelivered }

var _ shared.AggregateRoot = (*Order)(nil)

// OrderReconstructionDTO carries persisted order state.
type OrderReconstructionDTO struct {
	ID            int64
	SaleID        int64
	ProductID     int64
	Quantity      int
	StaffID       *int64
	Delivered     bool
	DateDelivered *time.Time
}

func RebuildOrderFromDTO(dto OrderReconstructionDTO) *Order {
	return &Order{
		id:            dto.ID,
		saleID:        dto.SaleID,
		productID:     dto.ProductID,
		quantity:      dto.Quantity,
		staffID:       dto.StaffID,
		delivered:     dto.Delivered,
		dateDelivered: dto.DateDelivered,
	}
}

// EnsureAllAssignable validates a whole batch before a bulk assignment.
func EnsureAllAssignable(orders []*Order) error {
	for _, o := range orders {
		if err := o.EnsureAssignable(); err != nil {
			return err
		}
	}
	return nil
}

// EnsureAllUnassignable validates a whole batch before a bulk unassignment.
func EnsureAllUnassignable(orders []*Order) error {
	for _, o := range orders {
		if err := o.EnsureUnassignable(); err != nil {
			return err
		}
	}
	return nil
}

// OrderIDs returns the ids of orders in input order.
func OrderIDs(orders []*Order) []int64 {
	ids := make([]int64, len(orders))
	for i, o := range orders {
		ids[i] = o.id
	}
	return ids
}
