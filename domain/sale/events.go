package sale

import (
	"strconv"
	"time"
)

const (
	EventSaleCreated         = "sale.created"
	EventSalePaid            = "sale.paid"
	EventSaleDeleting        = "sale.deleting"
	EventSaleDeleted         = "sale.deleted"
	EventOrdersAdded         = "orders.added"
	EventOrdersRemoved       = "orders.removed"
	EventOrderDelivered      = "order.delivered"
	EventOrdersStaffAssigned = "orders.staff_assigned"
	EventOrdersStaffRemoved  = "orders.staff_removed"
)

func formatID(id int64) string { return strconv.FormatInt(id, 10) }

type SaleCreatedEvent struct {
	saleID     int64
	customerID int64
	location   string
	orderIDs   []int64
	occurredOn time.Time
}

func NewSaleCreatedEvent(s *Sale) *SaleCreatedEvent {
	return &SaleCreatedEvent{
		saleID:     s.id,
		customerID: s.customerID,
		location:   s.location,
		orderIDs:   OrderIDs(s.orders),
		occurredOn: s.dateOrdered,
	}
}

func (e *SaleCreatedEvent) EventName() string      { return EventSaleCreated }
func (e *SaleCreatedEvent) OccurredOn() time.Time  { return e.occurredOn }
func (e *SaleCreatedEvent) GetAggregateID() string { return formatID(e.saleID) }
func (e *SaleCreatedEvent) SaleID() int64          { return e.saleID }

func (e *SaleCreatedEvent) Payload() map[string]any {
	return map[string]any{
		"sale_id":     e.saleID,
		"customer_id": e.customerID,
		"location":    e.location,
		"order_ids":   e.orderIDs,
	}
}

type SalePaidEvent struct {
	saleID     int64
	customerID int64
	occurredOn time.Time
}

func NewSalePaidEvent(saleID, customerID int64, paidAt time.Time) *SalePaidEvent {
	return &SalePaidEvent{saleID: saleID, customerID: customerID, occurredOn: paidAt}
}

func (e *SalePaidEvent) EventName() string      { return EventSalePaid }
func (e *SalePaidEvent) OccurredOn() time.Time  { return e.occurredOn }
func (e *SalePaidEvent) GetAggregateID() string { return formatID(e.saleID) }
func (e *SalePaidEvent) SaleID() int64          { return e.saleID }

func (e *SalePaidEvent) Payload() map[string]any {
	return map[string]any{
		"sale_id":     e.saleID,
		"customer_id": e.customerID,
		"date_paid":   e.occurredOn,
	}
}

// SaleDeletionEvent is used for both the pre-delete and post-delete hooks.
type SaleDeletionEvent struct {
	name       string
	saleID     int64
	customerID int64
	occurredOn time.Time
}

func NewSaleDeletingEvent(s *Sale) *SaleDeletionEvent {
	return &SaleDeletionEvent{name: EventSaleDeleting, saleID: s.id, customerID: s.customerID, occurredOn: time.Now()}
}

func NewSaleDeletedEvent(s *Sale) *SaleDeletionEvent {
	return &SaleDeletionEvent{name: EventSaleDeleted, saleID: s.id, customerID: s.customerID, occurredOn: time.Now()}
}

func (e *SaleDeletionEvent) EventName() string      { return e.name }
func (e *SaleDeletionEvent) OccurredOn() time.Time  { return e.occurredOn }
func (e *SaleDeletionEvent) GetAggregateID() string { return formatID(e.saleID) }

func (e *SaleDeletionEvent) Payload() map[string]any {
	return map[string]any{
		"sale_id":     e.saleID,
		"customer_id": e.customerID,
	}
}

// OrdersChangedEvent covers bulk changes to the orders of one sale.
type OrdersChangedEvent struct {
	name       string
	saleID     int64
	orderIDs   []int64
	affected   int64
	occurredOn time.Time
}

func NewOrdersAddedEvent(saleID int64, orders []*Order) *OrdersChangedEvent {
	ids := OrderIDs(orders)
	return &OrdersChangedEvent{
		name:       EventOrdersAdded,
		saleID:     saleID,
		orderIDs:   ids,
		affected:   int64(len(ids)),
		occurredOn: time.Now(),
	}
}

func NewOrdersRemovedEvent(saleID int64, requested []int64, affected int64) *OrdersChangedEvent {
	return &OrdersChangedEvent{
		name:       EventOrdersRemoved,
		saleID:     saleID,
		orderIDs:   requested,
		affected:   affected,
		occurredOn: time.Now(),
	}
}

func (e *OrdersChangedEvent) EventName() string      { return e.name }
func (e *OrdersChangedEvent) OccurredOn() time.Time  { return e.occurredOn }
func (e *OrdersChangedEvent) GetAggregateID() string { return formatID(e.saleID) }
func (e *OrdersChangedEvent) Affected() int64        { return e.affected }

func (e *OrdersChangedEvent) Payload() map[string]any {
	return map[string]any{
		"sale_id":   e.saleID,
		"order_ids": e.orderIDs,
		"affected":  e.affected,
	}
}

type OrderDeliveredEvent struct {
	orderID    int64
	saleID     int64
	staffID    int64
	occurredOn time.Time
}

func NewOrderDeliveredEvent(orderID, saleID, staffID int64, at time.Time) *OrderDeliveredEvent {
	return &OrderDeliveredEvent{orderID: orderID, saleID: saleID, staffID: staffID, occurredOn: at}
}

func (e *OrderDeliveredEvent) EventName() string      { return EventOrderDelivered }
func (e *OrderDeliveredEvent) OccurredOn() time.Time  { return e.occurredOn }
func (e *OrderDeliveredEvent) GetAggregateID() string { return formatID(e.orderID) }

func (e *OrderDeliveredEvent) Payload() map[string]any {
	return map[string]any{
		"order_id":       e.orderID,
		"sale_id":        e.saleID,
		"staff_id":       e.staffID,
		"date_delivered": e.occurredOn,
	}
}

// StaffAssignmentEvent covers bulk assignment and unassignment.
type StaffAssignmentEvent struct {
	name       string
	staffID    int64
	orderIDs   []int64
	occurredOn time.Time
}

func NewStaffAssignedEvent(staffID int64, orderIDs []int64) *StaffAssignmentEvent {
	return &StaffAssignmentEvent{name: EventOrdersStaffAssigned, staffID: staffID, orderIDs: orderIDs, occurredOn: time.Now()}
}

func NewStaffRemovedEvent(staffID int64, orderIDs []int64) *StaffAssignmentEvent {
	return &StaffAssignmentEvent{name: EventOrdersStaffRemoved, staffID: staffID, orderIDs: orderIDs, occurredOn: time.Now()}
}

func (e *StaffAssignmentEvent) EventName() string      { return e.name }
func (e *StaffAssignmentEvent) OccurredOn() time.Time  { return e.occurredOn }
func (e *StaffAssignmentEvent) GetAggregateID() string { return formatID(e.staffID) }

func (e *StaffAssignmentEvent) Payload() map[string]any {
	return map[string]any{
		"staff_id":  e.staffID,
		"order_ids": e.orderIDs,
	}
}
