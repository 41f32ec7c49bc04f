/*
Package sale - sale domain errors

Every sentinel wraps one of the shared sentinels so both
errors.Is(err, ErrSalePaid) and errors.Is(err, shared.ErrInvalidInput) hold.
Constructors capture the stack at the call site.
*/
package sale

import (
	"fmt"

	"backoffice/domain/shared"
)

// ============================================================================
// Sentinel errors
// ============================================================================

var (
	ErrSaleNotFound       = fmt.Errorf("sale: %w", shared.ErrNotFound)
	ErrOrderNotFound      = fmt.Errorf("order: %w", shared.ErrNotFound)
	ErrStaffNotFound      = fmt.Errorf("staff: %w", shared.ErrNotFound)
	ErrOrderNotAssigned   = fmt.Errorf("order not assigned: %w", shared.ErrNotFound)
	ErrSalePaid           = fmt.Errorf("sale paid: %w", shared.ErrInvalidInput)
	ErrEmptyItems         = fmt.Errorf("empty items: %w", shared.ErrInvalidInput)
	ErrInvalidQuantity    = fmt.Errorf("invalid quantity: %w", shared.ErrInvalidInput)
	ErrUnknownProduct     = fmt.Errorf("unknown product: %w", shared.ErrInvalidInput)
	ErrUnknownCustomer    = fmt.Errorf("unknown customer: %w", shared.ErrInvalidInput)
	ErrAlreadyAssigned    = fmt.Errorf("already assigned: %w", shared.ErrInvalidInput)
	ErrAlreadyDelivered   = fmt.Errorf("already delivered: %w", shared.ErrInvalidInput)
	ErrUpdateNotSupported = fmt.Errorf("update not supported: %w", shared.ErrInvalidInput)
	ErrNotOwner           = fmt.Errorf("not owner: %w", shared.ErrForbidden)
	ErrNotAssignee        = fmt.Errorf("not assignee: %w", shared.ErrForbidden)
)

// ============================================================================
// Constructors
// ============================================================================

func NewSaleNotFoundError() error {
	return newError(ErrSaleNotFound, "sale", "", "This Sale does not exist")
}

func NewOrderNotFoundError() error {
	return newError(ErrOrderNotFound, "order", "", "This order does not exist")
}

func NewOrderNotAssignedError() error {
	return newError(ErrOrderNotAssigned, "order", "staff_id", "This order has not been assigned to a staff")
}

func NewStaffNotFoundError() error {
	return newError(ErrStaffNotFound, "staff", "", "This staff does not exist")
}

// NewSalePaidError: message differs between the add and edit paths.
func NewSalePaidError(message string) error {
	return newError(ErrSalePaid, "sale", "paid", message)
}

func NewEmptyItemsError() error {
	return newError(ErrEmptyItems, "sale", "orders", "A sale must contain at least one order")
}

func NewInvalidQuantityError() error {
	return newError(ErrInvalidQuantity, "order", "quantity", "Order quantity must be greater than zero")
}

func NewUnknownProductError() error {
	return newError(ErrUnknownProduct, "order", "product_id", "Some of the products do not exist")
}

func NewUnknownCustomerError() error {
	return newError(ErrUnknownCustomer, "sale", "customer_id", "This customer does not exist")
}

func NewAlreadyAssignedError() error {
	return newError(ErrAlreadyAssigned, "order", "staff_id", "Some orders have already been assigned to a staff")
}

func NewAlreadyDeliveredError() error {
	return newError(ErrAlreadyDelivered, "order", "delivered", "Some orders have already been delivered")
}

func NewUpdateNotSupportedError() error {
	return newError(ErrUpdateNotSupported, "sale", "", "Sale cannot be updated")
}

func NewNotOwnerError() error {
	return newError(ErrNotOwner, "sale", "customer_id", "You are not the owner of this sale")
}

func NewNotAssigneeError() error {
	return newError(ErrNotAssignee, "order", "staff_id", "You are not the staff assigned to this order")
}

// newError is only called from the exported constructors above,
// so skipping 4 frames lands on the constructor's caller.
func newError(sentinel error, entity, field, message string) error {
	return &saleDomainError{
		sentinel: sentinel,
		entity:   entity,
		field:    field,
		message:  message,
		stack:    shared.CaptureStack(4),
	}
}

// ============================================================================
// saleDomainError
// ============================================================================

type saleDomainError struct {
	sentinel error
	entity   string
	field    string
	message  string
	stack    []uintptr
}

func (e *saleDomainError) Error() string {
	return e.message
}

func (e *saleDomainError) Unwrap() error {
	return e.sentinel
}

func (e *saleDomainError) Entity() string { return e.entity }
func (e *saleDomainError) Field() string  { return e.field }

// Stack implements shared.Stacker
func (e *saleDomainError) Stack() []string {
	return shared.FormatStack(e.stack)
}
