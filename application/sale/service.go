/*
Package sale orchestrates the Sale/Order workflow.

Every operation checks its permission gate first, then runs read, validate
and write inside one unit of work. Events are queued on the unit of work and
reach subscribers only after commit; the pre-delete hook is the one event
published before the mutation. Domain errors are returned unwrapped so their
messages reach clients verbatim.
*/
package sale

import (
	"context"
	"errors"
	"time"

	"backoffice/domain/catalog"
	"backoffice/domain/identity"
	"backoffice/domain/sale"
	"backoffice/domain/shared"
	"backoffice/pkg/metrics"
)

// WorkflowService is the only writer of paid, date_paid, delivered,
// date_delivered and staff_id.
type WorkflowService struct {
	sales      sale.Repository
	orders     sale.OrderRepository
	catalog    catalog.Repository
	queries    sale.QueryService
	uowFactory shared.UnitOfWorkFactory
	notifier   shared.Notifier
	now        func() time.Time
}

func NewWorkflowService(
	sales sale.Repository,
	orders sale.OrderRepository,
	catalogRepo catalog.Repository,
	queries sale.QueryService,
	uowFactory shared.UnitOfWorkFactory,
	notifier shared.Notifier,
) *WorkflowService {
	if notifier == nil {
		notifier = shared.NopNotifier{}
	}
	return &WorkflowService{
		sales:      sales,
		orders:     orders,
		catalog:    catalogRepo,
		queries:    queries,
		uowFactory: uowFactory,
		notifier:   notifier,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source, for tests.
func (s *WorkflowService) SetClock(now func() time.Time) {
	s.now = now
}

// ============================================================================
// Commands
// ============================================================================

func (s *WorkflowService) CreateSale(ctx context.Context, p identity.Principal, req CreateSaleRequest) (resp *SaleDetailResponse, err error) {
	defer observe("create_sale", &err)
	if err := identity.AnyRole.Check(p); err != nil {
		return nil, err
	}

	items := toItems(req.Orders)
	var saleID int64

	uow := s.uowFactory.New()
	err = uow.Execute(ctx, func(ctx context.Context) error {
		newSale, err := sale.NewSale(req.CustomerID, req.Location, items, s.now())
		if err != nil {
			return err
		}
		if err := s.ensureCustomerExists(ctx, req.CustomerID); err != nil {
			return err
		}
		if err := s.ensureProductsExist(ctx, items); err != nil {
			return err
		}

		if err := s.sales.Create(ctx, newSale); err != nil {
			return err
		}
		saleID = newSale.SaleID()
		uow.RecordEvents(sale.NewSaleCreatedEvent(newSale))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.detail(ctx, saleID)
}

func (s *WorkflowService) AddOrders(ctx context.Context, p identity.Principal, saleID int64, reqItems []OrderItemRequest) (resp *SaleDetailResponse, err error) {
	defer observe("add_orders", &err)
	if err := identity.AnyRole.Check(p); err != nil {
		return nil, err
	}

	items := toItems(reqItems)

	uow := s.uowFactory.New()
	err = uow.Execute(ctx, func(ctx context.Context) error {
		target, err := s.sales.FindByID(ctx, saleID)
		if err != nil {
			return err
		}
		if err := target.EnsureOrdersCanBeAdded(); err != nil {
			return err
		}
		orders, err := sale.NewOrders(saleID, items)
		if err != nil {
			return err
		}
		if err := s.ensureProductsExist(ctx, items); err != nil {
			return err
		}

		if err := s.orders.InsertBatch(ctx, orders); err != nil {
			return err
		}
		uow.RecordEvents(sale.NewOrdersAddedEvent(saleID, orders))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.detail(ctx, saleID)
}

// RemoveOrders deletes the listed orders that belong to the sale. Ids of
// other sales are ignored.
func (s *WorkflowService) RemoveOrders(ctx context.Context, p identity.Principal, saleID int64, orderIDs []int64) (resp *SaleDetailResponse, err error) {
	defer observe("remove_orders", &err)
	if err := identity.AnyRole.Check(p); err != nil {
		return nil, err
	}
	if err := requireOrderIDs(orderIDs); err != nil {
		return nil, err
	}

	uow := s.uowFactory.New()
	err = uow.Execute(ctx, func(ctx context.Context) error {
		target, err := s.sales.FindByID(ctx, saleID)
		if err != nil {
			return err
		}
		if err := target.EnsureOrdersCanBeRemoved(); err != nil {
			return err
		}

		affected, err := s.orders.DeleteFromSale(ctx, saleID, orderIDs)
		if err != nil {
			return err
		}
		uow.RecordEvents(sale.NewOrdersRemovedEvent(saleID, orderIDs, affected))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.detail(ctx, saleID)
}

// MarkPaid is idempotent: an already paid sale is returned unchanged and
// no second event is raised.
func (s *WorkflowService) MarkPaid(ctx context.Context, p identity.Principal, saleID int64) (resp *SaleDetailResponse, err error) {
	defer observe("mark_paid", &err)
	if err := identity.AnyRole.Check(p); err != nil {
		return nil, err
	}

	uow := s.uowFactory.New()
	err = uow.Execute(ctx, func(ctx context.Context) error {
		target, err := s.sales.FindByID(ctx, saleID)
		if err != nil {
			return err
		}
		if !target.MarkPaid(s.now()) {
			return nil
		}
		if err := s.sales.Save(ctx, target); err != nil {
			return err
		}
		uow.RegisterDirty(target)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.detail(ctx, saleID)
}

// DeleteSale is reserved to the owning customer of an unpaid sale.
func (s *WorkflowService) DeleteSale(ctx context.Context, p identity.Principal, saleID int64) (err error) {
	defer observe("delete_sale", &err)
	if err := identity.CustomerOnly.Check(p); err != nil {
		return err
	}

	// The pre-delete hook fires once even when a conflict replays the transaction.
	announced := false
	uow := s.uowFactory.New()
	return uow.Execute(ctx, func(ctx context.Context) error {
		target, err := s.sales.FindByID(ctx, saleID)
		if err != nil {
			return err
		}
		if err := target.EnsureDeletableBy(p); err != nil {
			return err
		}

		if !announced {
			s.notifier.Publish(ctx, sale.NewSaleDeletingEvent(target))
			announced = true
		}
		if err := s.sales.Delete(ctx, saleID); err != nil {
			return err
		}
		uow.RecordEvents(sale.NewSaleDeletedEvent(target))
		return nil
	})
}

// UpdateSale always fails: sales only change through the targeted transitions.
func (s *WorkflowService) UpdateSale(ctx context.Context, p identity.Principal, saleID int64) (err error) {
	defer observe("update_sale", &err)
	if err := identity.AnyRole.Check(p); err != nil {
		return err
	}
	return sale.NewUpdateNotSupportedError()
}

// MarkOrderDelivered may only be performed by the staff assigned to the order.
func (s *WorkflowService) MarkOrderDelivered(ctx context.Context, p identity.Principal, orderID int64) (resp *OrderStateResponse, err error) {
	defer observe("mark_order_delivered", &err)
	if err := identity.StaffOrAdmin.Check(p); err != nil {
		return nil, err
	}

	var delivered *sale.Order
	uow := s.uowFactory.New()
	err = uow.Execute(ctx, func(ctx context.Context) error {
		o, err := s.orders.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		wasDelivered := o.Delivered()
		if err := o.Deliver(p, s.now()); err != nil {
			return err
		}
		delivered = o
		if wasDelivered {
			return nil
		}
		if err := s.orders.Save(ctx, o); err != nil {
			return err
		}
		uow.RegisterDirty(o)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toOrderStateResponse(delivered), nil
}

// AssignStaffToOrders validates the whole batch before one bulk update.
// Unknown order ids are skipped; a batch with no known order is NotFound.
func (s *WorkflowService) AssignStaffToOrders(ctx context.Context, p identity.Principal, staffID int64, orderIDs []int64) (resp *StaffOrdersResponse, err error) {
	defer observe("assign_staff", &err)
	if err := identity.AdminOnly.Check(p); err != nil {
		return nil, err
	}
	if err := requireOrderIDs(orderIDs); err != nil {
		return nil, err
	}

	resp = &StaffOrdersResponse{StaffID: staffID}
	uow := s.uowFactory.New()
	err = uow.Execute(ctx, func(ctx context.Context) error {
		exists, err := s.catalog.StaffExists(ctx, staffID)
		if err != nil {
			return err
		}
		if !exists {
			return sale.NewStaffNotFoundError()
		}

		targets, err := s.resolveOrders(ctx, orderIDs)
		if err != nil {
			return err
		}
		if err := sale.EnsureAllAssignable(targets); err != nil {
			return err
		}

		ids := sale.OrderIDs(targets)
		affected, err := s.orders.AssignStaff(ctx, staffID, ids)
		if err != nil {
			return err
		}
		resp.OrderIDs, resp.Affected = ids, affected
		uow.RecordEvents(sale.NewStaffAssignedEvent(staffID, ids))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// RemoveStaffFromOrders clears the assignment of every listed order,
// whoever it is currently assigned to. staffID is only echoed back and
// carried on the event.
func (s *WorkflowService) RemoveStaffFromOrders(ctx context.Context, p identity.Principal, staffID int64, orderIDs []int64) (resp *StaffOrdersResponse, err error) {
	defer observe("remove_staff", &err)
	if err := identity.AdminOnly.Check(p); err != nil {
		return nil, err
	}
	if err := requireOrderIDs(orderIDs); err != nil {
		return nil, err
	}

	resp = &StaffOrdersResponse{StaffID: staffID}
	uow := s.uowFactory.New()
	err = uow.Execute(ctx, func(ctx context.Context) error {
		targets, err := s.resolveOrders(ctx, orderIDs)
		if err != nil {
			return err
		}
		if err := sale.EnsureAllUnassignable(targets); err != nil {
			return err
		}

		ids := sale.OrderIDs(targets)
		affected, err := s.orders.ClearStaff(ctx, ids)
		if err != nil {
			return err
		}
		resp.OrderIDs, resp.Affected = ids, affected
		uow.RecordEvents(sale.NewStaffRemovedEvent(staffID, ids))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ============================================================================
// Queries
// ============================================================================

func (s *WorkflowService) GetSaleDetail(ctx context.Context, p identity.Principal, saleID int64) (resp *SaleDetailResponse, err error) {
	defer observe("get_sale_detail", &err)
	if err := identity.AnyRole.Check(p); err != nil {
		return nil, err
	}
	return s.detail(ctx, saleID)
}

func (s *WorkflowService) ListSales(ctx context.Context, p identity.Principal, query ListSalesQuery) (resp *SaleListResponse, err error) {
	defer observe("list_sales", &err)
	if err := identity.AnyRole.Check(p); err != nil {
		return nil, err
	}

	filter, err := query.Filter()
	if err != nil {
		return nil, err
	}
	page, err := s.queries.ListSales(ctx, filter.Specification(), sale.NewPage(query.Page, query.PerPage))
	if err != nil {
		return nil, err
	}
	return toSaleListResponse(page), nil
}

// ============================================================================
// Helpers
// ============================================================================

func (s *WorkflowService) detail(ctx context.Context, saleID int64) (*SaleDetailResponse, error) {
	d, err := s.queries.GetSaleDetail(ctx, saleID)
	if err != nil {
		return nil, err
	}
	return toSaleDetailResponse(d), nil
}

func (s *WorkflowService) ensureCustomerExists(ctx context.Context, customerID int64) error {
	exists, err := s.catalog.CustomerExists(ctx, customerID)
	if err != nil {
		return err
	}
	if !exists {
		return sale.NewUnknownCustomerError()
	}
	return nil
}

// ensureProductsExist compares distinct requested ids with the ids found.
func (s *WorkflowService) ensureProductsExist(ctx context.Context, items []sale.Item) error {
	wanted := sale.ProductIDs(items)
	found, err := s.catalog.ExistingProductIDs(ctx, wanted)
	if err != nil {
		return err
	}
	if len(found) != len(wanted) {
		return sale.NewUnknownProductError()
	}
	return nil
}

func (s *WorkflowService) resolveOrders(ctx context.Context, orderIDs []int64) ([]*sale.Order, error) {
	targets, err := s.orders.FindByIDs(ctx, orderIDs)
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return nil, sale.NewOrderNotFoundError()
	}
	return targets, nil
}

func requireOrderIDs(orderIDs []int64) error {
	if len(orderIDs) == 0 {
		return shared.NewValidationError("order", "order_ids", "At least one order id is required")
	}
	return nil
}

// observe counts the call by outcome class.
func observe(operation string, err *error) {
	metrics.ObserveOperation(operation, resultOf(*err))
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, shared.ErrInvalidInput):
		return "validation"
	case errors.Is(err, shared.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, shared.ErrForbidden):
		return "forbidden"
	case errors.Is(err, shared.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
