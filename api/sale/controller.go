/*
Package sale exposes the sale workflow over HTTP.

Bind errors answer 400 directly; everything returned by the workflow goes
through response.HandleAppError, which maps the domain error class to the
status code. The principal is put on the gin context by the auth middleware.
*/
package sale

import (
	"strconv"

	"backoffice/api/ctxutil"
	"backoffice/api/response"
	saleapp "backoffice/application/sale"
	"backoffice/domain/shared"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service *saleapp.WorkflowService
}

func NewController(service *saleapp.WorkflowService) *Controller {
	return &Controller{service: service}
}

// RegisterRoutes mounts the sale routes; auth must already be on the group.
func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	sales := router.Group("/sales")
	{
		sales.GET("", c.ListSales)
		sales.POST("", c.CreateSale)
		sales.GET("/:id", c.GetSale)
		sales.PUT("/:id", c.UpdateSale)
		sales.PATCH("/:id", c.MarkPaid)
		sales.DELETE("/:id", c.DeleteSale)
		sales.POST("/:id/orders", c.AddOrders)
		sales.DELETE("/:id/orders", c.RemoveOrders)
		sales.POST("/staff/:staff_id/orders", c.AssignStaff)
		sales.DELETE("/staff/:staff_id/orders", c.RemoveStaff)
		sales.PATCH("/orders/:order_id", c.MarkOrderDelivered)
	}
}

// ListSales GET /api/v1/sales
func (c *Controller) ListSales(ctx *gin.Context) {
	var query saleapp.ListSalesQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.HandleBindError(ctx, err)
		return
	}

	page, err := c.service.ListSales(ctxutil.WithRequestID(ctx), ctxutil.Principal(ctx), query)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, page, "Sales retrieved successfully")
}

// GetSale GET /api/v1/sales/:id
func (c *Controller) GetSale(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	detail, err := c.service.GetSaleDetail(ctxutil.WithRequestID(ctx), ctxutil.Principal(ctx), id)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, detail, "Sale retrieved successfully")
}

// CreateSale POST /api/v1/sales
func (c *Controller) CreateSale(ctx *gin.Context) {
	var req saleapp.CreateSaleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleBindError(ctx, err)
		return
	}

	detail, err := c.service.CreateSale(ctxutil.WithRequestID(ctx), ctxutil.Principal(ctx), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleCreated(ctx, detail, "Sale created successfully")
}

// UpdateSale PUT /api/v1/sales/:id
func (c *Controller) UpdateSale(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	response.HandleAppError(ctx, c.service.UpdateSale(ctxutil.WithRequestID(ctx), ctxutil.Principal(ctx), id))
}

// MarkPaid PATCH /api/v1/sales/:id
func (c *Controller) MarkPaid(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	detail, err := c.service.MarkPaid(ctxutil.WithRequestID(ctx), ctxutil.Principal(ctx), id)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, detail, "Sale marked as paid")
}

// DeleteSale DELETE /api/v1/sales/:id
func (c *Controller) DeleteSale(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.service.DeleteSale(ctxutil.WithRequestID(ctx), ctxutil.Principal(ctx), id); err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleNoContent(ctx)
}

// AddOrders POST /api/v1/sales/:id/orders
func (c *Controller) AddOrders(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var items []saleapp.OrderItemRequest
	if err := ctx.ShouldBindJSON(&items); err != nil {
		response.HandleBindError(ctx, err)
		return
	}

	detail, err := c.service.AddOrders(ctxutil.WithRequestID(ctx), ctxutil.Principal(ctx), id, items)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, detail, "Orders added successfully")
}

// RemoveOrders DELETE /api/v1/sales/:id/orders
func (c *Controller) RemoveOrders(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	ids, ok := bindIDs(ctx)
	if !ok {
		return
	}

	detail, err := c.service.RemoveOrders(ctxutil.WithRequestID(ctx), ctxutil.Principal(ctx), id, ids)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, detail, "Orders removed successfully")
}

// AssignStaff POST /api/v1/sales/staff/:staff_id/orders
func (c *Controller) AssignStaff(ctx *gin.Context) {
	staffID, ok := pathID(ctx, "staff_id")
	if !ok {
		return
	}
	ids, ok := bindIDs(ctx)
	if !ok {
		return
	}

	result, err := c.service.AssignStaffToOrders(ctxutil.WithRequestID(ctx), ctxutil.Principal(ctx), staffID, ids)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, result, "Staff assigned to orders")
}

// RemoveStaff DELETE /api/v1/sales/staff/:staff_id/orders
func (c *Controller) RemoveStaff(ctx *gin.Context) {
	staffID, ok := pathID(ctx, "staff_id")
	if !ok {
		return
	}
	ids, ok := bindIDs(ctx)
	if !ok {
		return
	}

	result, err := c.service.RemoveStaffFromOrders(ctxutil.WithRequestID(ctx), ctxutil.Principal(ctx), staffID, ids)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, result, "Staff removed from orders")
}

// MarkOrderDelivered PATCH /api/v1/sales/orders/:order_id
func (c *Controller) MarkOrderDelivered(ctx *gin.Context) {
	orderID, ok := pathID(ctx, "order_id")
	if !ok {
		return
	}

	order, err := c.service.MarkOrderDelivered(ctxutil.WithRequestID(ctx), ctxutil.Principal(ctx), orderID)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, order, "Order marked as delivered")
}

// pathID parses a positive integer path parameter, answering 400 otherwise.
func pathID(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.HandleAppError(ctx, shared.NewValidationError("path", name, name+" must be a positive integer"))
		return 0, false
	}
	return id, true
}

// bindIDs reads a JSON array of ids.
func bindIDs(ctx *gin.Context) ([]int64, bool) {
	var ids []int64
	if err := ctx.ShouldBindJSON(&ids); err != nil {
		response.HandleBindError(ctx, err)
		return nil, false
	}
	return ids, true
}
