package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nikolayk812/orderflow/internal/domain"
	"github.com/nikolayk812/orderflow/internal/lifecycle"
	"github.com/samber/lo"
)

func (h *Handler) registerOrderRoutes(r *gin.RouterGroup) {
	orders := r.Group("/orders")
	{
		orders.POST("", h.PlaceOrder)
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
		orders.GET("/:id/history", h.OrderHistory)
		orders.POST("/:id/transitions", h.TransitionOrder)
		orders.POST("/:id/cancel", h.CancelOrder)
		orders.POST("/:id/complaints", h.SubmitComplaint)
	}
}

func (h *Handler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	items := make([]domain.OrderItem, 0, len(req.Items))
	for idx, item := range req.Items {
		price, err := domain.NewMoney(item.UnitPrice.Amount, item.UnitPrice.Currency)
		if err != nil {
			h.respondError(c, fmt.Errorf("%w: item[%d]: %w", domain.ErrValidation, idx, err))
			return
		}
		items = append(items, domain.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: price,
		})
	}

	order, err := h.engine.PlaceOrder(c.Request.Context(), lifecycle.PlaceOrderCommand{
		Actor:           actorFrom(c),
		Items:           items,
		ShippingAddress: req.ShippingAddress,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toOrderResponse(order))
}

// ListOrders accepts repeated status and owner_id parameters plus created_after/created_before
// as RFC 3339 timestamps.
func (h *Handler) ListOrders(c *gin.Context) {
	filter, ok := orderFilterFromQuery(c)
	if !ok {
		return
	}

	orders, err := h.engine.ListOrders(c.Request.Context(), actorFrom(c), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": lo.Map(orders, func(o domain.Order, _ int) OrderResponse {
		return toOrderResponse(o)
	})})
}

func orderFilterFromQuery(c *gin.Context) (domain.OrderFilter, bool) {
	var filter domain.OrderFilter

	for _, raw := range c.QueryArray("status") {
		status, err := domain.ToOrderStatus(raw)
		if err != nil {
			badRequest(c, fmt.Sprintf("invalid status %q", raw))
			return filter, false
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	filter.OwnerIDs = c.QueryArray("owner_id")

	var created domain.TimeRange
	for name, dst := range map[string]**time.Time{"created_after": &created.After, "created_before": &created.Before} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			badRequest(c, "invalid "+name)
			return filter, false
		}
		*dst = &t
	}
	if created.After != nil || created.Before != nil {
		filter.CreatedAt = &created
	}

	limit, ok := queryInt(c, "limit", 0)
	if !ok {
		return filter, false
	}
	offset, ok := queryInt(c, "offset", 0)
	if !ok {
		return filter, false
	}
	filter.Page = domain.Page{Limit: limit, Offset: offset}

	return filter, true
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, err := h.engine.GetOrder(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order))
}

func (h *Handler) OrderHistory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	records, err := h.engine.History(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": lo.Map(records, toStatusChangeResponse)})
}

func (h *Handler) TransitionOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	target, err := domain.ToOrderStatus(req.Status)
	if err != nil {
		badRequest(c, fmt.Sprintf("invalid status %q", req.Status))
		return
	}

	cmd := lifecycle.TransitionRequest{
		OrderID: id,
		Target:  target,
		Actor:   actorFrom(c),
		Note:    req.Note,
	}

	if req.ExpectedStatus != "" {
		cmd.ExpectedStatus, err = domain.ToOrderStatus(req.ExpectedStatus)
		if err != nil {
			badRequest(c, fmt.Sprintf("invalid expected_status %q", req.ExpectedStatus))
			return
		}
	}

	if req.Courier != "" || req.TrackingNumber != "" {
		cmd.Shipment = &domain.ShipmentInfo{Courier: req.Courier, TrackingNumber: req.TrackingNumber}
	}

	order, err := h.engine.RequestTransition(c.Request.Context(), cmd)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order))
}

func (h *Handler) CancelOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req CancelRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
	}

	order, err := h.engine.Cancel(c.Request.Context(), id, actorFrom(c), req.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order))
}
