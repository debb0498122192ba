package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nikolayk812/orderflow/internal/domain"
	"github.com/nikolayk812/orderflow/internal/returns"
	"github.com/samber/lo"
)

func (h *Handler) registerReturnRoutes(r *gin.RouterGroup) {
	rr := r.Group("/returns")
	{
		rr.GET("", AdminOnly(), h.ListReturns)
		rr.GET("/:id", h.GetReturn)
		rr.POST("/:id/decision", AdminOnly(), h.DecideReturn)
		rr.POST("/:id/complete", AdminOnly(), h.CompleteReturn)
	}
}

func (h *Handler) SubmitComplaint(c *gin.Context) {
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req ComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	created, err := h.returns.SubmitComplaint(c.Request.Context(), returns.ComplaintCommand{
		OrderID:        orderID,
		Reason:         req.Reason,
		Description:    req.Description,
		EvidenceImages: req.EvidenceImages,
		Actor:          actorFrom(c),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toReturnResponse(created, 0))
}

func (h *Handler) ListReturns(c *gin.Context) {
	var filter domain.ReturnFilter

	for _, raw := range c.QueryArray("status") {
		status, err := domain.ToReturnStatus(raw)
		if err != nil {
			badRequest(c, fmt.Sprintf("invalid status %q", raw))
			return
		}
		filter.Statuses = append(filter.Statuses, status)
	}

	for _, raw := range c.QueryArray("order_id") {
		id, err := uuid.Parse(raw)
		if err != nil {
			badRequest(c, "invalid order_id")
			return
		}
		filter.OrderIDs = append(filter.OrderIDs, id)
	}

	limit, ok := queryInt(c, "limit", 0)
	if !ok {
		return
	}
	offset, ok := queryInt(c, "offset", 0)
	if !ok {
		return
	}
	filter.Page = domain.Page{Limit: limit, Offset: offset}

	list, err := h.returns.List(c.Request.Context(), actorFrom(c), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"returns": lo.Map(list, toReturnResponse)})
}

func (h *Handler) GetReturn(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	req, err := h.returns.Get(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toReturnResponse(req, 0))
}

func (h *Handler) DecideReturn(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var body DecisionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err.Error())
		return
	}

	decision, err := returns.ToDecision(body.Decision)
	if err != nil {
		h.respondError(c, err)
		return
	}

	req, err := h.returns.Decide(c.Request.Context(), id, decision, actorFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toReturnResponse(req, 0))
}

func (h *Handler) CompleteReturn(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	req, err := h.returns.Complete(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toReturnResponse(req, 0))
}
