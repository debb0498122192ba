package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/orderflow/internal/domain"
	"github.com/nikolayk812/orderflow/internal/metrics"
	"github.com/nikolayk812/orderflow/internal/port"
	"go.uber.org/zap"
)

// Notifier is told about every committed status change that came through RequestTransition.
type Notifier interface {
	OrderStatusChanged(ctx context.Context, order domain.Order)
}

type EngineDeps struct {
	Orders   port.OrderRepository
	Notifier Notifier
	Metrics  *metrics.Metrics
	Clock    func() time.Time
	Logger   *zap.Logger
}

// Engine is the single writer of Order.Status.
type Engine struct {
	orders   port.OrderRepository
	notifier Notifier
	metrics  *metrics.Metrics
	clock    func() time.Time
	logger   *zap.Logger
}

func NewEngine(deps EngineDeps) (*Engine, error) {
	if deps.Orders == nil {
		return nil, errors.New("lifecycle: order repository is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{
		orders:   deps.Orders,
		notifier: deps.Notifier,
		metrics:  deps.Metrics,
		clock: func() time.Time {
			return clock().UTC()
		},
		logger: logger.Named("lifecycle"),
	}, nil
}

type TransitionRequest struct {
	OrderID  uuid.UUID
	Target   domain.OrderStatus
	Actor    domain.Actor
	Shipment *domain.ShipmentInfo
	// ExpectedStatus, when set, must equal the current status or the request fails with a conflict.
	ExpectedStatus domain.OrderStatus
	Note           string
}

// RequestTransition moves an order along one edge of the status graph.
func (e *Engine) RequestTransition(ctx context.Context, req TransitionRequest) (domain.Order, error) {
	order, err := e.requestTransition(ctx, req)
	if err != nil {
		e.metrics.RecordTransition(string(order.Status), string(req.Target), domain.ErrorClass(err))
		return domain.Order{}, err
	}
	return order, nil
}

func (e *Engine) requestTransition(ctx context.Context, req TransitionRequest) (domain.Order, error) {
	if err := req.Actor.Validate(); err != nil {
		return domain.Order{}, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	order, err := e.readOrder(ctx, req.OrderID, req.Actor)
	if err != nil {
		return domain.Order{}, err
	}

	if req.ExpectedStatus != "" && req.ExpectedStatus != order.Status {
		return order, fmt.Errorf("%w: expected status %s but was %s", domain.ErrConflict, req.ExpectedStatus, order.Status)
	}

	if rule, ok := domain.LookupTransition(order.Status, req.Target); ok && rule.ReturnFlow {
		return order, fmt.Errorf("%w: %s -> %s is taken only through the return workflow", domain.ErrInvalidTransition, order.Status, req.Target)
	}

	rule, err := checkTransition(order.Status, req.Target, req.Actor)
	if err != nil {
		return order, err
	}

	change := domain.StatusChange{
		OrderID: order.ID,
		From:    order.Status,
		To:      req.Target,
		Actor:   req.Actor,
		At:      e.clock(),
		Note:    req.Note,
		Stamp:   rule.Stamp,
	}

	if rule.RequiresShipment {
		if err := req.Shipment.Validate(); err != nil {
			return order, err
		}
		change.Shipment = req.Shipment
	}

	if err := e.orders.UpdateStatus(ctx, change); err != nil {
		return order, fmt.Errorf("orders.UpdateStatus: %w", err)
	}

	order.ApplyStatusChange(change)

	e.metrics.RecordTransition(string(change.From), string(change.To), "ok")
	e.logger.Info("order status changed",
		zap.Stringer("order_id", order.ID),
		zap.String("from", string(change.From)),
		zap.String("to", string(change.To)),
		zap.String("actor_id", req.Actor.ID),
		zap.String("actor_role", string(req.Actor.Role)),
	)

	if e.notifier != nil {
		e.notifier.OrderStatusChanged(context.WithoutCancel(ctx), order)
	}

	return order, nil
}

// Cancel moves the order to cancelled with reason recorded in the status history.
func (e *Engine) Cancel(ctx context.Context, orderID uuid.UUID, actor domain.Actor, reason string) (domain.Order, error) {
	return e.RequestTransition(ctx, TransitionRequest{
		OrderID: orderID,
		Target:  domain.OrderStatusCancelled,
		Actor:   actor,
		Note:    reason,
	})
}

// ApplyReturnTransition takes a return-flow edge with orders bound to the caller's transaction.
// The caller is responsible for notifying the customer after commit.
func (e *Engine) ApplyReturnTransition(ctx context.Context, orders port.OrderRepository, order domain.Order, target domain.OrderStatus, actor domain.Actor) (domain.Order, error) {
	rule, err := checkTransition(order.Status, target, actor)
	if err != nil {
		return domain.Order{}, err
	}
	if !rule.ReturnFlow {
		return domain.Order{}, fmt.Errorf("%w: %s -> %s is not a return workflow edge", domain.ErrInvalidTransition, order.Status, target)
	}

	change := domain.StatusChange{
		OrderID: order.ID,
		From:    order.Status,
		To:      target,
		Actor:   actor,
		At:      e.clock(),
		Stamp:   rule.Stamp,
	}

	if err := orders.UpdateStatus(ctx, change); err != nil {
		e.metrics.RecordTransition(string(change.From), string(change.To), domain.ErrorClass(err))
		return domain.Order{}, fmt.Errorf("orders.UpdateStatus: %w", err)
	}

	order.ApplyStatusChange(change)

	e.metrics.RecordTransition(string(change.From), string(change.To), "ok")
	e.logger.Info("order status changed by return workflow",
		zap.Stringer("order_id", order.ID),
		zap.String("from", string(change.From)),
		zap.String("to", string(change.To)),
		zap.String("actor_id", actor.ID),
	)

	return order, nil
}

func checkTransition(from, to domain.OrderStatus, actor domain.Actor) (domain.TransitionRule, error) {
	rule, ok := domain.LookupTransition(from, to)
	if !ok {
		return rule, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, from, to)
	}

	if !rule.Allows(actor.Role) {
		return rule, fmt.Errorf("%w: %s may not move an order from %s to %s", domain.ErrForbidden, actor.Role, from, to)
	}

	return rule, nil
}

// readOrder hides orders of other customers behind NotFound.
func (e *Engine) readOrder(ctx context.Context, orderID uuid.UUID, actor domain.Actor) (domain.Order, error) {
	order, err := e.orders.GetOrder(ctx, orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("orders.GetOrder: %w", err)
	}

	if !actor.IsAdmin() && !actor.Owns(order.OwnerID) {
		return domain.Order{}, fmt.Errorf("orders.GetOrder: %w", domain.ErrOrderNotFound)
	}

	return order, nil
}
