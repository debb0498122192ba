package lifecycle

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/nikolayk812/orderflow/internal/domain"
	"go.uber.org/zap"
)

type PlaceOrderCommand struct {
	Actor           domain.Actor
	Items           []domain.OrderItem
	ShippingAddress string
}

// PlaceOrder creates a pending order owned by the calling customer.
func (e *Engine) PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (domain.Order, error) {
	if err := cmd.Actor.Validate(); err != nil {
		return domain.Order{}, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	if cmd.Actor.Role != domain.RoleCustomer {
		return domain.Order{}, fmt.Errorf("%w: only customers place orders", domain.ErrForbidden)
	}
	if len(cmd.Items) == 0 {
		return domain.Order{}, fmt.Errorf("%w: no items in order", domain.ErrValidation)
	}

	total, err := domain.ItemsTotal(cmd.Items, cmd.Items[0].UnitPrice)
	if err != nil {
		return domain.Order{}, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	order := domain.Order{
		OwnerID:         cmd.Actor.ID,
		Items:           cmd.Items,
		Total:           total,
		Status:          domain.OrderStatusPending,
		ShippingAddress: cmd.ShippingAddress,
	}

	id, err := e.orders.InsertOrder(ctx, order)
	if err != nil {
		return domain.Order{}, fmt.Errorf("orders.InsertOrder: %w", err)
	}

	e.logger.Info("order placed", zap.Stringer("order_id", id), zap.String("owner_id", order.OwnerID))

	placed, err := e.orders.GetOrder(ctx, id)
	if err != nil {
		return domain.Order{}, fmt.Errorf("orders.GetOrder: %w", err)
	}

	return placed, nil
}

func (e *Engine) GetOrder(ctx context.Context, orderID uuid.UUID, actor domain.Actor) (domain.Order, error) {
	if err := actor.Validate(); err != nil {
		return domain.Order{}, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	return e.readOrder(ctx, orderID, actor)
}

// ListOrders narrows a customer's filter to their own orders.
func (e *Engine) ListOrders(ctx context.Context, actor domain.Actor, filter domain.OrderFilter) ([]domain.Order, error) {
	if err := actor.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	if !actor.IsAdmin() {
		filter.OwnerIDs = []string{actor.ID}
	}

	orders, err := e.orders.SearchOrders(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("orders.SearchOrders: %w", err)
	}

	return orders, nil
}

func (e *Engine) History(ctx context.Context, orderID uuid.UUID, actor domain.Actor) ([]domain.StatusChangeRecord, error) {
	if _, err := e.GetOrder(ctx, orderID, actor); err != nil {
		return nil, err
	}

	records, err := e.orders.ListStatusHistory(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("orders.ListStatusHistory: %w", err)
	}

	return records, nil
}
