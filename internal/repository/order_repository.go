package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/orderflow/internal/db"
	"github.com/nikolayk812/orderflow/internal/domain"
	"github.com/nikolayk812/orderflow/internal/port"
	"github.com/samber/lo"
	"golang.org/x/text/currency"
)

type orderRepository struct {
	q    *db.Queries
	dbtx db.DBTX
}

func NewOrder(pool *pgxpool.Pool) port.OrderRepository {
	return &orderRepository{
		q:    db.New(pool),
		dbtx: pool,
	}
}

func NewOrderWithTx(tx pgx.Tx) port.OrderRepository {
	return &orderRepository{
		q:    db.New(tx),
		dbtx: tx,
	}
}

func (r *orderRepository) GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	var o domain.Order

	dbOrder, err := r.q.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return o, fmt.Errorf("q.GetOrder: %w", domain.ErrOrderNotFound)
		}
		return o, fmt.Errorf("q.GetOrder: %w", err)
	}

	dbOrderItems, err := r.q.GetOrderItems(ctx, []uuid.UUID{orderID})
	if err != nil {
		return o, fmt.Errorf("q.GetOrderItems: %w", err)
	}

	o, err = mapDBOrderToDomain(dbOrder, dbOrderItems)
	if err != nil {
		return o, fmt.Errorf("mapDBOrderToDomain: %w", err)
	}

	return o, nil
}

func (r *orderRepository) InsertOrder(ctx context.Context, order domain.Order) (uuid.UUID, error) {
	if err := order.Validate(); err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	status := order.Status
	if status == "" {
		status = domain.OrderStatusPending
	}

	orderID, err := withTx(ctx, r.dbtx, func(q *db.Queries) (uuid.UUID, error) {
		orderID, err := q.InsertOrder(ctx, db.InsertOrderParams{
			OwnerID:         order.OwnerID,
			TotalAmount:     order.Total.Amount,
			Currency:        order.Total.Currency.String(),
			Status:          string(status),
			ShippingAddress: order.ShippingAddress,
		})
		if err != nil {
			return uuid.Nil, fmt.Errorf("q.InsertOrder: %w", err)
		}

		for idx, item := range order.Items {
			arg := db.InsertOrderItemParams{
				OrderID:   orderID,
				Position:  int32(idx),
				ProductID: item.ProductID,
				Quantity:  int32(item.Quantity),
				UnitPrice: item.UnitPrice.Amount,
			}
			cmdTag, err := q.InsertOrderItem(ctx, arg)
			if err != nil {
				if isPgError(err, pgForeignKeyViolation) {
					return uuid.Nil, fmt.Errorf("q.InsertOrderItem: item[%d]: %w", idx, domain.ErrProductNotFound)
				}
				return uuid.Nil, fmt.Errorf("q.InsertOrderItem: %w", err)
			}
			if cmdTag.RowsAffected() == 0 {
				return uuid.Nil, unavailableItem(ctx, q, idx, item.ProductID)
			}
		}

		return orderID, nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("withTx: %w", err)
	}

	return orderID, nil
}

// unavailableItem tells a missing product from an inactive one after an item insert matched no row.
func unavailableItem(ctx context.Context, q *db.Queries, idx int, productID uuid.UUID) error {
	if _, err := q.GetProduct(ctx, productID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("item[%d]: %w", idx, domain.ErrProductNotFound)
		}
		return fmt.Errorf("q.GetProduct: %w", err)
	}
	return fmt.Errorf("item[%d]: product %s: %w", idx, productID, domain.ErrProductUnavailable)
}

func (r *orderRepository) SearchOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("%w: filter.Validate: %w", domain.ErrValidation, err)
	}

	dbOrders, err := r.q.SearchOrders(ctx, mapDomainOrderFilterToDBFilter(filter))
	if err != nil {
		return nil, fmt.Errorf("q.SearchOrders: %w", err)
	}

	if len(dbOrders) == 0 {
		return nil, nil
	}

	ids := lo.Map(dbOrders, func(o db.Order, _ int) uuid.UUID { return o.ID })

	dbOrderItems, err := r.q.GetOrderItems(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("q.GetOrderItems: %w", err)
	}

	itemsByOrder := lo.GroupBy(dbOrderItems, func(i db.OrderItem) uuid.UUID { return i.OrderID })

	orders := make([]domain.Order, 0, len(dbOrders))
	for _, dbOrder := range dbOrders {
		order, err := mapDBOrderToDomain(dbOrder, itemsByOrder[dbOrder.ID])
		if err != nil {
			return nil, fmt.Errorf("mapDBOrderToDomain: %w", err)
		}
		orders = append(orders, order)
	}

	return orders, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, change domain.StatusChange) error {
	if change.OrderID == uuid.Nil {
		return fmt.Errorf("orderID is empty")
	}

	arg := db.UpdateOrderStatusParams{
		ID:         change.OrderID,
		FromStatus: string(change.From),
		ToStatus:   string(change.To),
		At:         change.At,
		Stamp:      change.Stamp,
	}
	if change.Shipment != nil {
		arg.Courier = lo.ToPtr(change.Shipment.Courier)
		arg.TrackingNumber = lo.ToPtr(change.Shipment.TrackingNumber)
	}

	_, err := withTx(ctx, r.dbtx, func(q *db.Queries) (struct{}, error) {
		cmdTag, err := q.UpdateOrderStatus(ctx, arg)
		if err != nil {
			return struct{}{}, fmt.Errorf("q.UpdateOrderStatus: %w", err)
		}

		if cmdTag.RowsAffected() == 0 {
			exists, err := q.OrderExists(ctx, change.OrderID)
			if err != nil {
				return struct{}{}, fmt.Errorf("q.OrderExists: %w", err)
			}
			if !exists {
				return struct{}{}, fmt.Errorf("q.UpdateOrderStatus: %w", domain.ErrOrderNotFound)
			}
			return struct{}{}, fmt.Errorf("q.UpdateOrderStatus: %w", domain.ErrStatusChanged)
		}

		if err := q.InsertStatusHistory(ctx, db.InsertStatusHistoryParams{
			OrderID:    change.OrderID,
			FromStatus: string(change.From),
			ToStatus:   string(change.To),
			ActorID:    change.Actor.ID,
			ActorRole:  string(change.Actor.Role),
			Note:       change.Note,
			ChangedAt:  change.At,
		}); err != nil {
			return struct{}{}, fmt.Errorf("q.InsertStatusHistory: %w", err)
		}

		return struct{}{}, nil
	})
	if err != nil {
		return fmt.Errorf("withTx: %w", err)
	}

	return nil
}

func (r *orderRepository) ListStatusHistory(ctx context.Context, orderID uuid.UUID) ([]domain.StatusChangeRecord, error) {
	rows, err := r.q.ListStatusHistory(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("q.ListStatusHistory: %w", err)
	}

	records := make([]domain.StatusChangeRecord, 0, len(rows))
	for _, row := range rows {
		record, err := mapDBStatusHistoryToDomain(row)
		if err != nil {
			return nil, fmt.Errorf("mapDBStatusHistoryToDomain: %w", err)
		}
		records = append(records, record)
	}

	return records, nil
}

func mapDomainOrderFilterToDBFilter(filter domain.OrderFilter) db.SearchOrdersParams {
	statuses := lo.Map(filter.Statuses, func(s domain.OrderStatus, _ int) string { return string(s) })

	arg := db.SearchOrdersParams{
		Ids:      nilSliceIfEmpty(filter.IDs),
		OwnerIds: nilSliceIfEmpty(filter.OwnerIDs),
		Statuses: nilSliceIfEmpty(statuses),
		Limit:    int32(filter.Page.EffectiveLimit()),
		Offset:   int32(filter.Page.Offset),
	}

	if filter.CreatedAt != nil {
		arg.CreatedAfter = filter.CreatedAt.After
		arg.CreatedBefore = filter.CreatedAt.Before
	}

	if filter.ShippedAt != nil {
		arg.ShippedAfter = filter.ShippedAt.After
		arg.ShippedBefore = filter.ShippedAt.Before
	}

	return arg
}

func mapDBOrderToDomain(dbOrder db.Order, dbOrderItems []db.OrderItem) (domain.Order, error) {
	var o domain.Order

	orderCurrency, err := currency.ParseISO(dbOrder.Currency)
	if err != nil {
		return o, fmt.Errorf("currency[%s] is not valid: %w", dbOrder.Currency, err)
	}

	status, err := domain.ToOrderStatus(dbOrder.Status)
	if err != nil {
		return o, fmt.Errorf("domain.ToOrderStatus[%s]: %w", dbOrder.Status, err)
	}

	items := make([]domain.OrderItem, 0, len(dbOrderItems))
	for _, row := range dbOrderItems {
		items = append(items, domain.OrderItem{
			ProductID: row.ProductID,
			Quantity:  int(row.Quantity),
			UnitPrice: domain.Money{Amount: row.UnitPrice, Currency: orderCurrency},
			CreatedAt: row.CreatedAt,
		})
	}

	return domain.Order{
		ID:              dbOrder.ID,
		OwnerID:         dbOrder.OwnerID,
		Items:           items,
		Total:           domain.Money{Amount: dbOrder.TotalAmount, Currency: orderCurrency},
		Status:          status,
		ShippingAddress: dbOrder.ShippingAddress,
		Courier:         dbOrder.Courier,
		TrackingNumber:  dbOrder.TrackingNumber,
		CreatedAt:       dbOrder.CreatedAt,
		UpdatedAt:       dbOrder.UpdatedAt,
		PaidAt:          dbOrder.PaidAt,
		ShippedAt:       dbOrder.ShippedAt,
		CompletedAt:     dbOrder.CompletedAt,
		CancelledAt:     dbOrder.CancelledAt,
		ReturnedAt:      dbOrder.ReturnedAt,
	}, nil
}

func mapDBStatusHistoryToDomain(row db.OrderStatusHistory) (domain.StatusChangeRecord, error) {
	var r domain.StatusChangeRecord

	from, err := domain.ToOrderStatus(row.FromStatus)
	if err != nil {
		return r, fmt.Errorf("domain.ToOrderStatus[%s]: %w", row.FromStatus, err)
	}

	to, err := domain.ToOrderStatus(row.ToStatus)
	if err != nil {
		return r, fmt.Errorf("domain.ToOrderStatus[%s]: %w", row.ToStatus, err)
	}

	return domain.StatusChangeRecord{
		OrderID:   row.OrderID,
		From:      from,
		To:        to,
		ActorID:   row.ActorID,
		ActorRole: domain.Role(row.ActorRole),
		Note:      row.Note,
		ChangedAt: row.ChangedAt,
	}, nil
}
