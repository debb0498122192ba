package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const orderColumns = `id, owner_id, total_amount, currency, status, shipping_address, courier, tracking_number,
       created_at, updated_at, paid_at, shipped_at, completed_at, cancelled_at, returned_at`

func scanOrder(row pgx.Row) (Order, error) {
	var i Order
	err := row.Scan(
		&i.ID,
		&i.OwnerID,
		&i.TotalAmount,
		&i.Currency,
		&i.Status,
		&i.ShippingAddress,
		&i.Courier,
		&i.TrackingNumber,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.PaidAt,
		&i.ShippedAt,
		&i.CompletedAt,
		&i.CancelledAt,
		&i.ReturnedAt,
	)
	return i, err
}

const insertOrder = `INSERT INTO orders (owner_id, total_amount, currency, status, shipping_address)
VALUES ($1, $2, $3, $4, $5)
RETURNING id
`

type InsertOrderParams struct {
	OwnerID         string
	TotalAmount     int64
	Currency        string
	Status          string
	ShippingAddress string
}

func (q *Queries) InsertOrder(ctx context.Context, arg InsertOrderParams) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, insertOrder,
		arg.OwnerID,
		arg.TotalAmount,
		arg.Currency,
		arg.Status,
		arg.ShippingAddress,
	)
	var id uuid.UUID
	err := row.Scan(&id)
	return id, err
}

// Inserts nothing when the product is missing or inactive.
const insertOrderItem = `INSERT INTO order_items (order_id, position, product_id, quantity, unit_price)
SELECT $1, $2, p.id, $4, $5
FROM products p
WHERE p.id = $3
  AND p.is_active
FOR SHARE OF p
`

type InsertOrderItemParams struct {
	OrderID   uuid.UUID
	Position  int32
	ProductID uuid.UUID
	Quantity  int32
	UnitPrice int64
}

func (q *Queries) InsertOrderItem(ctx context.Context, arg InsertOrderItemParams) (pgconn.CommandTag, error) {
	return q.db.Exec(ctx, insertOrderItem,
		arg.OrderID,
		arg.Position,
		arg.ProductID,
		arg.Quantity,
		arg.UnitPrice,
	)
}

const getOrder = `SELECT ` + orderColumns + `
FROM orders
WHERE id = $1
`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrder, id))
}

const orderExists = `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)
`

func (q *Queries) OrderExists(ctx context.Context, id uuid.UUID) (bool, error) {
	row := q.db.QueryRow(ctx, orderExists, id)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const getOrderItems = `SELECT order_id, position, product_id, quantity, unit_price, created_at
FROM order_items
WHERE order_id = ANY ($1::uuid[])
ORDER BY order_id, position
`

func (q *Queries) GetOrderItems(ctx context.Context, orderIds []uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, getOrderItems, orderIds)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderItem
	for rows.Next() {
		var i OrderItem
		if err := rows.Scan(
			&i.OrderID,
			&i.Position,
			&i.ProductID,
			&i.Quantity,
			&i.UnitPrice,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const searchOrders = `SELECT ` + orderColumns + `
FROM orders
WHERE ($1::uuid[] IS NULL OR id = ANY ($1::uuid[]))
  AND ($2::text[] IS NULL OR owner_id = ANY ($2::text[]))
  AND ($3::text[] IS NULL OR status = ANY ($3::text[]))
  AND ($4::timestamptz IS NULL OR created_at > $4::timestamptz)
  AND ($5::timestamptz IS NULL OR created_at < $5::timestamptz)
  AND ($6::timestamptz IS NULL OR shipped_at > $6::timestamptz)
  AND ($7::timestamptz IS NULL OR shipped_at < $7::timestamptz)
ORDER BY created_at DESC, id
LIMIT $8 OFFSET $9
`

type SearchOrdersParams struct {
	Ids           []uuid.UUID
	OwnerIds      []string
	Statuses      []string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	ShippedAfter  *time.Time
	ShippedBefore *time.Time
	Limit         int32
	Offset        int32
}

func (q *Queries) SearchOrders(ctx context.Context, arg SearchOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, searchOrders,
		arg.Ids,
		arg.OwnerIds,
		arg.Statuses,
		arg.CreatedAfter,
		arg.CreatedBefore,
		arg.ShippedAfter,
		arg.ShippedBefore,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Order
	for rows.Next() {
		i, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateOrderStatus = `UPDATE orders
SET status          = $3::text,
    updated_at      = $4::timestamptz,
    paid_at         = CASE WHEN $5::boolean AND $3::text = 'paid' THEN $4::timestamptz ELSE paid_at END,
    shipped_at      = CASE WHEN $5::boolean AND $3::text = 'shipped' THEN $4::timestamptz ELSE shipped_at END,
    completed_at    = CASE WHEN $5::boolean AND $3::text = 'completed' THEN $4::timestamptz ELSE completed_at END,
    cancelled_at    = CASE WHEN $5::boolean AND $3::text = 'cancelled' THEN $4::timestamptz ELSE cancelled_at END,
    returned_at     = CASE WHEN $5::boolean AND $3::text = 'returned' THEN $4::timestamptz ELSE returned_at END,
    courier         = COALESCE($6::text, courier),
    tracking_number = COALESCE($7::text, tracking_number)
WHERE id = $1
  AND status = $2::text
`

type UpdateOrderStatusParams struct {
	ID             uuid.UUID
	FromStatus     string
	ToStatus       string
	At             time.Time
	Stamp          bool
	Courier        *string
	TrackingNumber *string
}

// UpdateOrderStatus changes the row only while its status still equals FromStatus.
func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (pgconn.CommandTag, error) {
	return q.db.Exec(ctx, updateOrderStatus,
		arg.ID,
		arg.FromStatus,
		arg.ToStatus,
		arg.At,
		arg.Stamp,
		arg.Courier,
		arg.TrackingNumber,
	)
}

const insertStatusHistory = `INSERT INTO order_status_history (order_id, from_status, to_status, actor_id, actor_role, note, changed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`

type InsertStatusHistoryParams struct {
	OrderID    uuid.UUID
	FromStatus string
	ToStatus   string
	ActorID    string
	ActorRole  string
	Note       string
	ChangedAt  time.Time
}

func (q *Queries) InsertStatusHistory(ctx context.Context, arg InsertStatusHistoryParams) error {
	_, err := q.db.Exec(ctx, insertStatusHistory,
		arg.OrderID,
		arg.FromStatus,
		arg.ToStatus,
		arg.ActorID,
		arg.ActorRole,
		arg.Note,
		arg.ChangedAt,
	)
	return err
}

const listStatusHistory = `SELECT id, order_id, from_status, to_status, actor_id, actor_role, note, changed_at
FROM order_status_history
WHERE order_id = $1
ORDER BY changed_at, id
`

func (q *Queries) ListStatusHistory(ctx context.Context, orderID uuid.UUID) ([]OrderStatusHistory, error) {
	rows, err := q.db.Query(ctx, listStatusHistory, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderStatusHistory
	for rows.Next() {
		var i OrderStatusHistory
		if err := rows.Scan(
			&i.ID,
			&i.OrderID,
			&i.FromStatus,
			&i.ToStatus,
			&i.ActorID,
			&i.ActorRole,
			&i.Note,
			&i.ChangedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
