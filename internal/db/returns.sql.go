package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const returnRequestColumns = `id, order_id, requester_id, reason, description, images, status, order_status_before,
       decided_by, decided_at, completed_at, created_at, updated_at`

func scanReturnRequest(row pgx.Row) (ReturnRequest, error) {
	var i ReturnRequest
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.RequesterID,
		&i.Reason,
		&i.Description,
		&i.Images,
		&i.Status,
		&i.OrderStatusBefore,
		&i.DecidedBy,
		&i.DecidedAt,
		&i.CompletedAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const insertReturnRequest = `INSERT INTO return_requests (order_id, requester_id, reason, description, images, status, order_status_before)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id
`

type InsertReturnRequestParams struct {
	OrderID           uuid.UUID
	RequesterID       string
	Reason            string
	Description       string
	Images            []string
	Status            string
	OrderStatusBefore string
}

func (q *Queries) InsertReturnRequest(ctx context.Context, arg InsertReturnRequestParams) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, insertReturnRequest,
		arg.OrderID,
		arg.RequesterID,
		arg.Reason,
		arg.Description,
		arg.Images,
		arg.Status,
		arg.OrderStatusBefore,
	)
	var id uuid.UUID
	err := row.Scan(&id)
	return id, err
}

const getReturnRequest = `SELECT ` + returnRequestColumns + `
FROM return_requests
WHERE id = $1
`

func (q *Queries) GetReturnRequest(ctx context.Context, id uuid.UUID) (ReturnRequest, error) {
	return scanReturnRequest(q.db.QueryRow(ctx, getReturnRequest, id))
}

const getActiveReturnRequestByOrder = `SELECT ` + returnRequestColumns + `
FROM return_requests
WHERE order_id = $1
  AND status IN ('pending', 'approved')
`

func (q *Queries) GetActiveReturnRequestByOrder(ctx context.Context, orderID uuid.UUID) (ReturnRequest, error) {
	return scanReturnRequest(q.db.QueryRow(ctx, getActiveReturnRequestByOrder, orderID))
}

const returnRequestExists = `SELECT EXISTS (SELECT 1 FROM return_requests WHERE id = $1)
`

func (q *Queries) ReturnRequestExists(ctx context.Context, id uuid.UUID) (bool, error) {
	row := q.db.QueryRow(ctx, returnRequestExists, id)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const listReturnRequests = `SELECT ` + returnRequestColumns + `
FROM return_requests
WHERE ($1::text[] IS NULL OR status = ANY ($1::text[]))
  AND ($2::uuid[] IS NULL OR order_id = ANY ($2::uuid[]))
  AND ($3::text = '' OR requester_id = $3::text)
ORDER BY created_at DESC, id
LIMIT $4 OFFSET $5
`

type ListReturnRequestsParams struct {
	Statuses    []string
	OrderIds    []uuid.UUID
	RequesterID string
	Limit       int32
	Offset      int32
}

func (q *Queries) ListReturnRequests(ctx context.Context, arg ListReturnRequestsParams) ([]ReturnRequest, error) {
	rows, err := q.db.Query(ctx, listReturnRequests,
		arg.Statuses,
		arg.OrderIds,
		arg.RequesterID,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ReturnRequest
	for rows.Next() {
		i, err := scanReturnRequest(rows)
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

const updateReturnRequestStatus = `UPDATE return_requests
SET status       = $3::text,
    updated_at   = $4::timestamptz,
    decided_by   = CASE WHEN $3::text IN ('approved', 'rejected') THEN $5::text ELSE decided_by END,
    decided_at   = CASE WHEN $3::text IN ('approved', 'rejected') THEN $4::timestamptz ELSE decided_at END,
    completed_at = CASE WHEN $3::text = 'completed' THEN $4::timestamptz ELSE completed_at END
WHERE id = $1
  AND status = $2::text
`

type UpdateReturnRequestStatusParams struct {
	ID         uuid.UUID
	FromStatus string
	ToStatus   string
	At         time.Time
	ActorID    string
}

func (q *Queries) UpdateReturnRequestStatus(ctx context.Context, arg UpdateReturnRequestStatusParams) (pgconn.CommandTag, error) {
	return q.db.Exec(ctx, updateReturnRequestStatus,
		arg.ID,
		arg.FromStatus,
		arg.ToStatus,
		arg.At,
		arg.ActorID,
	)
}
