package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const insertNotification = `INSERT INTO notifications (recipient_id, title, message, category, action_url)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, recipient_id, title, message, category, is_read, action_url, created_at
`

type InsertNotificationParams struct {
	RecipientID string
	Title       string
	Message     string
	Category    string
	ActionUrl   *string
}

func (q *Queries) InsertNotification(ctx context.Context, arg InsertNotificationParams) (Notification, error) {
	row := q.db.QueryRow(ctx, insertNotification,
		arg.RecipientID,
		arg.Title,
		arg.Message,
		arg.Category,
		arg.ActionUrl,
	)
	var i Notification
	err := row.Scan(
		&i.ID,
		&i.RecipientID,
		&i.Title,
		&i.Message,
		&i.Category,
		&i.IsRead,
		&i.ActionUrl,
		&i.CreatedAt,
	)
	return i, err
}

const listNotifications = `SELECT id, recipient_id, title, message, category, is_read, action_url, created_at
FROM notifications
WHERE recipient_id = $1
ORDER BY created_at DESC, id
LIMIT $2
`

func (q *Queries) ListNotifications(ctx context.Context, recipientID string, limit int32) ([]Notification, error) {
	rows, err := q.db.Query(ctx, listNotifications, recipientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Notification
	for rows.Next() {
		var i Notification
		if err := rows.Scan(
			&i.ID,
			&i.RecipientID,
			&i.Title,
			&i.Message,
			&i.Category,
			&i.IsRead,
			&i.ActionUrl,
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

const markNotificationRead = `UPDATE notifications
SET is_read = TRUE
WHERE id = $1
  AND recipient_id = $2
`

func (q *Queries) MarkNotificationRead(ctx context.Context, id uuid.UUID, recipientID string) (pgconn.CommandTag, error) {
	return q.db.Exec(ctx, markNotificationRead, id, recipientID)
}

const markAllNotificationsRead = `UPDATE notifications
SET is_read = TRUE
WHERE recipient_id = $1
  AND NOT is_read
`

func (q *Queries) MarkAllNotificationsRead(ctx context.Context, recipientID string) (pgconn.CommandTag, error) {
	return q.db.Exec(ctx, markAllNotificationsRead, recipientID)
}

const countUnreadNotifications = `SELECT count(*)
FROM notifications
WHERE recipient_id = $1
  AND NOT is_read
`

func (q *Queries) CountUnreadNotifications(ctx context.Context, recipientID string) (int64, error) {
	row := q.db.QueryRow(ctx, countUnreadNotifications, recipientID)
	var count int64
	err := row.Scan(&count)
	return count, err
}
