package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/orderflow/internal/db"
	"github.com/nikolayk812/orderflow/internal/domain"
	"github.com/nikolayk812/orderflow/internal/port"
)

type notificationRepository struct {
	q *db.Queries
}

func NewNotification(pool *pgxpool.Pool) port.NotificationRepository {
	return &notificationRepository{
		q: db.New(pool),
	}
}

func (r *notificationRepository) InsertNotification(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	row, err := r.q.InsertNotification(ctx, db.InsertNotificationParams{
		RecipientID: n.RecipientID,
		Title:       n.Title,
		Message:     n.Message,
		Category:    string(n.Category),
		ActionUrl:   n.ActionURL,
	})
	if err != nil {
		return domain.Notification{}, fmt.Errorf("q.InsertNotification: %w", err)
	}

	return mapDBNotificationToDomain(row), nil
}

func (r *notificationRepository) ListNotifications(ctx context.Context, recipientID string, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = domain.DefaultPageLimit
	}

	rows, err := r.q.ListNotifications(ctx, recipientID, int32(min(limit, domain.MaxPageLimit)))
	if err != nil {
		return nil, fmt.Errorf("q.ListNotifications: %w", err)
	}

	notifications := make([]domain.Notification, 0, len(rows))
	for _, row := range rows {
		notifications = append(notifications, mapDBNotificationToDomain(row))
	}

	return notifications, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id uuid.UUID, recipientID string) error {
	cmdTag, err := r.q.MarkNotificationRead(ctx, id, recipientID)
	if err != nil {
		return fmt.Errorf("q.MarkNotificationRead: %w", err)
	}

	// somebody else's notification looks the same as a missing one
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("q.MarkNotificationRead: %w", domain.ErrNotificationNotFound)
	}

	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	cmdTag, err := r.q.MarkAllNotificationsRead(ctx, recipientID)
	if err != nil {
		return 0, fmt.Errorf("q.MarkAllNotificationsRead: %w", err)
	}

	return cmdTag.RowsAffected(), nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	count, err := r.q.CountUnreadNotifications(ctx, recipientID)
	if err != nil {
		return 0, fmt.Errorf("q.CountUnreadNotifications: %w", err)
	}

	return count, nil
}

func mapDBNotificationToDomain(row db.Notification) domain.Notification {
	return domain.Notification{
		ID:          row.ID,
		RecipientID: row.RecipientID,
		Title:       row.Title,
		Message:     row.Message,
		Category:    domain.NotificationCategory(row.Category),
		Read:        row.IsRead,
		ActionURL:   row.ActionUrl,
		CreatedAt:   row.CreatedAt,
	}
}
