package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/nikolayk812/orderflow/internal/domain"
	"github.com/nikolayk812/orderflow/internal/port"
)

// Inbox serves the persisted notifications of the calling actor.
type Inbox struct {
	repo port.NotificationRepository
}

func NewInbox(repo port.NotificationRepository) *Inbox {
	return &Inbox{repo: repo}
}

// List returns the newest notifications first.
func (i *Inbox) List(ctx context.Context, actor domain.Actor, limit int) ([]domain.Notification, error) {
	if err := actor.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	notifications, err := i.repo.ListNotifications(ctx, actor.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("repo.ListNotifications: %w", err)
	}

	return notifications, nil
}

// MarkRead reports NotFound for notifications addressed to somebody else.
func (i *Inbox) MarkRead(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	if err := actor.Validate(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	if err := i.repo.MarkRead(ctx, id, actor.ID); err != nil {
		return fmt.Errorf("repo.MarkRead: %w", err)
	}

	return nil
}

func (i *Inbox) MarkAllRead(ctx context.Context, actor domain.Actor) (int64, error) {
	if err := actor.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	marked, err := i.repo.MarkAllRead(ctx, actor.ID)
	if err != nil {
		return 0, fmt.Errorf("repo.MarkAllRead: %w", err)
	}

	return marked, nil
}

func (i *Inbox) UnreadCount(ctx context.Context, actor domain.Actor) (int64, error) {
	if err := actor.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	count, err := i.repo.CountUnread(ctx, actor.ID)
	if err != nil {
		return 0, fmt.Errorf("repo.CountUnread: %w", err)
	}

	return count, nil
}
