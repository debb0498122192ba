package memrepo

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/nikolayk812/orderflow/internal/domain"
)

type notificationRepository struct {
	v view
}

func (r *notificationRepository) InsertNotification(_ context.Context, n domain.Notification) (domain.Notification, error) {
	err := r.v.do(func(st *state) error {
		n.ID = uuid.New()
		n.Read = false
		n.CreatedAt = r.v.s.now()
		st.notifications[n.ID] = n
		return nil
	})

	return n, err
}

func (r *notificationRepository) ListNotifications(_ context.Context, recipientID string, limit int) ([]domain.Notification, error) {
	var result []domain.Notification

	err := r.v.read(func(st *state) error {
		for _, n := range st.notifications {
			if n.RecipientID == recipientID {
				result = append(result, n)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(result, func(a, b domain.Notification) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return slices.Compare(a.ID[:], b.ID[:])
	})

	return page(result, domain.Page{Limit: min(max(limit, 0), domain.MaxPageLimit)}), nil
}

func (r *notificationRepository) MarkRead(_ context.Context, id uuid.UUID, recipientID string) error {
	return r.v.do(func(st *state) error {
		n, ok := st.notifications[id]
		if !ok || n.RecipientID != recipientID {
			return domain.ErrNotificationNotFound
		}
		n.Read = true
		st.notifications[id] = n
		return nil
	})
}

func (r *notificationRepository) MarkAllRead(_ context.Context, recipientID string) (int64, error) {
	var marked int64

	err := r.v.do(func(st *state) error {
		for id, n := range st.notifications {
			if n.RecipientID == recipientID && !n.Read {
				n.Read = true
				st.notifications[id] = n
				marked++
			}
		}
		return nil
	})

	return marked, err
}

func (r *notificationRepository) CountUnread(_ context.Context, recipientID string) (int64, error) {
	var count int64

	err := r.v.read(func(st *state) error {
		for _, n := range st.notifications {
			if n.RecipientID == recipientID && !n.Read {
				count++
			}
		}
		return nil
	})

	return count, err
}
