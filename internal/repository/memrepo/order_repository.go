package memrepo

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/orderflow/internal/domain"
)

type orderRepository struct {
	v view
}

func (r *orderRepository) GetOrder(_ context.Context, orderID uuid.UUID) (domain.Order, error) {
	var order domain.Order

	err := r.v.read(func(st *state) error {
		o, ok := st.orders[orderID]
		if !ok {
			return domain.ErrOrderNotFound
		}
		order = detachOrder(o)
		return nil
	})

	return order, err
}

func (r *orderRepository) SearchOrders(_ context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("%w: filter.Validate: %w", domain.ErrValidation, err)
	}

	var result []domain.Order

	err := r.v.read(func(st *state) error {
		for _, o := range st.orders {
			if matchesOrderFilter(o, filter) {
				result = append(result, detachOrder(o))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(result, func(a, b domain.Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return slices.Compare(a.ID[:], b.ID[:])
	})

	return page(result, filter.Page), nil
}

func (r *orderRepository) InsertOrder(_ context.Context, order domain.Order) (uuid.UUID, error) {
	if err := order.Validate(); err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	id := uuid.New()

	err := r.v.do(func(st *state) error {
		for idx, item := range order.Items {
			product, ok := st.products[item.ProductID]
			if !ok {
				return fmt.Errorf("item[%d]: %w", idx, domain.ErrProductNotFound)
			}
			if !product.Active {
				return fmt.Errorf("item[%d]: product %s: %w", idx, item.ProductID, domain.ErrProductUnavailable)
			}
		}

		now := r.v.s.now()

		o := order
		o.ID = id
		o.Items = slices.Clone(order.Items)
		for i := range o.Items {
			o.Items[i].CreatedAt = now
		}
		if o.Status == "" {
			o.Status = domain.OrderStatusPending
		}
		o.CreatedAt = now
		o.UpdatedAt = now

		st.orders[id] = o
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	return id, nil
}

func (r *orderRepository) UpdateStatus(_ context.Context, change domain.StatusChange) error {
	return r.v.do(func(st *state) error {
		o, ok := st.orders[change.OrderID]
		if !ok {
			return domain.ErrOrderNotFound
		}
		if o.Status != change.From {
			return domain.ErrStatusChanged
		}

		o.ApplyStatusChange(change)
		st.orders[o.ID] = o

		st.history[o.ID] = append(slices.Clip(st.history[o.ID]), domain.StatusChangeRecord{
			OrderID:   o.ID,
			From:      change.From,
			To:        change.To,
			ActorID:   change.Actor.ID,
			ActorRole: change.Actor.Role,
			Note:      change.Note,
			ChangedAt: change.At,
		})
		return nil
	})
}

func (r *orderRepository) ListStatusHistory(_ context.Context, orderID uuid.UUID) ([]domain.StatusChangeRecord, error) {
	var records []domain.StatusChangeRecord

	err := r.v.read(func(st *state) error {
		records = slices.Clone(st.history[orderID])
		return nil
	})

	return records, err
}

func matchesOrderFilter(o domain.Order, f domain.OrderFilter) bool {
	if len(f.IDs) > 0 && !slices.Contains(f.IDs, o.ID) {
		return false
	}
	if len(f.OwnerIDs) > 0 && !slices.Contains(f.OwnerIDs, o.OwnerID) {
		return false
	}
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, o.Status) {
		return false
	}
	if f.CreatedAt != nil && !inRange(&o.CreatedAt, *f.CreatedAt) {
		return false
	}
	if f.ShippedAt != nil && !inRange(o.ShippedAt, *f.ShippedAt) {
		return false
	}
	return true
}

func inRange(t *time.Time, r domain.TimeRange) bool {
	if t == nil {
		return false
	}
	if r.After != nil && !t.After(*r.After) {
		return false
	}
	if r.Before != nil && !t.Before(*r.Before) {
		return false
	}
	return true
}
