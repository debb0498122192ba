package memrepo

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/nikolayk812/orderflow/internal/domain"
	"github.com/samber/lo"
)

type returnRepository struct {
	v view
}

func (r *returnRepository) InsertReturn(_ context.Context, req domain.ReturnRequest) (uuid.UUID, error) {
	id := uuid.New()

	err := r.v.do(func(st *state) error {
		if _, ok := st.orders[req.OrderID]; !ok {
			return domain.ErrOrderNotFound
		}
		for _, existing := range st.returns {
			if existing.OrderID == req.OrderID && existing.Status.IsActive() {
				return domain.ErrActiveReturnExists
			}
		}

		now := r.v.s.now()

		stored := req
		stored.ID = id
		stored.EvidenceImages = slices.Clone(req.EvidenceImages)
		if stored.Status == "" {
			stored.Status = domain.ReturnStatusPending
		}
		stored.CreatedAt = now
		stored.UpdatedAt = now

		st.returns[id] = stored
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	return id, nil
}

func (r *returnRepository) GetReturn(_ context.Context, id uuid.UUID) (domain.ReturnRequest, error) {
	var req domain.ReturnRequest

	err := r.v.read(func(st *state) error {
		found, ok := st.returns[id]
		if !ok {
			return domain.ErrReturnNotFound
		}
		req = detachReturn(found)
		return nil
	})

	return req, err
}

func (r *returnRepository) GetActiveReturnByOrder(_ context.Context, orderID uuid.UUID) (domain.ReturnRequest, error) {
	var req domain.ReturnRequest

	err := r.v.read(func(st *state) error {
		for _, existing := range st.returns {
			if existing.OrderID == orderID && existing.Status.IsActive() {
				req = detachReturn(existing)
				return nil
			}
		}
		return domain.ErrReturnNotFound
	})

	return req, err
}

func (r *returnRepository) ListReturns(_ context.Context, filter domain.ReturnFilter) ([]domain.ReturnRequest, error) {
	if err := filter.Page.Validate(); err != nil {
		return nil, err
	}

	var result []domain.ReturnRequest

	err := r.v.read(func(st *state) error {
		result = lo.Filter(lo.Values(st.returns), func(req domain.ReturnRequest, _ int) bool {
			switch {
			case len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, req.Status):
				return false
			case len(filter.OrderIDs) > 0 && !slices.Contains(filter.OrderIDs, req.OrderID):
				return false
			case filter.RequesterID != "" && filter.RequesterID != req.RequesterID:
				return false
			}
			return true
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(result, func(a, b domain.ReturnRequest) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return slices.Compare(a.ID[:], b.ID[:])
	})

	return lo.Map(page(result, filter.Page), func(req domain.ReturnRequest, _ int) domain.ReturnRequest {
		return detachReturn(req)
	}), nil
}

func (r *returnRepository) UpdateReturnStatus(_ context.Context, change domain.ReturnStatusChange) error {
	return r.v.do(func(st *state) error {
		req, ok := st.returns[change.ID]
		if !ok {
			return domain.ErrReturnNotFound
		}
		if req.Status != change.From {
			return domain.ErrStatusChanged
		}

		at := change.At
		req.Status = change.To
		req.UpdatedAt = at

		switch change.To {
		case domain.ReturnStatusApproved, domain.ReturnStatusRejected:
			req.DecidedBy = lo.ToPtr(change.Actor.ID)
			req.DecidedAt = &at
		case domain.ReturnStatusCompleted:
			req.CompletedAt = &at
		}

		st.returns[req.ID] = req
		return nil
	})
}
