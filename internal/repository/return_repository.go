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
)

type returnRepository struct {
	q    *db.Queries
	dbtx db.DBTX
}

func NewReturn(pool *pgxpool.Pool) port.ReturnRepository {
	return &returnRepository{
		q:    db.New(pool),
		dbtx: pool,
	}
}

func NewReturnWithTx(tx pgx.Tx) port.ReturnRepository {
	return &returnRepository{
		q:    db.New(tx),
		dbtx: tx,
	}
}

func (r *returnRepository) InsertReturn(ctx context.Context, req domain.ReturnRequest) (uuid.UUID, error) {
	status := req.Status
	if status == "" {
		status = domain.ReturnStatusPending
	}

	id, err := r.q.InsertReturnRequest(ctx, db.InsertReturnRequestParams{
		OrderID:           req.OrderID,
		RequesterID:       req.RequesterID,
		Reason:            string(req.Reason),
		Description:       req.Description,
		Images:            lo.Ternary(req.EvidenceImages == nil, []string{}, req.EvidenceImages),
		Status:            string(status),
		OrderStatusBefore: string(req.OrderStatusBefore),
	})
	if err != nil {
		switch {
		case isPgError(err, pgUniqueViolation):
			return uuid.Nil, fmt.Errorf("q.InsertReturnRequest: %w", domain.ErrActiveReturnExists)
		case isPgError(err, pgForeignKeyViolation):
			return uuid.Nil, fmt.Errorf("q.InsertReturnRequest: %w", domain.ErrOrderNotFound)
		}
		return uuid.Nil, fmt.Errorf("q.InsertReturnRequest: %w", err)
	}

	return id, nil
}

func (r *returnRepository) GetReturn(ctx context.Context, id uuid.UUID) (domain.ReturnRequest, error) {
	row, err := r.q.GetReturnRequest(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ReturnRequest{}, fmt.Errorf("q.GetReturnRequest: %w", domain.ErrReturnNotFound)
		}
		return domain.ReturnRequest{}, fmt.Errorf("q.GetReturnRequest: %w", err)
	}

	return mapDBReturnToDomain(row)
}

func (r *returnRepository) GetActiveReturnByOrder(ctx context.Context, orderID uuid.UUID) (domain.ReturnRequest, error) {
	row, err := r.q.GetActiveReturnRequestByOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ReturnRequest{}, fmt.Errorf("q.GetActiveReturnRequestByOrder: %w", domain.ErrReturnNotFound)
		}
		return domain.ReturnRequest{}, fmt.Errorf("q.GetActiveReturnRequestByOrder: %w", err)
	}

	return mapDBReturnToDomain(row)
}

func (r *returnRepository) ListReturns(ctx context.Context, filter domain.ReturnFilter) ([]domain.ReturnRequest, error) {
	if err := filter.Page.Validate(); err != nil {
		return nil, fmt.Errorf("%w: page: %w", domain.ErrValidation, err)
	}

	statuses := lo.Map(filter.Statuses, func(s domain.ReturnStatus, _ int) string { return string(s) })

	rows, err := r.q.ListReturnRequests(ctx, db.ListReturnRequestsParams{
		Statuses:    nilSliceIfEmpty(statuses),
		OrderIds:    nilSliceIfEmpty(filter.OrderIDs),
		RequesterID: filter.RequesterID,
		Limit:       int32(filter.Page.EffectiveLimit()),
		Offset:      int32(filter.Page.Offset),
	})
	if err != nil {
		return nil, fmt.Errorf("q.ListReturnRequests: %w", err)
	}

	requests := make([]domain.ReturnRequest, 0, len(rows))
	for _, row := range rows {
		req, err := mapDBReturnToDomain(row)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}

	return requests, nil
}

func (r *returnRepository) UpdateReturnStatus(ctx context.Context, change domain.ReturnStatusChange) error {
	_, err := withTx(ctx, r.dbtx, func(q *db.Queries) (struct{}, error) {
		cmdTag, err := q.UpdateReturnRequestStatus(ctx, db.UpdateReturnRequestStatusParams{
			ID:         change.ID,
			FromStatus: string(change.From),
			ToStatus:   string(change.To),
			At:         change.At,
			ActorID:    change.Actor.ID,
		})
		if err != nil {
			return struct{}{}, fmt.Errorf("q.UpdateReturnRequestStatus: %w", err)
		}

		if cmdTag.RowsAffected() > 0 {
			return struct{}{}, nil
		}

		exists, err := q.ReturnRequestExists(ctx, change.ID)
		if err != nil {
			return struct{}{}, fmt.Errorf("q.ReturnRequestExists: %w", err)
		}
		if !exists {
			return struct{}{}, fmt.Errorf("q.UpdateReturnRequestStatus: %w", domain.ErrReturnNotFound)
		}
		return struct{}{}, fmt.Errorf("q.UpdateReturnRequestStatus: %w", domain.ErrStatusChanged)
	})
	if err != nil {
		return fmt.Errorf("withTx: %w", err)
	}

	return nil
}

func mapDBReturnToDomain(row db.ReturnRequest) (domain.ReturnRequest, error) {
	var req domain.ReturnRequest

	status, err := domain.ToReturnStatus(row.Status)
	if err != nil {
		return req, fmt.Errorf("domain.ToReturnStatus[%s]: %w", row.Status, err)
	}

	reason, err := domain.ToReturnReason(row.Reason)
	if err != nil {
		return req, fmt.Errorf("domain.ToReturnReason[%s]: %w", row.Reason, err)
	}

	before, err := domain.ToOrderStatus(row.OrderStatusBefore)
	if err != nil {
		return req, fmt.Errorf("domain.ToOrderStatus[%s]: %w", row.OrderStatusBefore, err)
	}

	return domain.ReturnRequest{
		ID:                row.ID,
		OrderID:           row.OrderID,
		RequesterID:       row.RequesterID,
		Reason:            reason,
		Description:       row.Description,
		EvidenceImages:    row.Images,
		Status:            status,
		OrderStatusBefore: before,
		DecidedBy:         row.DecidedBy,
		DecidedAt:         row.DecidedAt,
		CompletedAt:       row.CompletedAt,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}, nil
}
