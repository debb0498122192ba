package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/orderflow/internal/domain"
)

type ReturnRepository interface {
	// InsertReturn fails with domain.ErrActiveReturnExists when the order already has an active request.
	InsertReturn(ctx context.Context, req domain.ReturnRequest) (uuid.UUID, error)

	GetReturn(ctx context.Context, id uuid.UUID) (domain.ReturnRequest, error)
	GetActiveReturnByOrder(ctx context.Context, orderID uuid.UUID) (domain.ReturnRequest, error)

	ListReturns(ctx context.Context, filter domain.ReturnFilter) ([]domain.ReturnRequest, error)

	UpdateReturnStatus(ctx context.Context, change domain.ReturnStatusChange) error
}
