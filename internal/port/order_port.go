package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/orderflow/internal/domain"
)

type OrderRepository interface {
	GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error)

	SearchOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)

	InsertOrder(ctx context.Context, order domain.Order) (uuid.UUID, error)

	// UpdateStatus persists the change and its history row only while the stored status
	// equals change.From; otherwise it fails with domain.ErrStatusChanged or domain.ErrOrderNotFound.
	UpdateStatus(ctx context.Context, change domain.StatusChange) error

	ListStatusHistory(ctx context.Context, orderID uuid.UUID) ([]domain.StatusChangeRecord, error)
}
