package notify

import (
	"context"

	"github.com/nikolayk812/orderflow/internal/domain"
	"github.com/nikolayk812/orderflow/internal/metrics"
	"github.com/nikolayk812/orderflow/internal/port"
	"go.uber.org/zap"
)

// Dispatcher persists a notification and then pushes it. It never fails its caller:
// a notification is a side effect of a change that has already been committed.
type Dispatcher struct {
	repo    port.NotificationRepository
	push    port.PushTransport
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewDispatcher accepts a nil push transport; notifications then stay in the inbox only.
func NewDispatcher(repo port.NotificationRepository, push port.PushTransport, m *metrics.Metrics, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		repo:    repo,
		push:    push,
		metrics: m,
		logger:  logger.Named("notify"),
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, n domain.Notification) {
	// the caller's work is done; do not let its cancellation drop the notification
	ctx = context.WithoutCancel(ctx)

	logger := d.logger.With(
		zap.String("recipient_id", n.RecipientID),
		zap.String("category", string(n.Category)),
	)

	stored, err := d.repo.InsertNotification(ctx, n)
	if err != nil {
		d.metrics.RecordNotification("persist", "error")
		logger.Error("persist notification", zap.Error(err))
		return
	}
	d.metrics.RecordNotification("persist", "ok")

	if d.push == nil {
		return
	}

	if err := d.push.Push(ctx, stored.PushMessage()); err != nil {
		d.metrics.RecordNotification("push", "error")
		logger.Warn("push notification", zap.Stringer("notification_id", stored.ID), zap.Error(err))
		return
	}
	d.metrics.RecordNotification("push", "ok")
}

func (d *Dispatcher) OrderStatusChanged(ctx context.Context, order domain.Order) {
	d.Dispatch(ctx, OrderStatusMessage(order))
}

func (d *Dispatcher) ReturnStatusChanged(ctx context.Context, req domain.ReturnRequest, order domain.Order) {
	d.Dispatch(ctx, ReturnStatusMessage(req, order))
}
