package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nikolayk812/orderflow/internal/domain"
	"github.com/nikolayk812/orderflow/internal/metrics"
	"go.uber.org/zap"
)

const autoCompleteActor = "auto-complete"

// AutoCompleter completes orders that have stayed shipped for longer than After.
type AutoCompleter struct {
	engine    *Engine
	after     time.Duration
	batchSize int
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func NewAutoCompleter(engine *Engine, after time.Duration, batchSize int, m *metrics.Metrics, logger *zap.Logger) (*AutoCompleter, error) {
	if engine == nil {
		return nil, errors.New("lifecycle: engine is required")
	}
	if after <= 0 {
		return nil, errors.New("lifecycle: auto-complete delay must be positive")
	}
	if batchSize <= 0 || batchSize > domain.MaxPageLimit {
		batchSize = domain.MaxPageLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AutoCompleter{
		engine:    engine,
		after:     after,
		batchSize: batchSize,
		metrics:   m,
		logger:    logger.Named("auto_complete"),
	}, nil
}

// RunOnce completes one batch of overdue orders and returns how many it completed.
// Orders that moved on concurrently are skipped.
func (a *AutoCompleter) RunOnce(ctx context.Context) (int, error) {
	cutoff := a.engine.clock().Add(-a.after)
	actor := domain.SystemActor(autoCompleteActor)

	overdue, err := a.engine.orders.SearchOrders(ctx, domain.OrderFilter{
		Statuses:  []domain.OrderStatus{domain.OrderStatusShipped},
		ShippedAt: &domain.TimeRange{Before: &cutoff},
		Page:      domain.Page{Limit: a.batchSize},
	})
	if err != nil {
		return 0, fmt.Errorf("orders.SearchOrders: %w", err)
	}

	completed := 0
	for _, order := range overdue {
		if err := ctx.Err(); err != nil {
			return completed, err
		}

		_, err := a.engine.RequestTransition(ctx, TransitionRequest{
			OrderID:        order.ID,
			Target:         domain.OrderStatusCompleted,
			Actor:          actor,
			ExpectedStatus: domain.OrderStatusShipped,
			Note:           "completed automatically",
		})
		switch {
		case err == nil:
			completed++
			a.metrics.RecordAutoComplete("completed")
		case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrNotFound):
			a.metrics.RecordAutoComplete("skipped")
			a.logger.Debug("order moved on before auto-complete", zap.Stringer("order_id", order.ID), zap.Error(err))
		default:
			a.metrics.RecordAutoComplete("error")
			a.logger.Error("auto-complete order", zap.Stringer("order_id", order.ID), zap.Error(err))
		}
	}

	return completed, nil
}

// Run calls RunOnce every interval until ctx is done.
func (a *AutoCompleter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := a.RunOnce(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error("auto-complete run", zap.Error(err))
				continue
			}
			if n > 0 {
				a.logger.Info("auto-completed orders", zap.Int("count", n))
			}
		}
	}
}
