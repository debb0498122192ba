// Package returns runs the complaint and return sub-workflow of an order.
package returns

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/orderflow/internal/domain"
	"github.com/nikolayk812/orderflow/internal/lifecycle"
	"github.com/nikolayk812/orderflow/internal/port"
	"go.uber.org/zap"
)

type Notifier interface {
	ReturnStatusChanged(ctx context.Context, req domain.ReturnRequest, order domain.Order)
}

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

func ToDecision(s string) (Decision, error) {
	switch d := Decision(strings.ToLower(strings.TrimSpace(s))); d {
	case DecisionApprove, DecisionReject:
		return d, nil
	}
	return "", fmt.Errorf("%w: unknown decision %q", domain.ErrValidation, s)
}

type WorkflowDeps struct {
	UnitOfWork port.UnitOfWork
	Returns    port.ReturnRepository
	Orders     port.OrderRepository
	Engine     *lifecycle.Engine
	Notifier   Notifier
	Clock      func() time.Time
	Logger     *zap.Logger
}

type Workflow struct {
	uow      port.UnitOfWork
	returns  port.ReturnRepository
	orders   port.OrderRepository
	engine   *lifecycle.Engine
	notifier Notifier
	clock    func() time.Time
	logger   *zap.Logger
}

func NewWorkflow(deps WorkflowDeps) (*Workflow, error) {
	switch {
	case deps.UnitOfWork == nil:
		return nil, errors.New("returns: unit of work is required")
	case deps.Returns == nil:
		return nil, errors.New("returns: return repository is required")
	case deps.Orders == nil:
		return nil, errors.New("returns: order repository is required")
	case deps.Engine == nil:
		return nil, errors.New("returns: transition engine is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Workflow{
		uow:      deps.UnitOfWork,
		returns:  deps.Returns,
		orders:   deps.Orders,
		engine:   deps.Engine,
		notifier: deps.Notifier,
		clock: func() time.Time {
			return clock().UTC()
		},
		logger: logger.Named("returns"),
	}, nil
}

type ComplaintCommand struct {
	OrderID        uuid.UUID
	Reason         string
	Description    string
	EvidenceImages []string
	Actor          domain.Actor
}

func (c ComplaintCommand) validate() (domain.ReturnReason, error) {
	if err := c.Actor.Validate(); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	reason, err := domain.ToReturnReason(c.Reason)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(c.Description) == "" {
		return "", fmt.Errorf("%w: complaint description is required", domain.ErrValidation)
	}

	if len(c.EvidenceImages) == 0 {
		return "", fmt.Errorf("%w: at least one evidence image is required", domain.ErrValidation)
	}
	for idx, ref := range c.EvidenceImages {
		if strings.TrimSpace(ref) == "" {
			return "", fmt.Errorf("%w: evidence image[%d] is empty", domain.ErrValidation, idx)
		}
	}

	return reason, nil
}

// SubmitComplaint opens a pending return request and moves the order to return_requested
// in one transaction.
func (w *Workflow) SubmitComplaint(ctx context.Context, cmd ComplaintCommand) (domain.ReturnRequest, error) {
	reason, err := cmd.validate()
	if err != nil {
		return domain.ReturnRequest{}, err
	}

	var (
		req   domain.ReturnRequest
		order domain.Order
	)

	err = w.uow.RunInTx(ctx, func(ctx context.Context, repos port.TxRepositories) error {
		current, err := repos.Orders.GetOrder(ctx, cmd.OrderID)
		if err != nil {
			return fmt.Errorf("orders.GetOrder: %w", err)
		}

		if !cmd.Actor.Owns(current.OwnerID) {
			if !cmd.Actor.IsAdmin() {
				return fmt.Errorf("orders.GetOrder: %w", domain.ErrOrderNotFound)
			}
			return fmt.Errorf("%w: only the order owner can file a complaint", domain.ErrForbidden)
		}

		if current.Status != domain.OrderStatusShipped && current.Status != domain.OrderStatusCompleted {
			return fmt.Errorf("%w: complaints are accepted only for shipped or completed orders, order is %s", domain.ErrInvalidState, current.Status)
		}

		_, err = repos.Returns.GetActiveReturnByOrder(ctx, current.ID)
		switch {
		case err == nil:
			return domain.ErrActiveReturnExists
		case !errors.Is(err, domain.ErrNotFound):
			return fmt.Errorf("returns.GetActiveReturnByOrder: %w", err)
		}

		req = domain.ReturnRequest{
			OrderID:           current.ID,
			RequesterID:       cmd.Actor.ID,
			Reason:            reason,
			Description:       strings.TrimSpace(cmd.Description),
			EvidenceImages:    cmd.EvidenceImages,
			Status:            domain.ReturnStatusPending,
			OrderStatusBefore: current.Status,
		}

		order, err = w.engine.ApplyReturnTransition(ctx, repos.Orders, current, domain.OrderStatusReturnRequested, cmd.Actor)
		if err != nil {
			return err
		}

		id, err := repos.Returns.InsertReturn(ctx, req)
		if err != nil {
			return fmt.Errorf("returns.InsertReturn: %w", err)
		}

		req, err = repos.Returns.GetReturn(ctx, id)
		if err != nil {
			return fmt.Errorf("returns.GetReturn: %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.ReturnRequest{}, err
	}

	w.logger.Info("complaint submitted",
		zap.Stringer("return_id", req.ID),
		zap.Stringer("order_id", req.OrderID),
		zap.String("reason", string(req.Reason)),
	)
	w.notify(ctx, req, order)

	return req, nil
}

// Decide approves or rejects a pending request. Rejection puts the order back to the status
// the complaint interrupted.
func (w *Workflow) Decide(ctx context.Context, requestID uuid.UUID, decision Decision, actor domain.Actor) (domain.ReturnRequest, error) {
	target := domain.ReturnStatusApproved
	if decision == DecisionReject {
		target = domain.ReturnStatusRejected
	} else if decision != DecisionApprove {
		return domain.ReturnRequest{}, fmt.Errorf("%w: unknown decision %q", domain.ErrValidation, decision)
	}

	return w.advance(ctx, requestID, target, actor, func(req domain.ReturnRequest) domain.OrderStatus {
		if target == domain.ReturnStatusRejected {
			return req.OrderStatusBefore
		}
		return ""
	})
}

// Complete closes an approved request and marks the order returned.
func (w *Workflow) Complete(ctx context.Context, requestID uuid.UUID, actor domain.Actor) (domain.ReturnRequest, error) {
	return w.advance(ctx, requestID, domain.ReturnStatusCompleted, actor, func(domain.ReturnRequest) domain.OrderStatus {
		return domain.OrderStatusReturned
	})
}

// advance moves the request to target and, when orderTarget yields a status, the order with it.
func (w *Workflow) advance(ctx context.Context, requestID uuid.UUID, target domain.ReturnStatus, actor domain.Actor, orderTarget func(domain.ReturnRequest) domain.OrderStatus) (domain.ReturnRequest, error) {
	if err := actor.Validate(); err != nil {
		return domain.ReturnRequest{}, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	if !actor.IsAdmin() {
		return domain.ReturnRequest{}, fmt.Errorf("%w: only admins decide return requests", domain.ErrForbidden)
	}

	var (
		req   domain.ReturnRequest
		order domain.Order
	)

	err := w.uow.RunInTx(ctx, func(ctx context.Context, repos port.TxRepositories) error {
		current, err := repos.Returns.GetReturn(ctx, requestID)
		if err != nil {
			return fmt.Errorf("returns.GetReturn: %w", err)
		}

		if !current.Status.CanTransitionTo(target) {
			return fmt.Errorf("%w: return request is %s and cannot become %s", domain.ErrInvalidState, current.Status, target)
		}

		if err := repos.Returns.UpdateReturnStatus(ctx, domain.ReturnStatusChange{
			ID:    current.ID,
			From:  current.Status,
			To:    target,
			Actor: actor,
			At:    w.clock(),
		}); err != nil {
			return fmt.Errorf("returns.UpdateReturnStatus: %w", err)
		}

		order, err = repos.Orders.GetOrder(ctx, current.OrderID)
		if err != nil {
			return fmt.Errorf("orders.GetOrder: %w", err)
		}

		if next := orderTarget(current); next != "" {
			order, err = w.engine.ApplyReturnTransition(ctx, repos.Orders, order, next, actor)
			if err != nil {
				return err
			}
		}

		req, err = repos.Returns.GetReturn(ctx, current.ID)
		if err != nil {
			return fmt.Errorf("returns.GetReturn: %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.ReturnRequest{}, err
	}

	w.logger.Info("return request updated",
		zap.Stringer("return_id", req.ID),
		zap.Stringer("order_id", req.OrderID),
		zap.String("status", string(req.Status)),
		zap.String("order_status", string(order.Status)),
		zap.String("actor_id", actor.ID),
	)
	w.notify(ctx, req, order)

	return req, nil
}

// Get is visible to the requester and to admins; anyone else gets NotFound.
func (w *Workflow) Get(ctx context.Context, requestID uuid.UUID, actor domain.Actor) (domain.ReturnRequest, error) {
	if err := actor.Validate(); err != nil {
		return domain.ReturnRequest{}, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	req, err := w.returns.GetReturn(ctx, requestID)
	if err != nil {
		return domain.ReturnRequest{}, fmt.Errorf("returns.GetReturn: %w", err)
	}

	if !actor.IsAdmin() && req.RequesterID != actor.ID {
		return domain.ReturnRequest{}, fmt.Errorf("returns.GetReturn: %w", domain.ErrReturnNotFound)
	}

	return req, nil
}

func (w *Workflow) List(ctx context.Context, actor domain.Actor, filter domain.ReturnFilter) ([]domain.ReturnRequest, error) {
	if err := actor.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins list return requests", domain.ErrForbidden)
	}
	if err := filter.Page.Validate(); err != nil {
		return nil, fmt.Errorf("%w: page: %w", domain.ErrValidation, err)
	}

	list, err := w.returns.ListReturns(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("returns.ListReturns: %w", err)
	}

	return list, nil
}

func (w *Workflow) notify(ctx context.Context, req domain.ReturnRequest, order domain.Order) {
	if w.notifier == nil {
		return
	}
	w.notifier.ReturnStatusChanged(context.WithoutCancel(ctx), req, order)
}
