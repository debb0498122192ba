package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ReturnStatus string

const (
	ReturnStatusPending   ReturnStatus = "pending"
	ReturnStatusApproved  ReturnStatus = "approved"
	ReturnStatusRejected  ReturnStatus = "rejected"
	ReturnStatusCompleted ReturnStatus = "completed"
)

var returnStatusEdges = map[ReturnStatus][]ReturnStatus{
	ReturnStatusPending:  {ReturnStatusApproved, ReturnStatusRejected},
	ReturnStatusApproved: {ReturnStatusCompleted},
}

func ToReturnStatus(s string) (ReturnStatus, error) {
	switch status := ReturnStatus(strings.ToLower(strings.TrimSpace(s))); status {
	case ReturnStatusPending, ReturnStatusApproved, ReturnStatusRejected, ReturnStatusCompleted:
		return status, nil
	}
	return "", errors.New("invalid return status")
}

func (s ReturnStatus) CanTransitionTo(target ReturnStatus) bool {
	for _, next := range returnStatusEdges[s] {
		if next == target {
			return true
		}
	}
	return false
}

// IsActive is true while the request still blocks a new complaint on the same order.
func (s ReturnStatus) IsActive() bool {
	return s == ReturnStatusPending || s == ReturnStatusApproved
}

type ReturnReason string

const (
	ReturnReasonDamaged        ReturnReason = "damaged"
	ReturnReasonWrongItem      ReturnReason = "wrong_item"
	ReturnReasonNotAsDescribed ReturnReason = "not_as_described"
	ReturnReasonMissingParts   ReturnReason = "missing_parts"
	ReturnReasonOther          ReturnReason = "other"
)

func ToReturnReason(s string) (ReturnReason, error) {
	switch reason := ReturnReason(strings.ToLower(strings.TrimSpace(s))); reason {
	case ReturnReasonDamaged, ReturnReasonWrongItem, ReturnReasonNotAsDescribed, ReturnReasonMissingParts, ReturnReasonOther:
		return reason, nil
	}
	return "", fmt.Errorf("%w: unknown return reason %q", ErrValidation, s)
}

type ReturnRequest struct {
	ID             uuid.UUID
	OrderID        uuid.UUID
	RequesterID    string
	Reason         ReturnReason
	Description    string
	EvidenceImages []string
	Status         ReturnStatus
	// OrderStatusBefore is the order status the complaint interrupted; rejection restores it.
	OrderStatusBefore OrderStatus

	DecidedBy   *string
	DecidedAt   *time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ReturnStatusChange struct {
	ID    uuid.UUID
	From  ReturnStatus
	To    ReturnStatus
	Actor Actor
	At    time.Time
}

// ReturnFilter has AND semantics across fields.
type ReturnFilter struct {
	Statuses    []ReturnStatus
	OrderIDs    []uuid.UUID
	RequesterID string
	Page        Page
}
