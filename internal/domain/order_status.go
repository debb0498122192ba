package domain

import (
	"errors"
	"strings"
)

type OrderStatus string

// remember to add new statuses to the validOrderStatuses map
const (
	OrderStatusPending         OrderStatus = "pending"
	OrderStatusPaid            OrderStatus = "paid"
	OrderStatusProcessing      OrderStatus = "processing"
	OrderStatusShipped         OrderStatus = "shipped"
	OrderStatusCompleted       OrderStatus = "completed"
	OrderStatusCancelled       OrderStatus = "cancelled"
	OrderStatusReturnRequested OrderStatus = "return_requested"
	OrderStatusReturned        OrderStatus = "returned"
)

var validOrderStatuses = map[OrderStatus]struct{}{
	OrderStatusPending:         {},
	OrderStatusPaid:            {},
	OrderStatusProcessing:      {},
	OrderStatusShipped:         {},
	OrderStatusCompleted:       {},
	OrderStatusCancelled:       {},
	OrderStatusReturnRequested: {},
	OrderStatusReturned:        {},
}

// ToOrderStatus accepts any letter case, so "CANCELLED" and "cancelled" are the same status.
func ToOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := validOrderStatuses[status]; ok {
		return status, nil
	}

	return "", errors.New("invalid order status")
}

func OrderStatuses() []OrderStatus {
	result := make([]OrderStatus, 0, len(validOrderStatuses))
	for status := range validOrderStatuses {
		result = append(result, status)
	}
	return result
}

// IsTerminal reports statuses without outgoing edges in the normal flow.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusCompleted, OrderStatusCancelled, OrderStatusReturned:
		return true
	}
	return false
}

// ComplaintEligible reports whether a return request may be opened in this status.
func (s OrderStatus) ComplaintEligible() bool {
	return s == OrderStatusShipped || s == OrderStatusCompleted
}
