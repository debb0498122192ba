package notify

import (
	"fmt"

	"github.com/nikolayk812/orderflow/internal/domain"
	"github.com/samber/lo"
)

// OrderStatusMessage builds the notification for the owner of an order that just changed status.
func OrderStatusMessage(order domain.Order) domain.Notification {
	n := domain.Notification{
		RecipientID: order.OwnerID,
		Category:    domain.NotificationCategoryOrder,
		ActionURL:   lo.ToPtr(orderLink(order)),
		Title:       "Order status updated",
		Message:     fmt.Sprintf("Your order #%s is now %s.", order.ShortID(), statusLabel(order.Status)),
	}

	switch order.Status {
	case domain.OrderStatusShipped:
		n.Title = "Order shipped"
		n.Message = fmt.Sprintf("Your order #%s is on its way with %s. Tracking number: %s",
			order.ShortID(), lo.FromPtr(order.Courier), lo.FromPtr(order.TrackingNumber))
	case domain.OrderStatusCompleted:
		n.Title = "Order completed"
		n.Message = fmt.Sprintf("Your order #%s is complete. Thank you for shopping with us!", order.ShortID())
	case domain.OrderStatusCancelled:
		n.Title = "Order cancelled"
		n.Message = fmt.Sprintf("Your order #%s has been cancelled.", order.ShortID())
	}

	return n
}

// ReturnStatusMessage builds the notification for the requester of a return.
func ReturnStatusMessage(req domain.ReturnRequest, order domain.Order) domain.Notification {
	n := domain.Notification{
		RecipientID: req.RequesterID,
		Category:    domain.NotificationCategoryReturn,
		ActionURL:   lo.ToPtr(orderLink(order)),
	}

	switch req.Status {
	case domain.ReturnStatusPending:
		n.Title = "Complaint received"
		n.Message = fmt.Sprintf("We received your complaint for order #%s and will review it shortly.", order.ShortID())
	case domain.ReturnStatusApproved:
		n.Title = "Complaint approved"
		n.Message = fmt.Sprintf("Your complaint for order #%s was approved. Please send the items back.", order.ShortID())
	case domain.ReturnStatusRejected:
		n.Title = "Complaint rejected"
		n.Message = fmt.Sprintf("Your complaint for order #%s was rejected.", order.ShortID())
	case domain.ReturnStatusCompleted:
		n.Title = "Return completed"
		n.Message = fmt.Sprintf("The return for order #%s is complete.", order.ShortID())
	}

	return n
}

func orderLink(order domain.Order) string {
	return "/orders/" + order.ID.String()
}

var statusLabels = map[domain.OrderStatus]string{
	domain.OrderStatusPending:         "awaiting payment",
	domain.OrderStatusPaid:            "paid",
	domain.OrderStatusProcessing:      "being processed",
	domain.OrderStatusShipped:         "shipped",
	domain.OrderStatusCompleted:       "completed",
	domain.OrderStatusCancelled:       "cancelled",
	domain.OrderStatusReturnRequested: "under complaint review",
	domain.OrderStatusReturned:        "returned",
}

func statusLabel(status domain.OrderStatus) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return string(status)
}
