package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Order struct {
	ID              uuid.UUID
	OwnerID         string
	Items           []OrderItem
	Total           Money
	Status          OrderStatus
	ShippingAddress string
	Courier         *string
	TrackingNumber  *string

	CreatedAt   time.Time
	UpdatedAt   time.Time
	PaidAt      *time.Time
	ShippedAt   *time.Time
	CompletedAt *time.Time
	CancelledAt *time.Time
	ReturnedAt  *time.Time
}

// OrderItem is frozen at order creation; UnitPrice never follows later product price changes.
type OrderItem struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice Money

	CreatedAt time.Time
}

// MaxItemQuantity matches the INT column order_items.quantity.
const MaxItemQuantity = math.MaxInt32

// Subtotal is Quantity × UnitPrice.
func (i OrderItem) Subtotal() (Money, error) {
	return i.UnitPrice.Multiply(i.Quantity)
}

// ItemsTotal sums the item subtotals in the order currency.
func ItemsTotal(items []OrderItem, unit Money) (Money, error) {
	total := Money{Currency: unit.Currency}
	for idx, item := range items {
		if !item.UnitPrice.SameCurrency(total) {
			return Money{}, fmt.Errorf("item[%d]: currency %s differs from order currency %s", idx, item.UnitPrice.Currency, total.Currency)
		}
		subtotal, err := item.Subtotal()
		if err != nil {
			return Money{}, fmt.Errorf("item[%d]: subtotal: %w", idx, err)
		}
		if total, err = total.Add(subtotal); err != nil {
			return Money{}, fmt.Errorf("item[%d]: total: %w", idx, err)
		}
	}
	return total, nil
}

// Validate checks the creation-time invariants of an order.
func (o Order) Validate() error {
	if strings.TrimSpace(o.OwnerID) == "" {
		return errors.New("owner id is empty")
	}

	if len(o.Items) == 0 {
		return errors.New("no items in order")
	}

	for idx, item := range o.Items {
		if item.ProductID == uuid.Nil {
			return fmt.Errorf("item[%d]: product id is empty", idx)
		}
		if item.Quantity < 1 {
			return fmt.Errorf("item[%d]: quantity must be at least 1", idx)
		}
		if item.Quantity > MaxItemQuantity {
			return fmt.Errorf("item[%d]: quantity must be at most %d", idx, MaxItemQuantity)
		}
		if item.UnitPrice.Amount < 0 {
			return fmt.Errorf("item[%d]: unit price is negative", idx)
		}
	}

	sum, err := ItemsTotal(o.Items, o.Total)
	if err != nil {
		return err
	}

	if sum.Amount != o.Total.Amount {
		return fmt.Errorf("total %d does not match items sum %d", o.Total.Amount, sum.Amount)
	}

	return nil
}

// ShortID is the human-facing order reference used in notification copy.
func (o Order) ShortID() string {
	return strings.ToUpper(o.ID.String()[:8])
}

// ApplyStatusChange mirrors a persisted status change on the in-memory copy.
func (o *Order) ApplyStatusChange(change StatusChange) {
	o.Status = change.To
	o.UpdatedAt = change.At

	if change.Shipment != nil {
		courier, tracking := change.Shipment.Courier, change.Shipment.TrackingNumber
		o.Courier = &courier
		o.TrackingNumber = &tracking
	}

	if !change.Stamp {
		return
	}

	at := change.At
	switch change.To {
	case OrderStatusPaid:
		o.PaidAt = &at
	case OrderStatusShipped:
		o.ShippedAt = &at
	case OrderStatusCompleted:
		o.CompletedAt = &at
	case OrderStatusCancelled:
		o.CancelledAt = &at
	case OrderStatusReturned:
		o.ReturnedAt = &at
	}
}

type ShipmentInfo struct {
	Courier        string
	TrackingNumber string
}

func (s *ShipmentInfo) Validate() error {
	if s == nil || strings.TrimSpace(s.Courier) == "" || strings.TrimSpace(s.TrackingNumber) == "" {
		return fmt.Errorf("%w: cannot mark order as shipped without courier and tracking number", ErrValidation)
	}
	return nil
}

// StatusChange is a single conditional write of Order.Status: it applies only while the
// persisted status still equals From.
type StatusChange struct {
	OrderID  uuid.UUID
	From     OrderStatus
	To       OrderStatus
	Actor    Actor
	At       time.Time
	Shipment *ShipmentInfo
	Note     string
	// Stamp sets the timestamp column of To; reverts keep the original timestamps.
	Stamp bool
}

type StatusChangeRecord struct {
	OrderID   uuid.UUID
	From      OrderStatus
	To        OrderStatus
	ActorID   string
	ActorRole Role
	Note      string
	ChangedAt time.Time
}
