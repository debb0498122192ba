package db

import (
	"time"

	"github.com/google/uuid"
)

type Order struct {
	ID              uuid.UUID
	OwnerID         string
	TotalAmount     int64
	Currency        string
	Status          string
	ShippingAddress string
	Courier         *string
	TrackingNumber  *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	PaidAt          *time.Time
	ShippedAt       *time.Time
	CompletedAt     *time.Time
	CancelledAt     *time.Time
	ReturnedAt      *time.Time
}

type OrderItem struct {
	OrderID   uuid.UUID
	Position  int32
	ProductID uuid.UUID
	Quantity  int32
	UnitPrice int64
	CreatedAt time.Time
}

type OrderStatusHistory struct {
	ID         int64
	OrderID    uuid.UUID
	FromStatus string
	ToStatus   string
	ActorID    string
	ActorRole  string
	Note       string
	ChangedAt  time.Time
}

type ReturnRequest struct {
	ID                uuid.UUID
	OrderID           uuid.UUID
	RequesterID       string
	Reason            string
	Description       string
	Images            []string
	Status            string
	OrderStatusBefore string
	DecidedBy         *string
	DecidedAt         *time.Time
	CompletedAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type Notification struct {
	ID          uuid.UUID
	RecipientID string
	Title       string
	Message     string
	Category    string
	IsRead      bool
	ActionUrl   *string
	CreatedAt   time.Time
}

type Product struct {
	ID        uuid.UUID
	Name      string
	Images    []string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
