package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/orderflow/internal/domain"
	"github.com/samber/lo"
)

type MoneyDTO struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Display  string `json:"display,omitempty"`
}

func toMoneyDTO(m domain.Money) MoneyDTO {
	return MoneyDTO{Amount: m.Amount, Currency: m.Currency.String(), Display: m.String()}
}

type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1,max=2147483647"`
	UnitPrice MoneyDTO  `json:"unit_price"`
}

type PlaceOrderRequest struct {
	Items           []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	ShippingAddress string             `json:"shipping_address"`
}

type TransitionRequest struct {
	Status         string `json:"status" binding:"required"`
	ExpectedStatus string `json:"expected_status"`
	Courier        string `json:"courier"`
	TrackingNumber string `json:"tracking_number"`
	Note           string `json:"note"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

type OrderItemResponse struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	UnitPrice MoneyDTO  `json:"unit_price"`
	Subtotal  *MoneyDTO `json:"subtotal,omitempty"`
}

type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	OwnerID         string              `json:"owner_id"`
	Status          string              `json:"status"`
	Items           []OrderItemResponse `json:"items"`
	Total           MoneyDTO            `json:"total"`
	ShippingAddress string              `json:"shipping_address,omitempty"`
	Courier         *string             `json:"courier,omitempty"`
	TrackingNumber  *string             `json:"tracking_number,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	PaidAt          *time.Time          `json:"paid_at,omitempty"`
	ShippedAt       *time.Time          `json:"shipped_at,omitempty"`
	CompletedAt     *time.Time          `json:"completed_at,omitempty"`
	CancelledAt     *time.Time          `json:"cancelled_at,omitempty"`
	ReturnedAt      *time.Time          `json:"returned_at,omitempty"`
}

func toOrderResponse(o domain.Order) OrderResponse {
	return OrderResponse{
		ID:      o.ID,
		OwnerID: o.OwnerID,
		Status:  string(o.Status),
		Items: lo.Map(o.Items, func(item domain.OrderItem, _ int) OrderItemResponse {
			resp := OrderItemResponse{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: toMoneyDTO(item.UnitPrice),
			}
			if subtotal, err := item.Subtotal(); err == nil {
				resp.Subtotal = lo.ToPtr(toMoneyDTO(subtotal))
			}
			return resp
		}),
		Total:           toMoneyDTO(o.Total),
		ShippingAddress: o.ShippingAddress,
		Courier:         o.Courier,
		TrackingNumber:  o.TrackingNumber,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		PaidAt:          o.PaidAt,
		ShippedAt:       o.ShippedAt,
		CompletedAt:     o.CompletedAt,
		CancelledAt:     o.CancelledAt,
		ReturnedAt:      o.ReturnedAt,
	}
}

type StatusChangeResponse struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	ActorID   string    `json:"actor_id"`
	ActorRole string    `json:"actor_role"`
	Note      string    `json:"note,omitempty"`
	ChangedAt time.Time `json:"changed_at"`
}

func toStatusChangeResponse(r domain.StatusChangeRecord, _ int) StatusChangeResponse {
	return StatusChangeResponse{
		From:      string(r.From),
		To:        string(r.To),
		ActorID:   r.ActorID,
		ActorRole: string(r.ActorRole),
		Note:      r.Note,
		ChangedAt: r.ChangedAt,
	}
}

type ComplaintRequest struct {
	Reason         string   `json:"reason" binding:"required"`
	Description    string   `json:"description"`
	EvidenceImages []string `json:"evidence_images"`
}

type DecisionRequest struct {
	Decision string `json:"decision" binding:"required"`
}

type ReturnResponse struct {
	ID                uuid.UUID  `json:"id"`
	OrderID           uuid.UUID  `json:"order_id"`
	RequesterID       string     `json:"requester_id"`
	Reason            string     `json:"reason"`
	Description       string     `json:"description"`
	EvidenceImages    []string   `json:"evidence_images"`
	Status            string     `json:"status"`
	OrderStatusBefore string     `json:"order_status_before"`
	DecidedBy         *string    `json:"decided_by,omitempty"`
	DecidedAt         *time.Time `json:"decided_at,omitempty"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

func toReturnResponse(r domain.ReturnRequest, _ int) ReturnResponse {
	return ReturnResponse{
		ID:                r.ID,
		OrderID:           r.OrderID,
		RequesterID:       r.RequesterID,
		Reason:            string(r.Reason),
		Description:       r.Description,
		EvidenceImages:    r.EvidenceImages,
		Status:            string(r.Status),
		OrderStatusBefore: string(r.OrderStatusBefore),
		DecidedBy:         r.DecidedBy,
		DecidedAt:         r.DecidedAt,
		CompletedAt:       r.CompletedAt,
		CreatedAt:         r.CreatedAt,
	}
}

type NotificationResponse struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Category  string    `json:"category"`
	Read      bool      `json:"read"`
	ActionURL *string   `json:"action_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toNotificationResponse(n domain.Notification, _ int) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Category:  string(n.Category),
		Read:      n.Read,
		ActionURL: n.ActionURL,
		CreatedAt: n.CreatedAt,
	}
}

type CreateProductRequest struct {
	Name   string   `json:"name" binding:"required"`
	Images []string `json:"images"`
}

type PurgeProductsRequest struct {
	Confirmation string `json:"confirmation" binding:"required"`
}

type ProductResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Images    []string  `json:"images"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func toProductResponse(p domain.Product, _ int) ProductResponse {
	return ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Images:    p.Images,
		Active:    p.Active,
		CreatedAt: p.CreatedAt,
	}
}
