package domain

import (
	"time"

	"github.com/google/uuid"
)

type NotificationCategory string

const (
	NotificationCategoryOrder  NotificationCategory = "order"
	NotificationCategoryReturn NotificationCategory = "return"
)

type Notification struct {
	ID          uuid.UUID
	RecipientID string
	Title       string
	Message     string
	Category    NotificationCategory
	Read        bool
	ActionURL   *string
	CreatedAt   time.Time
}

// PushMessage is what a push transport receives for one notification.
type PushMessage struct {
	NotificationID uuid.UUID `json:"notification_id"`
	RecipientID    string    `json:"recipient_id"`
	Title          string    `json:"title"`
	Body           string    `json:"body"`
	Category       string    `json:"category"`
	ActionURL      string    `json:"action_url,omitempty"`
}

func (n Notification) PushMessage() PushMessage {
	msg := PushMessage{
		NotificationID: n.ID,
		RecipientID:    n.RecipientID,
		Title:          n.Title,
		Body:           n.Message,
		Category:       string(n.Category),
	}
	if n.ActionURL != nil {
		msg.ActionURL = *n.ActionURL
	}
	return msg
}
