package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product is owned by the catalog; orders only hold its ID.
type Product struct {
	ID     uuid.UUID
	Name   string
	Images []string
	Active bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
