package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 200
)

// OrderFilter has AND semantics across fields, OR semantics within each field slice
type OrderFilter struct {
	IDs       []uuid.UUID
	OwnerIDs  []string
	Statuses  []OrderStatus
	CreatedAt *TimeRange
	ShippedAt *TimeRange
	Page      Page
}

func (f OrderFilter) Validate() error {
	if f.CreatedAt != nil {
		if err := f.CreatedAt.Validate(); err != nil {
			return fmt.Errorf("createdAt: %w", err)
		}
	}

	if f.ShippedAt != nil {
		if err := f.ShippedAt.Validate(); err != nil {
			return fmt.Errorf("shippedAt: %w", err)
		}
	}

	if err := f.Page.Validate(); err != nil {
		return fmt.Errorf("page: %w", err)
	}

	return nil
}

type TimeRange struct {
	Before *time.Time
	After  *time.Time
}

func (t TimeRange) Validate() error {
	if t.Before == nil && t.After == nil {
		return errors.New("both Before and After are nil")
	}

	if t.Before != nil && t.After != nil {
		if t.Before.Before(*t.After) {
			return fmt.Errorf("before is before After")
		}
	}

	return nil
}

// Page is offset pagination; a zero Limit means DefaultPageLimit.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) Validate() error {
	if p.Limit < 0 || p.Offset < 0 {
		return errors.New("limit and offset must not be negative")
	}
	if p.Limit > MaxPageLimit {
		return fmt.Errorf("limit exceeds %d", MaxPageLimit)
	}
	return nil
}

func (p Page) EffectiveLimit() int {
	if p.Limit == 0 {
		return DefaultPageLimit
	}
	return p.Limit
}
