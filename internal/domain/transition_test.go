package domain_test

import (
	"testing"

	"github.com/nikolayk812/orderflow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupTransition(t *testing.T) {
	tests := []struct {
		name         string
		from, to     domain.OrderStatus
		wantOK       bool
		wantCustomer bool
		wantAdmin    bool
		wantShipment bool
	}{
		{name: "pending to paid", from: domain.OrderStatusPending, to: domain.OrderStatusPaid, wantOK: true, wantCustomer: true, wantAdmin: true},
		{name: "paid to processing", from: domain.OrderStatusPaid, to: domain.OrderStatusProcessing, wantOK: true, wantAdmin: true},
		{name: "processing to shipped", from: domain.OrderStatusProcessing, to: domain.OrderStatusShipped, wantOK: true, wantAdmin: true, wantShipment: true},
		{name: "shipped to completed", from: domain.OrderStatusShipped, to: domain.OrderStatusCompleted, wantOK: true, wantCustomer: true, wantAdmin: true},
		{name: "processing to cancelled", from: domain.OrderStatusProcessing, to: domain.OrderStatusCancelled, wantOK: true, wantCustomer: true, wantAdmin: true},
		{name: "pending to shipped skips steps", from: domain.OrderStatusPending, to: domain.OrderStatusShipped},
		{name: "shipped to cancelled", from: domain.OrderStatusShipped, to: domain.OrderStatusCancelled},
		{name: "cancelled is terminal", from: domain.OrderStatusCancelled, to: domain.OrderStatusPending},
		{name: "self edge", from: domain.OrderStatusPaid, to: domain.OrderStatusPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, ok := domain.LookupTransition(tt.from, tt.to)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantCustomer, rule.Allows(domain.RoleCustomer))
			assert.Equal(t, tt.wantAdmin, rule.Allows(domain.RoleAdmin))
			assert.Equal(t, tt.wantShipment, rule.RequiresShipment)
		})
	}
}

func TestTerminalStatusesHaveNoDirectEdges(t *testing.T) {
	for _, tr := range domain.Transitions() {
		rule, _ := domain.LookupTransition(tr.From, tr.To)
		if rule.ReturnFlow {
			continue
		}
		assert.False(t, tr.From.IsTerminal(), "edge %s -> %s leaves a terminal status", tr.From, tr.To)
	}
}

func TestEveryStatusIsReachable(t *testing.T) {
	reachable := domain.ReachableStatuses()

	for _, status := range domain.OrderStatuses() {
		assert.Contains(t, reachable, status)
	}
}

func TestToOrderStatusIsCaseInsensitive(t *testing.T) {
	for _, in := range []string{"CANCELLED", "Cancelled", " cancelled "} {
		status, err := domain.ToOrderStatus(in)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusCancelled, status)
	}

	status, err := domain.ToOrderStatus("RETURN_REQUESTED")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusReturnRequested, status)

	_, err = domain.ToOrderStatus("delivered")
	require.EqualError(t, err, "invalid order status")
}

func TestReturnStatusEdges(t *testing.T) {
	assert.True(t, domain.ReturnStatusPending.CanTransitionTo(domain.ReturnStatusApproved))
	assert.True(t, domain.ReturnStatusPending.CanTransitionTo(domain.ReturnStatusRejected))
	assert.True(t, domain.ReturnStatusApproved.CanTransitionTo(domain.ReturnStatusCompleted))
	assert.False(t, domain.ReturnStatusPending.CanTransitionTo(domain.ReturnStatusCompleted))
	assert.False(t, domain.ReturnStatusRejected.CanTransitionTo(domain.ReturnStatusApproved))
}
