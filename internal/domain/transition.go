package domain

// Transition is one edge of the order status graph.
type Transition struct {
	From OrderStatus
	To   OrderStatus
}

// TransitionRule describes who may take an edge and what it requires.
type TransitionRule struct {
	Customer bool
	Admin    bool
	// ReturnFlow edges are taken only by the return workflow, never by a direct request.
	ReturnFlow       bool
	RequiresShipment bool
	// Stamp sets the timestamp of the target status when the edge is taken.
	Stamp bool
}

func (r TransitionRule) Allows(role Role) bool {
	switch role {
	case RoleCustomer:
		return r.Customer
	case RoleAdmin:
		return r.Admin
	}
	return false
}

var transitionTable = map[Transition]TransitionRule{
	{OrderStatusPending, OrderStatusPaid}:       {Customer: true, Admin: true, Stamp: true},
	{OrderStatusPaid, OrderStatusProcessing}:    {Admin: true, Stamp: true},
	{OrderStatusPaid, OrderStatusShipped}:       {Admin: true, RequiresShipment: true, Stamp: true},
	{OrderStatusProcessing, OrderStatusShipped}: {Admin: true, RequiresShipment: true, Stamp: true},
	{OrderStatusShipped, OrderStatusCompleted}:  {Customer: true, Admin: true, Stamp: true},

	{OrderStatusPending, OrderStatusCancelled}:    {Customer: true, Admin: true, Stamp: true},
	{OrderStatusPaid, OrderStatusCancelled}:       {Customer: true, Admin: true, Stamp: true},
	{OrderStatusProcessing, OrderStatusCancelled}: {Customer: true, Admin: true, Stamp: true},

	{OrderStatusShipped, OrderStatusReturnRequested}:   {Customer: true, ReturnFlow: true},
	{OrderStatusCompleted, OrderStatusReturnRequested}: {Customer: true, ReturnFlow: true},
	{OrderStatusReturnRequested, OrderStatusReturned}:  {Admin: true, ReturnFlow: true, Stamp: true},
	// rejection puts the order back where the complaint found it
	{OrderStatusReturnRequested, OrderStatusShipped}:   {Admin: true, ReturnFlow: true},
	{OrderStatusReturnRequested, OrderStatusCompleted}: {Admin: true, ReturnFlow: true},
}

func LookupTransition(from, to OrderStatus) (TransitionRule, bool) {
	rule, ok := transitionTable[Transition{From: from, To: to}]
	return rule, ok
}

// Transitions returns every edge of the status graph.
func Transitions() []Transition {
	result := make([]Transition, 0, len(transitionTable))
	for t := range transitionTable {
		result = append(result, t)
	}
	return result
}

// ReachableStatuses walks the graph from pending.
func ReachableStatuses() map[OrderStatus]struct{} {
	seen := map[OrderStatus]struct{}{OrderStatusPending: {}}
	queue := []OrderStatus{OrderStatusPending}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for t := range transitionTable {
			if t.From != current {
				continue
			}
			if _, ok := seen[t.To]; ok {
				continue
			}
			seen[t.To] = struct{}{}
			queue = append(queue, t.To)
		}
	}

	return seen
}
