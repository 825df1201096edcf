package escrow

// stateStore is the narrow slice of state the machine needs: reading and
// writing the state field of a single order. Absent records read back as
// OrderStateAbsent.
type stateStore interface {
	OrderStateGet(id uint64) (OrderState, error)
	OrderStateSet(id uint64, state OrderState) error
}

// validTransitions enumerates every permitted (from, to) edge. Everything
// else is rejected, including any edge out of a terminal state.
var validTransitions = map[OrderState][]OrderState{
	OrderStateCreated:  {OrderStateAccepted, OrderStateCancelled},
	OrderStateAccepted: {OrderStateFunded, OrderStateCancelled},
	OrderStateFunded:   {OrderStateCompleted, OrderStateCancelled, OrderStateDisputed},
	OrderStateDisputed: {OrderStateCancelled},
}

// TransitionAllowed reports whether the edge appears in the lifecycle table.
func TransitionAllowed(from, to OrderState) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// stateMachine is the single authority for changing an order's state field
// after creation. Every transition compares the stored state against the
// expected source before writing; on mismatch nothing is written.
type stateMachine struct {
	store stateStore
}

// Transition moves the order from the expected source state to the target.
// The stored state must match exactly; an absent record fails the same way a
// wrong state does, reporting OrderStateAbsent as the found state.
func (m stateMachine) Transition(id uint64, from, to OrderState) error {
	if !TransitionAllowed(from, to) {
		return &InvalidTransitionError{OrderID: id, Found: from, From: from, To: to}
	}
	current, err := m.store.OrderStateGet(id)
	if err != nil {
		return err
	}
	if current != from {
		return &InvalidTransitionError{OrderID: id, Found: current, From: from, To: to}
	}
	return m.store.OrderStateSet(id, to)
}
