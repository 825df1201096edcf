package escrow

import (
	"errors"
	"math/big"
	"testing"
)

func TestTransitionTable(t *testing.T) {
	allowed := map[[2]OrderState]bool{
		{OrderStateCreated, OrderStateAccepted}:   true,
		{OrderStateCreated, OrderStateCancelled}:  true,
		{OrderStateAccepted, OrderStateFunded}:    true,
		{OrderStateAccepted, OrderStateCancelled}: true,
		{OrderStateFunded, OrderStateCompleted}:   true,
		{OrderStateFunded, OrderStateCancelled}:   true,
		{OrderStateFunded, OrderStateDisputed}:    true,
		{OrderStateDisputed, OrderStateCancelled}: true,
	}
	states := []OrderState{
		OrderStateAbsent, OrderStateCreated, OrderStateAccepted, OrderStateFunded,
		OrderStateCompleted, OrderStateCancelled, OrderStateDisputed,
	}
	for _, from := range states {
		for _, to := range states {
			want := allowed[[2]OrderState{from, to}]
			if got := TransitionAllowed(from, to); got != want {
				t.Fatalf("%s -> %s: expected %v, got %v", from, to, want, got)
			}
		}
	}
}

func TestTransitionRejectsMismatchWithoutWrite(t *testing.T) {
	state := newMockState()
	state.orders[1] = &Order{
		ID: 1, Seller: sellerAddr, Price: big.NewInt(10), Locked: big.NewInt(0),
		State: OrderStateCreated, Deadline: 10,
	}
	machine := stateMachine{store: state}

	err := machine.Transition(1, OrderStateAccepted, OrderStateFunded)
	var transition *InvalidTransitionError
	if !errors.As(err, &transition) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if transition.Found != OrderStateCreated || transition.From != OrderStateAccepted || transition.To != OrderStateFunded {
		t.Fatalf("unexpected report: %v", transition)
	}
	if state.orders[1].State != OrderStateCreated {
		t.Fatalf("state must remain CREATED, got %s", state.orders[1].State)
	}
}

func TestTransitionDistinguishesAbsentOrders(t *testing.T) {
	machine := stateMachine{store: newMockState()}
	err := machine.Transition(7, OrderStateCreated, OrderStateAccepted)
	var transition *InvalidTransitionError
	if !errors.As(err, &transition) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if transition.Found != OrderStateAbsent {
		t.Fatalf("expected ABSENT as found state, got %s", transition.Found)
	}
}

func TestTransitionRejectsEdgesOutsideTable(t *testing.T) {
	state := newMockState()
	state.orders[1] = &Order{
		ID: 1, Seller: sellerAddr, Price: big.NewInt(10), Locked: big.NewInt(0),
		State: OrderStateCompleted, Deadline: 10,
	}
	machine := stateMachine{store: state}
	// Terminal states have no outgoing edges at all.
	err := machine.Transition(1, OrderStateCompleted, OrderStateCancelled)
	var transition *InvalidTransitionError
	if !errors.As(err, &transition) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if state.orders[1].State != OrderStateCompleted {
		t.Fatalf("terminal state must not change, got %s", state.orders[1].State)
	}
}
