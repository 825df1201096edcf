package escrow

import (
	"errors"
	"fmt"
)

var (
	// ErrOrderNotFound reports an order identifier that is zero or beyond
	// the current counter.
	ErrOrderNotFound = errors.New("escrow: order not found")
	// ErrUnauthorized reports a caller that is not permitted to perform
	// the requested action on the order.
	ErrUnauthorized = errors.New("escrow: unauthorized caller")
	// ErrWindowExpired reports an action attempted after its deadline.
	ErrWindowExpired = errors.New("escrow: window expired")
	// ErrWindowNotElapsed reports an action attempted before its window
	// has opened.
	ErrWindowNotElapsed = errors.New("escrow: window not elapsed")
	// ErrInvalidArgument reports a malformed argument: zero address, zero
	// price, sub-minimum deadline offset, or identifier overflow.
	ErrInvalidArgument = errors.New("escrow: invalid argument")
	// ErrInsufficientBalance reports a payer without enough ledger balance
	// to fund the order.
	ErrInsufficientBalance = errors.New("escrow: insufficient balance")
	// ErrInsufficientEscrowBalance reports a release larger than the
	// contract's own balance.
	ErrInsufficientEscrowBalance = errors.New("escrow: insufficient escrow balance")
	// ErrLedgerUnderflow reports a release larger than the total-locked
	// register.
	ErrLedgerUnderflow = errors.New("escrow: locked ledger underflow")
	// ErrCriticalInvariant reports a broken solvency invariant: the
	// contract balance fell below total locked. This never occurs in
	// normal operation and indicates external tampering or a bug.
	ErrCriticalInvariant = errors.New("escrow: critical invariant violation")
	// ErrInvalidRecipient reports a release towards the zero address.
	ErrInvalidRecipient = errors.New("escrow: invalid recipient")
	// ErrNotCancellable reports a cancel attempt against a terminal or
	// absent order.
	ErrNotCancellable = errors.New("escrow: order not cancellable")
)

// InvalidTransitionError reports a state transition whose stored source state
// did not match the expected one. No write occurs when it is returned.
type InvalidTransitionError struct {
	OrderID uint64
	Found   OrderState
	From    OrderState
	To      OrderState
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("escrow: order %d in state %s, cannot transition %s -> %s",
		e.OrderID, e.Found, e.From, e.To)
}
