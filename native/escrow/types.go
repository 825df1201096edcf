package escrow

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"

	"escrowmarket/core/types"
)

// OrderState represents the lifecycle states of a marketplace order.
type OrderState uint8

const (
	// OrderStateAbsent is the sentinel read back for an uninitialised
	// record. It is never a valid lifecycle state and must be rejected
	// before any state comparison.
	OrderStateAbsent OrderState = iota
	OrderStateCreated
	OrderStateAccepted
	OrderStateFunded
	OrderStateCompleted
	OrderStateCancelled
	OrderStateDisputed
)

// Valid reports whether the value is a defined lifecycle state. The absent
// sentinel is not valid.
func (s OrderState) Valid() bool {
	switch s {
	case OrderStateCreated, OrderStateAccepted, OrderStateFunded,
		OrderStateCompleted, OrderStateCancelled, OrderStateDisputed:
		return true
	default:
		return false
	}
}

// Terminal reports whether the state admits no further transitions.
func (s OrderState) Terminal() bool {
	return s == OrderStateCompleted || s == OrderStateCancelled
}

// String returns the canonical state name.
func (s OrderState) String() string {
	switch s {
	case OrderStateAbsent:
		return "ABSENT"
	case OrderStateCreated:
		return "CREATED"
	case OrderStateAccepted:
		return "ACCEPTED"
	case OrderStateFunded:
		return "FUNDED"
	case OrderStateCompleted:
		return "COMPLETED"
	case OrderStateCancelled:
		return "CANCELLED"
	case OrderStateDisputed:
		return "DISPUTED"
	default:
		return fmt.Sprintf("OrderState(%d)", uint8(s))
	}
}

// Order captures the stored record of a single escrow agreement. Identifiers
// are handed out by a monotonically increasing counter starting at 1; zero is
// reserved and always invalid.
type Order struct {
	ID         uint64
	Seller     types.Address
	Buyer      types.Address
	Price      *big.Int
	Locked     *big.Int
	State      OrderState
	Deadline   uint64
	AcceptedAt uint64
}

// Clone returns a deep copy of the order so callers can mutate the result
// without affecting the stored instance.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	if o.Price != nil {
		clone.Price = new(big.Int).Set(o.Price)
	} else {
		clone.Price = big.NewInt(0)
	}
	if o.Locked != nil {
		clone.Locked = new(big.Int).Set(o.Locked)
	} else {
		clone.Locked = big.NewInt(0)
	}
	return &clone
}

// SanitizeOrder validates and normalises the supplied order, returning a
// cloned instance with non-nil amount fields. Amounts must be non-negative
// and representable in 256 bits. The function does not mutate the original.
func SanitizeOrder(o *Order) (*Order, error) {
	if o == nil {
		return nil, fmt.Errorf("escrow: nil order")
	}
	clone := o.Clone()
	if clone.ID == 0 {
		return nil, fmt.Errorf("escrow: order id must be non-zero")
	}
	if clone.Seller.IsZero() {
		return nil, fmt.Errorf("escrow: order %d seller must be non-zero", clone.ID)
	}
	if clone.Price.Sign() < 0 || clone.Locked.Sign() < 0 {
		return nil, fmt.Errorf("escrow: order %d amounts must be non-negative", clone.ID)
	}
	if _, overflow := uint256.FromBig(clone.Price); overflow {
		return nil, fmt.Errorf("escrow: order %d price exceeds 256 bits", clone.ID)
	}
	if _, overflow := uint256.FromBig(clone.Locked); overflow {
		return nil, fmt.Errorf("escrow: order %d locked amount exceeds 256 bits", clone.ID)
	}
	if !clone.State.Valid() {
		return nil, fmt.Errorf("escrow: order %d has invalid state %d", clone.ID, clone.State)
	}
	return clone, nil
}
