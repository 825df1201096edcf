package state

import (
	"math/big"

	"escrowmarket/core/types"
	"escrowmarket/native/escrow"
)

// The order repository: typed accessors over the per-field slots. The escrow
// engine owns these records exclusively; nothing else writes them.

// OrderPut persists a brand-new order record across its field slots. Only
// order creation uses it; later changes go through the field setters and the
// state machine.
func (m *Manager) OrderPut(order *escrow.Order) error {
	sanitized, err := escrow.SanitizeOrder(order)
	if err != nil {
		return err
	}
	sub := orderSub(sanitized.ID)
	if err := m.slotSetBig(nsOrderSeller, sub, new(big.Int).SetBytes(sanitized.Seller.Bytes())); err != nil {
		return err
	}
	if err := m.slotSetBig(nsOrderBuyer, sub, new(big.Int).SetBytes(sanitized.Buyer.Bytes())); err != nil {
		return err
	}
	if err := m.slotSetBig(nsOrderPrice, sub, sanitized.Price); err != nil {
		return err
	}
	if err := m.slotSetBig(nsOrderLocked, sub, sanitized.Locked); err != nil {
		return err
	}
	if err := m.slotSetUint64(nsOrderState, sub, uint64(sanitized.State)); err != nil {
		return err
	}
	if err := m.slotSetUint64(nsOrderDeadline, sub, sanitized.Deadline); err != nil {
		return err
	}
	return m.slotSetUint64(nsOrderAccepted, sub, sanitized.AcceptedAt)
}

// OrderGet reads an order back from its field slots. A record whose state
// slot holds the absent sentinel does not exist.
func (m *Manager) OrderGet(id uint64) (*escrow.Order, bool, error) {
	sub := orderSub(id)
	stateValue, err := m.slotGetUint64(nsOrderState, sub)
	if err != nil {
		return nil, false, err
	}
	orderState := escrow.OrderState(stateValue)
	if orderState == escrow.OrderStateAbsent {
		return nil, false, nil
	}
	seller, err := m.SlotGet(nsOrderSeller, sub)
	if err != nil {
		return nil, false, err
	}
	buyer, err := m.SlotGet(nsOrderBuyer, sub)
	if err != nil {
		return nil, false, err
	}
	price, err := m.slotGetBig(nsOrderPrice, sub)
	if err != nil {
		return nil, false, err
	}
	locked, err := m.slotGetBig(nsOrderLocked, sub)
	if err != nil {
		return nil, false, err
	}
	deadline, err := m.slotGetUint64(nsOrderDeadline, sub)
	if err != nil {
		return nil, false, err
	}
	acceptedAt, err := m.slotGetUint64(nsOrderAccepted, sub)
	if err != nil {
		return nil, false, err
	}
	sellerBytes := seller.Bytes32()
	buyerBytes := buyer.Bytes32()
	order := &escrow.Order{
		ID:         id,
		Seller:     types.BytesToAddress(sellerBytes[:]),
		Buyer:      types.BytesToAddress(buyerBytes[:]),
		Price:      price,
		Locked:     locked,
		State:      orderState,
		Deadline:   deadline,
		AcceptedAt: acceptedAt,
	}
	return order, true, nil
}

// OrderStateGet reads the bare state field. Absent records report the absent
// sentinel rather than an error so the state machine can distinguish them.
func (m *Manager) OrderStateGet(id uint64) (escrow.OrderState, error) {
	value, err := m.slotGetUint64(nsOrderState, orderSub(id))
	if err != nil {
		return escrow.OrderStateAbsent, err
	}
	return escrow.OrderState(value), nil
}

// OrderStateSet writes the bare state field. The state machine is the only
// caller after creation.
func (m *Manager) OrderStateSet(id uint64, orderState escrow.OrderState) error {
	return m.slotSetUint64(nsOrderState, orderSub(id), uint64(orderState))
}

// OrderSetBuyer records the accepted buyer.
func (m *Manager) OrderSetBuyer(id uint64, buyer types.Address) error {
	return m.slotSetBig(nsOrderBuyer, orderSub(id), new(big.Int).SetBytes(buyer.Bytes()))
}

// OrderSetAcceptedAt records the acceptance height.
func (m *Manager) OrderSetAcceptedAt(id uint64, height uint64) error {
	return m.slotSetUint64(nsOrderAccepted, orderSub(id), height)
}

// OrderSetLocked records the per-order locked amount.
func (m *Manager) OrderSetLocked(id uint64, amount *big.Int) error {
	return m.slotSetBig(nsOrderLocked, orderSub(id), amount)
}

// OrderCount returns the identifier handed out last; zero means no orders.
func (m *Manager) OrderCount() (uint64, error) {
	return m.slotGetUint64(nsOrderCount, globalSub)
}

// SetOrderCount overwrites the order counter.
func (m *Manager) SetOrderCount(count uint64) error {
	return m.slotSetUint64(nsOrderCount, globalSub, count)
}

// TotalLocked returns the global locked-value register.
func (m *Manager) TotalLocked() (*big.Int, error) {
	return m.slotGetBig(nsTotalLocked, globalSub)
}

// SetTotalLocked overwrites the global locked-value register.
func (m *Manager) SetTotalLocked(amount *big.Int) error {
	return m.slotSetBig(nsTotalLocked, globalSub, amount)
}
