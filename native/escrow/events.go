package escrow

import (
	"math/big"
	"strconv"

	"escrowmarket/core/types"
)

const (
	EventTypeOrderCreated   = "escrow.order.created"
	EventTypeOrderAccepted  = "escrow.order.accepted"
	EventTypeOrderFunded    = "escrow.order.funded"
	EventTypeOrderCompleted = "escrow.order.completed"
	EventTypeOrderCancelled = "escrow.order.cancelled"
	EventTypeOrderDisputed  = "escrow.order.disputed"
	EventTypeExcessSwept    = "escrow.swept"
)

// orderEvent adapts a types.Event to the events.Emitter contract.
type orderEvent struct {
	evt *types.Event
}

func (e orderEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e orderEvent) EventAttributes() map[string]string {
	if e.evt == nil {
		return nil
	}
	return e.evt.Attributes
}

func (e orderEvent) Event() *types.Event { return e.evt }

// NewOrderCreatedEvent returns the canonical payload for a newly listed order.
func NewOrderCreatedEvent(o *Order) *types.Event {
	return newOrderEvent(EventTypeOrderCreated, o)
}

// NewOrderAcceptedEvent returns the payload emitted when a buyer accepts a
// listing.
func NewOrderAcceptedEvent(o *Order) *types.Event {
	return newOrderEvent(EventTypeOrderAccepted, o)
}

// NewOrderFundedEvent returns the payload emitted when the buyer's funds are
// locked in escrow.
func NewOrderFundedEvent(o *Order) *types.Event {
	return newOrderEvent(EventTypeOrderFunded, o)
}

// NewOrderCompletedEvent returns the payload emitted when escrowed funds are
// released to the seller.
func NewOrderCompletedEvent(o *Order) *types.Event {
	return newOrderEvent(EventTypeOrderCompleted, o)
}

// NewOrderCancelledEvent returns the payload emitted when an order is
// cancelled, with the refunded amount where funds moved.
func NewOrderCancelledEvent(o *Order, refunded *big.Int) *types.Event {
	evt := newOrderEvent(EventTypeOrderCancelled, o)
	if refunded != nil {
		evt.Attributes["refunded"] = refunded.String()
	}
	return evt
}

// NewOrderDisputedEvent returns the payload emitted when a dispute freezes
// the order's locked funds.
func NewOrderDisputedEvent(o *Order) *types.Event {
	return newOrderEvent(EventTypeOrderDisputed, o)
}

// NewExcessSweptEvent returns the payload emitted when surplus contract
// balance is claimed.
func NewExcessSweptEvent(caller types.Address, amount *big.Int, height uint64) *types.Event {
	attrs := map[string]string{
		"caller": caller.Hex(),
		"height": strconv.FormatUint(height, 10),
	}
	if amount != nil {
		attrs["amount"] = amount.String()
	}
	return &types.Event{Type: EventTypeExcessSwept, Attributes: attrs}
}

func newOrderEvent(eventType string, o *Order) *types.Event {
	attrs := make(map[string]string)
	if o == nil {
		return &types.Event{Type: eventType, Attributes: attrs}
	}
	sanitized, err := SanitizeOrder(o)
	if err != nil {
		return &types.Event{Type: eventType, Attributes: attrs}
	}
	attrs["id"] = strconv.FormatUint(sanitized.ID, 10)
	attrs["seller"] = sanitized.Seller.Hex()
	attrs["price"] = sanitized.Price.String()
	attrs["locked"] = sanitized.Locked.String()
	attrs["state"] = sanitized.State.String()
	attrs["deadline"] = strconv.FormatUint(sanitized.Deadline, 10)
	if !sanitized.Buyer.IsZero() {
		attrs["buyer"] = sanitized.Buyer.Hex()
	}
	if sanitized.AcceptedAt != 0 {
		attrs["acceptedAt"] = strconv.FormatUint(sanitized.AcceptedAt, 10)
	}
	return &types.Event{Type: eventType, Attributes: attrs}
}
