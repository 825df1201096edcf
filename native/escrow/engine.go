package escrow

import (
	"errors"
	"math"
	"math/big"

	"github.com/holiman/uint256"

	"escrowmarket/core/events"
	"escrowmarket/core/types"
	nativecommon "escrowmarket/native/common"
)

var errNilState = errors.New("escrow engine: state not configured")

// EngineState is the full state surface the engine composes over: the order
// repository, the per-order state field, the balance ledger, and the global
// registers. state.Manager implements it.
type EngineState interface {
	stateStore
	ledgerState

	// OrderPut persists a brand-new order record. It is the only
	// sanctioned direct state write; every later change goes through the
	// state machine or a field setter below.
	OrderPut(*Order) error
	OrderGet(id uint64) (*Order, bool, error)
	OrderSetBuyer(id uint64, buyer types.Address) error
	OrderSetAcceptedAt(id uint64, height uint64) error
	OrderSetLocked(id uint64, amount *big.Int) error
	OrderCount() (uint64, error)
	SetOrderCount(count uint64) error
}

// Stats is the read-only global view returned by EscrowStats.
type Stats struct {
	ContractBalance *big.Int
	TotalLocked     *big.Int
	OrderCount      uint64
}

// Engine composes the state machine, the escrow ledger and the timeout policy
// into the marketplace entry points. Every mutating operation acquires the
// reentrancy guard, validates all preconditions, commits the state
// transition, and only then moves balances; a failure at any step leaves
// every persistent register untouched.
type Engine struct {
	state   EngineState
	emitter events.Emitter
	guard   nativecommon.ReentrancyGuard
	params  Params
	self    types.Address
	machine stateMachine
	ledger  escrowLedger
}

// NewEngine creates an engine for the contract account at self, with default
// protocol parameters and a no-op emitter.
func NewEngine(self types.Address) *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		params:  DefaultParams(),
		self:    self,
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state EngineState) {
	e.state = state
	e.machine = stateMachine{store: state}
	e.ledger = escrowLedger{state: state, self: e.self}
}

// SetParams overrides the protocol timeout constants.
func (e *Engine) SetParams(params Params) { e.params = params }

// Params returns the active protocol constants.
func (e *Engine) Params() Params { return e.params }

// SelfAddress returns the contract's own account address.
func (e *Engine) SelfAddress() types.Address { return e.self }

// SetEmitter configures the event emitter. Passing nil resets it to a no-op
// implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) emit(evt *types.Event) {
	if e == nil || e.emitter == nil || evt == nil {
		return
	}
	e.emitter.Emit(orderEvent{evt: evt})
}

func (e *Engine) loadOrder(id uint64) (*Order, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if id == 0 {
		return nil, ErrOrderNotFound
	}
	count, err := e.state.OrderCount()
	if err != nil {
		return nil, err
	}
	if id > count {
		return nil, ErrOrderNotFound
	}
	order, ok, err := e.state.OrderGet(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// releasePreflight re-runs the ledger's release checks without mutating
// anything, so a doomed release is detected before the state transition is
// committed and the whole call aborts cleanly.
func (e *Engine) releasePreflight(recipient types.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	if recipient.IsZero() {
		return ErrInvalidRecipient
	}
	selfBalance, err := e.state.BalanceOf(e.self)
	if err != nil {
		return err
	}
	locked, err := e.state.TotalLocked()
	if err != nil {
		return err
	}
	if selfBalance.Cmp(locked) < 0 {
		return ErrCriticalInvariant
	}
	if locked.Cmp(amount) < 0 {
		return ErrLedgerUnderflow
	}
	if selfBalance.Cmp(amount) < 0 {
		return ErrInsufficientEscrowBalance
	}
	return nil
}

// CreateOrder lists a new service at the given price. The deadline offset is
// the listing window in blocks and must meet the protocol minimum. Returns
// the assigned order identifier.
func (e *Engine) CreateOrder(ctx nativecommon.CallContext, price *big.Int, deadlineOffset uint64) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, errNilState
	}
	release, err := e.guard.Enter()
	if err != nil {
		return 0, err
	}
	defer release()

	if ctx.Caller.IsZero() {
		return 0, ErrInvalidArgument
	}
	if price == nil || price.Sign() <= 0 {
		return 0, ErrInvalidArgument
	}
	if _, overflow := uint256.FromBig(price); overflow {
		return 0, ErrInvalidArgument
	}
	if deadlineOffset < e.params.MinListingWindow {
		return 0, ErrInvalidArgument
	}
	count, err := e.state.OrderCount()
	if err != nil {
		return 0, err
	}
	if count == math.MaxUint64 {
		return 0, ErrInvalidArgument
	}
	id := count + 1
	order := &Order{
		ID:       id,
		Seller:   ctx.Caller,
		Price:    new(big.Int).Set(price),
		Locked:   big.NewInt(0),
		State:    OrderStateCreated,
		Deadline: e.params.ListingDeadline(ctx.Height, deadlineOffset),
	}
	if err := e.state.OrderPut(order); err != nil {
		return 0, err
	}
	if err := e.state.SetOrderCount(id); err != nil {
		return 0, err
	}
	e.emit(NewOrderCreatedEvent(order))
	return id, nil
}

// AcceptOrder binds the caller as the order's buyer. The listing must still
// be open and the seller cannot accept their own listing.
func (e *Engine) AcceptOrder(ctx nativecommon.CallContext, id uint64) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	release, err := e.guard.Enter()
	if err != nil {
		return err
	}
	defer release()

	if ctx.Caller.IsZero() {
		return ErrInvalidArgument
	}
	order, err := e.loadOrder(id)
	if err != nil {
		return err
	}
	if order.State != OrderStateCreated {
		return &InvalidTransitionError{OrderID: id, Found: order.State, From: OrderStateCreated, To: OrderStateAccepted}
	}
	if e.params.ListingExpired(order.Deadline, ctx.Height) {
		return ErrWindowExpired
	}
	if ctx.Caller == order.Seller {
		return ErrUnauthorized
	}
	if err := e.machine.Transition(id, OrderStateCreated, OrderStateAccepted); err != nil {
		return err
	}
	if err := e.state.OrderSetBuyer(id, ctx.Caller); err != nil {
		return err
	}
	if err := e.state.OrderSetAcceptedAt(id, ctx.Height); err != nil {
		return err
	}
	order.State = OrderStateAccepted
	order.Buyer = ctx.Caller
	order.AcceptedAt = ctx.Height
	e.emit(NewOrderAcceptedEvent(order))
	return nil
}

// FundOrder locks the order's price from the stored buyer into escrow. Both
// the listing deadline and the accept-to-fund window must still be open.
func (e *Engine) FundOrder(ctx nativecommon.CallContext, id uint64) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	release, err := e.guard.Enter()
	if err != nil {
		return err
	}
	defer release()

	order, err := e.loadOrder(id)
	if err != nil {
		return err
	}
	if order.State != OrderStateAccepted {
		return &InvalidTransitionError{OrderID: id, Found: order.State, From: OrderStateAccepted, To: OrderStateFunded}
	}
	if ctx.Caller != order.Buyer {
		return ErrUnauthorized
	}
	if e.params.ListingExpired(order.Deadline, ctx.Height) {
		return ErrWindowExpired
	}
	if !e.params.FundingWindowOpen(order.AcceptedAt, ctx.Height) {
		return ErrWindowExpired
	}
	buyerBalance, err := e.state.BalanceOf(order.Buyer)
	if err != nil {
		return err
	}
	if buyerBalance.Cmp(order.Price) < 0 {
		return ErrInsufficientBalance
	}
	if err := e.machine.Transition(id, OrderStateAccepted, OrderStateFunded); err != nil {
		return err
	}
	if err := e.state.OrderSetLocked(id, order.Price); err != nil {
		return err
	}
	if err := e.ledger.lock(order.Buyer, order.Price); err != nil {
		return err
	}
	order.State = OrderStateFunded
	order.Locked = new(big.Int).Set(order.Price)
	e.emit(NewOrderFundedEvent(order))
	return nil
}

// ConfirmCompletion releases the locked amount to the seller. Only the buyer
// may confirm.
func (e *Engine) ConfirmCompletion(ctx nativecommon.CallContext, id uint64) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	release, err := e.guard.Enter()
	if err != nil {
		return err
	}
	defer release()

	order, err := e.loadOrder(id)
	if err != nil {
		return err
	}
	if order.State != OrderStateFunded {
		return &InvalidTransitionError{OrderID: id, Found: order.State, From: OrderStateFunded, To: OrderStateCompleted}
	}
	if ctx.Caller != order.Buyer {
		return ErrUnauthorized
	}
	if order.Locked.Sign() <= 0 {
		return ErrInvalidArgument
	}
	if err := e.releasePreflight(order.Seller, order.Locked); err != nil {
		return err
	}
	if err := e.machine.Transition(id, OrderStateFunded, OrderStateCompleted); err != nil {
		return err
	}
	if err := e.state.OrderSetLocked(id, big.NewInt(0)); err != nil {
		return err
	}
	if err := e.ledger.release(order.Seller, order.Locked); err != nil {
		return err
	}
	completed := order.Clone()
	completed.State = OrderStateCompleted
	completed.Locked = big.NewInt(0)
	e.emit(NewOrderCompletedEvent(completed))
	return nil
}

// OpenDispute freezes a funded order pending resolution. Either party may
// open the dispute; the locked amount stays bound until the cooling-off
// period elapses or the seller cancels.
func (e *Engine) OpenDispute(ctx nativecommon.CallContext, id uint64) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	release, err := e.guard.Enter()
	if err != nil {
		return err
	}
	defer release()

	order, err := e.loadOrder(id)
	if err != nil {
		return err
	}
	if order.State != OrderStateFunded {
		return &InvalidTransitionError{OrderID: id, Found: order.State, From: OrderStateFunded, To: OrderStateDisputed}
	}
	if ctx.Caller != order.Buyer && ctx.Caller != order.Seller {
		return ErrUnauthorized
	}
	if err := e.machine.Transition(id, OrderStateFunded, OrderStateDisputed); err != nil {
		return err
	}
	order.State = OrderStateDisputed
	e.emit(NewOrderDisputedEvent(order))
	return nil
}

// CancelOrder dispatches on the order's current state. Every state eventually
// becomes cancellable without the counterparty's cooperation: expired
// listings and lapsed funding windows open to anyone, funded orders to the
// seller at any time or the buyer after the listing deadline, and disputed
// orders to the buyer after the cooling-off period.
func (e *Engine) CancelOrder(ctx nativecommon.CallContext, id uint64) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	release, err := e.guard.Enter()
	if err != nil {
		return err
	}
	defer release()

	order, err := e.loadOrder(id)
	if err != nil {
		return err
	}
	switch order.State {
	case OrderStateCreated:
		return e.cancelCreated(ctx, order)
	case OrderStateAccepted:
		return e.cancelAccepted(ctx, order)
	case OrderStateFunded:
		return e.cancelFunded(ctx, order)
	case OrderStateDisputed:
		return e.cancelDisputed(ctx, order)
	default:
		return ErrNotCancellable
	}
}

func (e *Engine) cancelCreated(ctx nativecommon.CallContext, order *Order) error {
	if ctx.Caller != order.Seller && !e.params.ListingExpired(order.Deadline, ctx.Height) {
		return ErrUnauthorized
	}
	if err := e.machine.Transition(order.ID, OrderStateCreated, OrderStateCancelled); err != nil {
		return err
	}
	order.State = OrderStateCancelled
	e.emit(NewOrderCancelledEvent(order, nil))
	return nil
}

func (e *Engine) cancelAccepted(ctx nativecommon.CallContext, order *Order) error {
	if e.params.FundingWindowOpen(order.AcceptedAt, ctx.Height) {
		return ErrWindowNotElapsed
	}
	if err := e.machine.Transition(order.ID, OrderStateAccepted, OrderStateCancelled); err != nil {
		return err
	}
	order.State = OrderStateCancelled
	e.emit(NewOrderCancelledEvent(order, nil))
	return nil
}

func (e *Engine) cancelFunded(ctx nativecommon.CallContext, order *Order) error {
	// The buyer's unlock is keyed to the listing deadline, not the funding
	// window: a buyer who funded just before the deadline may cancel
	// shortly after it. Kept as the source protocol defines it.
	if ctx.Caller != order.Seller {
		if ctx.Caller != order.Buyer {
			return ErrUnauthorized
		}
		if !e.params.ListingExpired(order.Deadline, ctx.Height) {
			return ErrWindowNotElapsed
		}
	}
	return e.cancelWithRefund(order, OrderStateFunded, order.Buyer)
}

func (e *Engine) cancelDisputed(ctx nativecommon.CallContext, order *Order) error {
	if ctx.Caller != order.Buyer {
		return ErrUnauthorized
	}
	if !e.params.DisputeRefundable(order.Deadline, ctx.Height) {
		return ErrWindowNotElapsed
	}
	return e.cancelWithRefund(order, OrderStateDisputed, order.Buyer)
}

func (e *Engine) cancelWithRefund(order *Order, from OrderState, recipient types.Address) error {
	refund := new(big.Int).Set(order.Locked)
	if err := e.releasePreflight(recipient, refund); err != nil {
		return err
	}
	if err := e.machine.Transition(order.ID, from, OrderStateCancelled); err != nil {
		return err
	}
	if err := e.state.OrderSetLocked(order.ID, big.NewInt(0)); err != nil {
		return err
	}
	if err := e.ledger.release(recipient, refund); err != nil {
		return err
	}
	cancelled := order.Clone()
	cancelled.State = OrderStateCancelled
	cancelled.Locked = big.NewInt(0)
	e.emit(NewOrderCancelledEvent(cancelled, refund))
	return nil
}

// SweepExcess claims any contract balance above the total-locked register for
// the caller. Locked funds are never touched.
func (e *Engine) SweepExcess(ctx nativecommon.CallContext) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	release, err := e.guard.Enter()
	if err != nil {
		return nil, err
	}
	defer release()

	surplus, err := e.ledger.sweep(ctx.Caller)
	if err != nil {
		return nil, err
	}
	if surplus.Sign() > 0 {
		e.emit(NewExcessSweptEvent(ctx.Caller, surplus, ctx.Height))
	}
	return surplus, nil
}

// GetOrder returns a copy of the stored order.
func (e *Engine) GetOrder(id uint64) (*Order, error) {
	return e.loadOrder(id)
}

// EscrowStats returns the contract balance, the total-locked register and the
// order counter.
func (e *Engine) EscrowStats() (*Stats, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	balance, err := e.state.BalanceOf(e.self)
	if err != nil {
		return nil, err
	}
	locked, err := e.state.TotalLocked()
	if err != nil {
		return nil, err
	}
	count, err := e.state.OrderCount()
	if err != nil {
		return nil, err
	}
	return &Stats{ContractBalance: balance, TotalLocked: locked, OrderCount: count}, nil
}
