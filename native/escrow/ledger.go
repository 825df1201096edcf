package escrow

import (
	"math/big"

	"escrowmarket/core/types"
)

// ledgerState is the slice of state the escrow ledger mutates: per-address
// token balances and the global total-locked register.
type ledgerState interface {
	BalanceOf(addr types.Address) (*big.Int, error)
	SetBalance(addr types.Address, amount *big.Int) error
	TotalLocked() (*big.Int, error)
	SetTotalLocked(amount *big.Int) error
}

// escrowLedger owns the total-locked register and every balance movement in
// and out of the contract's own account. Per-order locked amounts and the
// register move in lockstep; the solvency invariant (contract balance >=
// total locked) is re-validated before any release.
type escrowLedger struct {
	state ledgerState
	self  types.Address
}

// lock moves amount from the payer to the contract's own balance and grows
// the total-locked register by the same amount. Checks fully precede effects.
func (l escrowLedger) lock(payer types.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidArgument
	}
	payerBalance, err := l.state.BalanceOf(payer)
	if err != nil {
		return err
	}
	if payerBalance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	selfBalance, err := l.state.BalanceOf(l.self)
	if err != nil {
		return err
	}
	locked, err := l.state.TotalLocked()
	if err != nil {
		return err
	}
	if err := l.state.SetBalance(payer, new(big.Int).Sub(payerBalance, amount)); err != nil {
		return err
	}
	if err := l.state.SetBalance(l.self, new(big.Int).Add(selfBalance, amount)); err != nil {
		return err
	}
	return l.state.SetTotalLocked(new(big.Int).Add(locked, amount))
}

// release moves amount from the contract's own balance to the recipient and
// shrinks the total-locked register. A zero amount is a no-op. The three
// pre-mutation checks run in a fixed order: global solvency, register
// coverage, then contract balance coverage.
func (l escrowLedger) release(recipient types.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidArgument
	}
	if amount.Sign() == 0 {
		return nil
	}
	if recipient.IsZero() {
		return ErrInvalidRecipient
	}
	selfBalance, err := l.state.BalanceOf(l.self)
	if err != nil {
		return err
	}
	locked, err := l.state.TotalLocked()
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
	recipientBalance, err := l.state.BalanceOf(recipient)
	if err != nil {
		return err
	}
	if err := l.state.SetBalance(l.self, new(big.Int).Sub(selfBalance, amount)); err != nil {
		return err
	}
	if err := l.state.SetBalance(recipient, new(big.Int).Add(recipientBalance, amount)); err != nil {
		return err
	}
	return l.state.SetTotalLocked(new(big.Int).Sub(locked, amount))
}

// sweep transfers the surplus above total locked to the caller. Locked funds
// are never touched; a zero surplus is a no-op. The operation is
// deliberately permissionless: whoever triggers it claims the surplus.
func (l escrowLedger) sweep(caller types.Address) (*big.Int, error) {
	if caller.IsZero() {
		return nil, ErrInvalidRecipient
	}
	selfBalance, err := l.state.BalanceOf(l.self)
	if err != nil {
		return nil, err
	}
	locked, err := l.state.TotalLocked()
	if err != nil {
		return nil, err
	}
	surplus := new(big.Int).Sub(selfBalance, locked)
	if surplus.Sign() <= 0 {
		return big.NewInt(0), nil
	}
	callerBalance, err := l.state.BalanceOf(caller)
	if err != nil {
		return nil, err
	}
	if err := l.state.SetBalance(l.self, new(big.Int).Sub(selfBalance, surplus)); err != nil {
		return nil, err
	}
	if err := l.state.SetBalance(caller, new(big.Int).Add(callerBalance, surplus)); err != nil {
		return nil, err
	}
	return surplus, nil
}
