package token

import (
	"errors"
	"math/big"

	"escrowmarket/core/types"
	nativecommon "escrowmarket/native/common"
)

// ErrFaucetCooldown reports a claim attempted before the cooldown elapsed.
var ErrFaucetCooldown = errors.New("token: faucet cooldown active")

// FaucetState extends the ledger state with the per-address last-claim
// register.
type FaucetState interface {
	State
	FaucetLastClaim(addr types.Address) (uint64, error)
	SetFaucetLastClaim(addr types.Address, height uint64) error
}

// Faucet is the permissionless cooldown-gated mint. It sits outside the
// escrow solvency invariant: drips go to the caller's own balance, never to
// the contract vault.
type Faucet struct {
	state    FaucetState
	ledger   *Ledger
	drip     *big.Int
	cooldown uint64
}

// NewFaucet creates a faucet dripping the fixed amount with the given
// cooldown in blocks.
func NewFaucet(state FaucetState, ledger *Ledger, drip *big.Int, cooldownBlocks uint64) *Faucet {
	if drip == nil {
		drip = big.NewInt(0)
	}
	return &Faucet{
		state:    state,
		ledger:   ledger,
		drip:     new(big.Int).Set(drip),
		cooldown: cooldownBlocks,
	}
}

// DripAmount returns the fixed per-claim amount.
func (f *Faucet) DripAmount() *big.Int {
	if f == nil || f.drip == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(f.drip)
}

// Claim mints the drip amount to the caller if the cooldown has elapsed
// since their previous claim. First-time callers always pass.
func (f *Faucet) Claim(ctx nativecommon.CallContext) (*big.Int, error) {
	if f == nil || f.state == nil || f.ledger == nil {
		return nil, errNilState
	}
	if ctx.Caller.IsZero() {
		return nil, ErrInvalidAddress
	}
	last, err := f.state.FaucetLastClaim(ctx.Caller)
	if err != nil {
		return nil, err
	}
	if last != 0 && (ctx.Height < last || ctx.Height-last < f.cooldown) {
		return nil, ErrFaucetCooldown
	}
	if err := f.ledger.Mint(ctx.Caller, f.drip); err != nil {
		return nil, err
	}
	if err := f.state.SetFaucetLastClaim(ctx.Caller, ctx.Height); err != nil {
		return nil, err
	}
	return f.DripAmount(), nil
}
