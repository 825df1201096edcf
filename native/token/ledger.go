package token

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"

	"escrowmarket/core/types"
)

var (
	errNilState = errors.New("token ledger: state not configured")
	// ErrInvalidAmount reports a nil, negative or over-wide amount.
	ErrInvalidAmount = errors.New("token: invalid amount")
	// ErrInvalidAddress reports the reserved zero address.
	ErrInvalidAddress = errors.New("token: invalid address")
	// ErrInsufficientBalance reports a transfer larger than the sender's
	// balance.
	ErrInsufficientBalance = errors.New("token: insufficient balance")
)

// State is the slice of persistent state the token ledger operates on.
type State interface {
	BalanceOf(addr types.Address) (*big.Int, error)
	SetBalance(addr types.Address, amount *big.Int) error
	TokenSupply() (*big.Int, error)
	SetTokenSupply(amount *big.Int) error
}

// Ledger exposes the fungible-token primitives: balance reads, balance
// writes, minting and supply accounting. It performs no escrow logic; the
// escrow engine treats it as an opaque capability.
type Ledger struct {
	state State
}

// NewLedger creates a ledger over the supplied state backend.
func NewLedger(state State) *Ledger {
	return &Ledger{state: state}
}

func checkAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if _, overflow := uint256.FromBig(amount); overflow {
		return ErrInvalidAmount
	}
	return nil
}

// BalanceOf returns the balance of the address; absent accounts hold zero.
func (l *Ledger) BalanceOf(addr types.Address) (*big.Int, error) {
	if l == nil || l.state == nil {
		return nil, errNilState
	}
	return l.state.BalanceOf(addr)
}

// Transfer moves amount between two accounts. A zero amount is a no-op.
func (l *Ledger) Transfer(from, to types.Address, amount *big.Int) error {
	if l == nil || l.state == nil {
		return errNilState
	}
	if from.IsZero() || to.IsZero() {
		return ErrInvalidAddress
	}
	if err := checkAmount(amount); err != nil {
		return err
	}
	if amount.Sign() == 0 {
		return nil
	}
	fromBalance, err := l.state.BalanceOf(from)
	if err != nil {
		return err
	}
	if fromBalance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	toBalance, err := l.state.BalanceOf(to)
	if err != nil {
		return err
	}
	if err := l.state.SetBalance(from, new(big.Int).Sub(fromBalance, amount)); err != nil {
		return err
	}
	return l.state.SetBalance(to, new(big.Int).Add(toBalance, amount))
}

// Mint credits newly created tokens to the address and grows the total
// supply.
func (l *Ledger) Mint(addr types.Address, amount *big.Int) error {
	if l == nil || l.state == nil {
		return errNilState
	}
	if addr.IsZero() {
		return ErrInvalidAddress
	}
	if err := checkAmount(amount); err != nil {
		return err
	}
	if amount.Sign() == 0 {
		return nil
	}
	balance, err := l.state.BalanceOf(addr)
	if err != nil {
		return err
	}
	supply, err := l.state.TokenSupply()
	if err != nil {
		return err
	}
	newSupply := new(big.Int).Add(supply, amount)
	if _, overflow := uint256.FromBig(newSupply); overflow {
		return ErrInvalidAmount
	}
	if err := l.state.SetBalance(addr, new(big.Int).Add(balance, amount)); err != nil {
		return err
	}
	return l.state.SetTokenSupply(newSupply)
}

// TotalSupply returns the cumulative minted amount.
func (l *Ledger) TotalSupply() (*big.Int, error) {
	if l == nil || l.state == nil {
		return nil, errNilState
	}
	return l.state.TokenSupply()
}
