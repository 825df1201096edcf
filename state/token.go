package state

import (
	"math/big"

	"escrowmarket/core/types"
)

// Token ledger accessors. The contract's own address is an ordinary account
// here; its balance doubles as the escrow vault.

// BalanceOf returns the token balance for the address. Absent accounts hold
// zero.
func (m *Manager) BalanceOf(addr types.Address) (*big.Int, error) {
	return m.slotGetBig(nsBalance, addr.Bytes())
}

// SetBalance overwrites the token balance for the address.
func (m *Manager) SetBalance(addr types.Address, amount *big.Int) error {
	return m.slotSetBig(nsBalance, addr.Bytes(), amount)
}

// TokenSupply returns the minted total supply.
func (m *Manager) TokenSupply() (*big.Int, error) {
	return m.slotGetBig(nsTokenSupply, globalSub)
}

// SetTokenSupply overwrites the minted total supply.
func (m *Manager) SetTokenSupply(amount *big.Int) error {
	return m.slotSetBig(nsTokenSupply, globalSub, amount)
}

// FaucetLastClaim returns the height of the address's last faucet drip, zero
// if it never claimed.
func (m *Manager) FaucetLastClaim(addr types.Address) (uint64, error) {
	return m.slotGetUint64(nsFaucetLastDrip, addr.Bytes())
}

// SetFaucetLastClaim records the height of a faucet drip.
func (m *Manager) SetFaucetLastClaim(addr types.Address, height uint64) error {
	return m.slotSetUint64(nsFaucetLastDrip, addr.Bytes(), height)
}
