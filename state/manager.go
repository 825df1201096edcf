package state

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"escrowmarket/storage"
)

// Slot namespaces. Each logical field gets one; the sub-key scopes the slot
// per order or per address. A namespace plus sub-key addresses exactly one
// 32-byte value.
const (
	nsOrderSeller    byte = 0x01
	nsOrderBuyer     byte = 0x02
	nsOrderPrice     byte = 0x03
	nsOrderLocked    byte = 0x04
	nsOrderState     byte = 0x05
	nsOrderDeadline  byte = 0x06
	nsOrderAccepted  byte = 0x07
	nsTotalLocked    byte = 0x10
	nsOrderCount     byte = 0x11
	nsBalance        byte = 0x20
	nsTokenSupply    byte = 0x21
	nsFaucetLastDrip byte = 0x22
)

// globalSub scopes the process-wide registers (order counter, total locked,
// token supply).
var globalSub = []byte("global")

// Manager is the record store every component persists through: fixed-width
// 32-byte slots addressed by a (namespace, sub-key) pair, hashed into the
// backing key-value database. Absent slots read as zero.
type Manager struct {
	db storage.Database
}

// NewManager creates a state manager over the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

func slotKey(ns byte, sub []byte) []byte {
	buf := make([]byte, 1+len(sub))
	buf[0] = ns
	copy(buf[1:], sub)
	return ethcrypto.Keccak256(buf)
}

func orderSub(id uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, id)
	return buf
}

// SlotGet reads one slot. Missing entries return zero.
func (m *Manager) SlotGet(ns byte, sub []byte) (*uint256.Int, error) {
	if m == nil || m.db == nil {
		return nil, fmt.Errorf("state manager unavailable")
	}
	data, err := m.db.Get(slotKey(ns, sub))
	if errors.Is(err, storage.ErrNotFound) {
		return uint256.NewInt(0), nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) != 32 {
		return nil, fmt.Errorf("state: slot %#x has width %d, want 32", ns, len(data))
	}
	value := new(uint256.Int)
	value.SetBytes32(data)
	return value, nil
}

// SlotSet writes one slot as a fixed-width 32-byte big-endian value.
func (m *Manager) SlotSet(ns byte, sub []byte, value *uint256.Int) error {
	if m == nil || m.db == nil {
		return fmt.Errorf("state manager unavailable")
	}
	if value == nil {
		value = uint256.NewInt(0)
	}
	encoded := value.Bytes32()
	return m.db.Put(slotKey(ns, sub), encoded[:])
}

func (m *Manager) slotGetBig(ns byte, sub []byte) (*big.Int, error) {
	value, err := m.SlotGet(ns, sub)
	if err != nil {
		return nil, err
	}
	return value.ToBig(), nil
}

func (m *Manager) slotSetBig(ns byte, sub []byte, amount *big.Int) error {
	if amount == nil {
		amount = big.NewInt(0)
	}
	if amount.Sign() < 0 {
		return fmt.Errorf("state: slot %#x value cannot be negative", ns)
	}
	value, overflow := uint256.FromBig(amount)
	if overflow {
		return fmt.Errorf("state: slot %#x value exceeds 256 bits", ns)
	}
	return m.SlotSet(ns, sub, value)
}

func (m *Manager) slotGetUint64(ns byte, sub []byte) (uint64, error) {
	value, err := m.SlotGet(ns, sub)
	if err != nil {
		return 0, err
	}
	if !value.IsUint64() {
		return 0, fmt.Errorf("state: slot %#x value exceeds 64 bits", ns)
	}
	return value.Uint64(), nil
}

func (m *Manager) slotSetUint64(ns byte, sub []byte, value uint64) error {
	return m.SlotSet(ns, sub, uint256.NewInt(value))
}
