package types

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// AddressLength is the byte length of a marketplace account address.
const AddressLength = 20

// Address identifies an account in the ledger. The contract's own address is
// an ordinary account in the same addressing space; the zero value is the
// reserved "absent" address and is never a valid participant.
type Address [AddressLength]byte

// ZeroAddress is the reserved invalid address.
var ZeroAddress = Address{}

// IsZero reports whether the address is the reserved zero value.
func (a Address) IsZero() bool { return a == ZeroAddress }

// Hex returns the 0x-prefixed lowercase hex encoding of the address.
func (a Address) Hex() string { return "0x" + hex.EncodeToString(a[:]) }

// String implements fmt.Stringer.
func (a Address) String() string { return a.Hex() }

// Bytes returns a copy of the address bytes.
func (a Address) Bytes() []byte { return append([]byte(nil), a[:]...) }

// BytesToAddress converts a byte slice into an Address, left-padding short
// inputs and truncating long inputs to the rightmost 20 bytes.
func BytesToAddress(b []byte) Address {
	var a Address
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
	return a
}

// ParseAddress decodes a 0x-prefixed or bare hex address string.
func ParseAddress(s string) (Address, error) {
	trimmed := strings.TrimSpace(s)
	trimmed = strings.TrimPrefix(trimmed, "0x")
	if len(trimmed) != AddressLength*2 {
		return Address{}, fmt.Errorf("address must be %d hex characters, got %d", AddressLength*2, len(trimmed))
	}
	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return Address{}, fmt.Errorf("decode address: %w", err)
	}
	var a Address
	copy(a[:], raw)
	return a, nil
}
