package types

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Address identifies an account participating in the funding core.
type Address [20]byte

// ZeroAddress is the null identity. It is never a valid recipient.
var ZeroAddress Address

// IsZero reports whether the address is the null identity.
func (a Address) IsZero() bool { return a == ZeroAddress }

// Hex returns the 0x-prefixed lowercase hex rendering of the address.
func (a Address) Hex() string { return "0x" + hex.EncodeToString(a[:]) }

// String implements fmt.Stringer.
func (a Address) String() string { return a.Hex() }

// Bytes returns a copy of the raw address bytes.
func (a Address) Bytes() []byte {
	buf := make([]byte, len(a))
	copy(buf, a[:])
	return buf
}

// ParseAddress decodes a 0x-prefixed or bare 40-character hex string.
func ParseAddress(s string) (Address, error) {
	var addr Address
	trimmed := strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if len(trimmed) != 2*len(addr) {
		return Address{}, fmt.Errorf("address must be %d hex characters, got %q", 2*len(addr), s)
	}
	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return Address{}, fmt.Errorf("invalid address %q: %w", s, err)
	}
	copy(addr[:], raw)
	return addr, nil
}

// BytesToAddress copies up to 20 bytes into an Address, right-aligned.
func BytesToAddress(b []byte) Address {
	var addr Address
	if len(b) > len(addr) {
		b = b[len(b)-len(addr):]
	}
	copy(addr[len(addr)-len(b):], b)
	return addr
}
