package common

import (
	"encoding/hex"
	"github.com/pkg/errors"
	"math/big"
	"strings"
)

const (
	HashLength    = 32
	AddressLength = 20
)

var (
	Big0 = big.NewInt(0)
)

// Hash represents the 32 byte digest of arbitrary data.
type Hash [HashLength]byte

func BytesToHash(b []byte) Hash {
	var h Hash
	h.SetBytes(b)
	return h
}

// HexToHash returns Hash with byte values of s.
func HexToHash(s string) Hash { return BytesToHash(FromHex(s)) }

func (h Hash) Bytes() []byte { return h[:] }

func (h Hash) Hex() string { return "0x" + hex.EncodeToString(h[:]) }

func (h Hash) String() string { return h.Hex() }

func (h Hash) IsZero() bool { return h == Hash{} }

// SetBytes sets the hash to the value of b.
// If b is larger than len(h), b will be cropped from the left.
func (h *Hash) SetBytes(b []byte) {
	if len(b) > len(h) {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
}

// Address represents the 20 byte address of a wallet or participant.
type Address [AddressLength]byte

func BytesToAddress(b []byte) Address {
	var a Address
	a.SetBytes(b)
	return a
}

// HexToAddress returns Address with byte values of s.
// If s is larger than len(h), s will be cropped from the left.
func HexToAddress(s string) Address {
	return BytesToAddress(FromHex(s))
}

// IsHexAddress verifies whether a string can represent a valid hex-encoded address or not.
func IsHexAddress(s string) bool {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s) != 2*AddressLength {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

func (a Address) Bytes() []byte { return a[:] }

func (a Address) Hex() string { return "0x" + hex.EncodeToString(a[:]) }

func (a Address) String() string { return a.Hex() }

func (a Address) IsZero() bool { return a == Address{} }

func (a *Address) SetBytes(b []byte) {
	if len(b) > len(a) {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
}

func FromHex(s string) []byte {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, _ := hex.DecodeString(s)
	return b
}

// AssetBase is the number of base units in one native asset unit.
var AssetBase = big.NewInt(1e9)

// MarshalText returns the hex representation of a.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.Hex()), nil
}

// UnmarshalText parses an address in hex syntax.
func (a *Address) UnmarshalText(input []byte) error {
	if !IsHexAddress(string(input)) {
		return errors.Errorf("invalid address %q", string(input))
	}
	a.SetBytes(FromHex(string(input)))
	return nil
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.Hex()), nil
}

func (h *Hash) UnmarshalText(input []byte) error {
	b := FromHex(string(input))
	if len(b) != HashLength {
		return errors.Errorf("invalid hash length %v", len(b))
	}
	h.SetBytes(b)
	return nil
}
