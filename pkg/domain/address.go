// Package domain provides type-safe ledger identifiers to prevent mixing up
// raw strings and account addresses at compile time.
package domain

import (
	"strings"

	dErrors "tokengate/pkg/domain-errors"
)

// Address identifies a ledger participant. It is opaque, comparable, and
// totally ordered by its canonical lowercase hex form.
//
// The zero value is reserved: it never names a real account and is used only
// as the synthetic origin of a mint and the synthetic destination of a burn.
type Address string

// ZeroAddress is the reserved "no account" identifier.
const ZeroAddress Address = ""

// addressHexLen is the number of hex characters in a canonical address,
// matching the 20-byte wallet-address convention.
const addressHexLen = 40

// ParseAddress validates and canonicalizes an address at a trust boundary
// (handlers, API inputs). The empty string is rejected here: external callers
// may never name the zero address directly.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ZeroAddress, dErrors.New(dErrors.CodeInvalidAddress, "address cannot be empty")
	}
	body, ok := strings.CutPrefix(strings.ToLower(s), "0x")
	if !ok {
		return ZeroAddress, dErrors.New(dErrors.CodeInvalidAddress, "address must start with 0x")
	}
	if len(body) != addressHexLen {
		return ZeroAddress, dErrors.New(dErrors.CodeInvalidAddress, "address must be 20 bytes of hex")
	}
	for _, c := range body {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return ZeroAddress, dErrors.New(dErrors.CodeInvalidAddress, "address contains non-hex characters")
		}
	}
	return Address("0x" + body), nil
}

// IsZero reports whether the address is the reserved "no account" identifier.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// String returns the canonical form for logging and persistence.
func (a Address) String() string {
	return string(a)
}

// Short returns an abbreviated form for log lines.
func (a Address) Short() string {
	if len(a) <= 10 {
		return string(a)
	}
	return string(a[:6]) + ".." + string(a[len(a)-4:])
}
