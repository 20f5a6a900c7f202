// Package models defines compliance flag and policy types.
package models

import "time"

// Flag names a per-account compliance boolean.
type Flag string

const (
	FlagWhitelisted Flag = "whitelisted"
	FlagBlacklisted Flag = "blacklisted"
)

// Flags is one account's compliance state. The zero value (not whitelisted,
// not blacklisted) is what every account starts with.
type Flags struct {
	Whitelisted bool
	Blacklisted bool
	UpdatedAt   time.Time
}

// Policy holds the ledger-wide compliance switches.
type Policy struct {
	Paused              bool
	WhitelistingEnabled bool
	UpdatedAt           time.Time
}

// DefaultPolicy returns the starting policy: whitelisting enforced, transfers
// running.
func DefaultPolicy() Policy {
	return Policy{WhitelistingEnabled: true}
}
