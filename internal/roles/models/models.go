// Package models defines the role registry domain types.
package models

import (
	"time"

	"tokengate/pkg/domain"
)

// Role names an administrative capability an account can hold.
type Role string

const (
	// RoleWhitelister may flip per-account whitelist flags.
	RoleWhitelister Role = "whitelister"
	// RoleBlacklister may flip per-account blacklist flags.
	RoleBlacklister Role = "blacklister"
)

// IsValid reports whether the role is one the registry manages. Ownership is
// not a Role: there is exactly one owner and it is stored separately.
func (r Role) IsValid() bool {
	return r == RoleWhitelister || r == RoleBlacklister
}

// Grant records one account's membership in a role.
type Grant struct {
	Account   domain.Address
	Role      Role
	UpdatedAt time.Time
}
