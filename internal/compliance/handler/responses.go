package handler

import "time"

// statusResponse acknowledges an applied compliance operation.
type statusResponse struct {
	Status   string `json:"status"`
	Accounts int    `json:"accounts,omitempty"`
}

// accountFlagsResponse reports one account's compliance state.
type accountFlagsResponse struct {
	Address     string     `json:"address"`
	Whitelisted bool       `json:"whitelisted"`
	Blacklisted bool       `json:"blacklisted"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}
