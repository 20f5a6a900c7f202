package handler

// flagRequest flips one account's compliance flag.
type flagRequest struct {
	Address string `json:"address"`
	Status  bool   `json:"status"`
}

// batchFlagRequest flips a compliance flag for a batch of accounts.
type batchFlagRequest struct {
	Addresses []string `json:"addresses"`
	Status    bool     `json:"status"`
}

// whitelistingRequest toggles whitelist enforcement.
type whitelistingRequest struct {
	Enabled bool `json:"enabled"`
}
