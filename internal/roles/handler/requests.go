package handler

// roleRequest grants or revokes a registry role for an address.
type roleRequest struct {
	Address string `json:"address"`
	Status  bool   `json:"status"`
}

// ownershipRequest moves the owner override to a new address.
type ownershipRequest struct {
	NewOwner string `json:"new_owner"`
}
