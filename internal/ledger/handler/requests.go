package handler

// transferRequest moves funds from the caller to another account.
type transferRequest struct {
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

// transferFromRequest spends the caller's allowance on the owner's balance.
type transferFromRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

// approveRequest sets the caller's allowance for a spender.
type approveRequest struct {
	Spender string `json:"spender"`
	Amount  uint64 `json:"amount"`
}

// mintRequest credits new supply to an account.
type mintRequest struct {
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

// burnRequest destroys supply held by an account.
type burnRequest struct {
	From   string `json:"from"`
	Amount uint64 `json:"amount"`
}
