package handler

// statusResponse acknowledges an applied ledger operation.
type statusResponse struct {
	Status string `json:"status"`
}

// balanceResponse reports one account's balance.
type balanceResponse struct {
	Address string `json:"address"`
	Balance uint64 `json:"balance"`
}

// supplyResponse reports the total supply.
type supplyResponse struct {
	TotalSupply uint64 `json:"total_supply"`
}

// allowanceResponse reports an owner/spender allowance cell.
type allowanceResponse struct {
	Owner     string `json:"owner"`
	Spender   string `json:"spender"`
	Amount    uint64 `json:"amount"`
	Unlimited bool   `json:"unlimited"`
}
