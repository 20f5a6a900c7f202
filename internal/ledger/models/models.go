// Package models defines the ledger's book-keeping types.
package models

import "math"

// UnlimitedAllowance marks an allowance that is never decremented by
// TransferFrom. Approving this value grants an open-ended spending right.
const UnlimitedAllowance = math.MaxUint64

// SafeAdd returns a+b and reports whether the sum fits in uint64.
func SafeAdd(a, b uint64) (uint64, bool) {
	sum := a + b
	return sum, sum >= a
}

// SafeSub returns a-b and reports whether a covers b.
func SafeSub(a, b uint64) (uint64, bool) {
	return a - b, a >= b
}

// TransferResult reports the balances around one applied transfer.
type TransferResult struct {
	FromBefore uint64
	FromAfter  uint64
	ToBefore   uint64
	ToAfter    uint64
}

// SupplyResult reports the affected balance and the new total supply after a
// mint or burn.
type SupplyResult struct {
	BalanceBefore uint64
	BalanceAfter  uint64
	TotalSupply   uint64
}
