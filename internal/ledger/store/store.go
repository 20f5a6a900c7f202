// Package store provides ledger balance and allowance persistence.
//
// Every mutating operation is atomic: the memory store mutates under one
// lock, the Postgres store commits one transaction. Partial application is
// never observable, so sum(balances) == totalSupply holds at every point a
// reader can see.
package store

import "tokengate/pkg/platform/sentinel"

// Sentinel errors shared by the store implementations. Services translate
// these into coded domain errors exactly once.
var (
	ErrInsufficientFunds     = sentinel.ErrInsufficientFunds
	ErrInsufficientAllowance = sentinel.ErrInsufficientAllowance
	ErrAllowanceRace         = sentinel.ErrAllowanceRace
	ErrOverflow              = sentinel.ErrOverflow
)
