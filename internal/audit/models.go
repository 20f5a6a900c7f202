package audit

import (
	"time"

	"tokengate/pkg/domain"
)

// Event is emitted from ledger logic to capture every state-changing
// operation. Keep it transport-agnostic so stores and sinks can fan out.
// Delivery is fire-and-forget and never affects the triggering operation.
type Event struct {
	ID            string
	Timestamp     time.Time
	Action        string
	Actor         domain.Address // caller that triggered the operation
	Account       domain.Address // primary affected account
	Counterparty  domain.Address // recipient / spender, when relevant
	Amount        uint64
	BalanceBefore uint64
	BalanceAfter  uint64
	Decision      string
	Reason        string
	RequestID     string
}

// Actions recorded by the ledger.
const (
	ActionTransfer       = "transfer"
	ActionTransferFrom   = "transfer_from"
	ActionApprove        = "approve"
	ActionMint           = "mint"
	ActionBurn           = "burn"
	ActionPaused         = "paused"
	ActionUnpaused       = "unpaused"
	ActionRoleChanged    = "role_changed"
	ActionOwnerChanged   = "owner_changed"
	ActionFlagChanged    = "flag_changed"
	ActionPolicyChanged  = "policy_changed"
	ActionBatchFlagsSet  = "batch_flags_set"
	ActionLedgerSeeded   = "ledger_seeded"
	ActionGateDenied     = "gate_denied"
	ActionApproveDenied  = "approve_denied"
	ActionTransferDenied = "transfer_denied"
)

// Decisions recorded alongside actions.
const (
	DecisionApplied = "applied"
	DecisionDenied  = "denied"
)
