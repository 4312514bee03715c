// Package ledger is the transaction-resolution engine: it drives pending
// transactions to a terminal status while enforcing balance invariants,
// device-trust rules, and risk-based authentication escalation.
package ledger

import (
	"github.com/tellerd-dev/tellerd/internal/model"
)

// Reason classifies why a transaction failed. These are business outcomes,
// not system faults: each maps to status failed, never to a Go error.
type Reason string

const (
	ReasonNone              Reason = ""
	ReasonInsufficientFunds Reason = "insufficient_funds"
	ReasonUntrustedDevice   Reason = "untrusted_device"
	ReasonAuthFailed        Reason = "authentication_failed"
)

// Outcome is the result of resolving one transaction.
type Outcome struct {
	Status model.TransactionStatus
	Reason Reason
	Tier   model.AuthTier  // set when a transfer reached tier selection
	Tags   []model.RiskTag // risk tags persisted during resolution
}

// Rand is the injectable randomness seam behind the simulated auth decisions,
// so tests can force deterministic outcomes.
type Rand interface {
	Intn(n int) int
}
