package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the lifecycle state of a transaction. Transitions are
// monotonic: pending moves to exactly one of success or failed and never
// back.
type TransactionStatus string

const (
	StatusPending TransactionStatus = "pending"
	StatusSuccess TransactionStatus = "success"
	StatusFailed  TransactionStatus = "failed"
)

// TransactionKind classifies a transaction by its shape.
type TransactionKind string

const (
	KindDeposit    TransactionKind = "deposit"
	KindWithdrawal TransactionKind = "withdrawal"
	KindTransfer   TransactionKind = "transfer"
)

// Transaction is one row of the ledger's work queue. Amount is signed:
// positive = deposit, negative = withdrawal. Transfers carry a TargetID and
// always debit the source before crediting the target; DeviceID is set only
// for transfers.
type Transaction struct {
	TxID      string
	AccountID string
	DeviceID  string // empty unless transfer
	TargetID  string // empty unless transfer
	Amount    decimal.Decimal
	Method    string // online, card, cash
	Status    TransactionStatus
	CreatedAt time.Time
}

// Kind classifies by shape: a present target means transfer, otherwise the
// amount's sign separates withdrawal from deposit.
func (t Transaction) Kind() TransactionKind {
	if t.TargetID != "" {
		return KindTransfer
	}
	if t.Amount.IsNegative() {
		return KindWithdrawal
	}
	return KindDeposit
}
