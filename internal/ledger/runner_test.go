package ledger

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tellerd-dev/tellerd/internal/model"
)

func newRunner(f *fixture, workers int) *Runner {
	return NewRunner(f.st, f.resolver, zap.NewNop(), workers)
}

func TestRun_EmptyBatch(t *testing.T) {
	f := newFixture(t, "0", "0")

	report, err := newRunner(f, 1).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Processed)
}

func TestRun_ForwardProgressPastFailures(t *testing.T) {
	f := newFixture(t, "5000000", "0")
	f.auth.vals = []int{0, 0, 0, 0}

	// An overdraft, an untrusted transfer, then two resolvable rows. The
	// failures must not stop the later transactions from being attempted.
	f.addPending(t, model.Transaction{TxID: "tx-1", AccountID: "acc-a", Amount: dec("-9000000")})
	f.addPending(t, model.Transaction{
		TxID: "tx-2", AccountID: "acc-a", DeviceID: "dev-b", TargetID: "acc-b",
		Amount: dec("1000000"),
	})
	f.addPending(t, model.Transaction{TxID: "tx-3", AccountID: "acc-a", Amount: dec("2000000")})
	f.addPending(t, model.Transaction{
		TxID: "tx-4", AccountID: "acc-a", DeviceID: "dev-a", TargetID: "acc-b",
		Amount: dec("1000000"),
	})

	report, err := newRunner(f, 1).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, report.Processed)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 2, report.Failed)
	assert.Zero(t, report.Faults)

	assert.Equal(t, model.StatusFailed, f.status(t, "tx-1"))
	assert.Equal(t, model.StatusFailed, f.status(t, "tx-2"))
	assert.Equal(t, model.StatusSuccess, f.status(t, "tx-3"))
	assert.Equal(t, model.StatusSuccess, f.status(t, "tx-4"))

	// 5,000,000 + 2,000,000 deposit - 1,000,000 transferred out.
	assert.True(t, f.balance(t, "acc-a").Equal(dec("6000000")))
	assert.True(t, f.balance(t, "acc-b").Equal(dec("1000000")))
}

func TestRun_FaultDoesNotAbortBatch(t *testing.T) {
	f := newFixture(t, "5000000", "0")

	// A transfer referencing a missing target account faults on the credit
	// leg; the deposit after it must still run.
	f.addPending(t, model.Transaction{
		TxID: "tx-bad", AccountID: "acc-a", DeviceID: "dev-a", TargetID: "acc-missing",
		Amount: dec("1000000"),
	})
	f.addPending(t, model.Transaction{TxID: "tx-ok", AccountID: "acc-a", Amount: dec("1000000")})

	report, err := newRunner(f, 1).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Faults)

	// The faulted transfer's debit must not have leaked.
	assert.True(t, f.balance(t, "acc-a").Equal(dec("6000000")))
	assert.Equal(t, model.StatusSuccess, f.status(t, "tx-ok"))
}

func TestRun_ConcurrentSameAccountKeepsInvariant(t *testing.T) {
	f := newFixture(t, "5000000", "0")
	f.auth.vals = make([]int, 0) // all auth passes (stub returns 0 when empty)

	// Ten withdrawals of 1,000,000 against a 5,000,000 balance: exactly
	// five can apply, and the balance must never go negative.
	for i := 0; i < 10; i++ {
		f.addPending(t, model.Transaction{
			TxID:      fmt.Sprintf("tx-%02d", i),
			AccountID: "acc-a",
			Amount:    dec("-1000000"),
		})
	}

	report, err := newRunner(f, 4).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, report.Processed)
	assert.Equal(t, 5, report.Succeeded)
	assert.Equal(t, 5, report.Failed)
	assert.Zero(t, report.Faults)

	bal := f.balance(t, "acc-a")
	assert.True(t, bal.IsZero(), "got %s", bal)
	assert.False(t, bal.IsNegative())
}

func TestRun_ConcurrentTransfersConserveTotal(t *testing.T) {
	f := newFixture(t, "10000000", "10000000")

	// Transfers in both directions over the same account pair; the lock
	// ordering must not deadlock and totals must be conserved.
	for i := 0; i < 4; i++ {
		f.addPending(t, model.Transaction{
			TxID: fmt.Sprintf("tx-ab-%d", i), AccountID: "acc-a", DeviceID: "dev-a",
			TargetID: "acc-b", Amount: dec("1000000"),
		})
		f.addPending(t, model.Transaction{
			TxID: fmt.Sprintf("tx-ba-%d", i), AccountID: "acc-b", DeviceID: "dev-b",
			TargetID: "acc-a", Amount: dec("1000000"),
		})
	}

	report, err := newRunner(f, 4).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, report.Processed)
	assert.Zero(t, report.Faults)

	total := f.balance(t, "acc-a").Add(f.balance(t, "acc-b"))
	assert.True(t, total.Equal(decimal.NewFromInt(20_000_000)), "got %s", total)
	assert.False(t, f.balance(t, "acc-a").IsNegative())
	assert.False(t, f.balance(t, "acc-b").IsNegative())
}
