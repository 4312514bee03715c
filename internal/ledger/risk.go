package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tellerd-dev/tellerd/internal/model"
	"github.com/tellerd-dev/tellerd/internal/store"
)

// Risk tag reasons emitted by the selector and resolver.
const (
	TagHighValue       = "High value transaction"
	TagCumulative      = "Cumulative amount exceeds threshold"
	TagUntrustedDevice = "Untrusted device"
)

// Thresholds are the tunable risk limits, in currency units.
type Thresholds struct {
	HighValue       decimal.Decimal // per-transaction limit, default 10,000,000
	CumulativeDaily decimal.Decimal // per-customer daily exposure limit, default 20,000,000
}

// DefaultThresholds returns the standard limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		HighValue:       decimal.NewFromInt(10_000_000),
		CumulativeDaily: decimal.NewFromInt(20_000_000),
	}
}

// Selector computes the authentication tier a transfer must clear, emitting
// risk tags along the way. The checks are a priority cascade: a transaction
// over the high-value limit is never also evaluated for cumulative exposure.
type Selector struct {
	store      *store.Store
	thresholds Thresholds
	rand       Rand
	now        func() time.Time
}

// NewSelector creates a Selector. now may be nil for the wall clock.
func NewSelector(st *store.Store, thresholds Thresholds, rnd Rand, now func() time.Time) *Selector {
	if now == nil {
		now = time.Now
	}
	return &Selector{store: st, thresholds: thresholds, rand: rnd, now: now}
}

// SelectTier returns the required tier for a transaction plus any risk tags
// it earned. Tags are returned, not persisted: the resolver commits them with
// the transaction's terminal status so they survive a rolled-back debit.
func (s *Selector) SelectTier(ctx context.Context, tx model.Transaction) (model.AuthTier, []model.RiskTag, error) {
	if tx.Amount.GreaterThan(s.thresholds.HighValue) {
		tag := model.RiskTag{
			RiskID:    uuid.NewString(),
			TxID:      tx.TxID,
			Severity:  model.SeverityHighValue,
			TagReason: TagHighValue,
		}
		// Simulated coin flip between the two strong tiers, not a policy.
		tier := model.TierBiometric
		if s.rand.Intn(2) == 1 {
			tier = model.TierOTP
		}
		return tier, []model.RiskTag{tag}, nil
	}

	customerID, err := s.store.CustomerForAccount(ctx, tx.AccountID)
	if err != nil {
		return "", nil, err
	}
	amounts, err := s.store.AmountsForCustomerOn(ctx, customerID, s.now())
	if err != nil {
		return "", nil, err
	}

	exposure := decimal.Zero
	for _, amt := range amounts {
		exposure = exposure.Add(amt.Abs())
	}
	if exposure.GreaterThan(s.thresholds.CumulativeDaily) {
		tag := model.RiskTag{
			RiskID:    uuid.NewString(),
			TxID:      tx.TxID,
			Severity:  model.SeverityCumulative,
			TagReason: TagCumulative,
		}
		return model.TierBiometric, []model.RiskTag{tag}, nil
	}

	return model.TierPIN, nil, nil
}
