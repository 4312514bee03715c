package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tellerd-dev/tellerd/internal/model"
	"github.com/tellerd-dev/tellerd/internal/store"
)

// Resolver drives a single pending transaction to its terminal status.
//
// Each resolution is one unit of work: balance mutations happen inside a
// store transaction, and on any rule violation after a debit the whole unit
// is discarded so the debit never persists. The terminal status, auth log,
// and risk tags for a failed transaction commit separately from the
// discarded balance effects.
type Resolver struct {
	store    *store.Store
	selector *Selector
	auth     *Authenticator
	locks    *AccountLocks
}

// NewResolver wires a Resolver to its collaborators.
func NewResolver(st *store.Store, selector *Selector, auth *Authenticator, locks *AccountLocks) *Resolver {
	return &Resolver{store: st, selector: selector, auth: auth, locks: locks}
}

// Resolve finalizes one transaction. Business failures are reported in the
// Outcome; a returned error is a system fault that left no partial state.
func (r *Resolver) Resolve(ctx context.Context, tx model.Transaction) (Outcome, error) {
	switch tx.Kind() {
	case model.KindTransfer:
		return r.resolveTransfer(ctx, tx)
	default:
		return r.resolveOwnAccount(ctx, tx)
	}
}

func (r *Resolver) resolveTransfer(ctx context.Context, tx model.Transaction) (Outcome, error) {
	release := r.locks.Acquire(tx.AccountID, tx.TargetID)
	defer release()

	trusted, err := r.store.DeviceTrusted(ctx, tx.AccountID, tx.DeviceID)
	if err != nil {
		return Outcome{}, err
	}
	if !trusted {
		tag := model.RiskTag{
			RiskID:    uuid.NewString(),
			TxID:      tx.TxID,
			Severity:  model.SeverityUntrustedDevice,
			TagReason: TagUntrustedDevice,
		}
		if err := r.finalizeFailed(ctx, tx.TxID, nil, []model.RiskTag{tag}); err != nil {
			return Outcome{}, err
		}
		return Outcome{Status: model.StatusFailed, Reason: ReasonUntrustedDevice, Tags: []model.RiskTag{tag}}, nil
	}

	unit, err := r.store.Begin(ctx)
	if err != nil {
		return Outcome{}, err
	}
	defer unit.Rollback() //nolint:errcheck // no-op after commit

	// Debit the source leg first; the conditional update is the sole
	// overdraft guard.
	applied, err := r.store.ApplyDelta(ctx, unit, tx.AccountID, tx.Amount.Neg())
	if err != nil {
		return Outcome{}, err
	}
	if !applied {
		if err := unit.Rollback(); err != nil {
			return Outcome{}, fmt.Errorf("discarding unit of work for %s: %w", tx.TxID, err)
		}
		if err := r.finalizeFailed(ctx, tx.TxID, nil, nil); err != nil {
			return Outcome{}, err
		}
		return Outcome{Status: model.StatusFailed, Reason: ReasonInsufficientFunds}, nil
	}

	tier, tags, err := r.selector.SelectTier(ctx, tx)
	if err != nil {
		return Outcome{}, err
	}

	authLog := model.AuthLog{
		AuthID:   uuid.NewString(),
		TxID:     tx.TxID,
		AuthType: tier,
	}

	if !r.auth.Simulate(tier) {
		// Compensate: discard the unit holding the debit, then record the
		// failure on a fresh commit.
		if err := unit.Rollback(); err != nil {
			return Outcome{}, fmt.Errorf("discarding unit of work for %s: %w", tx.TxID, err)
		}
		if err := r.finalizeFailed(ctx, tx.TxID, &authLog, tags); err != nil {
			return Outcome{}, err
		}
		return Outcome{Status: model.StatusFailed, Reason: ReasonAuthFailed, Tier: tier, Tags: tags}, nil
	}

	if err := r.store.InsertAuthLog(ctx, unit, authLog); err != nil {
		return Outcome{}, err
	}
	if err := r.store.SetAuthFlag(ctx, unit, authLog.AuthID, true); err != nil {
		return Outcome{}, err
	}
	for _, tag := range tags {
		if err := r.store.InsertRiskTag(ctx, unit, tag); err != nil {
			return Outcome{}, err
		}
	}

	// Credit the target leg.
	applied, err = r.store.ApplyDelta(ctx, unit, tx.TargetID, tx.Amount)
	if err != nil {
		return Outcome{}, err
	}
	if !applied {
		if err := unit.Rollback(); err != nil {
			return Outcome{}, fmt.Errorf("discarding unit of work for %s: %w", tx.TxID, err)
		}
		if err := r.finalizeFailed(ctx, tx.TxID, nil, nil); err != nil {
			return Outcome{}, err
		}
		return Outcome{Status: model.StatusFailed, Reason: ReasonInsufficientFunds, Tier: tier}, nil
	}

	if err := r.store.SetTransactionStatus(ctx, unit, tx.TxID, model.StatusSuccess); err != nil {
		return Outcome{}, err
	}
	if err := unit.Commit(); err != nil {
		return Outcome{}, fmt.Errorf("committing transfer %s: %w", tx.TxID, err)
	}
	return Outcome{Status: model.StatusSuccess, Tier: tier, Tags: tags}, nil
}

// resolveOwnAccount handles deposits and withdrawals. No device trust or
// authentication applies; the conditional delta alone decides the outcome.
func (r *Resolver) resolveOwnAccount(ctx context.Context, tx model.Transaction) (Outcome, error) {
	release := r.locks.Acquire(tx.AccountID)
	defer release()

	unit, err := r.store.Begin(ctx)
	if err != nil {
		return Outcome{}, err
	}
	defer unit.Rollback() //nolint:errcheck // no-op after commit

	applied, err := r.store.ApplyDelta(ctx, unit, tx.AccountID, tx.Amount)
	if err != nil {
		return Outcome{}, err
	}
	if !applied {
		if err := unit.Rollback(); err != nil {
			return Outcome{}, fmt.Errorf("discarding unit of work for %s: %w", tx.TxID, err)
		}
		if err := r.finalizeFailed(ctx, tx.TxID, nil, nil); err != nil {
			return Outcome{}, err
		}
		return Outcome{Status: model.StatusFailed, Reason: ReasonInsufficientFunds}, nil
	}

	if err := r.store.SetTransactionStatus(ctx, unit, tx.TxID, model.StatusSuccess); err != nil {
		return Outcome{}, err
	}
	if err := unit.Commit(); err != nil {
		return Outcome{}, fmt.Errorf("committing transaction %s: %w", tx.TxID, err)
	}
	return Outcome{Status: model.StatusSuccess}, nil
}

// finalizeFailed records a business failure on its own commit: terminal
// status, the auth attempt (success_flag false) if one was made, and any risk
// tags earned before the unit of work was discarded.
func (r *Resolver) finalizeFailed(ctx context.Context, txID string, authLog *model.AuthLog, tags []model.RiskTag) error {
	unit, err := r.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer unit.Rollback() //nolint:errcheck // no-op after commit

	if authLog != nil {
		if err := r.store.InsertAuthLog(ctx, unit, *authLog); err != nil {
			return err
		}
		if err := r.store.SetAuthFlag(ctx, unit, authLog.AuthID, false); err != nil {
			return err
		}
	}
	for _, tag := range tags {
		if err := r.store.InsertRiskTag(ctx, unit, tag); err != nil {
			return err
		}
	}
	if err := r.store.SetTransactionStatus(ctx, unit, txID, model.StatusFailed); err != nil {
		return err
	}
	if err := unit.Commit(); err != nil {
		return fmt.Errorf("recording failure of %s: %w", txID, err)
	}
	return nil
}
