package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tellerd-dev/tellerd/internal/model"
)

// PendingTransactions returns every transaction still awaiting resolution.
func (s *Store) PendingTransactions(ctx context.Context) ([]model.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tx_id, account_id, device_id, target_id, amount, method, status, created_at
		FROM bank_transaction
		WHERE status = ?
		ORDER BY created_at, tx_id`, string(model.StatusPending))
	if err != nil {
		return nil, fmt.Errorf("querying pending transactions: %w", err)
	}
	defer rows.Close()

	var txs []model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning pending transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// DeviceTrusted reports whether deviceID belongs to the customer owning
// accountID.
func (s *Store) DeviceTrusted(ctx context.Context, accountID, deviceID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM account ac
		JOIN device d ON d.customer_id = ac.customer_id
		WHERE d.device_id = ? AND ac.account_id = ?`, deviceID, accountID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking device trust: %w", err)
	}
	return n > 0, nil
}

// ApplyDelta conditionally adjusts an account balance within q: the new
// balance is written only if current + delta >= 0. The boolean reports
// whether the update took effect; insufficient funds is not an error.
//
// Callers must hold the account's resolution lock so the read-check-write
// cannot interleave with another delta on the same account.
func (s *Store) ApplyDelta(ctx context.Context, q Querier, accountID string, delta decimal.Decimal) (bool, error) {
	var raw string
	err := q.QueryRowContext(ctx,
		`SELECT balance FROM account WHERE account_id = ?`, accountID).Scan(&raw)
	if err != nil {
		return false, fmt.Errorf("reading balance of %s: %w", accountID, err)
	}
	current, err := decimal.NewFromString(raw)
	if err != nil {
		return false, fmt.Errorf("parsing balance of %s: %w", accountID, err)
	}

	next := current.Add(delta)
	if next.IsNegative() {
		return false, nil
	}

	if _, err := q.ExecContext(ctx,
		`UPDATE account SET balance = ? WHERE account_id = ?`,
		next.String(), accountID); err != nil {
		return false, fmt.Errorf("updating balance of %s: %w", accountID, err)
	}
	return true, nil
}

// SetTransactionStatus moves a transaction to a terminal status. The guard on
// the current status keeps the transition monotonic: a terminal value is
// written at most once and never reset.
func (s *Store) SetTransactionStatus(ctx context.Context, q Querier, txID string, status model.TransactionStatus) error {
	res, err := q.ExecContext(ctx, `
		UPDATE bank_transaction SET status = ?
		WHERE tx_id = ? AND status = ?`,
		string(status), txID, string(model.StatusPending))
	if err != nil {
		return fmt.Errorf("updating status of %s: %w", txID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("transaction %s is not pending", txID)
	}
	return nil
}

// InsertAuthLog records an authentication attempt within q.
func (s *Store) InsertAuthLog(ctx context.Context, q Querier, a model.AuthLog) error {
	var flag any
	if a.SuccessFlag != nil {
		flag = *a.SuccessFlag
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO auth_log (auth_id, tx_id, auth_type, success_flag)
		VALUES (?, ?, ?, ?)`,
		a.AuthID, a.TxID, string(a.AuthType), flag)
	if err != nil {
		return fmt.Errorf("inserting auth log for %s: %w", a.TxID, err)
	}
	return nil
}

// SetAuthFlag resolves an auth log's tri-state success flag.
func (s *Store) SetAuthFlag(ctx context.Context, q Querier, authID string, ok bool) error {
	_, err := q.ExecContext(ctx,
		`UPDATE auth_log SET success_flag = ? WHERE auth_id = ?`, ok, authID)
	if err != nil {
		return fmt.Errorf("updating auth log %s: %w", authID, err)
	}
	return nil
}

// InsertRiskTag appends a risk tag within q. Tags are append-only.
func (s *Store) InsertRiskTag(ctx context.Context, q Querier, t model.RiskTag) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO risk_tag (risk_id, tx_id, severity, tag_reason)
		VALUES (?, ?, ?, ?)`,
		t.RiskID, t.TxID, t.Severity, t.TagReason)
	if err != nil {
		return fmt.Errorf("inserting risk tag for %s: %w", t.TxID, err)
	}
	return nil
}

// AuthLogForTransaction returns the auth log recorded for a transfer, if any.
func (s *Store) AuthLogForTransaction(ctx context.Context, txID string) (model.AuthLog, bool, error) {
	var (
		a    model.AuthLog
		tier string
		flag *bool
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT auth_id, tx_id, auth_type, success_flag
		FROM auth_log WHERE tx_id = ?`, txID).Scan(&a.AuthID, &a.TxID, &tier, &flag)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.AuthLog{}, false, nil
		}
		return model.AuthLog{}, false, fmt.Errorf("reading auth log for %s: %w", txID, err)
	}
	a.AuthType = model.AuthTier(tier)
	a.SuccessFlag = flag
	return a, true, nil
}

// RiskTagsForTransaction returns all tags appended to a transaction.
func (s *Store) RiskTagsForTransaction(ctx context.Context, txID string) ([]model.RiskTag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT risk_id, tx_id, severity, tag_reason
		FROM risk_tag WHERE tx_id = ?`, txID)
	if err != nil {
		return nil, fmt.Errorf("reading risk tags for %s: %w", txID, err)
	}
	defer rows.Close()

	var tags []model.RiskTag
	for rows.Next() {
		var t model.RiskTag
		if err := rows.Scan(&t.RiskID, &t.TxID, &t.Severity, &t.TagReason); err != nil {
			return nil, fmt.Errorf("scanning risk tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// CustomerForAccount returns the id of the customer owning an account.
func (s *Store) CustomerForAccount(ctx context.Context, accountID string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT customer_id FROM account WHERE account_id = ?`, accountID).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("reading owner of account %s: %w", accountID, err)
	}
	return id, nil
}

// AmountsForCustomerOn returns the amounts of every transaction created on
// day (calendar date) against any of the customer's accounts. The caller
// sums absolute values for cumulative exposure.
func (s *Store) AmountsForCustomerOn(ctx context.Context, customerID string, day time.Time) ([]decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.amount
		FROM bank_transaction t
		JOIN account a ON a.account_id = t.account_id
		WHERE a.customer_id = ? AND date(t.created_at) = date(?)`,
		customerID, day.Format(timeFormat))
	if err != nil {
		return nil, fmt.Errorf("querying daily amounts for customer %s: %w", customerID, err)
	}
	defer rows.Close()

	var amounts []decimal.Decimal
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning amount: %w", err)
		}
		amt, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing amount %q: %w", raw, err)
		}
		amounts = append(amounts, amt)
	}
	return amounts, rows.Err()
}
