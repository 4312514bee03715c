package store

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tellerd-dev/tellerd/internal/model"
)

// RiskSummaryRow aggregates emitted risk tags by reason and severity.
type RiskSummaryRow struct {
	TagReason string `json:"tag_reason"`
	Severity  int    `json:"severity"`
	Count     int    `json:"count"`
}

// FailureRow ranks customers by failures of one kind.
type FailureRow struct {
	FailType   string `json:"fail_type"`
	CustomerID string `json:"customer_id"`
	Failures   int    `json:"failures"`
}

// Summary is a whole-ledger snapshot for the dashboard.
type Summary struct {
	Customers    int    `json:"customers"`
	Accounts     int    `json:"accounts"`
	TotalBalance string `json:"total_balance"`
	Pending      int    `json:"pending"`
	Succeeded    int    `json:"succeeded"`
	Failed       int    `json:"failed"`
}

// RiskSummary groups risk tags by reason and severity, most frequent first.
func (s *Store) RiskSummary(ctx context.Context) ([]RiskSummaryRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tag_reason, severity, COUNT(*)
		FROM risk_tag
		GROUP BY tag_reason, severity
		ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying risk summary: %w", err)
	}
	defer rows.Close()

	var out []RiskSummaryRow
	for rows.Next() {
		var r RiskSummaryRow
		if err := rows.Scan(&r.TagReason, &r.Severity, &r.Count); err != nil {
			return nil, fmt.Errorf("scanning risk summary: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// TopAuthFailures returns, per auth type, the customers with the most failed
// authenticated transfers (up to limit each).
func (s *Store) TopAuthFailures(ctx context.Context, limit int) ([]FailureRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		WITH counts AS (
			SELECT al.auth_type AS fail_type, a.customer_id, COUNT(*) AS failures
			FROM bank_transaction t
			JOIN account a ON a.account_id = t.account_id
			JOIN auth_log al ON al.tx_id = t.tx_id
			WHERE t.status = ?
			GROUP BY al.auth_type, a.customer_id
		),
		ranked AS (
			SELECT fail_type, customer_id, failures,
				ROW_NUMBER() OVER (PARTITION BY fail_type ORDER BY failures DESC) AS rn
			FROM counts
		)
		SELECT fail_type, customer_id, failures
		FROM ranked
		WHERE rn <= ?
		ORDER BY fail_type, failures DESC`,
		string(model.StatusFailed), limit)
	if err != nil {
		return nil, fmt.Errorf("querying auth failures: %w", err)
	}
	defer rows.Close()
	return scanFailureRows(rows)
}

// TopUntrustedCustomers returns the customers with the most untrusted-device
// failures (severity-4 tags), up to limit.
func (s *Store) TopUntrustedCustomers(ctx context.Context, limit int) ([]FailureRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT 'UNTRUSTED DEVICE', a.customer_id, COUNT(*) AS failures
		FROM risk_tag rt
		JOIN bank_transaction t ON t.tx_id = rt.tx_id
		JOIN account a ON a.account_id = t.account_id
		WHERE rt.severity = ?
		GROUP BY a.customer_id
		ORDER BY failures DESC
		LIMIT ?`,
		model.SeverityUntrustedDevice, limit)
	if err != nil {
		return nil, fmt.Errorf("querying untrusted-device failures: %w", err)
	}
	defer rows.Close()
	return scanFailureRows(rows)
}

// LedgerSummary reports entity counts, total balance, and transaction status
// counts.
func (s *Store) LedgerSummary(ctx context.Context) (Summary, error) {
	var sum Summary

	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customer`).Scan(&sum.Customers)
	if err != nil {
		return Summary{}, fmt.Errorf("counting customers: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM account`).Scan(&sum.Accounts); err != nil {
		return Summary{}, fmt.Errorf("counting accounts: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT balance FROM account`)
	if err != nil {
		return Summary{}, fmt.Errorf("reading balances: %w", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return Summary{}, fmt.Errorf("scanning balance: %w", err)
		}
		bal, err := decimal.NewFromString(raw)
		if err != nil {
			return Summary{}, fmt.Errorf("parsing balance %q: %w", raw, err)
		}
		total = total.Add(bal)
	}
	if err := rows.Err(); err != nil {
		return Summary{}, err
	}
	sum.TotalBalance = total.String()

	statuses := map[string]*int{
		string(model.StatusPending): &sum.Pending,
		string(model.StatusSuccess): &sum.Succeeded,
		string(model.StatusFailed):  &sum.Failed,
	}
	srows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM bank_transaction GROUP BY status`)
	if err != nil {
		return Summary{}, fmt.Errorf("counting transactions: %w", err)
	}
	defer srows.Close()
	for srows.Next() {
		var status string
		var n int
		if err := srows.Scan(&status, &n); err != nil {
			return Summary{}, fmt.Errorf("scanning status count: %w", err)
		}
		if dst, ok := statuses[status]; ok {
			*dst = n
		}
	}
	return sum, srows.Err()
}

type sqlRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanFailureRows(rows sqlRows) ([]FailureRow, error) {
	var out []FailureRow
	for rows.Next() {
		var r FailureRow
		if err := rows.Scan(&r.FailType, &r.CustomerID, &r.Failures); err != nil {
			return nil, fmt.Errorf("scanning failure row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
