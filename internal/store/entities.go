package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tellerd-dev/tellerd/internal/model"
)

const timeFormat = time.RFC3339

// nullable maps an empty string to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// InsertCustomer adds a customer row.
func (s *Store) InsertCustomer(ctx context.Context, c model.Customer) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO customer (customer_id, full_name, birth_date, id_number, contact)
		VALUES (?, ?, ?, ?, ?)`,
		c.CustomerID, c.FullName, c.BirthDate.Format("2006-01-02"), c.IDNumber, c.Contact)
	if err != nil {
		return fmt.Errorf("inserting customer %s: %w", c.CustomerID, err)
	}
	return nil
}

// InsertAccount adds an account row.
func (s *Store) InsertAccount(ctx context.Context, a model.Account) error {
	status := a.Status
	if status == "" {
		status = model.AccountStatusActive
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO account (account_id, customer_id, type, balance, status)
		VALUES (?, ?, ?, ?, ?)`,
		a.AccountID, a.CustomerID, string(a.Type), a.Balance.String(), string(status))
	if err != nil {
		return fmt.Errorf("inserting account %s: %w", a.AccountID, err)
	}
	return nil
}

// InsertDevice adds a device row.
func (s *Store) InsertDevice(ctx context.Context, d model.Device) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO device (device_id, customer_id, device_type, ip_address)
		VALUES (?, ?, ?, ?)`,
		d.DeviceID, d.CustomerID, d.DeviceType, d.IPAddress)
	if err != nil {
		return fmt.Errorf("inserting device %s: %w", d.DeviceID, err)
	}
	return nil
}

// InsertTransaction adds a transaction row.
func (s *Store) InsertTransaction(ctx context.Context, t model.Transaction) error {
	status := t.Status
	if status == "" {
		status = model.StatusPending
	}
	created := t.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bank_transaction (tx_id, account_id, device_id, target_id, amount, method, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TxID, t.AccountID, nullable(t.DeviceID), nullable(t.TargetID),
		t.Amount.String(), t.Method, string(status), created.Format(timeFormat))
	if err != nil {
		return fmt.Errorf("inserting transaction %s: %w", t.TxID, err)
	}
	return nil
}

// Balance returns an account's current balance.
func (s *Store) Balance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT balance FROM account WHERE account_id = ?`, accountID).Scan(&raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("reading balance of %s: %w", accountID, err)
	}
	bal, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing balance of %s: %w", accountID, err)
	}
	return bal, nil
}

// Transaction returns one transaction by id.
func (s *Store) Transaction(ctx context.Context, txID string) (model.Transaction, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT tx_id, account_id, device_id, target_id, amount, method, status, created_at
		FROM bank_transaction WHERE tx_id = ?`, txID)
	t, err := scanTransaction(row)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("reading transaction %s: %w", txID, err)
	}
	return t, nil
}

// AccountIDs returns all account ids.
func (s *Store) AccountIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT account_id FROM account`)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning account id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AccountDevicePair joins an account with a device of its owning customer.
type AccountDevicePair struct {
	AccountID string
	DeviceID  string
}

// AccountDevicePairs returns every (account, owner device) combination, the
// population the generator draws transaction sources from.
func (s *Store) AccountDevicePairs(ctx context.Context) ([]AccountDevicePair, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ac.account_id, d.device_id
		FROM account ac
		JOIN device d ON d.customer_id = ac.customer_id`)
	if err != nil {
		return nil, fmt.Errorf("listing account-device pairs: %w", err)
	}
	defer rows.Close()

	var pairs []AccountDevicePair
	for rows.Next() {
		var p AccountDevicePair
		if err := rows.Scan(&p.AccountID, &p.DeviceID); err != nil {
			return nil, fmt.Errorf("scanning account-device pair: %w", err)
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(r rowScanner) (model.Transaction, error) {
	var (
		t       model.Transaction
		device  sql.NullString
		target  sql.NullString
		amount  string
		status  string
		created string
	)
	if err := r.Scan(&t.TxID, &t.AccountID, &device, &target, &amount, &t.Method, &status, &created); err != nil {
		return model.Transaction{}, err
	}
	t.DeviceID = device.String
	t.TargetID = target.String
	t.Status = model.TransactionStatus(status)

	amt, err := decimal.NewFromString(amount)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", amount, err)
	}
	t.Amount = amt

	ts, err := time.Parse(timeFormat, created)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing created_at %q: %w", created, err)
	}
	t.CreatedAt = ts
	return t, nil
}
