package quality

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tellerd-dev/tellerd/internal/model"
	"github.com/tellerd-dev/tellerd/internal/store"
)

func newLedger(t *testing.T) (*store.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	require.NoError(t, st.InsertCustomer(ctx, model.Customer{
		CustomerID: "cus-1",
		FullName:   "Le Trang",
		BirthDate:  time.Date(1992, 7, 3, 0, 0, 0, 0, time.UTC),
		IDNumber:   "123456789012",
		Contact:    "+84901234567",
	}))
	require.NoError(t, st.InsertAccount(ctx, model.Account{
		AccountID:  "acc-1",
		CustomerID: "cus-1",
		Type:       model.AccountTypeSavings,
		Balance:    decimal.NewFromInt(1_000_000),
		Status:     model.AccountStatusActive,
	}))
	return st, path
}

// rawDB opens a second handle on the same file with foreign keys off, so
// tests can plant the malformed rows the checker exists to find.
func rawDB(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRun_CleanLedger(t *testing.T) {
	st, _ := newLedger(t)

	findings, err := NewChecker(st).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestRun_DetectsOrphanAccount(t *testing.T) {
	st, path := newLedger(t)
	db := rawDB(t, path)

	_, err := db.Exec(`INSERT INTO account (account_id, customer_id, type, balance, status)
		VALUES ('acc-orphan', 'cus-missing', 'savings', '0', 'active')`)
	require.NoError(t, err)

	findings, err := NewChecker(st).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "foreign-key", findings[0].Rule)
	assert.Equal(t, "account", findings[0].Table)
	assert.Equal(t, "customer_id", findings[0].Column)
}

func TestRun_DetectsBadIDNumber(t *testing.T) {
	st, path := newLedger(t)
	db := rawDB(t, path)

	_, err := db.Exec(`INSERT INTO customer (customer_id, full_name, birth_date, id_number, contact)
		VALUES ('cus-2', 'Pham Hieu', '1990-01-01', '12345', '+84907654321')`)
	require.NoError(t, err)

	findings, err := NewChecker(st).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "format", findings[0].Rule)
	assert.Contains(t, findings[0].Details, "1 id number(s)")
}

func TestRun_DetectsDuplicateContact(t *testing.T) {
	st, path := newLedger(t)
	db := rawDB(t, path)

	_, err := db.Exec(`INSERT INTO customer (customer_id, full_name, birth_date, id_number, contact)
		VALUES ('cus-2', 'Pham Hieu', '1990-01-01', '210987654321', '+84901234567')`)
	require.NoError(t, err)

	findings, err := NewChecker(st).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "unique", findings[0].Rule)
	assert.Equal(t, "contact", findings[0].Column)
}

func TestRun_DetectsOrphanRiskTag(t *testing.T) {
	st, path := newLedger(t)
	db := rawDB(t, path)

	_, err := db.Exec(`INSERT INTO risk_tag (risk_id, tx_id, severity, tag_reason)
		VALUES ('risk-1', 'tx-missing', 4, 'Untrusted device')`)
	require.NoError(t, err)

	findings, err := NewChecker(st).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "foreign-key", findings[0].Rule)
	assert.Equal(t, "risk_tag", findings[0].Table)
}
