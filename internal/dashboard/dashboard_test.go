package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tellerd-dev/tellerd/internal/model"
	"github.com/tellerd-dev/tellerd/internal/store"
)

func newApp(t *testing.T) (*fiber.App, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return New(st, zap.NewNop()), st
}

func seedResolved(t *testing.T, st *store.Store) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, st.InsertCustomer(ctx, model.Customer{
		CustomerID: "cus-1",
		FullName:   "Nguyen Minh",
		BirthDate:  time.Date(1988, 2, 14, 0, 0, 0, 0, time.UTC),
		IDNumber:   "123456789012",
		Contact:    "+84901111111",
	}))
	require.NoError(t, st.InsertAccount(ctx, model.Account{
		AccountID:  "acc-1",
		CustomerID: "cus-1",
		Type:       model.AccountTypeChecking,
		Balance:    decimal.NewFromInt(15_000_000),
		Status:     model.AccountStatusActive,
	}))
	require.NoError(t, st.InsertTransaction(ctx, model.Transaction{
		TxID:      "tx-1",
		AccountID: "acc-1",
		TargetID:  "acc-1",
		Amount:    decimal.NewFromInt(12_000_000),
		Method:    "online",
		Status:    model.StatusPending,
		CreatedAt: time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, st.SetTransactionStatus(ctx, st.DB(), "tx-1", model.StatusFailed))
	require.NoError(t, st.InsertAuthLog(ctx, st.DB(), model.AuthLog{
		AuthID:   "auth-1",
		TxID:     "tx-1",
		AuthType: model.TierBiometric,
	}))
	require.NoError(t, st.SetAuthFlag(ctx, st.DB(), "auth-1", false))
	require.NoError(t, st.InsertRiskTag(ctx, st.DB(), model.RiskTag{
		RiskID:    "risk-1",
		TxID:      "tx-1",
		Severity:  model.SeverityUntrustedDevice,
		TagReason: "Untrusted device",
	}))
}

func getJSON(t *testing.T, app *fiber.App, path string, out any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestSummary(t *testing.T) {
	app, st := newApp(t)
	seedResolved(t, st)

	var sum store.Summary
	getJSON(t, app, "/api/summary", &sum)

	assert.Equal(t, 1, sum.Customers)
	assert.Equal(t, 1, sum.Accounts)
	assert.Equal(t, "15000000", sum.TotalBalance)
	assert.Equal(t, 0, sum.Pending)
	assert.Equal(t, 1, sum.Failed)
}

func TestRiskSummary(t *testing.T) {
	app, st := newApp(t)
	seedResolved(t, st)

	var rows []store.RiskSummaryRow
	getJSON(t, app, "/api/risk-summary", &rows)

	require.Len(t, rows, 1)
	assert.Equal(t, "Untrusted device", rows[0].TagReason)
	assert.Equal(t, model.SeverityUntrustedDevice, rows[0].Severity)
	assert.Equal(t, 1, rows[0].Count)
}

func TestRiskSummary_EmptyLedgerIsEmptyArray(t *testing.T) {
	app, _ := newApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/risk-summary", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rows []store.RiskSummaryRow
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestTopFailures(t *testing.T) {
	app, st := newApp(t)
	seedResolved(t, st)

	var rows []store.FailureRow
	getJSON(t, app, "/api/failures/top", &rows)

	require.Len(t, rows, 2)
	assert.Equal(t, string(model.TierBiometric), rows[0].FailType)
	assert.Equal(t, "cus-1", rows[0].CustomerID)
	assert.Equal(t, "UNTRUSTED DEVICE", rows[1].FailType)
	assert.Equal(t, 1, rows[1].Failures)
}

func TestUnknownRoute(t *testing.T) {
	app, _ := newApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
