// Package seed populates the ledger store with synthetic customers,
// accounts, devices, and pending transactions.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tellerd-dev/tellerd/internal/model"
	"github.com/tellerd-dev/tellerd/internal/store"
)

var givenNames = []string{
	"Anh", "Binh", "Chi", "Dung", "Hanh", "Hieu", "Lan", "Linh",
	"Mai", "Minh", "Ngoc", "Phuong", "Quang", "Thanh", "Trang", "Tuan",
}

var familyNames = []string{
	"Nguyen", "Tran", "Le", "Pham", "Hoang", "Vo", "Dang", "Bui", "Do", "Ngo",
}

// Params controls generated volumes.
type Params struct {
	Customers    int
	Transactions int
}

// Stats reports what was generated.
type Stats struct {
	Customers    int
	Accounts     int
	Devices      int
	Transactions int
}

// Generator produces synthetic ledger data. Randomness and the clock are
// injected so tests can pin the output.
type Generator struct {
	store *store.Store
	rand  *rand.Rand
	now   func() time.Time
}

// NewGenerator creates a Generator. now may be nil for the wall clock.
func NewGenerator(st *store.Store, rnd *rand.Rand, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{store: st, rand: rnd, now: now}
}

// Generate populates the store: p.Customers customers with 1-3 accounts and
// 1-2 devices each, then p.Transactions pending transactions shaped 20%
// deposit, 30% withdrawal, 50% transfer.
func (g *Generator) Generate(ctx context.Context, p Params) (Stats, error) {
	var stats Stats

	for i := 0; i < p.Customers; i++ {
		c := g.customer(i)
		if err := g.store.InsertCustomer(ctx, c); err != nil {
			return stats, err
		}
		stats.Customers++

		for n := g.rand.Intn(3) + 1; n > 0; n-- {
			if err := g.store.InsertAccount(ctx, g.account(c.CustomerID)); err != nil {
				return stats, err
			}
			stats.Accounts++
		}
		for n := g.rand.Intn(2) + 1; n > 0; n-- {
			if err := g.store.InsertDevice(ctx, g.device(c.CustomerID)); err != nil {
				return stats, err
			}
			stats.Devices++
		}
	}

	pairs, err := g.store.AccountDevicePairs(ctx)
	if err != nil {
		return stats, err
	}
	accountIDs, err := g.store.AccountIDs(ctx)
	if err != nil {
		return stats, err
	}
	if len(pairs) == 0 || len(accountIDs) < 2 {
		return stats, fmt.Errorf("not enough accounts to generate transactions")
	}

	for i := 0; i < p.Transactions; i++ {
		tx := g.transaction(pairs, accountIDs)
		if err := g.store.InsertTransaction(ctx, tx); err != nil {
			return stats, err
		}
		stats.Transactions++
	}
	return stats, nil
}

func (g *Generator) customer(seq int) model.Customer {
	given := givenNames[g.rand.Intn(len(givenNames))]
	family := familyNames[g.rand.Intn(len(familyNames))]

	ageDays := 18*365 + g.rand.Intn(62*365)
	birth := g.now().AddDate(0, 0, -ageDays)

	digits := make([]byte, 12)
	for i := range digits {
		digits[i] = byte('0' + g.rand.Intn(10))
	}

	return model.Customer{
		CustomerID: uuid.NewString(),
		FullName:   family + " " + given,
		BirthDate:  birth,
		IDNumber:   string(digits),
		Contact:    fmt.Sprintf("+8409%08d", seq),
	}
}

func (g *Generator) account(customerID string) model.Account {
	accType := model.AccountTypeSavings
	if g.rand.Intn(2) == 1 {
		accType = model.AccountTypeChecking
	}
	return model.Account{
		AccountID:  uuid.NewString(),
		CustomerID: customerID,
		Type:       accType,
		Balance:    decimal.NewFromInt(int64(g.rand.Intn(100_000_000))),
		Status:     model.AccountStatusActive,
	}
}

func (g *Generator) device(customerID string) model.Device {
	deviceType := "desktop"
	if g.rand.Intn(2) == 1 {
		deviceType = "mobile"
	}
	return model.Device{
		DeviceID:   uuid.NewString(),
		CustomerID: customerID,
		DeviceType: deviceType,
		IPAddress: fmt.Sprintf("%d.%d.%d.%d",
			g.rand.Intn(223)+1, g.rand.Intn(256), g.rand.Intn(256), g.rand.Intn(256)),
	}
}

func (g *Generator) transaction(pairs []store.AccountDevicePair, accountIDs []string) model.Transaction {
	src := pairs[g.rand.Intn(len(pairs))]
	amount := decimal.NewFromInt(int64(g.rand.Intn(15_000_000-10_000) + 10_000))

	tx := model.Transaction{
		TxID:      uuid.NewString(),
		AccountID: src.AccountID,
		Amount:    amount,
		Method:    []string{"online", "card", "cash"}[g.rand.Intn(3)],
		Status:    model.StatusPending,
		CreatedAt: g.now(),
	}

	// 20% deposit, 30% withdrawal, 50% transfer.
	switch roll := g.rand.Intn(10); {
	case roll < 2:
		// deposit: positive amount as-is
	case roll < 5:
		tx.Amount = tx.Amount.Neg()
	default:
		target := src.AccountID
		for target == src.AccountID {
			target = accountIDs[g.rand.Intn(len(accountIDs))]
		}
		tx.TargetID = target
		// The owner's device 80% of the time; an unknown device otherwise.
		if g.rand.Intn(10) < 8 {
			tx.DeviceID = src.DeviceID
		} else {
			tx.DeviceID = uuid.NewString()
		}
	}
	return tx
}
