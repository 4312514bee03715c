package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies accounts.
type AccountType string

const (
	AccountTypeSavings  AccountType = "savings"
	AccountTypeChecking AccountType = "checking"
)

// AccountStatus is the lifecycle state of an account.
type AccountStatus string

const (
	AccountStatusActive AccountStatus = "active"
	AccountStatusClosed AccountStatus = "closed"
)

// Account is a customer-owned balance holder. Balance is never negative at
// any committed state; only the resolver's conditional delta may change it.
type Account struct {
	AccountID  string
	CustomerID string
	Type       AccountType
	Balance    decimal.Decimal
	Status     AccountStatus
}

// Customer owns accounts and devices.
type Customer struct {
	CustomerID string
	FullName   string
	BirthDate  time.Time
	IDNumber   string // 12-digit national id
	Contact    string
}

// Device is a customer-registered device. Read-only to the resolution
// engine; a transfer is trusted only if its device belongs to the customer
// owning the source account.
type Device struct {
	DeviceID   string
	CustomerID string
	DeviceType string // desktop, mobile
	IPAddress  string
}
