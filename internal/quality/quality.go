// Package quality performs schema-level data checks on the ledger store:
// nulls, uniqueness, id-number format, and foreign-key integrity.
package quality

import (
	"context"
	"fmt"
	"regexp"

	"github.com/tellerd-dev/tellerd/internal/store"
)

// Finding describes a single rule violation.
type Finding struct {
	Rule    string
	Table   string
	Column  string
	Details string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s %s.%s: %s", f.Rule, f.Table, f.Column, f.Details)
}

var idNumberPattern = regexp.MustCompile(`^\d{12}$`)

type notNullRule struct{ table, column string }

type uniqueRule struct{ table, column string }

type fkRule struct{ child, childCol, parent, parentCol string }

var notNullRules = []notNullRule{
	{"customer", "customer_id"},
	{"customer", "id_number"},
	{"account", "account_id"},
	{"bank_transaction", "tx_id"},
	{"auth_log", "auth_id"},
}

var uniqueRules = []uniqueRule{
	{"customer", "customer_id"},
	{"customer", "contact"},
	{"account", "account_id"},
	{"bank_transaction", "tx_id"},
}

var fkRules = []fkRule{
	{"account", "customer_id", "customer", "customer_id"},
	{"bank_transaction", "account_id", "account", "account_id"},
	{"auth_log", "tx_id", "bank_transaction", "tx_id"},
	{"device", "customer_id", "customer", "customer_id"},
	{"risk_tag", "tx_id", "bank_transaction", "tx_id"},
}

// Checker runs the fixed rule set against a store.
type Checker struct {
	store *store.Store
}

// NewChecker creates a Checker.
func NewChecker(st *store.Store) *Checker {
	return &Checker{store: st}
}

// Run executes every rule and returns the violations found. An empty slice
// means the schema-level constraints all hold.
func (c *Checker) Run(ctx context.Context) ([]Finding, error) {
	var findings []Finding

	for _, r := range notNullRules {
		n, err := c.store.NullCount(ctx, r.table, r.column)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			findings = append(findings, Finding{
				Rule:    "not-null",
				Table:   r.table,
				Column:  r.column,
				Details: fmt.Sprintf("%d NULL value(s)", n),
			})
		}
	}

	for _, r := range uniqueRules {
		dups, err := c.store.DuplicateValues(ctx, r.table, r.column)
		if err != nil {
			return nil, err
		}
		if len(dups) > 0 {
			findings = append(findings, Finding{
				Rule:    "unique",
				Table:   r.table,
				Column:  r.column,
				Details: fmt.Sprintf("%d duplicated value(s), e.g. %q", len(dups), dups[0]),
			})
		}
	}

	idNumbers, err := c.store.CustomerIDNumbers(ctx)
	if err != nil {
		return nil, err
	}
	bad := 0
	for _, num := range idNumbers {
		if !idNumberPattern.MatchString(num) {
			bad++
		}
	}
	if bad > 0 {
		findings = append(findings, Finding{
			Rule:    "format",
			Table:   "customer",
			Column:  "id_number",
			Details: fmt.Sprintf("%d id number(s) not matching 12 digits", bad),
		})
	}

	for _, r := range fkRules {
		n, err := c.store.OrphanCount(ctx, r.child, r.childCol, r.parent, r.parentCol)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			findings = append(findings, Finding{
				Rule:    "foreign-key",
				Table:   r.child,
				Column:  r.childCol,
				Details: fmt.Sprintf("%d orphan row(s) without parent in %s.%s", n, r.parent, r.parentCol),
			})
		}
	}

	return findings, nil
}
