package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tellerd-dev/tellerd/internal/model"
)

// SimpleParser reads the plain interchange format:
//
//	tx_id,account_id,device_id,target_id,amount,method
//
// tx_id may be empty (one is assigned); device_id and target_id are empty
// for non-transfers. All rows import as pending.
type SimpleParser struct{}

const simpleFields = 6

// Format returns the parser name.
func (p *SimpleParser) Format() string {
	return "simple"
}

// Parse converts rows to pending transactions.
func (p *SimpleParser) Parse(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = simpleFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading import CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row if present.
	start := 0
	if strings.EqualFold(records[0][0], "tx_id") {
		start = 1
	}

	var txs []model.Transaction
	for i, rec := range records[start:] {
		tx, err := parseSimpleRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", start+i+1, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func parseSimpleRow(rec []string) (model.Transaction, error) {
	txID := strings.TrimSpace(rec[0])
	if txID == "" {
		txID = uuid.NewString()
	}

	accountID := strings.TrimSpace(rec[1])
	if accountID == "" {
		return model.Transaction{}, fmt.Errorf("missing account_id")
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(rec[4]))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", rec[4], err)
	}

	method := strings.TrimSpace(rec[5])
	if method == "" {
		method = "online"
	}

	return model.Transaction{
		TxID:      txID,
		AccountID: accountID,
		DeviceID:  strings.TrimSpace(rec[2]),
		TargetID:  strings.TrimSpace(rec[3]),
		Amount:    amount,
		Method:    method,
		Status:    model.StatusPending,
	}, nil
}
