package store

import (
	"context"
	"fmt"
)

// Schema-level query helpers for the data-quality checker. Table and column
// names come from the checker's fixed rule list, never from user input.

// NullCount returns the number of NULL values in table.column.
func (s *Store) NullCount(ctx context.Context, table, column string) (int, error) {
	var n int
	q := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s IS NULL`, table, column)
	if err := s.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting nulls in %s.%s: %w", table, column, err)
	}
	return n, nil
}

// DuplicateValues returns values appearing more than once in table.column.
func (s *Store) DuplicateValues(ctx context.Context, table, column string) ([]string, error) {
	q := fmt.Sprintf(`
		SELECT %s FROM %s
		GROUP BY %s
		HAVING COUNT(*) > 1`, column, table, column)
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("finding duplicates in %s.%s: %w", table, column, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning duplicate value: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// OrphanCount returns rows in child whose childCol has no match in
// parent.parentCol.
func (s *Store) OrphanCount(ctx context.Context, child, childCol, parent, parentCol string) (int, error) {
	var n int
	q := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s c
		LEFT JOIN %s p ON c.%s = p.%s
		WHERE c.%s IS NOT NULL AND p.%s IS NULL`,
		child, parent, childCol, parentCol, childCol, parentCol)
	if err := s.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting orphans in %s.%s: %w", child, childCol, err)
	}
	return n, nil
}

// CustomerIDNumbers returns (customer_id, id_number) pairs for format checks.
func (s *Store) CustomerIDNumbers(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT customer_id, id_number FROM customer`)
	if err != nil {
		return nil, fmt.Errorf("reading customer id numbers: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var id, num string
		if err := rows.Scan(&id, &num); err != nil {
			return nil, fmt.Errorf("scanning id number: %w", err)
		}
		out[id] = num
	}
	return out, rows.Err()
}
