package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Queryer is satisfied by both *sql.DB and *sql.Tx.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TableExists reports whether a table named name exists.
func TableExists(ctx context.Context, q Queryer, name string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to look up table %s: %w", name, err)
	}
	return n > 0, nil
}

// Columns returns the column names of table in declaration order.
// The table must exist; use TableExists first.
func Columns(ctx context.Context, q Queryer, table string) ([]string, error) {
	rows, err := q.QueryContext(ctx, `SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

// ColumnHasDefault reports whether column of table declares a DEFAULT.
// A missing column reports false.
func ColumnHasDefault(ctx context.Context, q Queryer, table, column string) (bool, error) {
	var has bool
	err := q.QueryRowContext(ctx,
		`SELECT dflt_value IS NOT NULL FROM pragma_table_info(?) WHERE name = ?`, table, column).Scan(&has)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read default of %s.%s: %w", table, column, err)
	}
	return has, nil
}
