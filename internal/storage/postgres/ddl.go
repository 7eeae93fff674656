package postgres

import (
	"context"
	"fmt"
	"strings"

	"erpingest/internal/storage"
)

// EnsureTable implements storage.TableCreator.
func (r *Repository) EnsureTable(ctx context.Context, columns []storage.Column) error {
	if _, err := r.pool.Exec(ctx, createTableSQL(r.table, columns)); err != nil {
		return fmt.Errorf("postgres: create table %s: %w", r.table, err)
	}
	return nil
}

// createTableSQL renders CREATE TABLE IF NOT EXISTS for the target table.
// Numeric columns become DOUBLE PRECISION, everything else TEXT.
func createTableSQL(table string, columns []storage.Column) string {
	defs := make([]string, len(columns))
	for i, c := range columns {
		typ := "TEXT"
		if c.Kind == storage.KindNumber {
			typ = "DOUBLE PRECISION"
		}
		defs[i] = pgIdent(c.Name) + " " + typ
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", pgFQN(table), strings.Join(defs, ", "))
}
