// This file defines the optional table-bootstrap capability. Backends that
// can create the target table implement TableCreator; EnsureTable degrades
// to an error naming the backend when they cannot.
package storage

import (
	"context"
	"fmt"
)

// ColumnKind is the storage type class of a warehouse column. The engine
// only distinguishes text from numbers; backend packages map the kinds onto
// their native types.
type ColumnKind int

const (
	KindText ColumnKind = iota
	KindNumber
)

// Column describes one warehouse column for table bootstrap.
type Column struct {
	Name string
	Kind ColumnKind
}

// TableCreator is implemented by backends that can create the target table
// when it does not exist yet.
type TableCreator interface {
	EnsureTable(ctx context.Context, columns []Column) error
}

// EnsureTable creates the target table on backends that support bootstrap.
func EnsureTable(ctx context.Context, repo Repository, columns []Column) error {
	tc, ok := repo.(TableCreator)
	if !ok {
		return fmt.Errorf("storage: backend %T cannot create tables", repo)
	}
	return tc.EnsureTable(ctx, columns)
}
