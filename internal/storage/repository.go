// Package storage contains the storage-agnostic warehouse contract and the
// backend factory. Concrete backends (Postgres, SQLite) register themselves
// in init; callers open repositories by kind name and stay backend-agnostic.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"erpingest/pkg/records"
)

// WriteMode selects what happens to existing rows in the target table.
type WriteMode string

const (
	// ModeReplace clears the target table before the first batch of a run.
	ModeReplace WriteMode = "replace"
	// ModeAppend leaves existing rows in place.
	ModeAppend WriteMode = "append"
)

// Valid reports whether m is a known write mode.
func (m WriteMode) Valid() bool { return m == ModeReplace || m == ModeAppend }

// Config selects and configures a backend.
type Config struct {
	// Kind names a registered backend, e.g. "postgres" or "sqlite".
	Kind string
	// DSN is the backend connection string, passed through verbatim.
	DSN string
	// Table is the target table name. Postgres accepts "schema.table".
	Table string
}

// Repository is the warehouse contract the pipeline writes to and the alert
// analyzer reads from.
type Repository interface {
	// Load bulk-inserts rows (aligned to columns order) into the configured
	// table. ModeReplace clears the table first; Load is called once per
	// batch, so callers downgrade to ModeAppend after the first batch.
	Load(ctx context.Context, columns []string, rows [][]any, mode WriteMode) (int64, error)

	// Query runs a read-only statement and returns the result set as
	// records keyed by column name.
	Query(ctx context.Context, query string, args ...any) ([]records.Record, error)

	Close() error
}

// Factory constructs a Repository for one backend kind.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs a backend factory under kind. Backends call it from
// init; a duplicate kind panics because it is a programming error.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := factories[kind]; dup {
		panic(fmt.Sprintf("storage: backend %q registered twice", kind))
	}
	factories[kind] = f
}

// New opens a repository for the configured kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unknown backend %q (registered: %v)", cfg.Kind, Kinds())
	}
	if cfg.Table == "" {
		return nil, fmt.Errorf("storage: table must not be empty")
	}
	return f(ctx, cfg)
}

// Kinds returns the registered backend names, sorted.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
