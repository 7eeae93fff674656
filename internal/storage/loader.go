// This file implements the batched loader that moves normalized tables into
// a Repository. On every successful flush a concise progress line is emitted
// with running totals and instantaneous rows/sec since the previous flush.
package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"erpingest/pkg/records"
)

// DefaultBatchSize is used when LoadTable is called with batchSize <= 0.
const DefaultBatchSize = 5000

// Rows flattens a record table into positional rows aligned to columns.
// Missing keys become nil.
func Rows(t records.Table, columns []string) [][]any {
	out := make([][]any, len(t))
	for i, rec := range t {
		row := make([]any, len(columns))
		for j, c := range columns {
			row[j] = rec[c]
		}
		out[i] = row
	}
	return out
}

// LoadTable writes a table into repo in batches. With ModeReplace only the
// first batch replaces; subsequent batches append, so a multi-batch run
// still produces one consistent table. Returns total rows reported inserted
// and the first error.
func LoadTable(ctx context.Context, repo Repository, t records.Table, columns []string, batchSize int, mode WriteMode) (int64, error) {
	if repo == nil {
		return 0, fmt.Errorf("storage: repository must not be nil")
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	rows := Rows(t, columns)
	var (
		total     int64
		batches   int64
		start     = time.Now()
		lastFlush = start
	)
	for offset := 0; offset < len(rows); offset += batchSize {
		end := offset + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		n, err := repo.Load(ctx, columns, rows[offset:end], mode)
		total += n
		if err != nil {
			log.Printf("loader: batch failed inserted=%d total=%d err=%v", n, total, err)
			return total, err
		}
		mode = ModeAppend

		batches++
		now := time.Now()
		sinceLast := now.Sub(lastFlush)
		rps := float64(0)
		if sinceLast > 0 {
			rps = float64(n) / sinceLast.Seconds()
		}
		log.Printf("batch #%d: rps=%.0f inserted=%d total_inserted=%d elapsed=%s",
			batches, rps, n, total, now.Sub(start).Truncate(time.Millisecond))
		lastFlush = now

		if err := ctx.Err(); err != nil {
			return total, err
		}
	}
	return total, nil
}
