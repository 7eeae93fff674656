// Package csv reads ERP export files into tables of records. It streams
// through encoding/csv without buffering the whole file, soft-skips
// malformed rows, and reports headers exactly as the export wrote them so
// the column matcher can work against the raw names.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"

	"erpingest/pkg/records"
)

// utf8BOM is stripped from the first header cell if present. Exports saved
// from spreadsheet tools routinely carry one.
const utf8BOM = "\uFEFF"

// Options configures parsing. All fields are optional; zero values give a
// comma-delimited file with a header row.
type Options struct {
	// NoHeader indicates the first row is data, not column headers. Columns
	// are then named col_0, col_1, ...
	NoHeader bool

	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing spaces from each field value.
	TrimSpace bool
}

// Parser parses CSV input according to Options. A Parser may be reused
// across inputs but is not concurrency-safe.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// Parse consumes r and returns the headers, the parsed rows, and the number
// of rows skipped for parse errors or width mismatches. Headers are trimmed
// and BOM-stripped but otherwise untouched. Empty cells become nil.
func (p *Parser) Parse(r io.Reader) ([]string, records.Table, int, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	var headers []string
	if !p.opt.NoHeader {
		h, err := cr.Read()
		if err != nil {
			return nil, nil, 0, fmt.Errorf("read csv header: %w", err)
		}
		headers = cleanHeaders(h)
	}

	var rows records.Table
	skipped := 0
	const logLimit = 400
	for line := 1; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if skipped < logLimit {
				log.Printf("skipping row %d: %v", line, err)
			}
			skipped++
			continue
		}

		if headers == nil {
			headers = synthHeaders(len(row))
		}
		if len(row) != len(headers) {
			if skipped < logLimit {
				log.Printf("skipping row %d: incorrect number of fields (expected %d, got %d)",
					line, len(headers), len(row))
			}
			skipped++
			continue
		}

		rec := make(records.Record, len(row))
		for i, val := range row {
			if p.opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			rec[headers[i]] = emptyToNil(val)
		}
		rows = append(rows, rec)
	}

	return headers, rows, skipped, nil
}

// cleanHeaders trims each header cell and strips a UTF-8 BOM from the first
// one. Names are otherwise preserved verbatim.
func cleanHeaders(h []string) []string {
	out := make([]string, len(h))
	for i, col := range h {
		c := col
		if i == 0 {
			c = strings.TrimPrefix(c, utf8BOM)
		}
		out[i] = strings.TrimSpace(c)
	}
	return out
}

// synthHeaders names columns col_0..col_N-1 for headerless input.
func synthHeaders(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("col_%d", i)
	}
	return out
}

// emptyToNil converts an empty string to nil; other values pass through.
func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}
