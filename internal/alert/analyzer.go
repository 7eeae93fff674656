// Package alert inspects loaded sales data for conditions that need a human
// look: selling below cost, transaction totals that disagree with quantity
// times price, and unusually large transactions. Findings are advisory; the
// rows stay in the warehouse.
package alert

import (
	"context"
	"fmt"
	"log"
	"sort"

	"erpingest/internal/storage"
	"erpingest/pkg/records"
)

// Severity levels, ordered for digest sorting.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
)

// Alert is one finding on one loaded transaction.
type Alert struct {
	Severity      string
	Rule          string
	TransactionID string
	Message       string
}

// Analyzer runs the post-load checks against a warehouse repository.
type Analyzer struct {
	Repo  storage.Repository
	Table string

	// LargeAmount is the total_amount above which a transaction is flagged
	// as unusually large. Zero disables the check.
	LargeAmount float64
}

// checkQuery is one post-load inspection: a query plus a row-to-alert
// translation.
type checkQuery struct {
	rule     string
	severity string
	sql      string
	message  func(records.Record) string
}

// Critical runs every check and returns the findings sorted critical-first.
// A failing check is logged and skipped; one broken query does not hide the
// other findings.
func (a Analyzer) Critical(ctx context.Context) []Alert {
	checks := []checkQuery{
		{
			rule:     "below_cost_sale",
			severity: SeverityCritical,
			sql: fmt.Sprintf(
				`SELECT transaction_id, product_name, unit_price, cost_price
				 FROM %s WHERE cost_price > unit_price`, a.Table),
			message: func(r records.Record) string {
				return fmt.Sprintf("product %s sold at %v against cost %v",
					records.String(r["product_name"]), r["unit_price"], r["cost_price"])
			},
		},
		{
			rule:     "total_mismatch",
			severity: SeverityWarning,
			sql: fmt.Sprintf(
				`SELECT transaction_id, quantity, unit_price, total_amount
				 FROM %s
				 WHERE total_amount > quantity * unit_price * 1.25
				    OR total_amount < quantity * unit_price * 0.75`, a.Table),
			message: func(r records.Record) string {
				return fmt.Sprintf("total %v disagrees with quantity %v x unit price %v",
					r["total_amount"], r["quantity"], r["unit_price"])
			},
		},
	}
	if a.LargeAmount > 0 {
		checks = append(checks, checkQuery{
			rule:     "large_transaction",
			severity: SeverityWarning,
			sql: fmt.Sprintf(
				`SELECT transaction_id, customer_name, total_amount
				 FROM %s WHERE total_amount > %f`, a.Table, a.LargeAmount),
			message: func(r records.Record) string {
				return fmt.Sprintf("customer %s spent %v in a single transaction",
					records.String(r["customer_name"]), r["total_amount"])
			},
		})
	}

	var alerts []Alert
	for _, c := range checks {
		rows, err := a.Repo.Query(ctx, c.sql)
		if err != nil {
			log.Printf("alert: check=%s failed: %v", c.rule, err)
			continue
		}
		for _, r := range rows {
			alerts = append(alerts, Alert{
				Severity:      c.severity,
				Rule:          c.rule,
				TransactionID: records.String(r["transaction_id"]),
				Message:       c.message(r),
			})
		}
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return rank(alerts[i].Severity) < rank(alerts[j].Severity)
	})
	return alerts
}

func rank(severity string) int {
	if severity == SeverityCritical {
		return 0
	}
	return 1
}
