// Package delivery renders run results for humans: a plain-text digest of
// the run report and any post-load alerts, suitable for a terminal, a log
// aggregator, or an email body.
package delivery

import (
	"fmt"
	"strings"

	"erpingest/internal/alert"
	"erpingest/internal/quality"
)

// MaxDigestAlerts caps how many alerts a digest lists; the rest are
// summarized as a count.
const MaxDigestAlerts = 10

// Digest renders one run's report as plain text.
func Digest(rep quality.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Ingestion run %s\n", rep.RunID)
	if rep.SourceFile != "" {
		fmt.Fprintf(&b, "Source:  %s\n", rep.SourceFile)
	}
	if rep.Profile != "" {
		fmt.Fprintf(&b, "Profile: %s\n", rep.Profile)
	}
	fmt.Fprintf(&b, "Rows:    %d in, %d out, %d removed (%.1f%% kept)\n",
		rep.OriginalRows, rep.FinalRows, rep.RowsRemoved, rep.Ratio()*100)

	if len(rep.Issues) > 0 {
		b.WriteString("\nQuality findings:\n")
		for _, is := range rep.Issues {
			fmt.Fprintf(&b, "  %-28s %6d  %s\n", is.Rule, is.Count, is.Message)
		}
	}
	return b.String()
}

// Alerts renders the post-load findings. The list is assumed to be sorted
// most severe first; only the first MaxDigestAlerts are itemized.
func Alerts(alerts []alert.Alert) string {
	if len(alerts) == 0 {
		return "No alerts. All loaded transactions passed post-load checks.\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Alerts (%d):\n", len(alerts))
	shown := alerts
	if len(shown) > MaxDigestAlerts {
		shown = shown[:MaxDigestAlerts]
	}
	for _, a := range shown {
		fmt.Fprintf(&b, "  [%s] %s txn=%s: %s\n", strings.ToUpper(a.Severity), a.Rule, a.TransactionID, a.Message)
	}
	if extra := len(alerts) - len(shown); extra > 0 {
		fmt.Fprintf(&b, "  ... and %d more\n", extra)
	}
	return b.String()
}
