// Package match resolves canonical fields to the actual column headers of an
// input table. Exact header equality wins outright; otherwise a token-sort
// similarity score decides, so that reordered words, typos, and naming drift
// in export headers still bind ("Bill Date " vs "date_bill").
//
// The similarity metric is go-fuzzywuzzy's TokenSortRatio (0-100), the Go
// port of the token_sort_ratio scorer: tokenize on non-alphanumeric
// boundaries, sort tokens, compare the normalized sequences. Headers are
// additionally folded to remove diacritics before scoring, since ERP exports
// localized in one market are routinely re-imported in another.
package match

import (
	"unicode"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultThreshold is the minimum token-sort score at which a fuzzy
// candidate is accepted. Below it the canonical field stays unmatched.
const DefaultThreshold = 70

// FuzzyMatch records one binding accepted via similarity rather than exact
// equality. Every fuzzy match is surfaced for auditability.
type FuzzyMatch struct {
	SourceColumn string
	Field        string
	Score        int
}

// Result is the outcome of matching one table against one profile.
type Result struct {
	// Columns maps actual source column -> canonical field. The mapping is
	// injective: each source column is consumed by at most one field.
	Columns map[string]string
	// Unmatched lists canonical fields for which no header scored at or
	// above the threshold. Unmatched fields do not abort the pipeline.
	Unmatched []string
	// Fuzzy lists the bindings accepted with a similarity score below 100.
	// A header that equals the expected name after token normalization
	// (e.g. "Bill No" for "bill_no") scores 100 and binds silently.
	Fuzzy []FuzzyMatch
}

// Matcher binds canonical fields to table headers for one profile.
type Matcher struct {
	// Threshold overrides DefaultThreshold when > 0.
	Threshold int
}

func (m Matcher) threshold() int {
	if m.Threshold > 0 {
		return m.Threshold
	}
	return DefaultThreshold
}

// Match resolves each canonical field (visited in the order given by fields)
// to a table header. The expected mapping gives the source column the
// profile declares for each field; fields absent from the mapping are
// skipped. Once a header is bound it leaves the candidate pool, so two
// fields can never share a column.
func (m Matcher) Match(headers []string, fields []string, expected map[string]string) Result {
	res := Result{Columns: make(map[string]string, len(expected))}

	used := make(map[string]struct{}, len(headers))
	threshold := m.threshold()

	for _, field := range fields {
		want, ok := expected[field]
		if !ok {
			continue
		}

		// Exact match first: a verbatim header never goes through scoring.
		if bindExact(headers, used, want) {
			res.Columns[want] = field
			continue
		}

		bestHeader, bestScore := "", -1
		foldedWant := fold(want)
		for _, h := range headers {
			if _, taken := used[h]; taken {
				continue
			}
			// Opts are (forceASCII, fullProcess); fullProcess lowercases and
			// tokenizes on non-alphanumeric boundaries as the package doc
			// requires. ASCII folding is not forced: fold already handles
			// diacritics without dropping non-ASCII letters.
			score := fuzzy.TokenSortRatio(foldedWant, fold(h), false, true)
			if score > bestScore {
				bestHeader, bestScore = h, score
			}
		}

		if bestScore < threshold {
			res.Unmatched = append(res.Unmatched, field)
			continue
		}
		used[bestHeader] = struct{}{}
		res.Columns[bestHeader] = field
		if bestScore < 100 {
			res.Fuzzy = append(res.Fuzzy, FuzzyMatch{SourceColumn: bestHeader, Field: field, Score: bestScore})
		}
	}

	return res
}

// bindExact consumes want from the candidate pool when it appears verbatim
// among the unused headers.
func bindExact(headers []string, used map[string]struct{}, want string) bool {
	for _, h := range headers {
		if h != want {
			continue
		}
		if _, taken := used[h]; taken {
			return false
		}
		used[h] = struct{}{}
		return true
	}
	return false
}

// fold strips combining marks (diacritics) so that scoring compares base
// characters. The transformer chain is per-call; transform chains are not
// safe for concurrent reuse.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
