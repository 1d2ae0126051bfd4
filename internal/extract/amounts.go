package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Invoices print many money-like numbers: quantities, unit prices, line
// totals, tax percentages, tax amounts. The resolver relies on two
// observations that hold for AFIP invoices: the true gross total is the
// largest printed amount, and the true net/subtotal is the next largest once
// egregious outliers are removed. Best effort, not a guarantee.

var (
	// Latin locale: 1.234,56 - thousands ".", decimals ",".
	latinAmountRe = regexp.MustCompile(`\b(?:\d{1,3}(?:\.\d{3})+|\d+),\d{2}\b`)
	// US locale: 1,234.56 - thousands ",", decimals ".".
	usAmountRe = regexp.MustCompile(`\b(?:\d{1,3}(?:,\d{3})+|\d+)\.\d{2}\b`)
)

var (
	dedupEpsilon = decimal.NewFromInt(1)
	outlierLower = decimal.NewFromFloat(0.05)
	outlierUpper = decimal.NewFromInt(20)
	two          = decimal.NewFromInt(2)
)

// minCandidatesForFilter is the smallest candidate set worth median-filtering.
const minCandidatesForFilter = 4

// AmountDebug records how the resolver ranked and filtered candidates.
// Diagnostic only; it is logged in verbose runs and then discarded.
type AmountDebug struct {
	Candidates []decimal.Decimal `json:"candidates"`
	Median     *decimal.Decimal  `json:"median,omitempty"`
	Filtered   []decimal.Decimal `json:"filtered,omitempty"`
}

// AmountResult carries the disambiguated amounts plus the debug trail.
type AmountResult struct {
	Gross *decimal.Decimal
	Net   *decimal.Decimal
	Debug AmountDebug
}

// ResolveAmounts scans raw text for money-shaped tokens in both Latin and US
// locale formats and picks the gross and net amounts.
//
// Candidates are merged, sorted descending and deduplicated (two tokens less
// than one unit apart are the same amount printed twice with rounding noise).
// With four or more distinct candidates, anything outside
// [median*0.05, median*20] of the top-5 median is discarded: stray small
// numbers are quantities or percentages, stray large ones are account codes
// misread as amounts. Gross is the largest survivor, net the second largest
// (or gross itself when only one survives).
func ResolveAmounts(rawText string) AmountResult {
	var found []decimal.Decimal
	for _, m := range latinAmountRe.FindAllString(rawText, -1) {
		norm := strings.ReplaceAll(m, ".", "")
		norm = strings.ReplaceAll(norm, ",", ".")
		if d, err := decimal.NewFromString(norm); err == nil {
			found = append(found, d)
		}
	}
	for _, m := range usAmountRe.FindAllString(rawText, -1) {
		norm := strings.ReplaceAll(m, ",", "")
		if d, err := decimal.NewFromString(norm); err == nil {
			found = append(found, d)
		}
	}

	unique := dedupDescending(found)

	var result AmountResult
	result.Debug.Candidates = topN(unique, 5)

	if len(unique) == 0 {
		return result
	}

	if len(unique) >= minCandidatesForFilter {
		median := medianOf(topN(unique, 5))
		lower := median.Mul(outlierLower)
		upper := median.Mul(outlierUpper)

		var filtered []decimal.Decimal
		for _, a := range unique {
			if a.GreaterThanOrEqual(lower) && a.LessThanOrEqual(upper) {
				filtered = append(filtered, a)
			}
		}
		result.Debug.Median = &median
		result.Debug.Filtered = filtered
		if len(filtered) > 0 {
			unique = filtered
		}
	}

	gross := unique[0]
	net := unique[0]
	if len(unique) > 1 {
		net = unique[1]
	}
	result.Gross = &gross
	result.Net = &net
	return result
}

// dedupDescending sorts candidates largest first and collapses values closer
// than one unit to each other.
func dedupDescending(in []decimal.Decimal) []decimal.Decimal {
	if len(in) == 0 {
		return nil
	}
	sorted := make([]decimal.Decimal, len(in))
	copy(sorted, in)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].GreaterThan(sorted[j])
	})
	out := sorted[:1]
	for _, a := range sorted[1:] {
		if out[len(out)-1].Sub(a).LessThan(dedupEpsilon) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func topN(in []decimal.Decimal, n int) []decimal.Decimal {
	if len(in) <= n {
		return in
	}
	return in[:n]
}

// medianOf expects a non-empty sorted slice.
func medianOf(sorted []decimal.Decimal) decimal.Decimal {
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return sorted[mid-1].Add(sorted[mid]).Div(two)
}
