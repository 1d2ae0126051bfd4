// Package extract implements the regex-driven field heuristics of the
// invoice pipeline: the header field extractor and the amount resolver.
//
// Every extraction is independently best-effort. A heuristic that finds
// nothing returns nil for its field and never blocks the others.
package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lcastro-fr/arg-invoice-parser/internal/logger"
)

// headerLineCount is how many non-blank lines make up the header slice.
// Argentine invoices print the fixed-format fields (reference, letter,
// document type code, issuer CUIT) in this region.
const headerLineCount = 10

var (
	referenceRe = regexp.MustCompile(`\b\d{4,5}\s?-\s?\d{8}\b`)
	// Day, month and year with a separator that must repeat. RE2 has no
	// backreferences, so both separators are captured and compared later.
	dateRe   = regexp.MustCompile(`\b(\d{1,2})([/.-])(\d{1,2})([/.-])(\d{2,4})\b`)
	cuitRe   = regexp.MustCompile(`\b(?:` + strings.Join(cuitPrefixes, "|") + `)-?\d{8}-?\d\b`)
	letterRe = regexp.MustCompile(`\b[` + documentLetters + `]\b`)
	// Purchase order numbering as observed in the wild: 46 or 52 followed
	// by an 8 digit sequence.
	purchaseOrderRe = regexp.MustCompile(`\b(?:46|52)\d{8}\b`)
	digitRunRe      = regexp.MustCompile(`\d+`)
)

// HeaderExtractor pulls the fixed-format fields out of raw invoice text.
//
// ownCUIT, when set, excludes the caller's own registration number from
// tax ID candidates: the recipient's CUIT prints on the invoice too and must
// not be mistaken for the issuer's.
type HeaderExtractor struct {
	ownCUIT string
	now     func() time.Time
	log     zerolog.Logger
}

// NewHeaderExtractor returns an extractor. ownCUIT may be empty.
func NewHeaderExtractor(ownCUIT string) *HeaderExtractor {
	return &HeaderExtractor{
		ownCUIT: strings.ReplaceAll(ownCUIT, "-", ""),
		now:     time.Now,
		log:     logger.WithComponent("header-extract"),
	}
}

// headerLines returns the first headerLineCount non-blank trimmed lines.
func headerLines(rawText string) []string {
	var lines []string
	for _, line := range strings.Split(rawText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == headerLineCount {
			break
		}
	}
	return lines
}

func headerSlice(rawText string) string {
	return strings.Join(headerLines(rawText), " ")
}

// Reference extracts the invoice reference (point of sale + sequence) from
// the header slice. When the joined PPPP-NNNNNNNN form is absent it falls
// back to a standalone 4-5 digit token and a standalone 8 digit token, the
// layout used by invoices that label the two components separately
// ("Punto de Venta: 00001  Comp. Nro: 00000301").
func (h *HeaderExtractor) Reference(rawText string) *string {
	header := headerSlice(rawText)
	if m := referenceRe.FindString(header); m != "" {
		ref := strings.ReplaceAll(m, " ", "")
		return &ref
	}

	var pos, seq string
	for _, run := range isolatedDigitRuns(header) {
		switch {
		case pos == "" && (len(run) == 4 || len(run) == 5):
			pos = run
		case seq == "" && len(run) == 8:
			seq = run
		}
		if pos != "" && seq != "" {
			ref := pos + "-" + seq
			h.log.Debug().Str("reference", ref).Msg("Reference recovered from split tokens")
			return &ref
		}
	}
	return nil
}

// IssueDate extracts the issue date as an ISO 8601 string. The issue date is
// conventionally the first date printed, so candidates are tried in document
// order; a candidate with an invalid calendar date or a year outside
// [now-10, now+1] falls through to the next one.
func (h *HeaderExtractor) IssueDate(rawText string) *string {
	for _, m := range dateRe.FindAllStringSubmatch(rawText, -1) {
		if m[2] != m[4] {
			continue
		}
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[3])
		year, _ := strconv.Atoi(m[5])
		if len(m[5]) == 2 {
			year += 2000
		}

		nowYear := h.now().Year()
		if year < nowYear-10 || year > nowYear+1 {
			continue
		}
		if month < 1 || month > 12 {
			continue
		}
		// Round-trip through time.Date to reject impossible days
		// (e.g. 31-02) that the regex cannot catch.
		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if t.Day() != day || t.Month() != time.Month(month) || t.Year() != year {
			continue
		}
		iso := t.Format("2006-01-02")
		return &iso
	}
	return nil
}

// TaxID extracts the issuer's CUIT from the header lines, searched in order.
// Matches equal to the caller's own CUIT are skipped.
func (h *HeaderExtractor) TaxID(rawText string) *string {
	for _, line := range headerLines(rawText) {
		for _, m := range cuitRe.FindAllString(line, -1) {
			cuit := strings.ReplaceAll(m, "-", "")
			if cuit == h.ownCUIT {
				h.log.Debug().Str("cuit", cuit).Msg("Skipping own CUIT")
				continue
			}
			return &cuit
		}
	}
	return nil
}

// DocTypeCode extracts the AFIP document type code: the first isolated 1-3
// digit token in the header slice that appears in the published code table.
// Tokens adjacent to a digit, separator or decimal point are fragments of
// dates, references or amounts, not codes.
func (h *HeaderExtractor) DocTypeCode(rawText string) *int {
	for _, run := range isolatedDigitRuns(headerSlice(rawText)) {
		if len(run) > 3 {
			continue
		}
		code, err := strconv.Atoi(run)
		if err != nil {
			continue
		}
		if IsValidDocTypeCode(code) {
			return &code
		}
	}
	return nil
}

// Letter extracts the document letter: the first isolated A/B/C/E/M token in
// the header slice.
func (h *HeaderExtractor) Letter(rawText string) *string {
	header := headerSlice(rawText)
	if m := letterRe.FindString(header); m != "" {
		return &m
	}
	return nil
}

// PurchaseOrder extracts a purchase order number from anywhere in the text.
func (h *HeaderExtractor) PurchaseOrder(rawText string) *string {
	if m := purchaseOrderRe.FindString(rawText); m != "" {
		return &m
	}
	return nil
}

// isolatedDigitRuns returns, in order of appearance, every run of digits
// whose neighbours are neither digits nor the separator characters '.', ',',
// '-' and '/'. Runs failing the check are fragments of larger tokens such as
// dates, references and amounts.
func isolatedDigitRuns(s string) []string {
	var runs []string
	for _, loc := range digitRunRe.FindAllStringIndex(s, -1) {
		if loc[0] > 0 && isAmountAdjacent(s[loc[0]-1]) {
			continue
		}
		if loc[1] < len(s) && isAmountAdjacent(s[loc[1]]) {
			continue
		}
		runs = append(runs, s[loc[0]:loc[1]])
	}
	return runs
}

func isAmountAdjacent(c byte) bool {
	return (c >= '0' && c <= '9') || c == '.' || c == ',' || c == '-' || c == '/'
}
