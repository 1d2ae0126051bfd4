package models

import "github.com/shopspring/decimal"

// maxTaxLoad bounds the plausible spread between net and gross (VAT plus
// surcharges). A record where net * 1.32 < gross has almost certainly
// misidentified one of the two amounts.
var maxTaxLoad = decimal.NewFromFloat(1.32)

// Validate is the cross-field consistency predicate behind the Trusted flag.
//
// A record is trusted iff every one of the seven required fields (reference,
// issue date, tax ID, gross amount, net amount, document type code, document
// letter) is set, net <= gross, and net * 1.32 >= gross. Validation never
// fails hard: an inconsistent record is still returned to the caller, only
// flagged untrusted.
func Validate(r *InvoiceRecord) bool {
	if r == nil {
		return false
	}
	if r.Reference == nil || r.IssueDate == nil || r.TaxID == nil ||
		r.GrossAmount == nil || r.NetAmount == nil ||
		r.DocTypeCode == nil || r.Letter == nil {
		return false
	}
	if r.NetAmount.GreaterThan(*r.GrossAmount) {
		return false
	}
	if r.NetAmount.Mul(maxTaxLoad).LessThan(*r.GrossAmount) {
		return false
	}
	return true
}
