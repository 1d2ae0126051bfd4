// Package models defines the canonical invoice record produced by the
// extraction pipeline.
//
// An InvoiceRecord is built field by field from up to three sources (the AFIP
// QR payload, regex heuristics over the text layer, and an OCR second pass
// over the header band). Every field except Currency is nullable: a heuristic
// that finds nothing leaves its field nil rather than guessing.
package models

import (
	"github.com/shopspring/decimal"
)

// Currency is the invoice currency code. Only ARS and USD are supported;
// the AFIP QR payload encodes dollars as "DOL".
type Currency string

const (
	CurrencyARS Currency = "ARS"
	CurrencyUSD Currency = "USD"
)

// InvoiceRecord is the canonical output of the extraction pipeline.
//
// Reference, when set, always has the form PPPP(P)-NNNNNNNN: a 4-5 digit
// zero-padded point of sale, a dash, and an 8 digit zero-padded sequence
// number. TaxID is an 11-digit CUIT with separators stripped. IssueDate is an
// ISO 8601 date string.
type InvoiceRecord struct {
	Reference     *string          `json:"reference"`
	IssueDate     *string          `json:"issue_date"`
	TaxID         *string          `json:"tax_id"`
	GrossAmount   *decimal.Decimal `json:"gross_amount"`
	NetAmount     *decimal.Decimal `json:"net_amount"`
	Currency      Currency         `json:"currency"`
	DocTypeCode   *int             `json:"document_type_code"`
	Letter        *string          `json:"document_letter"`
	PurchaseOrder *string          `json:"purchase_order"`

	// QRDecoded is true iff the record originated from a successfully
	// decoded AFIP QR payload.
	QRDecoded bool `json:"qr_decoded"`

	// Trusted is derived via Validate after every mutation batch.
	Trusted bool `json:"trusted"`
}

// NewInvoiceRecord returns an empty record with the default currency.
func NewInvoiceRecord() *InvoiceRecord {
	return &InvoiceRecord{Currency: CurrencyARS}
}

// Revalidate recomputes the Trusted flag. Callers mutate the record in
// batches and revalidate once per batch.
func (r *InvoiceRecord) Revalidate() {
	r.Trusted = Validate(r)
}
