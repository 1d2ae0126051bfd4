package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
func decPtr(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}

func completeRecord() *InvoiceRecord {
	return &InvoiceRecord{
		Reference:   strPtr("0001-00001234"),
		IssueDate:   strPtr("2025-06-27"),
		TaxID:       strPtr("30708801719"),
		GrossAmount: decPtr(121000),
		NetAmount:   decPtr(100000),
		Currency:    CurrencyARS,
		DocTypeCode: intPtr(1),
		Letter:      strPtr("A"),
	}
}

func TestValidateComplete(t *testing.T) {
	r := completeRecord()
	if !Validate(r) {
		t.Fatal("complete consistent record should validate")
	}
}

func TestValidateMissingField(t *testing.T) {
	fields := map[string]func(*InvoiceRecord){
		"reference":          func(r *InvoiceRecord) { r.Reference = nil },
		"issue_date":         func(r *InvoiceRecord) { r.IssueDate = nil },
		"tax_id":             func(r *InvoiceRecord) { r.TaxID = nil },
		"gross_amount":       func(r *InvoiceRecord) { r.GrossAmount = nil },
		"net_amount":         func(r *InvoiceRecord) { r.NetAmount = nil },
		"document_type_code": func(r *InvoiceRecord) { r.DocTypeCode = nil },
		"document_letter":    func(r *InvoiceRecord) { r.Letter = nil },
	}
	for name, unset := range fields {
		r := completeRecord()
		unset(r)
		if Validate(r) {
			t.Errorf("record without %s should not validate", name)
		}
	}
}

func TestValidateAmountConsistency(t *testing.T) {
	tests := []struct {
		name  string
		net   float64
		gross float64
		want  bool
	}{
		{"net equals gross", 100, 100, true},
		{"plausible vat", 100000, 121000, true},
		{"exact upper bound", 100, 132, true},
		{"net above gross", 121000, 100000, false},
		{"implausible tax load", 100, 200, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := completeRecord()
			r.NetAmount = decPtr(tt.net)
			r.GrossAmount = decPtr(tt.gross)
			if got := Validate(r); got != tt.want {
				t.Errorf("Validate(net=%v gross=%v) = %v, want %v", tt.net, tt.gross, got, tt.want)
			}
		})
	}
}

func TestRevalidate(t *testing.T) {
	r := completeRecord()
	r.Revalidate()
	if !r.Trusted {
		t.Fatal("expected trusted after Revalidate on consistent record")
	}
	r.NetAmount = nil
	r.Revalidate()
	if r.Trusted {
		t.Fatal("expected untrusted after net amount cleared")
	}
}

func TestNewInvoiceRecordDefaults(t *testing.T) {
	r := NewInvoiceRecord()
	if r.Currency != CurrencyARS {
		t.Fatalf("default currency = %q, want ARS", r.Currency)
	}
	if r.Trusted || r.QRDecoded {
		t.Fatal("fresh record must not be trusted or qr_decoded")
	}
}
