package qr

import (
	"encoding/base64"
	"testing"
)

// afipURL builds a validation URL the way AFIP invoicing software does:
// JSON payload, base64, p query parameter.
func afipURL(t *testing.T, jsonPayload string) string {
	t.Helper()
	return "https://www.afip.gob.ar/fe/qr/?p=" + base64.StdEncoding.EncodeToString([]byte(jsonPayload))
}

func TestParsePayload(t *testing.T) {
	raw := afipURL(t, `{
		"ver": 1,
		"fecha": "2025-06-27",
		"cuit": 30708801719,
		"ptoVta": 3,
		"tipoCmp": 1,
		"nroCmp": 62123,
		"importe": 470490.69,
		"moneda": "PES",
		"tipoCodAut": "E"
	}`)

	rec, err := parsePayload(raw)
	if err != nil {
		t.Fatalf("parsePayload: %v", err)
	}
	if !rec.QRDecoded {
		t.Error("expected qr_decoded=true")
	}
	if rec.Reference == nil || *rec.Reference != "0003-00062123" {
		t.Errorf("reference = %v, want 0003-00062123", rec.Reference)
	}
	if rec.TaxID == nil || *rec.TaxID != "30708801719" {
		t.Errorf("tax_id = %v, want 30708801719", rec.TaxID)
	}
	if rec.IssueDate == nil || *rec.IssueDate != "2025-06-27" {
		t.Errorf("issue_date = %v, want 2025-06-27", rec.IssueDate)
	}
	if rec.DocTypeCode == nil || *rec.DocTypeCode != 1 {
		t.Errorf("document_type_code = %v, want 1", rec.DocTypeCode)
	}
	if rec.Letter == nil || *rec.Letter != "E" {
		t.Errorf("document_letter = %v, want E", rec.Letter)
	}
	if rec.GrossAmount == nil || rec.GrossAmount.InexactFloat64() != 470490.69 {
		t.Errorf("gross_amount = %v, want 470490.69", rec.GrossAmount)
	}
	if rec.NetAmount != nil {
		t.Error("net_amount must stay nil, QR payloads never carry it")
	}
	if rec.Currency != "ARS" {
		t.Errorf("currency = %v, want ARS", rec.Currency)
	}
}

func TestParsePayloadDollarCurrency(t *testing.T) {
	raw := afipURL(t, `{"fecha":"2025-01-10","cuit":"20123456789","ptoVta":"0001","nroCmp":"00000042","importe":"1500.00","moneda":"DOL","tipoCmp":"19","tipoCodAut":"E"}`)

	rec, err := parsePayload(raw)
	if err != nil {
		t.Fatalf("parsePayload: %v", err)
	}
	if rec.Currency != "USD" {
		t.Errorf("currency = %v, want USD", rec.Currency)
	}
	// String-typed numerics must parse the same as number-typed ones.
	if rec.Reference == nil || *rec.Reference != "0001-00000042" {
		t.Errorf("reference = %v, want 0001-00000042", rec.Reference)
	}
	if rec.DocTypeCode == nil || *rec.DocTypeCode != 19 {
		t.Errorf("document_type_code = %v, want 19", rec.DocTypeCode)
	}
}

func TestParsePayloadPartial(t *testing.T) {
	raw := afipURL(t, `{"fecha":"2025-03-01","cuit":30540080298}`)

	rec, err := parsePayload(raw)
	if err != nil {
		t.Fatalf("parsePayload: %v", err)
	}
	if rec.Reference != nil {
		t.Errorf("reference = %v, want nil without ptoVta/nroCmp", rec.Reference)
	}
	if rec.Trusted {
		t.Error("partial record must not be trusted")
	}
}

func TestParsePayloadRejectsMissingParameter(t *testing.T) {
	if _, err := parsePayload("https://www.afip.gob.ar/fe/qr/"); err == nil {
		t.Fatal("expected error for url without p parameter")
	}
	if _, err := parsePayload("https://www.afip.gob.ar/fe/qr/?p=%%%"); err == nil {
		t.Fatal("expected error for undecodable payload")
	}
}

func TestIsAFIPURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.afip.gob.ar/fe/qr/?p=abc", true},
		{"https://www.arca.gob.ar/fe/qr/?p=abc", true},
		{"https://tracking.example.com/parcel/123", false},
		{"https://mpago.la/pay/123", false},
	}
	for _, tt := range tests {
		if got := isAFIPURL(tt.url); got != tt.want {
			t.Errorf("isAFIPURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}
