package extract

import (
	"testing"
	"time"
)

// fixedNow pins the extractor clock so the date plausibility window does not
// drift as the calendar does.
func fixedNow() time.Time {
	return time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
}

func newTestExtractor(ownCUIT string) *HeaderExtractor {
	h := NewHeaderExtractor(ownCUIT)
	h.now = fixedNow
	return h
}

func TestReference(t *testing.T) {
	h := newTestExtractor("")

	tests := []struct {
		name string
		text string
		want string
	}{
		{"joined", "FACTURA A 0001-00001234\nORIGINAL", "0001-00001234"},
		{"spaced dash", "Comprobante Nro 0003 - 00062123", "0003-00062123"},
		{"five digit pos", "FACTURA 00013-00001234", "00013-00001234"},
		{"split tokens", "Punto de Venta: 00001\nComp. Nro: 00000301", "00001-00000301"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := h.Reference(tt.text)
			if got == nil || *got != tt.want {
				t.Errorf("Reference(%q) = %v, want %s", tt.text, got, tt.want)
			}
		})
	}
}

func TestReferenceAbsent(t *testing.T) {
	h := newTestExtractor("")
	if got := h.Reference("FACTURA sin numeracion visible"); got != nil {
		t.Errorf("Reference = %v, want nil", got)
	}
}

func TestIssueDate(t *testing.T) {
	h := newTestExtractor("")

	tests := []struct {
		name string
		text string
		want string
	}{
		{"slash four digit year", "Fecha: 27/06/2025", "2025-06-27"},
		{"dash two digit year", "Fecha de Emision: 27-06-25", "2025-06-27"},
		{"dotted", "Emitido el 01.02.2024", "2024-02-01"},
		{"first date wins", "Fecha: 15/03/2025 Vencimiento: 30/04/2025", "2025-03-15"},
		{"skips invalid month", "31-13-25 y luego 27-06-25", "2025-06-27"},
		{"skips impossible day", "31/02/2025 luego 28/02/2025", "2025-02-28"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := h.IssueDate(tt.text)
			if got == nil || *got != tt.want {
				t.Errorf("IssueDate(%q) = %v, want %s", tt.text, got, tt.want)
			}
		})
	}
}

func TestIssueDateRejections(t *testing.T) {
	h := newTestExtractor("")

	tests := []struct {
		name string
		text string
	}{
		{"mixed separators", "27/06-2025"},
		{"ancient year", "01/01/1999"},
		{"far future year", "01/01/2030"},
		{"no date", "sin fecha impresa"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.IssueDate(tt.text); got != nil {
				t.Errorf("IssueDate(%q) = %v, want nil", tt.text, *got)
			}
		})
	}
}

func TestTaxID(t *testing.T) {
	h := newTestExtractor("")

	tests := []struct {
		name string
		text string
		want string
	}{
		{"dashed", "CUIT: 30-70880171-9", "30708801719"},
		{"plain", "CUIT 30708801719", "30708801719"},
		{"prefix 27", "C.U.I.T. 27-12345678-3", "27123456783"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := h.TaxID(tt.text)
			if got == nil || *got != tt.want {
				t.Errorf("TaxID(%q) = %v, want %s", tt.text, got, tt.want)
			}
		})
	}
}

func TestTaxIDSkipsOwnCUIT(t *testing.T) {
	h := newTestExtractor("30-54008029-8")

	text := "CUIT: 30-54008029-8\nProveedor CUIT: 30-70880171-9"
	got := h.TaxID(text)
	if got == nil || *got != "30708801719" {
		t.Errorf("TaxID = %v, want the issuer CUIT 30708801719", got)
	}

	if got := h.TaxID("CUIT: 30-54008029-8"); got != nil {
		t.Errorf("TaxID = %v, want nil when only own CUIT present", *got)
	}
}

func TestTaxIDIgnoresNonCUITPrefixes(t *testing.T) {
	h := newTestExtractor("")
	if got := h.TaxID("Nro 11-12345678-9"); got != nil {
		t.Errorf("TaxID = %v, want nil for prefix outside the CUIT set", *got)
	}
}

func TestDocTypeCode(t *testing.T) {
	h := newTestExtractor("")

	tests := []struct {
		name string
		text string
		want int
	}{
		{"zero padded", "FACTURA A\nCod. 011", 11},
		{"bare", "COD. 201 FACTURA DE CREDITO ELECTRONICA MIPYMES", 201},
		{"single digit", "Comprobante tipo 6", 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := h.DocTypeCode(tt.text)
			if got == nil || *got != tt.want {
				t.Errorf("DocTypeCode(%q) = %v, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestDocTypeCodeRejections(t *testing.T) {
	h := newTestExtractor("")

	tests := []struct {
		name string
		text string
	}{
		{"reference fragment", "0001-00001234"},
		{"date fragment", "27/06/2025"},
		{"amount fragment", "Total 1.210,00"},
		{"code outside table", "Cod. 70"},
		{"too long", "1234"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.DocTypeCode(tt.text); got != nil {
				t.Errorf("DocTypeCode(%q) = %v, want nil", tt.text, *got)
			}
		})
	}
}

func TestLetter(t *testing.T) {
	h := newTestExtractor("")

	if got := h.Letter("FACTURA A 0001-00001234"); got == nil || *got != "A" {
		t.Errorf("Letter = %v, want A", got)
	}
	if got := h.Letter("NOTA DE CREDITO B"); got == nil || *got != "B" {
		t.Errorf("Letter = %v, want B", got)
	}
	// Letters embedded in words never count.
	if got := h.Letter("COMPROBANTE ELECTRONICO"); got != nil {
		t.Errorf("Letter = %v, want nil", *got)
	}
}

func TestLetterOnlyInHeader(t *testing.T) {
	h := newTestExtractor("")

	var text string
	for i := 0; i < 12; i++ {
		text += "linea de relleno sin letras sueltas\n"
	}
	text += "FACTURA A\n"

	if got := h.Letter(text); got != nil {
		t.Errorf("Letter = %v, want nil outside the header slice", *got)
	}
}

func TestPurchaseOrder(t *testing.T) {
	h := newTestExtractor("")

	if got := h.PurchaseOrder("Orden de Compra: 4600012345"); got == nil || *got != "4600012345" {
		t.Errorf("PurchaseOrder = %v, want 4600012345", got)
	}
	if got := h.PurchaseOrder("OC 5212345678"); got == nil || *got != "5212345678" {
		t.Errorf("PurchaseOrder = %v, want 5212345678", got)
	}
	if got := h.PurchaseOrder("OC 9912345678"); got != nil {
		t.Errorf("PurchaseOrder = %v, want nil for unknown prefix", *got)
	}
}

func TestHeaderLines(t *testing.T) {
	text := "uno\n\n  dos  \ntres\n"
	got := headerLines(text)
	if len(got) != 3 || got[0] != "uno" || got[1] != "dos" || got[2] != "tres" {
		t.Errorf("headerLines = %v", got)
	}
}
