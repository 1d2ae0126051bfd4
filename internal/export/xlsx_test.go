package export

import (
	"bytes"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/lcastro-fr/arg-invoice-parser/pkg/models"
)

func sampleRecord() *models.InvoiceRecord {
	ref := "0003-00062123"
	date := "2025-06-27"
	cuit := "30708801719"
	gross := decimal.NewFromFloat(121000.00)
	net := decimal.NewFromFloat(100000.00)
	letter := "A"
	code := 1

	rec := models.NewInvoiceRecord()
	rec.Reference = &ref
	rec.IssueDate = &date
	rec.TaxID = &cuit
	rec.GrossAmount = &gross
	rec.NetAmount = &net
	rec.Letter = &letter
	rec.DocTypeCode = &code
	rec.QRDecoded = true
	rec.Revalidate()
	return rec
}

func TestWriteXLSX(t *testing.T) {
	rows := []Row{
		{Record: sampleRecord(), SourcePath: "invoices/fc-0003-00062123.pdf", Duration: 1.25},
		{SourcePath: "invoices/broken.pdf", Duration: 0.10, Err: errors.New("no usable text")},
	}

	data, err := WriteXLSX(rows)
	if err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	cell := func(ref string) string {
		v, err := f.GetCellValue(sheetName, ref)
		if err != nil {
			t.Fatalf("GetCellValue(%s): %v", ref, err)
		}
		return v
	}

	if got := cell("A1"); got != "Source File" {
		t.Errorf("A1 = %q, want header row", got)
	}
	if got := cell("B2"); got != "0003-00062123" {
		t.Errorf("B2 = %q, want reference", got)
	}
	if got := cell("E2"); got != "121000" {
		t.Errorf("E2 = %q, want gross amount", got)
	}
	if got := cell("L2"); got != "TRUE" {
		t.Errorf("L2 = %q, want trusted flag", got)
	}
	if got := cell("A3"); got != "invoices/broken.pdf" {
		t.Errorf("A3 = %q, want failed source path", got)
	}
	if got := cell("N3"); got != "no usable text" {
		t.Errorf("N3 = %q, want error message", got)
	}
	if got := cell("B3"); got != "" {
		t.Errorf("B3 = %q, want empty cell on failed row", got)
	}
}
