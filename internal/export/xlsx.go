// Package export renders batch results as an XLSX workbook, the format the
// downstream accounting workflow ingests.
package export

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/lcastro-fr/arg-invoice-parser/pkg/models"
)

// Row pairs an extracted record with its provenance for one workbook line.
type Row struct {
	Record     *models.InvoiceRecord
	SourcePath string
	Duration   float64 // seconds
	Err        error
}

const sheetName = "Invoices"

var headers = []string{
	"Source File",
	"Reference",
	"Issue Date",
	"Tax ID",
	"Gross Amount",
	"Net Amount",
	"Currency",
	"Doc Type Code",
	"Letter",
	"Purchase Order",
	"QR Decoded",
	"Trusted",
	"Processing Time (s)",
	"Error",
}

// WriteXLSX builds the workbook and returns its bytes. Rows whose document
// failed to parse still get a line with the error message, so a batch
// summary never silently drops inputs.
func WriteXLSX(rows []Row) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	for i, row := range rows {
		if err := writeRow(f, i+2, row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 48)
	_ = f.SetColWidth(sheetName, "B", "D", 16)
	_ = f.SetColWidth(sheetName, "E", "F", 14)
	_ = f.SetColWidth(sheetName, "N", "N", 40)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, rowNum int, row Row) error {
	write := func(col int, v any) error {
		cell, _ := excelize.CoordinatesToCellName(col, rowNum)
		return f.SetCellValue(sheetName, cell, v)
	}

	if err := write(1, row.SourcePath); err != nil {
		return err
	}

	if row.Err != nil {
		if err := write(14, row.Err.Error()); err != nil {
			return err
		}
		return write(13, row.Duration)
	}

	rec := row.Record
	cells := []any{
		strOrEmpty(rec.Reference),
		strOrEmpty(rec.IssueDate),
		strOrEmpty(rec.TaxID),
		decOrEmpty(rec.GrossAmount),
		decOrEmpty(rec.NetAmount),
		string(rec.Currency),
		intOrEmpty(rec.DocTypeCode),
		strOrEmpty(rec.Letter),
		strOrEmpty(rec.PurchaseOrder),
		rec.QRDecoded,
		rec.Trusted,
		row.Duration,
	}
	for i, v := range cells {
		if err := write(i+2, v); err != nil {
			return err
		}
	}
	return nil
}

func strOrEmpty(s *string) any {
	if s == nil {
		return ""
	}
	return *s
}

func intOrEmpty(i *int) any {
	if i == nil {
		return ""
	}
	return *i
}

func decOrEmpty(d *decimal.Decimal) any {
	if d == nil {
		return ""
	}
	// String keeps exact cents; a float cell would reintroduce rounding.
	return d.String()
}
