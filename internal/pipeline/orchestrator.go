// Package pipeline wires the extraction components into the per-document
// control flow: QR-first orchestration, the OCR second pass over the header
// band, and the optional LLM fallback.
//
// Each document's run is synchronous and self-contained - no shared caches,
// no global counters - so callers are free to run many documents through
// replicated pipelines concurrently.
package pipeline

import (
	"github.com/rs/zerolog"

	"github.com/lcastro-fr/arg-invoice-parser/internal/extract"
	"github.com/lcastro-fr/arg-invoice-parser/internal/logger"
	"github.com/lcastro-fr/arg-invoice-parser/pkg/models"
)

// QRDecoder produces a record from a document's embedded AFIP QR code, or
// nil when none decodes.
type QRDecoder interface {
	Decode(pdfBytes []byte) *models.InvoiceRecord
}

// Orchestrator decides between the QR-first and regex-only strategies and
// merges their partial results.
type Orchestrator struct {
	qr     QRDecoder
	header *extract.HeaderExtractor
	log    zerolog.Logger
}

func NewOrchestrator(qr QRDecoder, header *extract.HeaderExtractor) *Orchestrator {
	return &Orchestrator{
		qr:     qr,
		header: header,
		log:    logger.WithComponent("orchestrator"),
	}
}

// Parse builds an InvoiceRecord from the document bytes and its extracted
// text. The QR payload, when present, is authoritative: machine-encoded and
// structurally reliable for reference, date, tax ID, gross amount and
// currency. It is however structurally incomplete - net amount and purchase
// order never appear in it - and its letter field is occasionally wrong, so
// a QR record is selectively enriched from the text heuristics rather than
// returned as-is.
func (o *Orchestrator) Parse(pdfBytes []byte, rawText string) *models.InvoiceRecord {
	if rec := o.qr.Decode(pdfBytes); rec != nil {
		o.enrichFromText(rec, rawText)
		rec.Revalidate()
		return rec
	}

	o.log.Debug().Msg("No AFIP QR decoded, building record from text heuristics")
	rec := o.buildFromText(rawText)
	rec.Revalidate()
	return rec
}

func (o *Orchestrator) enrichFromText(rec *models.InvoiceRecord, rawText string) {
	amounts := extract.ResolveAmounts(rawText)
	rec.NetAmount = amounts.Net

	if letter := o.header.Letter(rawText); letter != nil && (rec.Letter == nil || *letter != *rec.Letter) {
		rec.Letter = letter
	}
	rec.PurchaseOrder = o.header.PurchaseOrder(rawText)
}

func (o *Orchestrator) buildFromText(rawText string) *models.InvoiceRecord {
	rec := models.NewInvoiceRecord()
	rec.Reference = o.header.Reference(rawText)
	rec.IssueDate = o.header.IssueDate(rawText)
	rec.TaxID = o.header.TaxID(rawText)
	rec.DocTypeCode = o.header.DocTypeCode(rawText)
	rec.Letter = o.header.Letter(rawText)
	rec.PurchaseOrder = o.header.PurchaseOrder(rawText)

	amounts := extract.ResolveAmounts(rawText)
	rec.GrossAmount = amounts.Gross
	rec.NetAmount = amounts.Net

	o.log.Debug().
		Interface("candidates", amounts.Debug.Candidates).
		Interface("median", amounts.Debug.Median).
		Interface("filtered", amounts.Debug.Filtered).
		Msg("Amount candidates resolved")
	return rec
}
