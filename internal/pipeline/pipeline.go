package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/lcastro-fr/arg-invoice-parser/internal/extract"
	"github.com/lcastro-fr/arg-invoice-parser/internal/logger"
	"github.com/lcastro-fr/arg-invoice-parser/internal/ocr"
	"github.com/lcastro-fr/arg-invoice-parser/internal/pdftext"
	"github.com/lcastro-fr/arg-invoice-parser/pkg/models"
)

// TextExtractor pulls the embedded text layer from a PDF.
type TextExtractor interface {
	ExtractText(pdfBytes []byte) (string, error)
}

// FallbackExtractor builds a record from raw text via an LLM. Used as a
// last resort on untrusted records.
type FallbackExtractor interface {
	Extract(ctx context.Context, rawText string) (*models.InvoiceRecord, error)
}

// Pipeline runs a document through text extraction, orchestration, the OCR
// second pass and the optional AI fallback. The OCR and AI collaborators
// may be nil, in which case the corresponding pass is skipped.
type Pipeline struct {
	text         TextExtractor
	orchestrator *Orchestrator
	header       *extract.HeaderExtractor
	headerOCR    ocr.HeaderOCR
	fallback     FallbackExtractor
	log          zerolog.Logger
}

func New(text TextExtractor, orchestrator *Orchestrator, header *extract.HeaderExtractor, headerOCR ocr.HeaderOCR, fallback FallbackExtractor) *Pipeline {
	return &Pipeline{
		text:         text,
		orchestrator: orchestrator,
		header:       header,
		headerOCR:    headerOCR,
		fallback:     fallback,
		log:          logger.WithComponent("pipeline"),
	}
}

// Process extracts an InvoiceRecord from the document. Field resolution
// shortfalls never surface as errors; callers inspect the Trusted flag to
// tell complete records from partial ones. A document with neither a usable
// text layer nor a decodable QR code yields no record and
// ErrNoExtractableData.
func (p *Pipeline) Process(ctx context.Context, pdfBytes []byte) (*models.InvoiceRecord, error) {
	start := time.Now()

	textUnusable := false
	rawText, err := p.text.ExtractText(pdfBytes)
	if err != nil {
		if !errors.Is(err, pdftext.ErrNoUsableText) {
			return nil, &ProcessError{Op: "ExtractText", Err: err}
		}
		p.log.Warn().Msg("Document has no usable text layer")
		rawText = ""
		textUnusable = true
	}

	rec := p.orchestrator.Parse(pdfBytes, rawText)
	if textUnusable && !rec.QRDecoded {
		p.log.Warn().Msg("No extractable data in document")
		return nil, &ProcessError{Op: "Parse", Err: ErrNoExtractableData}
	}

	if p.headerOCR != nil && needsSecondPass(rec) {
		p.runSecondPass(ctx, rec, pdfBytes)
	}

	if p.fallback != nil && !rec.Trusted && rawText != "" {
		p.runFallback(ctx, rec, rawText)
	}

	p.log.Info().
		Bool("trusted", rec.Trusted).
		Bool("qr_decoded", rec.QRDecoded).
		Dur("duration", time.Since(start)).
		Msg("Document processed")
	return rec, nil
}

// needsSecondPass reports whether identity fields that typically live in
// the stylized header region are still unresolved. Amounts are excluded:
// OCR noise makes re-reading them riskier than leaving them unset.
func needsSecondPass(rec *models.InvoiceRecord) bool {
	return rec.TaxID == nil || rec.DocTypeCode == nil || rec.Letter == nil
}

// runSecondPass rasterizes the header band, OCRs it and backfills only the
// fields still missing. Existing values are never overwritten: the text
// layer is more reliable than OCR output whenever both produce a value.
func (p *Pipeline) runSecondPass(ctx context.Context, rec *models.InvoiceRecord, pdfBytes []byte) {
	headerText, err := p.headerOCR.RecognizeHeader(ctx, pdfBytes)
	if err != nil {
		p.log.Warn().Err(err).Msg("Header OCR pass failed")
		return
	}

	if rec.TaxID == nil {
		rec.TaxID = p.header.TaxID(headerText)
	}
	if rec.DocTypeCode == nil {
		rec.DocTypeCode = p.header.DocTypeCode(headerText)
	}
	if rec.Letter == nil {
		rec.Letter = p.header.Letter(headerText)
	}
	if rec.IssueDate == nil {
		rec.IssueDate = p.header.IssueDate(headerText)
	}
	if rec.Reference == nil {
		rec.Reference = p.header.Reference(headerText)
	}
	rec.Revalidate()
	p.log.Debug().Bool("trusted", rec.Trusted).Msg("Header OCR pass complete")
}

// runFallback asks the LLM for a full record and copies over whatever the
// deterministic passes left unset.
func (p *Pipeline) runFallback(ctx context.Context, rec *models.InvoiceRecord, rawText string) {
	aiRec, err := p.fallback.Extract(ctx, rawText)
	if err != nil {
		p.log.Warn().Err(err).Msg("AI fallback failed")
		return
	}

	if rec.Reference == nil {
		rec.Reference = aiRec.Reference
	}
	if rec.IssueDate == nil {
		rec.IssueDate = aiRec.IssueDate
	}
	if rec.TaxID == nil {
		rec.TaxID = aiRec.TaxID
	}
	if rec.GrossAmount == nil {
		rec.GrossAmount = aiRec.GrossAmount
	}
	if rec.NetAmount == nil {
		rec.NetAmount = aiRec.NetAmount
	}
	if rec.DocTypeCode == nil {
		rec.DocTypeCode = aiRec.DocTypeCode
	}
	if rec.Letter == nil {
		rec.Letter = aiRec.Letter
	}
	rec.Revalidate()
	p.log.Debug().Bool("trusted", rec.Trusted).Msg("AI fallback complete")
}
