// Package pdftext reads the digital text layer of a PDF document.
//
// This is the cheap path of the pipeline: digitally-produced invoices carry
// their text as PDF content streams and need no OCR. Scanned invoices have
// no text layer (or a garbage one); those fall below the legibility
// threshold and are handed to the OCR collaborator instead.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"

	"github.com/lcastro-fr/arg-invoice-parser/internal/logger"
)

// ErrNoUsableText reports a document whose text layer is missing or shorter
// than the legibility threshold.
var ErrNoUsableText = errors.New("document has no usable text layer")

// minTextLength is the legibility threshold in trimmed characters.
const minTextLength = 50

type Extractor struct {
	log zerolog.Logger
}

func NewExtractor() *Extractor {
	return &Extractor{log: logger.WithComponent("pdf-text")}
}

// ExtractText returns the document's text layer, rows joined top to bottom
// with newlines so the header heuristics see the same line structure the
// invoice prints. Returns ErrNoUsableText when the trimmed text is shorter
// than the legibility threshold.
func (e *Extractor) ExtractText(pdfBytes []byte) (text string, err error) {
	// The pdf library panics on some malformed content streams; a broken
	// document must degrade to ErrNoUsableText, not kill the pipeline.
	defer func() {
		if r := recover(); r != nil {
			e.log.Debug().Interface("panic", r).Msg("PDF text extraction panicked")
			text, err = "", fmt.Errorf("%w: reader panic: %v", ErrNoUsableText, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(pdfBytes), int64(len(pdfBytes)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoUsableText, err)
	}

	var sb strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			e.log.Debug().Err(err).Int("page", pageNum).Msg("Could not read page text")
			continue
		}
		for _, row := range rows {
			for i, word := range row.Content {
				if i > 0 {
					sb.WriteString(" ")
				}
				sb.WriteString(word.S)
			}
			sb.WriteString("\n")
		}
	}

	text = sb.String()
	if len(strings.TrimSpace(text)) < minTextLength {
		return "", ErrNoUsableText
	}
	return text, nil
}
