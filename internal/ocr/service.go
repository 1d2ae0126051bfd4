// Package ocr recognizes text in the header band of an invoice's first page.
//
// The second extraction pass uses it when tax ID, document type code or
// letter are still unset after the digital-text pass: those fields cluster
// in the header, and invoices sometimes embed the header as an image the
// text-layer reader cannot see.
//
// Two engines are provided: a local Tesseract client (default) and Google
// Cloud Vision for deployments that already carry Google credentials.
// Required environment for the Vision engine:
//   - GOOGLE_APPLICATION_CREDENTIALS: path to service account JSON file, OR
//   - GOOGLE_CREDENTIALS: inline JSON credentials string
package ocr

import (
	"context"
	"errors"
)

// HeaderOCR recognizes text in the top band of a document's first page.
type HeaderOCR interface {
	// RecognizeHeader returns the OCR'd text of the header band, or an
	// empty string when the band holds no recognizable text.
	RecognizeHeader(ctx context.Context, pdfBytes []byte) (string, error)
}

// Common OCR errors.
var (
	// ErrNoHeaderImage is returned when the first page embeds no raster
	// image a header band could be cropped from.
	ErrNoHeaderImage = errors.New("no header image found on first page")

	// ErrMissingCredentials is returned by the Vision engine when no
	// Google Cloud credentials are configured.
	ErrMissingCredentials = errors.New("missing Google Cloud credentials: set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS")
)
