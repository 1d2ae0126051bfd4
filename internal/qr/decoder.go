// Package qr locates and decodes the AFIP QR code embedded in invoice PDFs.
//
// Since 2021 AFIP mandates a QR code on every electronic invoice whose URL
// carries a base64-encoded JSON payload with the authoritative invoice data
// (reference, date, issuer CUIT, gross amount, currency, document type).
// Scans and reprints degrade the symbol, so decoding runs through an image
// enhancement ladder before giving up on an image.
package qr

import (
	"github.com/rs/zerolog"

	"github.com/lcastro-fr/arg-invoice-parser/internal/logger"
	"github.com/lcastro-fr/arg-invoice-parser/internal/pdfimg"
	"github.com/lcastro-fr/arg-invoice-parser/pkg/models"
)

// Decoder extracts an InvoiceRecord from a document's embedded QR code.
type Decoder struct {
	log zerolog.Logger
}

func NewDecoder() *Decoder {
	return &Decoder{log: logger.WithComponent("qr-decode")}
}

// Decode searches the document's embedded images for an AFIP QR code and
// returns the record parsed from its payload, or nil when no usable code is
// found. Images are processed in reverse encounter order: the AFIP QR is
// conventionally the last image placed on the page, and other QR codes
// (courier tracking, payment links) must not shadow it.
//
// Every failure below the document level - an undecodable image, a non-AFIP
// QR, a malformed payload - moves on to the next candidate. Only a document
// that cannot be opened at all yields nil immediately.
func (d *Decoder) Decode(pdfBytes []byte) *models.InvoiceRecord {
	images, err := pdfimg.Images(pdfBytes, nil)
	if err != nil {
		d.log.Debug().Err(err).Msg("Could not enumerate embedded images")
		return nil
	}

	for i := len(images) - 1; i >= 0; i-- {
		img := images[i]
		b := img.Bounds()
		if b.Dx() < minQRSize || b.Dy() < minQRSize {
			continue
		}

		text, stage, ok := decodeWithLadder(img)
		if !ok {
			continue
		}
		if !isAFIPURL(text) {
			d.log.Debug().Str("payload", text).Msg("QR code is not an AFIP validation URL")
			continue
		}

		rec, err := parsePayload(text)
		if err != nil {
			d.log.Debug().Err(err).Msg("AFIP QR payload could not be parsed")
			continue
		}
		d.log.Info().
			Str("stage", stage).
			Int("image", i).
			Msg("AFIP QR decoded")
		return rec
	}
	return nil
}
