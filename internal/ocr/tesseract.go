package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
	"github.com/rs/zerolog"

	"github.com/lcastro-fr/arg-invoice-parser/internal/logger"
)

// TesseractOCR recognizes the header band with a local Tesseract install.
type TesseractOCR struct {
	lang string
	log  zerolog.Logger
}

// NewTesseractOCR returns a Tesseract-backed engine. lang is a Tesseract
// language pack name; empty defaults to Spanish.
func NewTesseractOCR(lang string) *TesseractOCR {
	if lang == "" {
		lang = "spa"
	}
	return &TesseractOCR{
		lang: lang,
		log:  logger.WithComponent("ocr-tesseract"),
	}
}

func (t *TesseractOCR) RecognizeHeader(ctx context.Context, pdfBytes []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	band, err := headerBand(pdfBytes)
	if err != nil {
		return "", err
	}
	pngBytes, err := encodePNG(band)
	if err != nil {
		return "", fmt.Errorf("encode header band: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.lang); err != nil {
		return "", fmt.Errorf("set tesseract language %q: %w", t.lang, err)
	}
	if err := client.SetImageFromBytes(pngBytes); err != nil {
		return "", fmt.Errorf("set tesseract image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract recognition: %w", err)
	}

	t.log.Debug().
		Int("chars", len(text)).
		Str("lang", t.lang).
		Msg("Header band recognized")
	return text, nil
}
