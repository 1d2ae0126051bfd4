package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os"

	vision "cloud.google.com/go/vision/apiv1"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"github.com/lcastro-fr/arg-invoice-parser/internal/logger"
)

// VisionOCR recognizes the header band with the Google Cloud Vision API.
type VisionOCR struct {
	client *vision.ImageAnnotatorClient
	log    zerolog.Logger
}

// NewVisionOCR creates a Vision-backed engine with credentials from the
// environment: GOOGLE_CREDENTIALS (inline JSON) takes precedence over
// GOOGLE_APPLICATION_CREDENTIALS (file path), with application default
// credentials as the fallback.
func NewVisionOCR(ctx context.Context) (*VisionOCR, error) {
	var client *vision.ImageAnnotatorClient
	var err error

	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credFile))
	} else {
		client, err = vision.NewImageAnnotatorClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMissingCredentials, err)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("create vision client: %w", err)
	}

	return &VisionOCR{
		client: client,
		log:    logger.WithComponent("ocr-vision"),
	}, nil
}

func (v *VisionOCR) RecognizeHeader(ctx context.Context, pdfBytes []byte) (string, error) {
	band, err := headerBand(pdfBytes)
	if err != nil {
		return "", err
	}
	pngBytes, err := encodePNG(band)
	if err != nil {
		return "", fmt.Errorf("encode header band: %w", err)
	}

	img, err := vision.NewImageFromReader(bytes.NewReader(pngBytes))
	if err != nil {
		return "", fmt.Errorf("prepare vision image: %w", err)
	}
	annotation, err := v.client.DetectDocumentText(ctx, img, nil)
	if err != nil {
		return "", fmt.Errorf("vision document text detection: %w", err)
	}
	if annotation == nil {
		return "", nil
	}

	v.log.Debug().
		Int("chars", len(annotation.GetText())).
		Msg("Header band recognized")
	return annotation.GetText(), nil
}

// Close releases the underlying API client.
func (v *VisionOCR) Close() error {
	return v.client.Close()
}
