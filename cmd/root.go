package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lcastro-fr/arg-invoice-parser/internal/ai"
	"github.com/lcastro-fr/arg-invoice-parser/internal/config"
	"github.com/lcastro-fr/arg-invoice-parser/internal/extract"
	"github.com/lcastro-fr/arg-invoice-parser/internal/logger"
	"github.com/lcastro-fr/arg-invoice-parser/internal/ocr"
	"github.com/lcastro-fr/arg-invoice-parser/internal/pdftext"
	"github.com/lcastro-fr/arg-invoice-parser/internal/pipeline"
	"github.com/lcastro-fr/arg-invoice-parser/internal/qr"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "invoice-parser",
	Short: "Extract structured data from Argentine (AFIP) invoice PDFs",
	Long: `invoice-parser reads AFIP invoice PDFs and produces structured records:
reference, issue date, issuer CUIT, amounts, document type and letter.

Extraction is layered: the embedded AFIP QR code when present, text layer
heuristics otherwise, an OCR pass over the header band for fields that only
render as graphics, and an optional LLM fallback for stubborn documents.`,
	Version: version,
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

// collaborators are the pipeline components independent of the caller's
// CUIT. Built once; the serve command shares them across requests.
type collaborators struct {
	text      pipeline.TextExtractor
	headerOCR ocr.HeaderOCR
	fallback  pipeline.FallbackExtractor
}

func newCollaborators(ctx context.Context, cfg *config.Config) (*collaborators, error) {
	c := &collaborators{text: pdftext.NewExtractor()}

	switch cfg.OCREngine {
	case config.OCREngineTesseract:
		c.headerOCR = ocr.NewTesseractOCR(cfg.OCRLanguage)
	case config.OCREngineVision:
		visionOCR, err := ocr.NewVisionOCR(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create Vision OCR engine: %w", err)
		}
		c.headerOCR = visionOCR
	case config.OCREngineOff:
	}

	if cfg.AIFallback {
		c.fallback = ai.NewExtractor(ai.Config{
			BaseURL: cfg.AIBaseURL,
			APIKey:  cfg.AIAPIKey,
			Model:   cfg.AIModel,
		})
	}
	return c, nil
}

// assemblePipeline wires the CUIT-dependent extraction stages around the
// shared collaborators.
func assemblePipeline(c *collaborators, ownCUIT string) *pipeline.Pipeline {
	header := extract.NewHeaderExtractor(ownCUIT)
	orchestrator := pipeline.NewOrchestrator(qr.NewDecoder(), header)
	return pipeline.New(c.text, orchestrator, header, c.headerOCR, c.fallback)
}

// buildPipeline assembles the extraction pipeline from configuration.
// ownCUIT overrides cfg.OwnCUIT when non-empty.
func buildPipeline(ctx context.Context, cfg *config.Config, ownCUIT string) (*pipeline.Pipeline, error) {
	if ownCUIT == "" {
		ownCUIT = cfg.OwnCUIT
	}
	c, err := newCollaborators(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return assemblePipeline(c, ownCUIT), nil
}
