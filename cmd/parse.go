package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lcastro-fr/arg-invoice-parser/internal/config"
	"github.com/lcastro-fr/arg-invoice-parser/internal/logger"
	"github.com/lcastro-fr/arg-invoice-parser/pkg/models"
)

var parseCmd = &cobra.Command{
	Use:   "parse [pdf-file]",
	Short: "Extract structured data from a single AFIP invoice PDF",
	Long: `Parse a single invoice PDF and print the extracted record as JSON.

The record carries a "trusted" flag: true when the mandatory fields were all
resolved and the amounts are mutually consistent, false when the document
needs manual review.

Optional environment variables:
  OWN_CUIT     - your own CUIT, excluded from tax ID candidates
  OCR_ENGINE   - tesseract (default), vision or off
  OCR_LANGUAGE - tesseract language pack (default: spa)
  AI_FALLBACK  - set to "true" to enable the LLM fallback extractor`,
	Example: `  # Extract to stdout (JSON format)
  invoice-parser parse factura.pdf

  # Save the record to a file, excluding your own CUIT
  invoice-parser parse factura.pdf --cuit 30-54008029-8 -o record.json

  # Disable the OCR second pass
  invoice-parser parse factura.pdf --ocr off`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

// ParseOutput is the JSON envelope printed by the parse command.
type ParseOutput struct {
	Record   *models.InvoiceRecord `json:"record"`
	Metadata ProcessingMetadata    `json:"metadata"`
}

// ProcessingMetadata describes one processing run.
type ProcessingMetadata struct {
	FileName           string    `json:"file_name"`
	FileSize           int64     `json:"file_size_bytes"`
	ProcessedAt        time.Time `json:"processed_at"`
	ProcessingDuration float64   `json:"processing_duration_sec"`
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	parseCmd.Flags().String("cuit", "", "Own CUIT to exclude from tax ID candidates (overrides OWN_CUIT)")
	parseCmd.Flags().String("ocr", "", "OCR engine for the second pass: tesseract, vision or off (overrides OCR_ENGINE)")
	parseCmd.Flags().Bool("ai-fallback", false, "Enable the LLM fallback extractor (overrides AI_FALLBACK)")
	parseCmd.Flags().Int("timeout", 120, "Processing timeout in seconds")
}

func runParse(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("parse")

	outputPath, _ := cmd.Flags().GetString("output")
	ownCUIT, _ := cmd.Flags().GetString("cuit")
	ocrEngine, _ := cmd.Flags().GetString("ocr")
	aiFallback, _ := cmd.Flags().GetBool("ai-fallback")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	pdfPath := args[0]

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if ocrEngine != "" {
		cfg.OCREngine = ocrEngine
	}
	if aiFallback {
		cfg.AIFallback = true
	}

	log.Info().
		Str("file", pdfPath).
		Str("ocr_engine", cfg.OCREngine).
		Bool("ai_fallback", cfg.AIFallback).
		Msg("Starting invoice parsing")

	fileInfo, err := validatePDFPath(pdfPath, log)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(time.Duration(timeoutSecs)*time.Second, log)
	defer cancel()

	pl, err := buildPipeline(ctx, cfg, ownCUIT)
	if err != nil {
		return err
	}

	pdfBytes, err := os.ReadFile(pdfPath)
	if err != nil {
		log.Error().Err(err).Str("file", pdfPath).Msg("Failed to read PDF file")
		return fmt.Errorf("failed to read PDF file: %w", err)
	}

	startTime := time.Now()
	rec, err := pl.Process(ctx, pdfBytes)
	if err != nil {
		log.Error().Err(err).Msg("Invoice parsing failed")
		return fmt.Errorf("invoice parsing failed: %w", err)
	}
	processingDuration := time.Since(startTime)

	log.Info().
		Bool("trusted", rec.Trusted).
		Bool("qr_decoded", rec.QRDecoded).
		Dur("duration", processingDuration).
		Msg("Invoice parsing completed")

	output := ParseOutput{
		Record: rec,
		Metadata: ProcessingMetadata{
			FileName:           filepath.Base(pdfPath),
			FileSize:           fileInfo.Size(),
			ProcessedAt:        time.Now(),
			ProcessingDuration: processingDuration.Seconds(),
		},
	}
	return outputJSON(output, outputPath, log)
}

// validatePDFPath checks the path points at a readable, non-empty PDF.
func validatePDFPath(pdfPath string, log zerolog.Logger) (os.FileInfo, error) {
	fileInfo, err := os.Stat(pdfPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Error().Str("file", pdfPath).Msg("PDF file not found")
			return nil, fmt.Errorf("PDF file not found: %s", pdfPath)
		}
		if os.IsPermission(err) {
			log.Error().Str("file", pdfPath).Msg("Permission denied accessing PDF file")
			return nil, fmt.Errorf("permission denied accessing PDF file: %s", pdfPath)
		}
		return nil, fmt.Errorf("error accessing PDF file: %w", err)
	}

	if !fileInfo.Mode().IsRegular() {
		return nil, fmt.Errorf("path is not a regular file: %s", pdfPath)
	}
	if !strings.HasSuffix(strings.ToLower(pdfPath), ".pdf") {
		log.Warn().Str("file", pdfPath).Msg("File does not have .pdf extension")
	}
	if fileInfo.Size() == 0 {
		return nil, fmt.Errorf("PDF file is empty: %s", pdfPath)
	}
	return fileInfo, nil
}

// signalContext returns a context cancelled by timeout or SIGINT/SIGTERM.
func signalContext(timeout time.Duration, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling processing")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// outputJSON pretty-prints v to the output path, or stdout when empty.
func outputJSON(v any, outputPath string, log zerolog.Logger) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal output to JSON")
		return fmt.Errorf("failed to create JSON output: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
			log.Error().
				Err(err).
				Str("output_file", outputPath).
				Msg("Failed to write output file")
			return fmt.Errorf("failed to write output file: %w", err)
		}
		log.Info().
			Str("output_file", outputPath).
			Int("bytes", len(jsonData)).
			Msg("Record written to file")
		return nil
	}

	if _, err := os.Stdout.Write(jsonData); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Println()
	return nil
}
