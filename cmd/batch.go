package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lcastro-fr/arg-invoice-parser/internal/config"
	"github.com/lcastro-fr/arg-invoice-parser/internal/export"
	"github.com/lcastro-fr/arg-invoice-parser/internal/logger"
	"github.com/lcastro-fr/arg-invoice-parser/internal/pipeline"
)

var batchCmd = &cobra.Command{
	Use:   "batch [folder-path]",
	Short: "Parse every invoice PDF in a folder and export the results as XLSX",
	Long: `Process all PDF files in a folder through the extraction pipeline and
write the extracted records to an XLSX workbook.

Documents that fail to parse still get a workbook row carrying the error, so
the output always accounts for every input file.

Optional environment variables:
  OWN_CUIT      - your own CUIT, excluded from tax ID candidates
  OCR_ENGINE    - tesseract (default), vision or off
  AI_FALLBACK   - set to "true" to enable the LLM fallback extractor
  BATCH_WORKERS - number of parallel workers (default: 4)`,
	Example: `  # Process a folder, write invoices.xlsx next to it
  invoice-parser batch ./facturas

  # Custom output path and own CUIT exclusion
  invoice-parser batch ./facturas --cuit 30-54008029-8 -o resultados.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

// batchJob is one unit of work for the worker pool.
type batchJob struct {
	filePath string
	index    int
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringP("output", "o", "invoices.xlsx", "Output XLSX file path")
	batchCmd.Flags().String("cuit", "", "Own CUIT to exclude from tax ID candidates (overrides OWN_CUIT)")
	batchCmd.Flags().Int("workers", 0, "Number of parallel workers (overrides BATCH_WORKERS)")
	batchCmd.Flags().Int("timeout", 1800, "Total batch timeout in seconds")
}

func runBatch(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("batch")

	folderPath := args[0]
	outputPath, _ := cmd.Flags().GetString("output")
	ownCUIT, _ := cmd.Flags().GetString("cuit")
	workers, _ := cmd.Flags().GetInt("workers")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	folderInfo, err := os.Stat(folderPath)
	if err != nil {
		return fmt.Errorf("folder not found: %s", folderPath)
	}
	if !folderInfo.IsDir() {
		return fmt.Errorf("path is not a directory: %s", folderPath)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if workers > 0 {
		cfg.BatchWorkers = workers
	}

	pdfFiles, err := findPDFFiles(folderPath)
	if err != nil {
		return fmt.Errorf("failed to find PDF files: %w", err)
	}
	if len(pdfFiles) == 0 {
		fmt.Println("No PDF files found in folder.")
		return nil
	}

	log.Info().
		Str("folder", folderPath).
		Int("files", len(pdfFiles)).
		Int("workers", cfg.BatchWorkers).
		Msg("Starting batch processing")

	ctx, cancel := signalContext(time.Duration(timeoutSecs)*time.Second, log)
	defer cancel()

	pl, err := buildPipeline(ctx, cfg, ownCUIT)
	if err != nil {
		return err
	}

	fmt.Printf("Processing %d PDFs with %d parallel workers...\n\n", len(pdfFiles), cfg.BatchWorkers)

	rows := processInParallel(ctx, pl, pdfFiles, cfg.BatchWorkers, log)

	trustedCount := 0
	reviewCount := 0
	errorCount := 0
	for _, row := range rows {
		switch {
		case row.Err != nil:
			errorCount++
		case row.Record.Trusted:
			trustedCount++
		default:
			reviewCount++
		}
	}

	fmt.Println()
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("Trusted: %d\n", trustedCount)
	if reviewCount > 0 {
		fmt.Printf("Needs review: %d\n", reviewCount)
	}
	if errorCount > 0 {
		fmt.Printf("Errors: %d\n", errorCount)
	}

	data, err := export.WriteXLSX(rows)
	if err != nil {
		return fmt.Errorf("failed to build XLSX workbook: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write XLSX file: %w", err)
	}
	fmt.Printf("\nResults written to %s\n", outputPath)

	log.Info().
		Int("total", len(pdfFiles)).
		Int("trusted", trustedCount).
		Int("review", reviewCount).
		Int("errors", errorCount).
		Str("output", outputPath).
		Msg("Batch processing completed")
	return nil
}

// findPDFFiles walks the folder recursively collecting .pdf paths.
func findPDFFiles(folderPath string) ([]string, error) {
	var pdfFiles []string
	err := filepath.Walk(folderPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(strings.ToLower(info.Name()), ".pdf") {
			pdfFiles = append(pdfFiles, path)
		}
		return nil
	})
	return pdfFiles, err
}

// processInParallel runs the pipeline over the files with a worker pool.
// Results keep the input ordering regardless of completion order.
func processInParallel(ctx context.Context, pl *pipeline.Pipeline, pdfFiles []string, numWorkers int, log zerolog.Logger) []export.Row {
	jobs := make(chan batchJob, len(pdfFiles))
	rows := make([]export.Row, len(pdfFiles))

	var processedCount int
	var mu sync.Mutex

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for job := range jobs {
				log.Debug().
					Int("worker", workerID).
					Str("file", job.filePath).
					Msg("Worker processing PDF")

				rows[job.index] = processOne(ctx, pl, job.filePath)

				mu.Lock()
				processedCount++
				fmt.Printf("[%d/%d] %s - %s\n",
					processedCount, len(pdfFiles),
					filepath.Base(job.filePath),
					rowStatus(rows[job.index]))
				mu.Unlock()
			}
		}(w)
	}

	for i, pdfFile := range pdfFiles {
		jobs <- batchJob{filePath: pdfFile, index: i}
	}
	close(jobs)
	wg.Wait()

	return rows
}

func processOne(ctx context.Context, pl *pipeline.Pipeline, pdfPath string) export.Row {
	row := export.Row{SourcePath: pdfPath}
	start := time.Now()

	pdfBytes, err := os.ReadFile(pdfPath)
	if err != nil {
		row.Err = fmt.Errorf("failed to read PDF file: %w", err)
		row.Duration = time.Since(start).Seconds()
		return row
	}

	rec, err := pl.Process(ctx, pdfBytes)
	row.Duration = time.Since(start).Seconds()
	if err != nil {
		row.Err = err
		return row
	}
	row.Record = rec
	return row
}

func rowStatus(row export.Row) string {
	switch {
	case row.Err != nil:
		return fmt.Sprintf("error (%s)", row.Err)
	case row.Record.Trusted:
		return "ok"
	default:
		return "needs review"
	}
}
