// Package api exposes the extraction pipeline over HTTP for callers that
// integrate the parser as a sidecar service rather than a CLI.
package api

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/lcastro-fr/arg-invoice-parser/internal/logger"
	"github.com/lcastro-fr/arg-invoice-parser/internal/pipeline"
	"github.com/lcastro-fr/arg-invoice-parser/pkg/models"
)

// maxUploadSize bounds the multipart body. AFIP invoices are single-page
// PDFs, rarely above a couple of megabytes.
const maxUploadSize = 20 * 1024 * 1024

// PipelineFactory builds a pipeline for one request. The caller's CUIT is
// per-request state: two tenants posting to the same service exclude
// different registration numbers.
type PipelineFactory func(ownCUIT string) *pipeline.Pipeline

// Handler handles HTTP requests for invoice parsing.
type Handler struct {
	newPipeline PipelineFactory
	log         zerolog.Logger
}

func NewHandler(factory PipelineFactory) *Handler {
	return &Handler{
		newPipeline: factory,
		log:         logger.WithComponent("api"),
	}
}

// Router configures the HTTP routes.
func (h *Handler) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/invoice/parse", h.ParseInvoice).Methods("POST")
	router.HandleFunc("/health", h.Health).Methods("GET")
	return router
}

// ParseResponse is the envelope for parse results.
type ParseResponse struct {
	Success      bool                  `json:"success"`
	Data         *models.InvoiceRecord `json:"data,omitempty"`
	ErrorMessage string                `json:"error_message,omitempty"`
	DurationSec  float64               `json:"duration_sec"`
}

// ParseInvoice accepts a multipart upload ("file" field, PDF bytes) with an
// optional "own_cuit" form value and returns the extracted record. Extraction
// shortfalls are not HTTP errors: a partial record with trusted=false is a
// successful response. Only unreadable requests and documents nothing can be
// extracted from map to error statuses.
func (h *Handler) ParseInvoice(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	reqLog := logger.WithRequestID(h.log, uuid.New().String())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.sendError(w, http.StatusBadRequest, "file too large or invalid form data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "no file provided (use the 'file' field)")
		return
	}
	defer file.Close()

	pdfBytes, err := io.ReadAll(file)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, "failed to read upload")
		return
	}

	ownCUIT := r.FormValue("own_cuit")
	reqLog.Info().
		Str("filename", header.Filename).
		Int("size", len(pdfBytes)).
		Bool("own_cuit_set", ownCUIT != "").
		Msg("Parse request received")

	rec, err := h.newPipeline(ownCUIT).Process(r.Context(), pdfBytes)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		reqLog.Error().Err(err).Msg("Parse request failed")
		h.writeJSON(w, http.StatusUnprocessableEntity, ParseResponse{
			Success:      false,
			ErrorMessage: err.Error(),
			DurationSec:  elapsed,
		})
		return
	}

	reqLog.Info().
		Bool("trusted", rec.Trusted).
		Float64("duration_sec", elapsed).
		Msg("Parse request complete")
	h.writeJSON(w, http.StatusOK, ParseResponse{
		Success:     true,
		Data:        rec,
		DurationSec: elapsed,
	})
}

// Health reports liveness. Collaborator checks are intentionally absent:
// the pipeline has no standing connections to probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) sendError(w http.ResponseWriter, statusCode int, message string) {
	h.writeJSON(w, statusCode, ParseResponse{Success: false, ErrorMessage: message})
}

func (h *Handler) writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
