// Package ai is the experimental LLM fallback extractor. It sends the raw
// invoice text to an OpenAI-compatible chat endpoint (including local ollama
// deployments via a custom base URL) and parses the strictly-formatted JSON
// answer into a partial record. The pipeline only consults it when the
// heuristic extractors leave a record untrusted, and only to backfill fields
// they left empty.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"github.com/shopspring/decimal"

	"github.com/lcastro-fr/arg-invoice-parser/internal/logger"
	"github.com/lcastro-fr/arg-invoice-parser/pkg/models"
)

const systemPrompt = `You are an expert data extraction assistant for Argentine financial documents (AFIP).
You parse raw OCR text from invoices and return a strictly formatted JSON object.
Output ONLY the valid JSON object. Do not explain your reasoning.`

const promptTemplate = `### TARGET FIELDS DEFINITION
Extract these fields from the text below. If a field is not found, return null.

1. "fecha": The main invoice date in ISO format "YYYY-MM-DD".
   Look for "Fecha de Emision", "Fecha", or dates like "DD/MM/YYYY" or "DD-MM-YY".
2. "cuit": The issuer's Tax ID, exactly 11 digits with dashes and spaces removed.
   Look for "CUIT", "C.U.I.T". Formats: 30-12345678-9, 20123456789.
3. "referencia": The full invoice number (point of sale + sequence) as "XXXX-XXXXXXXX".
   Look for "Comp. Nro", "Factura Nro", "Nº" or patterns like 0001-00000001.
4. "importe_bruto": The final TOTAL amount including taxes, as a JSON number.
   The input uses comma as decimal separator (1.500,00 means 1500.00).
   Look for "Total", "Total a Pagar", "Importe Total".
5. "importe_neto": The taxable amount BEFORE taxes, as a JSON number.
   Look for "Importe Neto", "Neto Gravado", "Subtotal".
6. "moneda": "ARS" or "USD". Default to "ARS" when the symbol is "$" or missing.
7. "tipo_cmp": The numeric AFIP document code as a JSON integer.
   Look for "Cod.", "Codigo", "Cod.Nº". Examples: 1, 6, 11, 51.
8. "letra": The invoice letter/class: "A", "B", "C", "E" or "M".
   Usually in a box next to the word "Factura" or printed as a large standalone letter.

### RAW TEXT INPUT
%s

### RESPONSE`

// Config configures the fallback extractor. An empty BaseURL targets the
// OpenAI API; point it at an ollama "/v1" endpoint for local models.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
}

type Extractor struct {
	client *openai.Client
	model  string
	log    zerolog.Logger
}

func NewExtractor(cfg Config) *Extractor {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = "qwen2.5"
	}
	return &Extractor{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
		log:    logger.WithComponent("ai-extract"),
	}
}

// response mirrors the JSON object the prompt demands.
type response struct {
	Fecha        *string  `json:"fecha"`
	CUIT         *string  `json:"cuit"`
	Referencia   *string  `json:"referencia"`
	ImporteBruto *float64 `json:"importe_bruto"`
	ImporteNeto  *float64 `json:"importe_neto"`
	Moneda       *string  `json:"moneda"`
	TipoCmp      *int     `json:"tipo_cmp"`
	Letra        *string  `json:"letra"`
}

// Extract asks the model for the invoice fields found in rawText. The
// returned record is partial and never trusted on its own; callers merge it
// into the heuristic record field by field.
func (e *Extractor) Extract(ctx context.Context, rawText string) (*models.InvoiceRecord, error) {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: 0.1,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(promptTemplate, rawText)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	e.log.Debug().Str("response", content).Msg("Model response received")

	var parsed response
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("parse model response: %w", err)
	}
	return parsed.toRecord(), nil
}

func (r *response) toRecord() *models.InvoiceRecord {
	rec := models.NewInvoiceRecord()
	rec.IssueDate = r.Fecha
	rec.Reference = r.Referencia
	rec.DocTypeCode = r.TipoCmp
	rec.Letter = r.Letra
	if r.CUIT != nil {
		cuit := strings.ReplaceAll(*r.CUIT, "-", "")
		rec.TaxID = &cuit
	}
	if r.ImporteBruto != nil {
		gross := decimal.NewFromFloat(*r.ImporteBruto)
		rec.GrossAmount = &gross
	}
	if r.ImporteNeto != nil {
		net := decimal.NewFromFloat(*r.ImporteNeto)
		rec.NetAmount = &net
	}
	if r.Moneda != nil && *r.Moneda == string(models.CurrencyUSD) {
		rec.Currency = models.CurrencyUSD
	}
	rec.Revalidate()
	return rec
}
