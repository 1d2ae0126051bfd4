package qr

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/lcastro-fr/arg-invoice-parser/pkg/models"
)

// afipHosts are the validation domains of the Argentine tax authority, past
// (AFIP) and present (ARCA). Any other QR on the page is ignored.
var afipHosts = []string{"afip.gob.ar", "arca.gob.ar"}

func isAFIPURL(raw string) bool {
	for _, h := range afipHosts {
		if strings.Contains(raw, h) {
			return true
		}
	}
	return false
}

// payload mirrors the JSON schema of the QR's "p" query parameter. Numeric
// fields arrive as JSON numbers or strings depending on the issuing
// software, hence json.Number throughout.
type payload struct {
	Fecha      string      `json:"fecha"`
	CUIT       json.Number `json:"cuit"`
	PtoVta     json.Number `json:"ptoVta"`
	NroCmp     json.Number `json:"nroCmp"`
	Importe    json.Number `json:"importe"`
	Moneda     string      `json:"moneda"`
	TipoCmp    json.Number `json:"tipoCmp"`
	TipoCodAut string      `json:"tipoCodAut"`
}

// parsePayload converts a decoded AFIP validation URL into an InvoiceRecord.
// The QR payload never carries the net amount; that field stays nil for the
// orchestrator to fill from the text heuristics.
func parsePayload(rawURL string) (*models.InvoiceRecord, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse QR url: %w", err)
	}
	p := u.Query().Get("p")
	if p == "" {
		return nil, errors.New("QR url has no p query parameter")
	}
	data, err := decodeBase64(p)
	if err != nil {
		return nil, fmt.Errorf("decode p parameter: %w", err)
	}
	var pl payload
	if err := json.Unmarshal(data, &pl); err != nil {
		return nil, fmt.Errorf("unmarshal QR payload: %w", err)
	}

	rec := models.NewInvoiceRecord()
	rec.QRDecoded = true

	if pl.Fecha != "" {
		fecha := pl.Fecha
		rec.IssueDate = &fecha
	}
	if cuit := pl.CUIT.String(); cuit != "" {
		rec.TaxID = &cuit
	}
	pto, errPto := strconv.Atoi(pl.PtoVta.String())
	nro, errNro := strconv.Atoi(pl.NroCmp.String())
	if errPto == nil && errNro == nil {
		ref := fmt.Sprintf("%04d-%08d", pto, nro)
		rec.Reference = &ref
	}
	if code, err := strconv.Atoi(pl.TipoCmp.String()); err == nil {
		rec.DocTypeCode = &code
	}
	if pl.TipoCodAut != "" {
		letter := pl.TipoCodAut
		rec.Letter = &letter
	}
	if gross, err := decimal.NewFromString(pl.Importe.String()); err == nil {
		rec.GrossAmount = &gross
	}
	if pl.Moneda == "DOL" {
		rec.Currency = models.CurrencyUSD
	}

	rec.Revalidate()
	return rec, nil
}

// decodeBase64 accepts any of the four base64 alphabets; issuing software is
// not consistent about padding or URL-safe encoding.
func decodeBase64(s string) ([]byte, error) {
	var firstErr error
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.URLEncoding,
		base64.RawStdEncoding,
		base64.RawURLEncoding,
	} {
		b, err := enc.DecodeString(s)
		if err == nil {
			return b, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}
