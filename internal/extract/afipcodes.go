package extract

// AFIP publishes the valid document type codes (tipo de comprobante) as a set
// of ranges plus a handful of standalone codes. Kept as data rather than
// inline conditions so the table can be audited against the published list.
type codeRange struct {
	lo, hi int
}

var docTypeCodeRanges = []codeRange{
	// Single digit codes: facturas, notas de debito/credito, recibos.
	{0, 9},
	// Two digit codes.
	{10, 66},
	{81, 83},
	{88, 91},
	{99, 99},
	// Three digit codes, including the Hacienda sub-range.
	{101, 117},
	{183, 183},
	{186, 186},
	{190, 190},
	{201, 213},
	{331, 332},
	{991, 998},
}

// documentLetters are the AFIP invoice class markers. The letter determines
// the tax treatment between issuer and recipient.
const documentLetters = "ABCEM"

// cuitPrefixes are the valid Argentine taxpayer-type prefixes of an 11-digit
// CUIT: 20/23/27 for individuals, 30/33 for companies.
var cuitPrefixes = []string{"20", "23", "27", "30", "33"}

// IsValidDocTypeCode reports whether code appears in AFIP's published
// document type table.
func IsValidDocTypeCode(code int) bool {
	for _, r := range docTypeCodeRanges {
		if code >= r.lo && code <= r.hi {
			return true
		}
	}
	return false
}
