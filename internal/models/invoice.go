package models

// Lines is the normalized line sequence of one invoice. Order carries meaning:
// label lines are matched with the amounts that follow them.
type Lines []string

// Source tells which reader produced the line sequence
type Source string

const (
	SourceText Source = "text"
	SourceOCR  Source = "ocr"
)

// UnknownVendor is recorded in the debug block when no vendor was resolved
const UnknownVendor = "UNKNOWN"

// IVAItem is one IVA line of the invoice. Alicuota is the printed rate, nil
// when the line carried no rate.
type IVAItem struct {
	Alicuota *string `json:"alicuota"`
	Monto    float64 `json:"monto"`
}

// PercepcionItem is one percepción/retención line with its free-text label
type PercepcionItem struct {
	Desc  string  `json:"desc"`
	Monto float64 `json:"monto"`
}

// Header holds the comprobante metadata. Empty strings mean "not found".
type Header struct {
	Tipo   string `json:"tipo"`   // A, B or C
	Numero string `json:"numero"` // nnnn-nnnnnnnn
	Fecha  string `json:"fecha"`  // as printed
	CAE    string `json:"cae"`    // 14 digits
	CAEVto string `json:"cae_vto"`
}

// Parties holds emisor (proveedor) and receptor (cliente) data
type Parties struct {
	Proveedor     string `json:"proveedor"`
	CUITProveedor string `json:"cuit_proveedor"`
	Cliente       string `json:"cliente"`
	CUITCliente   string `json:"cuit_cliente"`
}

// Totals holds the amounts a vendor handler found. Nil pointers are amounts
// that were not found on the invoice.
type Totals struct {
	Subtotal            *float64         `json:"subtotal"`
	IVA                 *float64         `json:"iva"`
	IVADetalle          []IVAItem        `json:"iva_detalle"`
	PercepcionesTotal   *float64         `json:"percepciones_total"`
	PercepcionesDetalle []PercepcionItem `json:"percepciones_detalle"`
	Total               *float64         `json:"total"`
}

// Debug carries diagnostics about how the record was produced
type Debug struct {
	Vendor     string `json:"vendor"`
	LinesCount int    `json:"lines_count"`
}

// Record is the raw extraction record. Pipeline stages never mutate a Record
// they received; they return an updated copy.
type Record struct {
	Parties
	Header
	Totals

	Debug                Debug     `json:"debug"`
	Warnings             []string  `json:"warnings"`
	Source               Source    `json:"source"`
	File                 string    `json:"file"`
	TributosNormalizados TaxSchema `json:"tributos_normalizados"`
}

// NewRecord returns an empty record with non-nil collections
func NewRecord() Record {
	return Record{
		Totals: Totals{
			IVADetalle:          []IVAItem{},
			PercepcionesDetalle: []PercepcionItem{},
		},
		Debug:    Debug{Vendor: UnknownVendor},
		Warnings: []string{},
	}
}

// WithWarnings returns a copy of r with msgs appended to its warnings
func (r Record) WithWarnings(msgs ...string) Record {
	warnings := make([]string, 0, len(r.Warnings)+len(msgs))
	warnings = append(warnings, r.Warnings...)
	warnings = append(warnings, msgs...)
	r.Warnings = warnings
	return r
}

// Result is what one pipeline run returns: the full record and the compact payload
type Result struct {
	Record  Record  `json:"record"`
	Payload Payload `json:"payload"`
}

// Float returns a pointer to v
func Float(v float64) *float64 {
	return &v
}

// Value dereferences p, treating nil as zero
func Value(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// String returns a pointer to s
func String(s string) *string {
	return &s
}
