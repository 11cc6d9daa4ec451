package models

// Payload is the compact record returned to callers
type Payload struct {
	Numero       string  `json:"numero"`
	Fecha        string  `json:"fecha"`        // YYYY-MM-DD when recognized
	CUIT         string  `json:"cuit"`         // digits only
	Subtotal     float64 `json:"subtotal"`     // estimated when not printed
	Total        float64 `json:"total"`
	IVA          Amounts `json:"iva"`          // rate ("21", "10.5", "otros") -> amount
	Percepciones Amounts `json:"percepciones"` // canonical key -> amount
	Retenciones  Amounts `json:"retenciones"`  // canonical key -> amount
}
