package render

import (
	"encoding/json"
	"fmt"

	"github.com/facturaIA/factura-extractor-ar/internal/models"
	"github.com/facturaIA/factura-extractor-ar/internal/numparse"
)

// jsonPayload fixes subtotal and total to two decimals on the wire
type jsonPayload struct {
	Numero       string         `json:"numero"`
	Fecha        string         `json:"fecha"`
	CUIT         string         `json:"cuit"`
	Subtotal     json.Number    `json:"subtotal"`
	Total        json.Number    `json:"total"`
	IVA          models.Amounts `json:"iva"`
	Percepciones models.Amounts `json:"percepciones"`
	Retenciones  models.Amounts `json:"retenciones"`
}

// JSON renders p as an indented JSON object
func JSON(p models.Payload) ([]byte, error) {
	return json.MarshalIndent(jsonPayload{
		Numero:       p.Numero,
		Fecha:        p.Fecha,
		CUIT:         p.CUIT,
		Subtotal:     json.Number(numparse.Fixed2(p.Subtotal)),
		Total:        json.Number(numparse.Fixed2(p.Total)),
		IVA:          nonZero(p.IVA),
		Percepciones: nonZero(p.Percepciones),
		Retenciones:  nonZero(p.Retenciones),
	}, "", "  ")
}

// ParseJSON reads a payload rendered by JSON
func ParseJSON(data []byte) (models.Payload, error) {
	var w jsonPayload
	if err := json.Unmarshal(data, &w); err != nil {
		return models.Payload{}, fmt.Errorf("parse json payload: %w", err)
	}

	p := models.Payload{
		Numero:       w.Numero,
		Fecha:        w.Fecha,
		CUIT:         w.CUIT,
		IVA:          orEmpty(w.IVA),
		Percepciones: orEmpty(w.Percepciones),
		Retenciones:  orEmpty(w.Retenciones),
	}
	var err error
	if p.Subtotal, err = number(w.Subtotal); err != nil {
		return models.Payload{}, fmt.Errorf("subtotal: %w", err)
	}
	if p.Total, err = number(w.Total); err != nil {
		return models.Payload{}, fmt.Errorf("total: %w", err)
	}
	return p, nil
}

func number(n json.Number) (float64, error) {
	if n == "" {
		return 0, nil
	}
	return n.Float64()
}

func orEmpty(a models.Amounts) models.Amounts {
	if a == nil {
		return models.Amounts{}
	}
	return a
}
