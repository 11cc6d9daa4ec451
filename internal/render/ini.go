package render

import (
	"bytes"
	"fmt"

	"gopkg.in/ini.v1"

	"github.com/facturaIA/factura-extractor-ar/internal/models"
	"github.com/facturaIA/factura-extractor-ar/internal/numparse"
)

const (
	sectionFactura      = "factura"
	sectionIVA          = "iva"
	sectionPercepciones = "percepciones"
	sectionRetenciones  = "retenciones"
)

// INI renders p grouped in [factura], [iva], [percepciones] and [retenciones]
func INI(p models.Payload) ([]byte, error) {
	cfg := ini.Empty()

	factura := cfg.Section(sectionFactura)
	for _, kv := range [][2]string{
		{"numero", p.Numero},
		{"fecha", p.Fecha},
		{"cuit", p.CUIT},
		{"subtotal", numparse.Fixed2(p.Subtotal)},
		{"total", numparse.Fixed2(p.Total)},
	} {
		if _, err := factura.NewKey(kv[0], kv[1]); err != nil {
			return nil, fmt.Errorf("ini %s: %w", kv[0], err)
		}
	}

	for _, g := range []struct {
		name    string
		amounts models.Amounts
	}{
		{sectionIVA, p.IVA},
		{sectionPercepciones, p.Percepciones},
		{sectionRetenciones, p.Retenciones},
	} {
		sec := cfg.Section(g.name)
		for _, e := range nonZero(g.amounts) {
			if _, err := sec.NewKey(e.Key, numparse.Fixed2(e.Value)); err != nil {
				return nil, fmt.Errorf("ini %s.%s: %w", g.name, e.Key, err)
			}
		}
	}

	var buf bytes.Buffer
	if _, err := cfg.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write ini: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseINI reads a payload rendered by INI
func ParseINI(data []byte) (models.Payload, error) {
	cfg, err := ini.Load(data)
	if err != nil {
		return models.Payload{}, fmt.Errorf("parse ini payload: %w", err)
	}

	factura := cfg.Section(sectionFactura)
	p := models.Payload{
		Numero: factura.Key("numero").String(),
		Fecha:  factura.Key("fecha").String(),
		CUIT:   factura.Key("cuit").String(),
	}
	if p.Subtotal, err = parseAmount("subtotal", factura.Key("subtotal").String()); err != nil {
		return models.Payload{}, err
	}
	if p.Total, err = parseAmount("total", factura.Key("total").String()); err != nil {
		return models.Payload{}, err
	}

	if p.IVA, err = sectionAmounts(cfg.Section(sectionIVA)); err != nil {
		return models.Payload{}, err
	}
	if p.Percepciones, err = sectionAmounts(cfg.Section(sectionPercepciones)); err != nil {
		return models.Payload{}, err
	}
	if p.Retenciones, err = sectionAmounts(cfg.Section(sectionRetenciones)); err != nil {
		return models.Payload{}, err
	}
	return p, nil
}

func sectionAmounts(sec *ini.Section) (models.Amounts, error) {
	out := models.Amounts{}
	for _, k := range sec.Keys() {
		v, err := parseAmount(sec.Name()+"."+k.Name(), k.String())
		if err != nil {
			return nil, err
		}
		out = append(out, models.Amount{Key: k.Name(), Value: v})
	}
	return out, nil
}
