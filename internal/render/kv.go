package render

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/facturaIA/factura-extractor-ar/internal/models"
	"github.com/facturaIA/factura-extractor-ar/internal/numparse"
)

// KV renders p as one key=value pair per line. Map entries are flattened as
// iva.<rate>, percepciones.<key> and retenciones.<key>.
func KV(p models.Payload) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "numero=%s\n", p.Numero)
	fmt.Fprintf(&b, "fecha=%s\n", p.Fecha)
	fmt.Fprintf(&b, "cuit=%s\n", p.CUIT)
	fmt.Fprintf(&b, "subtotal=%s\n", numparse.Fixed2(p.Subtotal))
	fmt.Fprintf(&b, "total=%s\n", numparse.Fixed2(p.Total))
	writeKVGroup(&b, "iva", p.IVA)
	writeKVGroup(&b, "percepciones", p.Percepciones)
	writeKVGroup(&b, "retenciones", p.Retenciones)
	return b.Bytes()
}

func writeKVGroup(b *bytes.Buffer, prefix string, a models.Amounts) {
	for _, e := range nonZero(a) {
		fmt.Fprintf(b, "%s.%s=%s\n", prefix, e.Key, numparse.Fixed2(e.Value))
	}
}

// ParseKV reads a payload rendered by KV. Blank lines and lines starting
// with # are ignored.
func ParseKV(data []byte) (models.Payload, error) {
	p := models.Payload{
		IVA:          models.Amounts{},
		Percepciones: models.Amounts{},
		Retenciones:  models.Amounts{},
	}

	sc := bufio.NewScanner(bytes.NewReader(data))
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			return models.Payload{}, fmt.Errorf("line %d: missing '='", n)
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)

		var err error
		switch {
		case key == "numero":
			p.Numero = value
		case key == "fecha":
			p.Fecha = value
		case key == "cuit":
			p.CUIT = value
		case key == "subtotal":
			p.Subtotal, err = parseAmount(key, value)
		case key == "total":
			p.Total, err = parseAmount(key, value)
		default:
			group, sub, _ := strings.Cut(key, ".")
			var v float64
			if v, err = parseAmount(key, value); err != nil {
				break
			}
			switch group {
			case "iva":
				p.IVA = append(p.IVA, models.Amount{Key: sub, Value: v})
			case "percepciones":
				p.Percepciones = append(p.Percepciones, models.Amount{Key: sub, Value: v})
			case "retenciones":
				p.Retenciones = append(p.Retenciones, models.Amount{Key: sub, Value: v})
			default:
				err = fmt.Errorf("unknown key %q", key)
			}
		}
		if err != nil {
			return models.Payload{}, fmt.Errorf("line %d: %w", n, err)
		}
	}
	if err := sc.Err(); err != nil {
		return models.Payload{}, err
	}
	return p, nil
}
