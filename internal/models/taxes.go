package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FixedTaxKeys is the closed, ordered set of canonical tax categories
// downstream accounting expects.
var FixedTaxKeys = []string{
	// Percepciones
	"percepcion_iva",
	"percepcion_iibb_bs_as",
	"percepcion_ganancias",
	"percepcion_iibb_la_pampa",
	"percepcion_iibb_rio_negro",
	"percepcion_iibb_neuquen",
	"percepcion_iibb_caba",
	"percepcion_iibb_cordoba",
	"percepcion_iibb_chubut",
	"percepcion_iibb_mendoza",
	"percepcion_iibb_santa_cruz",
	"percepcion_iibb_santa_fe",
	"percepcion_iibb_tucuman",
	"percepcion_iibb_entre_rios",
	"percepcion_iibb_la_rioja",
	"impuesto_combustible",
	"impuestos_y_sellados",
	// Retenciones
	"retencion_iva",
	"retencion_iibb_pcia_bs_as",
	"retencion_ganancias",
	"retencion_iibb_pcia_rio_negro",
	"retencion_iibb_pcia_neuquen",
	"retencion_iibb_sirtac",
}

// IsRetencion reports whether a canonical key belongs to the retenciones group
func IsRetencion(key string) bool {
	return strings.HasPrefix(key, "retencion_")
}

// TaxEntry is one slot of the fixed schema. Amount is nil when no line matched.
type TaxEntry struct {
	Key    string
	Amount *float64
}

// TaxSchema is the fixed schema in canonical order
type TaxSchema []TaxEntry

// NewTaxSchema returns a schema with every canonical key set to nil
func NewTaxSchema() TaxSchema {
	s := make(TaxSchema, len(FixedTaxKeys))
	for i, k := range FixedTaxKeys {
		s[i] = TaxEntry{Key: k}
	}
	return s
}

// Get returns the amount stored under key. ok is false for unknown keys.
func (s TaxSchema) Get(key string) (amount *float64, ok bool) {
	for _, e := range s {
		if e.Key == key {
			return e.Amount, true
		}
	}
	return nil, false
}

// MarshalJSON writes the schema as an object in canonical order
func (s TaxSchema) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if e.Amount == nil {
			buf.WriteString("null")
		} else {
			buf.WriteString(decimal.NewFromFloat(*e.Amount).StringFixed(2))
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Amount is one entry of an ordered amount map
type Amount struct {
	Key   string
	Value float64
}

// Amounts is a string-keyed amount map that keeps insertion order. Payload
// consumers rely on the IVA rates coming out in canonical order.
type Amounts []Amount

// Get returns the value stored under key
func (a Amounts) Get(key string) (float64, bool) {
	for _, e := range a {
		if e.Key == key {
			return e.Value, true
		}
	}
	return 0, false
}

// Keys returns the keys in order
func (a Amounts) Keys() []string {
	keys := make([]string, len(a))
	for i, e := range a {
		keys[i] = e.Key
	}
	return keys
}

// Sum adds every value
func (a Amounts) Sum() float64 {
	var total float64
	for _, e := range a {
		total += e.Value
	}
	return total
}

// MarshalJSON writes an object with values fixed to two decimals
func (a Amounts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(decimal.NewFromFloat(e.Value).StringFixed(2))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object keeping the order of its keys
func (a *Amounts) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*a = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("amounts: expected object, got %v", tok)
	}

	out := Amounts{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("amounts: expected string key, got %v", keyTok)
		}
		var num json.Number
		if err := dec.Decode(&num); err != nil {
			return fmt.Errorf("amounts: value for %q: %w", key, err)
		}
		v, err := num.Float64()
		if err != nil {
			return fmt.Errorf("amounts: value for %q: %w", key, err)
		}
		out = append(out, Amount{Key: key, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*a = out
	return nil
}
