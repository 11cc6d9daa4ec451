package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturaIA/factura-extractor-ar/internal/models"
)

func samplePayload() models.Payload {
	return models.Payload{
		Numero:   "0003-00012345",
		Fecha:    "2024-03-15",
		CUIT:     "30123456789",
		Subtotal: 1000,
		Total:    1253.456,
		IVA: models.Amounts{
			{Key: "21", Value: 210},
			{Key: "10.5", Value: 10.5},
			{Key: "otros", Value: 0},
		},
		Percepciones: models.Amounts{
			{Key: "percepcion_iibb_bs_as", Value: 30.25},
			{Key: "percepcion_iva", Value: 0.004},
		},
		Retenciones: models.Amounts{
			{Key: "retencion_ganancias", Value: 2.7},
		},
	}
}

// expected is what every format must give back: amounts fixed to two
// decimals and zero entries gone
func expected() models.Payload {
	return models.Payload{
		Numero:       "0003-00012345",
		Fecha:        "2024-03-15",
		CUIT:         "30123456789",
		Subtotal:     1000,
		Total:        1253.46,
		IVA:          models.Amounts{{Key: "21", Value: 210}, {Key: "10.5", Value: 10.5}},
		Percepciones: models.Amounts{{Key: "percepcion_iibb_bs_as", Value: 30.25}},
		Retenciones:  models.Amounts{{Key: "retencion_ganancias", Value: 2.7}},
	}
}

func TestRoundTrip(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatKV, FormatINI} {
		t.Run(string(f), func(t *testing.T) {
			data, err := Render(f, samplePayload())
			require.NoError(t, err)

			got, err := Parse(f, data)
			require.NoError(t, err)
			assert.Equal(t, expected(), got)

			again, err := Render(f, got)
			require.NoError(t, err)
			assert.Equal(t, string(data), string(again))
		})
	}
}

func TestRoundTripEmptyPayload(t *testing.T) {
	empty := models.Payload{IVA: models.Amounts{}, Percepciones: models.Amounts{}, Retenciones: models.Amounts{}}
	for _, f := range []Format{FormatJSON, FormatKV, FormatINI} {
		t.Run(string(f), func(t *testing.T) {
			data, err := Render(f, models.Payload{})
			require.NoError(t, err)

			got, err := Parse(f, data)
			require.NoError(t, err)
			assert.Equal(t, empty, got)
		})
	}
}

func TestJSON(t *testing.T) {
	data, err := JSON(samplePayload())
	require.NoError(t, err)

	s := string(data)
	assert.Contains(t, s, `"subtotal": 1000.00`)
	assert.Contains(t, s, `"total": 1253.46`)
	assert.Contains(t, s, `"10.5": 10.50`)
	assert.NotContains(t, s, "otros")
	assert.Less(t, strings.Index(s, `"21"`), strings.Index(s, `"10.5"`))
}

func TestKV(t *testing.T) {
	want := `numero=0003-00012345
fecha=2024-03-15
cuit=30123456789
subtotal=1000.00
total=1253.46
iva.21=210.00
iva.10.5=10.50
percepciones.percepcion_iibb_bs_as=30.25
retenciones.retencion_ganancias=2.70
`
	assert.Equal(t, want, string(KV(samplePayload())))
}

func TestParseKVErrors(t *testing.T) {
	_, err := ParseKV([]byte("numero"))
	assert.Error(t, err)

	_, err = ParseKV([]byte("total=abc"))
	assert.Error(t, err)

	_, err = ParseKV([]byte("otro.x=1.00"))
	assert.Error(t, err)

	p, err := ParseKV([]byte("# comentario\n\nnumero = 0001-00000001\n"))
	require.NoError(t, err)
	assert.Equal(t, "0001-00000001", p.Numero)
}

func TestINISections(t *testing.T) {
	data, err := INI(samplePayload())
	require.NoError(t, err)

	s := string(data)
	for _, sec := range []string{"[factura]", "[iva]", "[percepciones]", "[retenciones]"} {
		assert.Contains(t, s, sec)
	}
	assert.Less(t, strings.Index(s, "[factura]"), strings.Index(s, "[iva]"))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = ParseFormat("INI")
	require.NoError(t, err)
	assert.Equal(t, FormatINI, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)

	assert.Equal(t, "text/plain; charset=utf-8", FormatKV.ContentType())
}
