package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturaIA/factura-extractor-ar/internal/models"
)

func TestReconcileSynthesizesMissingTotal(t *testing.T) {
	v := NewTotalsValidator()

	got, warnings := v.Reconcile(models.Totals{
		Subtotal:          models.Float(80),
		IVA:               models.Float(16.8),
		PercepcionesTotal: models.Float(0),
	})

	require.NotNil(t, got.Total)
	assert.Equal(t, 96.8, *got.Total)
	assert.Equal(t, []string{WarningTotalEstimated}, warnings)
}

func TestReconcileTolerance(t *testing.T) {
	tests := []struct {
		name     string
		total    float64
		warnings int
	}{
		{"exact", 126, 0},
		{"within tolerance", 126.04, 0},
		{"below within tolerance", 125.97, 0},
		{"beyond tolerance", 126.10, 1},
		{"far off", 200, 1},
	}

	v := NewTotalsValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := models.Totals{
				Subtotal:          models.Float(100),
				IVA:               models.Float(21),
				PercepcionesTotal: models.Float(5),
				Total:             models.Float(tt.total),
			}
			got, warnings := v.Reconcile(in)
			assert.Len(t, warnings, tt.warnings)
			assert.Equal(t, tt.total, *got.Total, "total is never corrected")
		})
	}
}

func TestReconcileDiscrepancyMessage(t *testing.T) {
	_, warnings := NewTotalsValidator().Reconcile(models.Totals{
		Subtotal: models.Float(100),
		IVA:      models.Float(21),
		Total:    models.Float(130),
	})
	assert.Equal(t, []string{"Diferencia contable: total(130.0) != subtotal+iva+percepciones(121.0)"}, warnings)
}

func TestReconcileDoesNotMutateInput(t *testing.T) {
	in := models.Totals{Subtotal: models.Float(10)}
	_, _ = NewTotalsValidator().Reconcile(in)
	assert.Nil(t, in.Total)
}

func TestCustomTolerance(t *testing.T) {
	v := NewTotalsValidatorWithTolerance(1)
	_, warnings := v.Reconcile(models.Totals{Subtotal: models.Float(100), Total: models.Float(100.5)})
	assert.Empty(t, warnings)

	assert.Equal(t, DefaultTolerance, NewTotalsValidatorWithTolerance(0).tolerance)
}

func TestClassifyRuleOrder(t *testing.T) {
	n := NewTaxNormalizer()

	tests := []struct {
		desc string
		key  string
	}{
		{"RETENCION IVA", "retencion_iva"},
		{"Retención I.V.A. / RET IVA", "retencion_iva"},
		{"RET. GANANCIAS", "retencion_ganancias"},
		{"RETENCION IIBB ARBA", "retencion_iibb_pcia_bs_as"},
		{"RET IIBB RIO NEGRO", "retencion_iibb_pcia_rio_negro"},
		{"RETENCIÓN IIBB NEUQUÉN", "retencion_iibb_pcia_neuquen"},
		{"RET SIRTAC", "retencion_iibb_sirtac"},
		{"PERCEPCION IVA", "percepcion_iva"},
		{"PERCEP. IVA RG 3337", "percepcion_iva"},
		{"RG 3337 3%", "percepcion_iva"},
		{"R.G. 2126", "percepcion_iva"},
		{"Perc. IIBB Buenos Aires", "percepcion_iibb_bs_as"},
		{"IIBB CABA", "percepcion_iibb_caba"},
		{"Percepcion AGIP", "percepcion_iibb_caba"},
		{"PERC IIBB NEUQUEN", "percepcion_iibb_neuquen"},
		{"IB CONV. NEUQ", "percepcion_iibb_neuquen"},
		{"PERC RIO NEG", "percepcion_iibb_rio_negro"},
		{"IIBB LA PAMPA", "percepcion_iibb_la_pampa"},
		{"IIBB CÓRDOBA", "percepcion_iibb_cordoba"},
		{"IIBB CHUBUT", "percepcion_iibb_chubut"},
		{"IIBB MENDOZA", "percepcion_iibb_mendoza"},
		{"IIBB SANTA CRUZ", "percepcion_iibb_santa_cruz"},
		{"IIBB SANTA FE", "percepcion_iibb_santa_fe"},
		{"IIBB TUCUMÁN", "percepcion_iibb_tucuman"},
		{"IIBB ENTRE RIOS", "percepcion_iibb_entre_rios"},
		{"IIBB LA RIOJA", "percepcion_iibb_la_rioja"},
		{"Perc. DN B70/07", "percepcion_iibb_bs_as"},
		{"IB BA 1,5%", "percepcion_iibb_bs_as"},
		{"PERCEPCION GANANCIAS", "percepcion_ganancias"},
		{"IMPUESTO AL COMBUSTIBLE", "impuesto_combustible"},
		{"ITC", "impuesto_combustible"},
		{"IMPUESTO DE SELLOS", "impuestos_y_sellados"},
		{"IMPUESTOS VARIOS", "impuestos_y_sellados"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			key, ok := n.Classify(tt.desc)
			assert.True(t, ok)
			assert.Equal(t, tt.key, key)
		})
	}

	_, ok := n.Classify("PERCEP. IIBB")
	assert.False(t, ok)
}

func TestRetencionIVAIsNotPercepcion(t *testing.T) {
	schema, warnings := NewTaxNormalizer().Normalize(models.Totals{
		PercepcionesDetalle: []models.PercepcionItem{{Desc: "RETENCION IVA", Monto: 12.5}},
	})
	assert.Empty(t, warnings)

	ret, _ := schema.Get("retencion_iva")
	require.NotNil(t, ret)
	assert.Equal(t, 12.5, *ret)

	perc, _ := schema.Get("percepcion_iva")
	assert.Nil(t, perc)
}

func TestNormalizeKeepsEveryKey(t *testing.T) {
	schema, _ := NewTaxNormalizer().Normalize(models.Totals{})

	require.Len(t, schema, len(models.FixedTaxKeys))
	for i, key := range models.FixedTaxKeys {
		assert.Equal(t, key, schema[i].Key)
		assert.Nil(t, schema[i].Amount)
	}
}

func TestNormalizeSumsPerKey(t *testing.T) {
	schema, warnings := NewTaxNormalizer().Normalize(models.Totals{
		PercepcionesDetalle: []models.PercepcionItem{
			{Desc: "IIBB CABA", Monto: 10.105},
			{Desc: "AGIP", Monto: 0.10},
			{Desc: "Percepción IVA", Monto: 3},
			{Desc: "Cargo administrativo", Monto: 1},
		},
	})

	caba, _ := schema.Get("percepcion_iibb_caba")
	assert.Equal(t, 10.21, *caba)
	iva, _ := schema.Get("percepcion_iva")
	assert.Equal(t, 3.0, *iva)
	assert.Equal(t, []string{"Percepción sin clasificar: Cargo administrativo (1.00)"}, warnings)
}

func TestNormalizeSynthesizesItemFromTotal(t *testing.T) {
	n := NewTaxNormalizer()
	n.rules = append([]taxRule{rule(`^PERCEP\. IIBB$`, "percepcion_iibb_bs_as")}, n.rules...)

	schema, warnings := n.Normalize(models.Totals{PercepcionesTotal: models.Float(7.25)})

	assert.Empty(t, warnings)
	got, _ := schema.Get("percepcion_iibb_bs_as")
	require.NotNil(t, got)
	assert.Equal(t, 7.25, *got)
}

func TestNormalizeReportsUnmatchedTotal(t *testing.T) {
	_, warnings := NewTaxNormalizer().Normalize(models.Totals{PercepcionesTotal: models.Float(5)})
	assert.Equal(t, []string{"Percepción sin clasificar: PERCEP. IIBB (5.00)"}, warnings)
}

func TestIVABucketsByRate(t *testing.T) {
	got := NewTaxNormalizer().IVABuckets(models.Totals{
		IVA: models.Float(60),
		IVADetalle: []models.IVAItem{
			{Alicuota: models.String("10.5"), Monto: 10},
			{Alicuota: models.String("21"), Monto: 50},
		},
	})

	assert.Equal(t, models.Amounts{{Key: "21", Value: 50}, {Key: "10.5", Value: 10}}, got)
}

func TestIVABucketsSnapAndOrder(t *testing.T) {
	got := NewTaxNormalizer().IVABuckets(models.Totals{
		IVADetalle: []models.IVAItem{
			{Alicuota: nil, Monto: 1},
			{Alicuota: models.String("19"), Monto: 4},
			{Alicuota: models.String("21.00"), Monto: 20},
			{Alicuota: models.String("7,5"), Monto: 3},
			{Alicuota: models.String("27.005"), Monto: 2},
			{Alicuota: models.String("20,995%"), Monto: 1.5},
		},
	})

	assert.Equal(t, models.Amounts{
		{Key: "27", Value: 2},
		{Key: "21", Value: 21.5},
		{Key: "7.5", Value: 3},
		{Key: "19", Value: 4},
		{Key: OtrosIVA, Value: 1},
	}, got)
}

func TestIVABucketsWithoutRates(t *testing.T) {
	n := NewTaxNormalizer()

	got := n.IVABuckets(models.Totals{
		IVA:        models.Float(16.8),
		IVADetalle: []models.IVAItem{{Monto: 8.4}, {Monto: 8.4}},
	})
	assert.Equal(t, models.Amounts{{Key: OtrosIVA, Value: 16.8}}, got)

	got = n.IVABuckets(models.Totals{IVA: models.Float(5)})
	assert.Equal(t, models.Amounts{{Key: OtrosIVA, Value: 5}}, got)

	assert.Empty(t, n.IVABuckets(models.Totals{}))
}

func TestISODate(t *testing.T) {
	tests := map[string]string{
		"15/03/2024":          "2024-03-15",
		"15-03-2024":          "2024-03-15",
		"15.03.2024":          "2024-03-15",
		"2024-03-15":          "2024-03-15",
		"2024/03/15":          "2024-03-15",
		"15/03/2024 10:22:01": "2024-03-15",
		"15/03/24":            "15/03/24",
		"":                    "",
	}
	for in, want := range tests {
		assert.Equal(t, want, ISODate(in), in)
	}
}

func TestBuildPayload(t *testing.T) {
	r := models.NewRecord()
	r.Numero = "0003-00012345"
	r.Fecha = "15/03/2024"
	r.CUITProveedor = "30-12345678-9"
	r.CUITCliente = "20-87654321-3"
	r.Subtotal = models.Float(100)
	r.IVA = models.Float(21)
	r.IVADetalle = []models.IVAItem{{Alicuota: models.String("21.00"), Monto: 21}}
	r.Total = models.Float(133)
	r.TributosNormalizados = models.NewTaxSchema()
	r.TributosNormalizados[1].Amount = models.Float(5)  // percepcion_iibb_bs_as
	r.TributosNormalizados[17].Amount = models.Float(7) // retencion_iva
	r.TributosNormalizados[2].Amount = models.Float(0)  // percepcion_ganancias

	p := NewPayloadBuilder(nil, false).Build(r)

	assert.Equal(t, "0003-00012345", p.Numero)
	assert.Equal(t, "2024-03-15", p.Fecha)
	assert.Equal(t, "30123456789", p.CUIT)
	assert.Equal(t, 100.0, p.Subtotal)
	assert.Equal(t, 133.0, p.Total)
	assert.Equal(t, models.Amounts{{Key: "21", Value: 21}}, p.IVA)
	assert.Equal(t, models.Amounts{{Key: "percepcion_iibb_bs_as", Value: 5}}, p.Percepciones)
	assert.Equal(t, models.Amounts{{Key: "retencion_iva", Value: 7}}, p.Retenciones)

	p = NewPayloadBuilder(nil, true).Build(r)
	assert.Equal(t, "20876543213", p.CUIT)
}

func TestBuildPayloadEstimatesSubtotal(t *testing.T) {
	r := models.NewRecord()
	r.IVA = models.Float(21)
	r.Total = models.Float(126)
	r.TributosNormalizados = models.NewTaxSchema()
	r.TributosNormalizados[0].Amount = models.Float(5)

	p := NewPayloadBuilder(nil, false).Build(r)
	assert.Equal(t, 100.0, p.Subtotal)

	r.Total = models.Float(26)
	p = NewPayloadBuilder(nil, false).Build(r)
	assert.Equal(t, 0.0, p.Subtotal)
}

func TestBuildPayloadEmptyRecord(t *testing.T) {
	r := models.NewRecord()
	r.TributosNormalizados = models.NewTaxSchema()

	p := NewPayloadBuilder(nil, false).Build(r)
	assert.Empty(t, p.Numero)
	assert.Empty(t, p.CUIT)
	assert.NotNil(t, p.IVA)
	assert.NotNil(t, p.Percepciones)
	assert.NotNil(t, p.Retenciones)
	assert.Equal(t, 0.0, p.Subtotal)
}
