package services

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/facturaIA/factura-extractor-ar/internal/models"
	"github.com/facturaIA/factura-extractor-ar/internal/numparse"
)

// GenericPercepcionDesc labels the item built from a percepciones total that
// came without detail lines
const GenericPercepcionDesc = "PERCEP. IIBB"

// OtrosIVA is the bucket for IVA amounts without a usable rate
const OtrosIVA = "otros"

type taxRule struct {
	pattern *regexp.Regexp
	key     string
}

func rule(pattern, key string) taxRule {
	return taxRule{pattern: regexp.MustCompile(`(?i)` + pattern), key: key}
}

// Order matters: the first matching rule wins. Retenciones go first so a
// "RET. IIBB" line never lands in a percepción, provinces precede the generic
// catch-alls and the bare IMPUESTOS rule is last.
var taxRules = []taxRule{
	// Retenciones
	rule(`\bRET(ENCI[ÓO]N|\.?)\b.*\bIVA\b`, "retencion_iva"),
	rule(`\bRET(ENCI[ÓO]N|\.?)\b.*\bGANANCIAS?\b`, "retencion_ganancias"),
	rule(`\bRET(ENCI[ÓO]N|\.?)\b.*\bIIBB\b.*\b(BUENOS\s*AIRES|ARBA|P\.?B\.?A)\b`, "retencion_iibb_pcia_bs_as"),
	rule(`\bRET(ENCI[ÓO]N|\.?)\b.*\bIIBB\b.*\bR[ÍI]O\s*NEGRO\b`, "retencion_iibb_pcia_rio_negro"),
	rule(`\bRET(ENCI[ÓO]N|\.?)\b.*\bIIBB\b.*\bNEUQU[ÉE]N\b`, "retencion_iibb_pcia_neuquen"),
	rule(`\bRET(ENCI[ÓO]N|\.?)\b.*\bSIRTAC\b`, "retencion_iibb_sirtac"),

	// Percepciones IVA (AFIP)
	rule(`\bPERCEP(C?CI[ÓO]N|\.?)\b.*\bIVA\b`, "percepcion_iva"),
	rule(`\bRG\s*3337\b|\bR\.?G\.?\s*3337\b|\bDGI\s*3337\b`, "percepcion_iva"),
	rule(`\bRG\s*2126\b|\bR\.?G\.?\s*2126\b`, "percepcion_iva"),

	// Percepciones IIBB by province
	rule(`\bIIBB\b.*\b(BUENOS\s*AIRES|ARBA|P\.?B\.?A)\b`, "percepcion_iibb_bs_as"),
	rule(`\bIIBB\b.*\bCABA\b|\bAGIP\b`, "percepcion_iibb_caba"),
	rule(`\bIIBB\b.*\bNEUQU[ÉE]N\b|\bIB\s*(CONV\.?|CONVENIO)\s*NEUQ`, "percepcion_iibb_neuquen"),
	rule(`\bIIBB\b.*\bR[ÍI]O\s*NEGRO\b|\bRIO\s*NEG\b|\bIB\s*(CONV\.?|CONVENIO)\s*R[ÍI]O\s*NEG`, "percepcion_iibb_rio_negro"),
	rule(`\bIIBB\b.*\bLA\s*PAMPA\b`, "percepcion_iibb_la_pampa"),
	rule(`\bIIBB\b.*\bC[ÓO]RDOBA\b`, "percepcion_iibb_cordoba"),
	rule(`\bIIBB\b.*\bCHUBUT\b`, "percepcion_iibb_chubut"),
	rule(`\bIIBB\b.*\bMENDOZA\b`, "percepcion_iibb_mendoza"),
	rule(`\bIIBB\b.*\bSANTA\s*CRUZ\b`, "percepcion_iibb_santa_cruz"),
	rule(`\bIIBB\b.*\bSANTA\s*FE\b`, "percepcion_iibb_santa_fe"),
	rule(`\bIIBB\b.*\bTUCUM[ÁA]N\b`, "percepcion_iibb_tucuman"),
	rule(`\bIIBB\b.*\bENTRE\s*R[IÍ]OS\b`, "percepcion_iibb_entre_rios"),
	rule(`\bIIBB\b.*\bLA\s*RIOJA\b`, "percepcion_iibb_la_rioja"),

	// DN B70/07 is Buenos Aires too
	rule(`\bDN\s*B70(?:/0?7)?\b|\bIB\s*BA\b`, "percepcion_iibb_bs_as"),

	rule(`\bPERCEP(C?CI[ÓO]N|\.?)\b.*\bGANANCIAS?\b`, "percepcion_ganancias"),

	// Others
	rule(`IMPUESTO\s+AL\s+COMBUSTIBLE|ITC\b`, "impuesto_combustible"),
	rule(`\bSELLOS\b|\bIMPUESTOS?\s+VARIOS\b|\bIMPUESTOS?\b`, "impuestos_y_sellados"),
}

// knownIVARates are the Argentine IVA brackets in output order
var knownIVARates = []struct {
	rate float64
	key  string
}{
	{27, "27"},
	{21, "21"},
	{10.5, "10.5"},
	{5, "5"},
	{2.5, "2.5"},
}

const rateEpsilon = 0.01

// TaxNormalizer maps free-text tax lines onto the fixed schema
type TaxNormalizer struct {
	rules []taxRule
}

// NewTaxNormalizer creates a normalizer with the built-in rule table
func NewTaxNormalizer() *TaxNormalizer {
	return &TaxNormalizer{rules: taxRules}
}

// Classify returns the schema key of the first rule matching desc
func (n *TaxNormalizer) Classify(desc string) (string, bool) {
	up := strings.ToUpper(desc)
	for _, r := range n.rules {
		if r.pattern.MatchString(up) {
			return r.key, true
		}
	}
	return "", false
}

// Normalize sums the percepción and retención items of t into the fixed
// schema. Items no rule recognizes are left out and reported as warnings.
func (n *TaxNormalizer) Normalize(t models.Totals) (models.TaxSchema, []string) {
	schema := models.NewTaxSchema()
	index := make(map[string]int, len(schema))
	for i, e := range schema {
		index[e.Key] = i
	}

	items := t.PercepcionesDetalle
	if len(items) == 0 && t.PercepcionesTotal != nil {
		items = []models.PercepcionItem{{Desc: GenericPercepcionDesc, Monto: *t.PercepcionesTotal}}
	}

	var warnings []string
	for _, it := range items {
		key, ok := n.Classify(it.Desc)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("Percepción sin clasificar: %s (%s)", it.Desc, numparse.Fixed2(it.Monto)))
			continue
		}
		e := &schema[index[key]]
		e.Amount = models.Float(numparse.Round2(models.Value(e.Amount) + it.Monto))
	}
	return schema, warnings
}

// IVABuckets groups the IVA detail by rate. Known brackets come first in
// canonical order, then other rates ascending, then "otros".
func (n *TaxNormalizer) IVABuckets(t models.Totals) models.Amounts {
	sums := make(map[string]float64)
	rates := make(map[string]float64)
	tagged := false

	for _, it := range t.IVADetalle {
		key, rate, ok := canonicalRate(it.Alicuota)
		if !ok {
			key = OtrosIVA
		} else {
			tagged = true
			rates[key] = rate
		}
		sums[key] = numparse.Round2(sums[key] + it.Monto)
	}

	if !tagged {
		sums = map[string]float64{OtrosIVA: numparse.Round2(models.Value(t.IVA))}
	}

	var out models.Amounts
	add := func(key string) {
		if v, ok := sums[key]; ok && v != 0 {
			out = append(out, models.Amount{Key: key, Value: v})
		}
	}

	for _, k := range knownIVARates {
		add(k.key)
	}

	var others []string
	for key := range rates {
		if !isKnownRate(key) {
			others = append(others, key)
		}
	}
	sort.Slice(others, func(i, j int) bool { return rates[others[i]] < rates[others[j]] })
	for _, key := range others {
		add(key)
	}

	add(OtrosIVA)
	return out
}

// canonicalRate turns "21.00", "10,5" or "21%" into its bucket key
func canonicalRate(alicuota *string) (key string, rate float64, ok bool) {
	if alicuota == nil {
		return "", 0, false
	}
	s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(*alicuota), "%"))
	rate, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return "", 0, false
	}
	for _, k := range knownIVARates {
		if math.Abs(rate-k.rate) <= rateEpsilon {
			return k.key, k.rate, true
		}
	}
	return strconv.FormatFloat(rate, 'f', -1, 64), rate, true
}

func isKnownRate(key string) bool {
	for _, k := range knownIVARates {
		if k.key == key {
			return true
		}
	}
	return false
}
