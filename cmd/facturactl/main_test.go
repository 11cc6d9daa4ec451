package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturaIA/factura-extractor-ar/internal/auth"
)

const guerriniText = `GUERRINI NEUMATICOS S.A.
FACTURA
A
CUIT: 30-12345678-9
Nro. Comprobante: 0003-00012345
Fecha de Emisión: 15/03/2024
ALVAREZ NEUMATICOS SRL
CUIT: 20-87654321-3
SUBTOTAL
IVA 21%
PERCEPCION IIBB
TOTAL
100,00
21,00
5,00
126,00
CAE N°: 74123456789012
`

const vendorsYAML = `GUERRINI:
  detect:
    names: ["GUERRINI NEUMATICOS"]
    cuits: ["30-12345678-9"]
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yaml")}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestExtractTextKV(t *testing.T) {
	text := writeTemp(t, "factura.txt", guerriniText)
	vendorsFile := writeTemp(t, "vendors.yaml", vendorsYAML)

	out, err := execute(t, "extract", text, "--text", "--vendors", vendorsFile, "--format", "kv")
	require.NoError(t, err)
	assert.Equal(t, `numero=0003-00012345
fecha=2024-03-15
cuit=30123456789
subtotal=100.00
total=126.00
iva.21=21.00
`, out)
}

func TestExtractTextDetailToFile(t *testing.T) {
	text := writeTemp(t, "factura.txt", guerriniText)
	dest := filepath.Join(t.TempDir(), "out.json")

	_, err := execute(t, "extract", text, "--text", "--vendor", "guerrini", "--detail", "-o", dest)
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	s := string(data)
	assert.Contains(t, s, `"vendor": "GUERRINI"`)
	assert.Contains(t, s, `"file": "factura.txt"`)
	assert.Contains(t, s, `"tributos_normalizados"`)
}

func TestExtractErrors(t *testing.T) {
	text := writeTemp(t, "factura.txt", guerriniText)

	_, err := execute(t, "extract", text, "--text", "--vendor", "FATE")
	assert.ErrorContains(t, err, "unknown vendor")

	_, err = execute(t, "extract", text, "--text", "--format", "xml")
	assert.Error(t, err)

	_, err = execute(t, "extract", filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)

	_, err = execute(t, "extract")
	assert.Error(t, err)
}

func TestConvert(t *testing.T) {
	kv := writeTemp(t, "payload.kv", "numero=0001-00000001\ntotal=10.00\niva.21=1.74\n")

	out, err := execute(t, "convert", kv, "--from", "kv", "--to", "ini")
	require.NoError(t, err)
	assert.Contains(t, out, "[factura]")
	assert.Contains(t, out, "0001-00000001")
	assert.Contains(t, out, "[iva]")
}

func TestVendorsCommand(t *testing.T) {
	vendorsFile := writeTemp(t, "vendors.yaml", vendorsYAML)

	out, err := execute(t, "vendors", "--vendors", vendorsFile)
	require.NoError(t, err)
	assert.Contains(t, out, "  GUERRINI\n  PIRELLI\n")
	assert.Contains(t, out, "GUERRINI names: GUERRINI NEUMATICOS")
	assert.Contains(t, out, "GUERRINI cuit: 30-12345678-9")
}

func TestTokenCommand(t *testing.T) {
	out, err := execute(t, "token", "--secret", "s3cr3t", "--user", "contable")
	require.NoError(t, err)

	claims, err := auth.ParseToken("s3cr3t", strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "contable", claims.UserID)

	t.Setenv("JWT_SECRET", "")
	_, err = execute(t, "token")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "facturactl "))
}
