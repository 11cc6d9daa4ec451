package ocr

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTSV = "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
	"1\t1\t0\t0\t0\t0\t0\t0\t2480\t3508\t-1\t\n" +
	"4\t1\t1\t1\t1\t0\t100\t90\t600\t40\t-1\t\n" +
	"5\t1\t1\t1\t1\t1\t100\t90\t200\t40\t96.5\tGUERRINI\n" +
	"5\t1\t1\t1\t1\t2\t310\t90\t250\t40\t95.1\tNEUMATICOS\n" +
	"5\t1\t1\t1\t1\t3\t570\t90\t80\t40\t91.0\tS.A.\n" +
	"5\t1\t1\t1\t2\t1\t100\t140\t200\t40\t88.0\tFACTURA\n" +
	"5\t1\t1\t1\t2\t2\t310\t140\t20\t40\t30.0\t \n" +
	"5\t1\t2\t1\t1\t1\t100\t400\t200\t40\t90.0\tSUBTOTAL\n" +
	"5\t1\t2\t1\t1\t2\t900\t400\t120\t40\t92.0\t100,00\n"

func TestParseTSV(t *testing.T) {
	words, ok := ParseTSV(strings.NewReader(sampleTSV))
	require.True(t, ok)
	require.Len(t, words, 6)

	assert.Equal(t, "GUERRINI", words[0].Text)
	assert.Equal(t, 96.5, words[0].Confidence)
	assert.Equal(t, LineKey{Page: 1, Block: 1, Par: 1, Line: 1}, words[0].Line)
	assert.Equal(t, BoundingBox{X: 100, Y: 90, Width: 200, Height: 40}, words[0].Box)
}

func TestJoinLinesUsesFullLineIdentity(t *testing.T) {
	words, ok := ParseTSV(strings.NewReader(sampleTSV))
	require.True(t, ok)

	// Block 2 restarts line_num at 1; it must still start a new line.
	assert.Equal(t, []string{
		"GUERRINI NEUMATICOS S.A.",
		"FACTURA",
		"SUBTOTAL 100,00",
	}, JoinLines(words))
}

func TestParseTSVWithoutLineMetadata(t *testing.T) {
	_, ok := ParseTSV(strings.NewReader("level\tconf\ttext\n5\t90\thola\n"))
	assert.False(t, ok)

	_, ok = ParseTSV(strings.NewReader(""))
	assert.False(t, ok)
}

func TestJoinLinesEmpty(t *testing.T) {
	assert.Empty(t, JoinLines(nil))
}

type fakeRenderer struct {
	pages [][]byte
	err   error
}

func (f fakeRenderer) RenderPages(context.Context, string, float64) ([][]byte, error) {
	return f.pages, f.err
}

type fakeRecognizer map[string][]string

func (f fakeRecognizer) Recognize(_ context.Context, image []byte) ([]string, error) {
	lines, ok := f[string(image)]
	if !ok {
		return nil, errors.New("unreadable page")
	}
	return lines, nil
}

func TestEngineReadsPagesInOrder(t *testing.T) {
	e := NewEngineWith(
		fakeRenderer{pages: [][]byte{[]byte("p1"), []byte("bad"), []byte("p2")}},
		nil,
		fakeRecognizer{"p1": {"uno", "dos"}, "p2": {"tres"}},
		0, nil,
	)

	lines, err := e.ReadLines(context.Background(), "scan.pdf")
	require.NoError(t, err)
	assert.Equal(t, []string{"uno", "dos", "tres"}, lines)
	assert.Equal(t, float64(DefaultDPI), e.dpi)
}

func TestEngineErrors(t *testing.T) {
	e := NewEngineWith(fakeRenderer{err: errors.New("broken")}, nil, fakeRecognizer{}, 150, nil)
	_, err := e.ReadLines(context.Background(), "broken.pdf")
	assert.Error(t, err)

	e = NewEngineWith(fakeRenderer{}, nil, fakeRecognizer{}, 150, nil)
	_, err = e.ReadLines(context.Background(), "empty.pdf")
	assert.ErrorIs(t, err, ErrNoPages)
}

func TestDisabledPreprocessorKeepsImage(t *testing.T) {
	img := []byte("png bytes")
	assert.Equal(t, img, NewPreprocessor(false, nil).Process(context.Background(), img))
}

func TestFitzRendererMissingFile(t *testing.T) {
	_, err := FitzRenderer{}.RenderPages(context.Background(), "/nonexistent/factura.pdf", 0)
	assert.Error(t, err)
}
