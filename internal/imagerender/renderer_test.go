package imagerender

import (
	"errors"
	"image"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/local/pdfplanner/internal/pdfdoc"
)

type fakeSource struct {
	pages  int
	box    image.Rectangle
	fail   map[int]error
	closed int
	dpis   []float64
}

func (s *fakeSource) NumPage() int { return s.pages }

func (s *fakeSource) Bound(int) (image.Rectangle, error) { return s.box, nil }

func (s *fakeSource) ImageDPI(page int, dpi float64) (image.Image, error) {
	if err := s.fail[page]; err != nil {
		return nil, err
	}
	s.dpis = append(s.dpis, dpi)
	w := int(float64(s.box.Dx())*dpi/72) + 1 // MuPDF rounds outwards
	h := int(float64(s.box.Dy())*dpi/72) + 1
	return image.NewRGBA(image.Rect(0, 0, w, h)), nil
}

func (s *fakeSource) Close() error { s.closed++; return nil }

type countingOpener struct {
	src   *fakeSource
	opens int
}

func (o *countingOpener) Open(string) (Source, error) {
	o.opens++
	return o.src, nil
}

func testDoc(pages int) *pdfdoc.Document {
	return &pdfdoc.Document{ID: uuid.New(), Path: "in.pdf", PageCount: pages}
}

func TestPageRenderer_RenderPage(t *testing.T) {
	src := &fakeSource{pages: 3, box: image.Rect(0, 0, 612, 792)}
	op := &countingOpener{src: src}
	r := NewPageRendererWith(op)
	doc := testDoc(3)

	ras, err := r.RenderPage(doc, 1, 153)
	require.NoError(t, err)
	assert.Equal(t, 153, ras.Width)
	assert.Equal(t, ras.Width, ras.Image.Bounds().Dx())
	assert.InDelta(t, 198, ras.Height, 1)
	assert.InDelta(t, 18.0, src.dpis[0], 0.001)

	_, err = r.RenderPage(doc, 2, 153)
	require.NoError(t, err)
	assert.Equal(t, 1, op.opens, "source stays open for the same document")

	_, err = r.RenderPage(testDoc(3), 0, 153)
	require.NoError(t, err)
	assert.Equal(t, 2, op.opens, "new identity reopens")
	assert.Equal(t, 1, src.closed)

	require.NoError(t, r.Close())
	assert.Equal(t, 2, src.closed)
}

func TestPageRenderer_Errors(t *testing.T) {
	boom := errors.New("bad content stream")
	src := &fakeSource{pages: 2, box: image.Rect(0, 0, 100, 100), fail: map[int]error{1: boom}}
	r := NewPageRendererWith(&countingOpener{src: src})
	doc := testDoc(2)

	_, err := r.RenderPage(doc, 1, 50)
	assert.ErrorIs(t, err, boom)

	_, err = r.RenderPage(doc, 5, 50)
	assert.Error(t, err)

	_, err = r.RenderPage(doc, 0, 0)
	assert.Error(t, err)

	_, err = r.RenderPage(nil, 0, 50)
	assert.Error(t, err)

	failing := NewPageRendererWith(OpenerFunc(func(string) (Source, error) { return nil, boom }))
	_, err = failing.RenderPage(doc, 0, 50)
	assert.ErrorIs(t, err, boom)
}
