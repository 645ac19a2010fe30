package imagerender

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/local/pdfplanner/internal/pdfdoc"
)

// Raster is a rendered page image and its pixel dimensions.
type Raster struct {
	Image  image.Image
	Width  int
	Height int
}

// Renderer rasterizes a page of a document to a target pixel width. Calling it
// repeatedly for the same page must not change the document.
type Renderer interface {
	RenderPage(doc *pdfdoc.Document, page, width int) (*Raster, error)
}

// PageRenderer renders pages with MuPDF. It keeps the source of the last
// document it was asked about open and reopens when the document identity
// changes.
type PageRenderer struct {
	opener Opener

	mu  sync.Mutex
	id  uuid.UUID
	src Source
}

// NewPageRenderer returns a renderer over the default go-fitz opener.
func NewPageRenderer() *PageRenderer {
	return NewPageRendererWith(defaultOpener)
}

// NewPageRendererWith returns a renderer over o.
func NewPageRendererWith(o Opener) *PageRenderer {
	return &PageRenderer{opener: o}
}

// RenderPage implements Renderer. The page is rendered at the DPI that maps its
// width in points to width pixels, then scaled to exactly width.
func (r *PageRenderer) RenderPage(doc *pdfdoc.Document, page, width int) (*Raster, error) {
	if doc == nil {
		return nil, errors.New("render: no document")
	}
	if width <= 0 {
		return nil, fmt.Errorf("render: width must be positive, got %d", width)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	src, err := r.source(doc)
	if err != nil {
		return nil, err
	}
	if page < 0 || page >= src.NumPage() {
		return nil, fmt.Errorf("render: page %d of %d", page+1, src.NumPage())
	}

	bound, err := src.Bound(page)
	if err != nil {
		return nil, fmt.Errorf("render: page bounds: %w", err)
	}
	if bound.Dx() <= 0 || bound.Dy() <= 0 {
		return nil, fmt.Errorf("render: empty page box %v", bound)
	}

	start := time.Now()
	dpi := 72 * float64(width) / float64(bound.Dx())
	img, err := src.ImageDPI(page, dpi)
	if err != nil {
		return nil, err
	}
	img = FitWidth(img, width)

	b := img.Bounds()
	log.Debug().
		Str("doc", doc.ID.String()).
		Int("page", page).
		Int("width", b.Dx()).
		Int("height", b.Dy()).
		Float64("dpi", dpi).
		Dur("took", time.Since(start)).
		Msg("rendered page")

	return &Raster{Image: img, Width: b.Dx(), Height: b.Dy()}, nil
}

// Close releases the open source, if any.
func (r *PageRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closeSource()
}

func (r *PageRenderer) source(doc *pdfdoc.Document) (Source, error) {
	if r.src != nil && r.id == doc.ID {
		return r.src, nil
	}
	if err := r.closeSource(); err != nil {
		log.Warn().Err(err).Msg("closing previous render source")
	}
	if r.opener == nil {
		return nil, errors.New("render: no opener configured")
	}
	src, err := r.opener.Open(doc.Path)
	if err != nil {
		return nil, fmt.Errorf("render: open %s: %w", doc.Path, err)
	}
	r.src, r.id = src, doc.ID
	return src, nil
}

func (r *PageRenderer) closeSource() error {
	if r.src == nil {
		return nil
	}
	err := r.src.Close()
	r.src, r.id = nil, uuid.Nil
	return err
}
