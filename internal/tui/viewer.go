package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/local/pdfplanner/internal/apperr"
	"github.com/local/pdfplanner/internal/imagerender"
)

const (
	minZoom     = 25
	maxZoom     = 400
	zoomStep    = 25
	defaultZoom = 100

	// a4Aspect is assumed until a page has been rendered once.
	a4Aspect = 1.414
)

// viewer shows one page at a zoom level, relative to fitting the page into
// the terminal.
type viewer struct {
	page   int
	zoom   int
	scroll int // first visible character row

	raster *imagerender.Raster
	err    error
	art    string
}

func clampZoom(z int) int {
	return min(max(z, minZoom), maxZoom)
}

// area is the character area available to the page.
func (a *App) viewerArea() (int, int) {
	return max(a.width, 1), max(a.height-chromeLines, 1)
}

// previewWidth is the render width in pixels: the width that fits the whole
// page into the viewer area, scaled by zoom.
func (a *App) previewWidth() int {
	cols, rows := a.viewerArea()
	aspect := a4Aspect
	if r, _ := a.session.Thumbnail(a.view.page); r != nil && r.Width > 0 {
		aspect = float64(r.Height) / float64(r.Width)
	}
	fit := min(cols, int(float64(rows*2)/aspect))
	return max(fit*a.view.zoom/100, 16)
}

// refreshPreview renders the current page for the viewer. The rendered raster
// is cached by width, so zooming back to a level is instant.
func (a *App) refreshPreview() {
	a.view.raster, a.view.err = a.session.Preview(a.view.page, a.previewWidth())
	a.clampScroll()
	a.redrawPreview()
}

func (a *App) clampScroll() {
	if a.view.raster == nil {
		a.view.scroll = 0
		return
	}
	_, rows := a.viewerArea()
	maxScroll := max((a.view.raster.Height+1)/2-rows, 0)
	a.view.scroll = min(max(a.view.scroll, 0), maxScroll)
}

func (a *App) redrawPreview() {
	a.view.art = ""
	if a.view.raster == nil {
		return
	}
	cols, rows := a.viewerArea()
	r := a.view.raster
	x0 := (r.Width - cols) / 2
	y0 := a.view.scroll * 2
	if r.Height < rows*2 {
		y0 = -((rows*2 - r.Height) / 2)
		y0 -= y0 & 1
	}
	a.view.art = halfBlocks(r.Image, x0, y0, cols, rows, a.styles.Theme().Background)
}

func (a *App) viewerTitle() string {
	sel := a.session.Selection()
	parts := fmt.Sprintf("Page %d of %d · %d%%", a.view.page+1, sel.PageCount(), a.view.zoom)
	if rot := sel.Rotation(a.view.page); rot != 0 {
		parts += " · " + a.styles.Badge.Render(fmt.Sprintf("↻%d", rot))
	}
	if sel.IsSelected(a.view.page) {
		parts += " · " + a.styles.Subtitle.Render("selected")
	}
	return parts
}

func (a *App) viewerView() string {
	cols, rows := a.viewerArea()
	if a.view.err != nil {
		msg := a.styles.Error.Render(apperr.UserMessage(a.view.err))
		return lipgloss.Place(cols, rows, lipgloss.Center, lipgloss.Center, msg)
	}
	if a.view.art == "" {
		return lipgloss.Place(cols, rows, lipgloss.Center, lipgloss.Center, a.styles.Muted.Render("Rendering…"))
	}
	return a.view.art
}
