package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/local/pdfplanner/internal/imagerender"
)

const (
	// pxPerCol converts tile columns to thumbnail pixels. Thumbnails are
	// rendered well above terminal resolution so the viewer can reuse them.
	pxPerCol = 16

	minArtCols     = 6
	maxArtCols     = 40
	artStep        = 3
	defaultArtCols = 15

	// chromeLines are the header, status and help lines around the grid.
	chromeLines = 3
)

// layout is the geometry of the page grid for a terminal size.
type layout struct {
	artCols, artRows int // thumbnail tile in characters
	cellW, cellH     int // tile plus border and label
	cols, rows       int // cells across, visible rows
}

func newLayout(width, height, artCols int) layout {
	artCols = min(max(artCols, minArtCols), maxArtCols)
	// a portrait page is about 1.4 times taller than wide; each row holds two pixels
	artRows := max(artCols*7/10, 2)
	l := layout{
		artCols: artCols,
		artRows: artRows,
		cellW:   artCols + 2,
		cellH:   artRows + 3,
	}
	l.cols = max(width/l.cellW, 1)
	l.rows = max((height-chromeLines)/l.cellH, 1)
	return l
}

// thumbWidth is the render width in pixels for the layout's tiles.
func (l layout) thumbWidth() int { return l.artCols * pxPerCol }

// visible returns the first and last page shown when row top is the first
// visible row of a grid of n pages. last is -1 for an empty grid.
func (l layout) visible(top, n int) (int, int) {
	first := top * l.cols
	last := min((top+l.rows)*l.cols, n) - 1
	if first > last {
		return 0, -1
	}
	return first, last
}

// scrollTo returns the top row that keeps page cursor visible.
func (l layout) scrollTo(top, cursor int) int {
	row := cursor / l.cols
	switch {
	case row < top:
		return row
	case row >= top+l.rows:
		return row - l.rows + 1
	}
	return top
}

type artEntry struct {
	raster *imagerender.Raster
	cols   int
	s      string
}

func (a *App) tileArt(page int) string {
	l := a.layout
	bg := a.styles.Theme().Paper

	r, err := a.session.Thumbnail(page)
	if err != nil {
		return placeholder(a.styles.Placeholder.Foreground(a.styles.Theme().Error), "✗ failed", l.artCols, l.artRows)
	}
	if r == nil {
		return placeholder(a.styles.Placeholder, "…", l.artCols, l.artRows)
	}
	if e, ok := a.art[page]; ok && e.raster == r && e.cols == l.artCols {
		return e.s
	}
	s := thumbArt(r, l.artCols, l.artRows, bg)
	a.art[page] = artEntry{raster: r, cols: l.artCols, s: s}
	return s
}

func (a *App) tileLabel(page int) string {
	sel := a.session.Selection()
	label := fmt.Sprintf("%d", page+1)
	if rot := sel.Rotation(page); rot != 0 {
		label += " " + a.styles.Badge.Render(fmt.Sprintf("↻%d", rot))
	}
	if sel.IsSelected(page) {
		label = "✓ " + label
	}
	if r, _ := a.session.Thumbnail(page); r != nil {
		label = lipgloss.NewStyle().Foreground(tileColor(r)).Render("■") + " " + label
	}
	return lipgloss.PlaceHorizontal(a.layout.artCols, lipgloss.Center, label)
}

func (a *App) cellStyle(page int) lipgloss.Style {
	selected := a.session.Selection().IsSelected(page)
	switch {
	case page == a.cursor && selected:
		return a.styles.CellBoth
	case page == a.cursor:
		return a.styles.CellCursor
	case selected:
		return a.styles.CellSelected
	}
	return a.styles.Cell
}

func (a *App) gridView() string {
	doc := a.session.Doc()
	if doc == nil {
		return a.emptyView()
	}
	first, last := a.layout.visible(a.top, doc.PageCount)
	if last < 0 {
		return ""
	}

	var rows []string
	for start := first; start <= last; start += a.layout.cols {
		var cells []string
		for p := start; p <= last && p < start+a.layout.cols; p++ {
			body := lipgloss.JoinVertical(lipgloss.Left, a.tileArt(p), a.tileLabel(p))
			cells = append(cells, a.cellStyle(p).Render(body))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return strings.Join(rows, "\n")
}

func (a *App) emptyView() string {
	msg := lipgloss.JoinVertical(lipgloss.Center,
		a.styles.Title.Render("No document loaded"),
		"",
		a.styles.Muted.Render("Press f to open a PDF"),
	)
	return lipgloss.Place(a.width, max(a.height-chromeLines, 1), lipgloss.Center, lipgloss.Center, msg)
}
