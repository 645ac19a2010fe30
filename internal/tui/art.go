package tui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/image/draw"

	"github.com/local/pdfplanner/internal/imagerender"
)

// upperHalf draws the top pixel in the foreground and the bottom pixel in the
// background, so one cell shows two rows of pixels.
const upperHalf = "▀"

// fitBox scales img to fit inside w x h pixels, keeping the aspect ratio.
func fitBox(img image.Image, w, h int) image.Image {
	b := img.Bounds()
	if w <= 0 || h <= 0 || b.Empty() {
		return img
	}
	tw, th := w, b.Dy()*w/b.Dx()
	if th > h {
		tw, th = b.Dx()*h/b.Dy(), h
	}
	tw, th = max(tw, 1), max(th, 1)
	if tw == b.Dx() && th == b.Dy() {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func hex(c color.Color) lipgloss.Color {
	r := color.RGBAModel.Convert(c).(color.RGBA)
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r.R, r.G, r.B))
}

// halfBlocks draws the cols x rows character window of img whose top-left
// pixel is (x0, y0), one pixel per column and two per row. Pixels outside the
// image are drawn in bg.
func halfBlocks(img image.Image, x0, y0, cols, rows int, bg lipgloss.Color) string {
	b := img.Bounds()
	at := func(x, y int) lipgloss.Color {
		p := image.Pt(b.Min.X+x, b.Min.Y+y)
		if !p.In(b) {
			return bg
		}
		return hex(img.At(p.X, p.Y))
	}

	var sb strings.Builder
	for row := 0; row < rows; row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}
		for col := 0; col < cols; col++ {
			x, y := x0+col, y0+2*row
			sb.WriteString(lipgloss.NewStyle().
				Foreground(at(x, y)).
				Background(at(x, y+1)).
				Render(upperHalf))
		}
	}
	return sb.String()
}

// thumbArt draws a thumbnail centred in a cols x rows tile.
func thumbArt(r *imagerender.Raster, cols, rows int, bg lipgloss.Color) string {
	img := fitBox(r.Image, cols, rows*2)
	b := img.Bounds()
	x0 := -(cols - b.Dx()) / 2
	y0 := -(rows*2 - b.Dy()) / 2
	// keep the vertical offset even so rows line up with pixel pairs
	y0 -= y0 & 1
	return halfBlocks(img, x0, y0, cols, rows, bg)
}

// placeholder fills a cols x rows tile with a centred label.
func placeholder(style lipgloss.Style, label string, cols, rows int) string {
	return style.
		Width(cols).
		Height(rows).
		Align(lipgloss.Center, lipgloss.Center).
		Render(label)
}

// tileColor is the average colour of a rendered thumbnail, used for the page
// number strip under the tile.
func tileColor(r *imagerender.Raster) lipgloss.Color {
	return hex(imagerender.AverageColor(r.Image))
}
