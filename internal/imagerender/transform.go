package imagerender

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// ColorMode selects the color mode of encoded previews.
type ColorMode string

const (
	ColorRGB  ColorMode = "rgb"
	ColorGray ColorMode = "gray"
)

// Rotate turns img clockwise by deg, which must be a multiple of 90.
// Other values return img unchanged.
func Rotate(img image.Image, deg int) image.Image {
	deg = ((deg % 360) + 360) % 360
	if deg == 0 || deg%90 != 0 {
		return img
	}

	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	x0, y0 := float64(b.Min.X), float64(b.Min.Y)

	var dst *image.RGBA
	var m f64.Aff3
	switch deg {
	case 90:
		dst = image.NewRGBA(image.Rect(0, 0, b.Dy(), b.Dx()))
		m = f64.Aff3{0, -1, h + y0, 1, 0, -x0}
	case 180:
		dst = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		m = f64.Aff3{-1, 0, w + x0, 0, -1, h + y0}
	case 270:
		dst = image.NewRGBA(image.Rect(0, 0, b.Dy(), b.Dx()))
		m = f64.Aff3{0, 1, -y0, -1, 0, w + x0}
	}
	draw.NearestNeighbor.Transform(dst, m, img, b, draw.Src, nil)
	return dst
}

// FitWidth scales img to width pixels, keeping the aspect ratio. Images
// already at width are returned as is.
func FitWidth(img image.Image, width int) image.Image {
	b := img.Bounds()
	if width <= 0 || b.Dx() == width || b.Dx() == 0 {
		return img
	}
	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Scale resizes img by percent (100 = unchanged).
func Scale(img image.Image, percent int) image.Image {
	if percent <= 0 || percent == 100 {
		return img
	}
	return FitWidth(img, img.Bounds().Dx()*percent/100)
}

// AverageColor samples img on a coarse grid and returns the mean color.
func AverageColor(img image.Image) color.RGBA {
	b := img.Bounds()
	if b.Empty() {
		return color.RGBA{}
	}
	step := b.Dx() / 32
	if s := b.Dy() / 32; s > step {
		step = s
	}
	if step < 1 {
		step = 1
	}

	var r, g, bl, n uint64
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			r += uint64(c.R)
			g += uint64(c.G)
			bl += uint64(c.B)
			n++
		}
	}
	return color.RGBA{R: uint8(r / n), G: uint8(g / n), B: uint8(bl / n), A: 0xff}
}

// Gray converts img to grayscale.
func Gray(img image.Image) image.Image {
	b := img.Bounds()
	g := image.NewGray(b)
	draw.Draw(g, b, img, b.Min, draw.Src)
	return g
}

// EncodeJPEG writes img as JPEG in the given color mode.
func EncodeJPEG(w io.Writer, img image.Image, quality int, mode ColorMode) error {
	if mode == ColorGray {
		img = Gray(img)
	}
	if err := jpeg.Encode(w, img, &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return nil
}
