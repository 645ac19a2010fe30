package imagerender

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// grid returns a w x h image whose pixel (x, y) has R=x and G=y.
func grid(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), A: 0xff})
		}
	}
	return img
}

func at(img image.Image, x, y int) (int, int) {
	c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
	return int(c.R), int(c.G)
}

func TestRotate(t *testing.T) {
	src := grid(2, 3) // two columns, three rows

	r90 := Rotate(src, 90)
	assert.Equal(t, image.Rect(0, 0, 3, 2), r90.Bounds())
	// top-left of the source ends up top-right
	x, y := at(r90, 2, 0)
	assert.Equal(t, [2]int{0, 0}, [2]int{x, y})
	// bottom-left of the source ends up top-left
	x, y = at(r90, 0, 0)
	assert.Equal(t, [2]int{0, 2}, [2]int{x, y})

	r180 := Rotate(src, 180)
	assert.Equal(t, image.Rect(0, 0, 2, 3), r180.Bounds())
	x, y = at(r180, 0, 0)
	assert.Equal(t, [2]int{1, 2}, [2]int{x, y})

	r270 := Rotate(src, -90)
	assert.Equal(t, image.Rect(0, 0, 3, 2), r270.Bounds())
	// top-right of the source ends up top-left
	x, y = at(r270, 0, 0)
	assert.Equal(t, [2]int{1, 0}, [2]int{x, y})

	assert.Same(t, src, Rotate(src, 0))
	assert.Same(t, src, Rotate(src, 360))
	assert.Same(t, src, Rotate(src, 45))
}

func TestRotate_FullTurnIsIdentity(t *testing.T) {
	src := grid(4, 7)
	img := image.Image(src)
	for i := 0; i < 4; i++ {
		img = Rotate(img, 90)
	}
	require.Equal(t, src.Bounds(), img.Bounds())
	for y := 0; y < 7; y++ {
		for x := 0; x < 4; x++ {
			gx, gy := at(img, x, y)
			assert.Equal(t, [2]int{x, y}, [2]int{gx, gy})
		}
	}
}

func TestFitWidth(t *testing.T) {
	src := grid(100, 150)

	out := FitWidth(src, 40)
	assert.Equal(t, 40, out.Bounds().Dx())
	assert.Equal(t, 60, out.Bounds().Dy())

	assert.Same(t, src, FitWidth(src, 100))
	assert.Same(t, src, FitWidth(src, 0))

	assert.Equal(t, 200, Scale(src, 200).Bounds().Dx())
	assert.Same(t, src, Scale(src, 100))
}

func TestAverageColor(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 0xff})
		}
	}
	assert.Equal(t, color.RGBA{R: 200, G: 100, B: 50, A: 0xff}, AverageColor(img))
	assert.Equal(t, color.RGBA{}, AverageColor(image.NewRGBA(image.Rectangle{})))
}

func TestEncodeJPEG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeJPEG(&buf, grid(16, 8), 80, ColorGray))

	img, err := jpeg.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 16, 8), img.Bounds())
	_, isGray := img.(*image.Gray)
	assert.True(t, isGray)
}
