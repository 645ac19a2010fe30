package imagerender

import (
	"image"
)

// Source is an open document the renderer rasterizes pages from.
type Source interface {
	NumPage() int
	// Bound returns the page box in points, after the page's own /Rotate.
	Bound(page int) (image.Rectangle, error)
	ImageDPI(page int, dpi float64) (image.Image, error)
	Close() error
}

// Opener opens a path into a Source.
type Opener interface {
	Open(path string) (Source, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(path string) (Source, error)

func (f OpenerFunc) Open(path string) (Source, error) { return f(path) }

// defaultOpener is provided in source_fitz.go using go-fitz.
var defaultOpener Opener

func setDefaultOpener(o Opener) { defaultOpener = o }
