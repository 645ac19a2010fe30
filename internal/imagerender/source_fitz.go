package imagerender

import (
	"image"

	fitz "github.com/gen2brain/go-fitz"
)

// fitzOpener implements Opener using MuPDF through go-fitz.
type fitzOpener struct{}

func (fitzOpener) Open(path string) (Source, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	return fitzSource{doc}, nil
}

func init() {
	setDefaultOpener(fitzOpener{})
}

type fitzSource struct{ *fitz.Document }

func (s fitzSource) ImageDPI(page int, dpi float64) (image.Image, error) {
	img, err := s.Document.ImageDPI(page, dpi)
	if err != nil {
		return nil, err
	}
	return img, nil
}
