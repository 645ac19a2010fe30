package pdfdoc

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/rs/zerolog/log"

	"github.com/local/pdfplanner/internal/apperr"
)

func init() {
	// Keep pdfcpu from creating a config directory under the user's profile.
	api.DisableConfigDir()
}

// Info is the subset of the document information dictionary shown to users.
type Info struct {
	Title   string
	Author  string
	Subject string
	Creator string
}

// Document is an opened source PDF. A fresh ID is minted on every Open, so two
// loads of the same path never share an identity.
type Document struct {
	ID        uuid.UUID
	Path      string
	PageCount int
	Encrypted bool
	Size      int64
	ModTime   time.Time
	Info      Info
	Rotations []int // intrinsic /Rotate per page, 0-based
}

// Opener opens source documents. The pdfcpu implementation is the default;
// tests substitute their own.
type Opener interface {
	Open(path string) (*Document, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(path string) (*Document, error)

func (f OpenerFunc) Open(path string) (*Document, error) { return f(path) }

// PDFCPU opens documents with pdfcpu.
type PDFCPU struct{}

// Open reads and validates path. The file is opened read-only and closed before returning.
// Encrypted documents are rejected with a DocumentError of kind DocEncrypted.
func (PDFCPU) Open(path string) (*Document, error) {
	return Open(path)
}

// Open is PDFCPU{}.Open.
func Open(path string) (*Document, error) {
	st, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &apperr.DocumentError{Kind: apperr.DocNotFound, Path: path, Err: err}
		}
		return nil, &apperr.DocumentError{Kind: apperr.DocNoAccess, Path: path, Err: err}
	}

	ctx, err := readContext(path)
	if err != nil {
		return nil, err
	}

	if ctx.Encrypt != nil {
		return nil, &apperr.DocumentError{Kind: apperr.DocEncrypted, Path: path}
	}

	doc := &Document{
		ID:        uuid.New(),
		Path:      path,
		PageCount: ctx.PageCount,
		Size:      st.Size(),
		ModTime:   st.ModTime(),
		Info: Info{
			Title:   ctx.Title,
			Author:  ctx.Author,
			Subject: ctx.Subject,
			Creator: ctx.Creator,
		},
	}

	doc.Rotations, err = pageRotations(ctx)
	if err != nil {
		return nil, &apperr.DocumentError{Kind: apperr.DocCorrupt, Path: path, Err: err}
	}

	if doc.PageCount == 0 {
		return nil, &apperr.DocumentError{Kind: apperr.DocCorrupt, Path: path, Err: errors.New("document has no pages")}
	}

	log.Info().
		Str("doc", doc.ID.String()).
		Str("path", path).
		Int("pages", doc.PageCount).
		Int64("size", doc.Size).
		Msg("opened document")

	return doc, nil
}

// IntrinsicRotation returns the page's own /Rotate, or 0 for unknown pages.
func (d *Document) IntrinsicRotation(page int) int {
	if d == nil || page < 0 || page >= len(d.Rotations) {
		return 0
	}
	return d.Rotations[page]
}

// Contains reports whether page is a valid 0-based index.
func (d *Document) Contains(page int) bool {
	return d != nil && page >= 0 && page < d.PageCount
}

// PageCountFile returns the number of pages of the PDF at path.
func PageCountFile(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("pdf page count failed: %w", err)
	}
	return n, nil
}

// PageRotations returns the effective /Rotate of every page of the PDF at path.
func PageRotations(path string) ([]int, error) {
	ctx, err := readContext(path)
	if err != nil {
		return nil, err
	}
	return pageRotations(ctx)
}

func readContext(path string) (*model.Context, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &apperr.DocumentError{Kind: apperr.DocNotFound, Path: path, Err: err}
		}
		return nil, &apperr.DocumentError{Kind: apperr.DocNoAccess, Path: path, Err: err}
	}
	defer f.Close()

	ctx, err := api.ReadContext(f, newConfig())
	if err != nil {
		return nil, classifyReadError(path, err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return nil, classifyReadError(path, err)
	}
	return ctx, nil
}

func pageRotations(ctx *model.Context) ([]int, error) {
	out := make([]int, ctx.PageCount)
	for i := 1; i <= ctx.PageCount; i++ {
		d, _, inh, err := ctx.PageDict(i, false)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		switch {
		case d != nil && d.IntEntry("Rotate") != nil:
			out[i-1] = normalizeRotation(*d.IntEntry("Rotate"))
		case inh != nil:
			out[i-1] = normalizeRotation(inh.Rotate)
		}
	}
	return out, nil
}

func classifyReadError(path string, err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "password") || strings.Contains(msg, "encrypt") {
		return &apperr.DocumentError{Kind: apperr.DocEncrypted, Path: path, Err: err}
	}
	return &apperr.DocumentError{Kind: apperr.DocCorrupt, Path: path, Err: err}
}

func newConfig() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

func normalizeRotation(deg int) int {
	return ((deg % 360) + 360) % 360
}
