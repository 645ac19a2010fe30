package pdfdoc

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/local/pdfplanner/internal/apperr"
)

// Assembly is an output document being built in memory from pages of a source.
// Pages keep their content streams; only page-level attributes change.
type Assembly struct {
	conf  *model.Configuration
	buf   []byte
	pages int
}

// Assembler creates assemblies. Split out so extraction can be tested with fakes.
type Assembler interface {
	CopyPages(srcPath string, pages []int) (PageAssembly, error)
}

// PageAssembly is the write side of the PDF adapter.
type PageAssembly interface {
	PageCount() int
	RotatePage(index, degrees int) error
	WriteTo(w io.Writer) (int64, error)
}

// PDFCPUAssembler builds assemblies with pdfcpu.
type PDFCPUAssembler struct{}

// CopyPages implements Assembler.
func (PDFCPUAssembler) CopyPages(srcPath string, pages []int) (PageAssembly, error) {
	return CopyPages(srcPath, pages)
}

// CopyPages opens srcPath read-only and copies the given 0-based pages, in
// ascending order, into a new in-memory document.
func CopyPages(srcPath string, pages []int) (*Assembly, error) {
	if len(pages) == 0 {
		return nil, apperr.ErrEmptySelection
	}
	if !sort.IntsAreSorted(pages) {
		return nil, fmt.Errorf("copy pages: page list must be ascending")
	}

	f, err := os.Open(srcPath)
	if err != nil {
		return nil, classifyOpenError(srcPath, err)
	}
	defer f.Close()

	selected := make([]string, len(pages))
	for i, p := range pages {
		selected[i] = strconv.Itoa(p + 1)
	}

	conf := newConfig()
	var out bytes.Buffer
	if err := api.Trim(f, &out, selected, conf); err != nil {
		return nil, classifyReadError(srcPath, err)
	}

	a := &Assembly{conf: conf, buf: out.Bytes(), pages: len(pages)}

	n, err := api.PageCount(bytes.NewReader(a.buf), conf)
	if err != nil {
		return nil, fmt.Errorf("copy pages: recount: %w", err)
	}
	if n != len(pages) {
		return nil, fmt.Errorf("copy pages: expected %d pages, got %d", len(pages), n)
	}
	return a, nil
}

// PageCount returns the number of pages in the assembly.
func (a *Assembly) PageCount() int { return a.pages }

// RotatePage adds degrees (a multiple of 90) to the /Rotate of the 0-based output page.
func (a *Assembly) RotatePage(index, degrees int) error {
	if index < 0 || index >= a.pages {
		return fmt.Errorf("rotate page %d: %w", index+1, apperr.ErrOutOfRange)
	}
	degrees = normalizeRotation(degrees)
	if degrees == 0 {
		return nil
	}
	if degrees%90 != 0 {
		return apperr.Invalid("rotation", apperr.ReasonBadRotation, "Rotation must be a multiple of 90, got %d", degrees)
	}

	var out bytes.Buffer
	if err := api.Rotate(bytes.NewReader(a.buf), &out, degrees, []string{strconv.Itoa(index + 1)}, a.conf); err != nil {
		return fmt.Errorf("rotate page %d: %w", index+1, err)
	}
	a.buf = out.Bytes()
	return nil
}

// WriteTo writes the assembled PDF.
func (a *Assembly) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(a.buf)
	return int64(n), err
}

func classifyOpenError(path string, err error) error {
	if os.IsNotExist(err) {
		return &apperr.DocumentError{Kind: apperr.DocNotFound, Path: path, Err: err}
	}
	return &apperr.DocumentError{Kind: apperr.DocNoAccess, Path: path, Err: err}
}
