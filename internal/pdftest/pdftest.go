// Package pdftest builds small, valid PDF files for tests and reads back the
// page attributes that extraction is expected to preserve.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// BaseWidth is the MediaBox width of page 0; page i is BaseWidth+i points wide,
// so pages can be identified after being copied.
const BaseWidth = 200

// minSize is the smallest body, before the cross-reference table, that Build writes.
const minSize = 640

// Page describes one generated page.
type Page struct {
	Rotate int
}

// Build returns the bytes of a PDF with the given pages.
func Build(pages []Page) []byte {
	var buf bytes.Buffer
	offsets := []int{}
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")

	kids := ""
	for i := range pages {
		kids += fmt.Sprintf("%d 0 R ", 3+2*i)
	}
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, len(pages)))

	for i, p := range pages {
		rotate := ""
		if p.Rotate != 0 {
			rotate = fmt.Sprintf(" /Rotate %d", p.Rotate)
		}
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %d 300]%s /Contents %d 0 R /Resources << >> >>",
			BaseWidth+i, rotate, 4+2*i))
		content := fmt.Sprintf("0 0 1 rg %d 10 20 20 re f", 10+i)
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}

	// pdfcpu looks for startxref in the last 512 bytes and rejects shorter files.
	for buf.Len() < minSize {
		buf.WriteString("%" + strings.Repeat(" ", 62) + "\n")
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

// Pages returns n pages without intrinsic rotation.
func Pages(n int) []Page {
	return make([]Page, n)
}

// Write builds a PDF into dir/name and returns its path.
func Write(t testing.TB, dir, name string, pages []Page) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, Build(pages), 0o644); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	return p
}

// PageWidths returns the MediaBox width of every page, which identifies the
// source page a generated page came from (width - BaseWidth).
func PageWidths(t testing.TB, path string) []int {
	t.Helper()
	ctx, err := api.ReadContextFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	out := make([]int, ctx.PageCount)
	for i := 1; i <= ctx.PageCount; i++ {
		d, _, inh, err := ctx.PageDict(i, false)
		if err != nil {
			t.Fatalf("page %d: %v", i, err)
		}
		arr := d.ArrayEntry("MediaBox")
		if arr == nil && inh != nil && inh.MediaBox != nil {
			out[i-1] = int(inh.MediaBox.Width())
			continue
		}
		if len(arr) != 4 {
			t.Fatalf("page %d: no MediaBox", i)
		}
		out[i-1] = int(number(arr[2]) - number(arr[0]))
	}
	return out
}

// SourcePages maps PageWidths back to 0-based source page indices.
func SourcePages(t testing.TB, path string) []int {
	t.Helper()
	widths := PageWidths(t, path)
	out := make([]int, len(widths))
	for i, w := range widths {
		out[i] = w - BaseWidth
	}
	return out
}

func number(o types.Object) float64 {
	switch v := o.(type) {
	case types.Integer:
		return float64(v)
	case types.Float:
		return float64(v)
	}
	return 0
}
