package validate

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/local/pdfplanner/internal/apperr"
)

func reasonOf(t *testing.T, err error) apperr.Reason {
	t.Helper()
	var ve *apperr.InputValidationError
	require.True(t, errors.As(err, &ve), "expected InputValidationError, got %v", err)
	return ve.Reason
}

func TestPageRange_ValidChain(t *testing.T) {
	for total := 1; total <= 12; total++ {
		for start := 1; start <= total; start++ {
			for end := start; end <= total; end++ {
				assert.NoError(t, PageRange(start, end, total), "%d-%d of %d", start, end, total)
			}
		}
	}
}

func TestPageRange_Reasons(t *testing.T) {
	tests := []struct {
		name       string
		start, end int
		total      int
		want       apperr.Reason
	}{
		{"start zero", 0, 5, 10, apperr.ReasonStartBelowOne},
		{"end zero", 1, 0, 10, apperr.ReasonEndBelowOne},
		{"start beyond total", 11, 11, 10, apperr.ReasonStartExceedsTotal},
		{"end beyond total", 1, 11, 10, apperr.ReasonEndExceedsTotal},
		{"start after end", 50, 10, 100, apperr.ReasonStartAfterEnd},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := PageRange(tt.start, tt.end, tt.total)
			require.Error(t, err)
			assert.Equal(t, tt.want, reasonOf(t, err))
		})
	}
}

func TestPageRange_StartAfterEndDistinctFromEndExceeds(t *testing.T) {
	a := PageRange(50, 10, 100)
	b := PageRange(10, 150, 100)

	assert.Equal(t, apperr.ReasonStartAfterEnd, reasonOf(t, a))
	assert.Equal(t, apperr.ReasonEndExceedsTotal, reasonOf(t, b))
	assert.Contains(t, a.Error(), "cannot be greater than end page")
	assert.Contains(t, b.Error(), "exceeds total pages")
}

func TestPageRangePtr_Required(t *testing.T) {
	one := 1
	assert.Equal(t, apperr.ReasonStartRequired, reasonOf(t, PageRangePtr(nil, &one, 3)))
	assert.Equal(t, apperr.ReasonEndRequired, reasonOf(t, PageRangePtr(&one, nil, 3)))
}

func TestFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want apperr.Reason
	}{
		{"colon", "report:final.pdf", apperr.ReasonForbiddenChar},
		{"pipe", "a|b", apperr.ReasonForbiddenChar},
		{"empty", "", apperr.ReasonEmptyName},
		{"blank", "   ", apperr.ReasonBlankName},
		{"reserved", "con", apperr.ReasonReservedName},
		{"reserved with ext", "LPT1.backup", apperr.ReasonReservedName},
		{"too long", strings.Repeat("a", 201), apperr.ReasonNameTooLong},
		{"leading space", " report", apperr.ReasonSurroundingSpace},
		{"trailing period", "report.", apperr.ReasonTrailingPeriod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Filename(tt.in)
			require.Error(t, err)
			assert.Equal(t, tt.want, reasonOf(t, err))
		})
	}

	assert.NoError(t, Filename("report_final.pdf"))
	assert.NoError(t, Filename("report_final"))
	assert.NoError(t, Filename("console"))
}

func TestEnsurePDFExt(t *testing.T) {
	assert.Equal(t, "a.pdf", EnsurePDFExt("a"))
	assert.Equal(t, "a.PDF", EnsurePDFExt("a.PDF"))
}

func TestOutputPath(t *testing.T) {
	dir := t.TempDir()

	assert.NoError(t, OutputPath(filepath.Join(dir, "out.pdf")))
	assert.NoError(t, OutputPath(filepath.Join(dir, "newdir", "out.pdf")), "creatable parent")

	assert.Equal(t, apperr.ReasonNotPDFSuffix, reasonOf(t, OutputPath(filepath.Join(dir, "out.txt"))))
	assert.Equal(t, apperr.ReasonMissingParent, reasonOf(t, OutputPath(filepath.Join(dir, "a", "b", "out.pdf"))))
	assert.Equal(t, apperr.ReasonForbiddenChar, reasonOf(t, OutputPath(filepath.Join(dir, "bad?.pdf"))))
	assert.Equal(t, apperr.ReasonPathRequired, reasonOf(t, OutputPath("")))

	file := filepath.Join(dir, "plain")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	assert.Equal(t, apperr.ReasonNotDirectory, reasonOf(t, OutputPath(filepath.Join(file, "out.pdf"))))
}

func TestPDFFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.pdf")
	require.NoError(t, os.WriteFile(good, []byte("%PDF-1.4\n%%EOF\n"), 0o644))
	fake := filepath.Join(dir, "fake.pdf")
	require.NoError(t, os.WriteFile(fake, []byte("hello world"), 0o644))
	txt := filepath.Join(dir, "good.txt")
	require.NoError(t, os.WriteFile(txt, []byte("%PDF-1.4\n%%EOF\n"), 0o644))

	assert.NoError(t, PDFFile(good))

	var de *apperr.DocumentError
	require.ErrorAs(t, PDFFile(fake), &de)
	assert.Equal(t, apperr.DocNotPDF, de.Kind)

	require.ErrorAs(t, PDFFile(txt), &de)
	assert.Equal(t, apperr.DocNotPDF, de.Kind)

	require.ErrorAs(t, PDFFile(filepath.Join(dir, "missing.pdf")), &de)
	assert.Equal(t, apperr.DocNotFound, de.Kind)

	require.ErrorAs(t, PDFFile(dir), &de)
	assert.Equal(t, apperr.DocNotFile, de.Kind)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "report_final", SanitizeFilename("report:final"))
	assert.Equal(t, "extracted_pages", SanitizeFilename(" ... "))
	assert.Equal(t, "_CON", SanitizeFilename("CON"))
	assert.Len(t, SanitizeFilename(strings.Repeat("x", 300)), MaxFilenameLen)
	assert.NoError(t, Filename(SanitizeFilename(`a<b>c:"d"/e\f|g?h*`)))
}
