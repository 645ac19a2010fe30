// Package validate checks user input: page ranges, output filenames and paths,
// and input PDF files. Every failure is an *apperr.InputValidationError (or an
// *apperr.DocumentError for input files) carrying a distinct Reason.
package validate

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/local/pdfplanner/internal/apperr"
	"github.com/local/pdfplanner/internal/filetype"
)

// MaxFilenameLen leaves room for the extension and the directory part.
const MaxFilenameLen = 200

var invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

var reservedNames = map[string]struct{}{
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {}, "COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {}, "LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
}

// Range is an inclusive span of 1-based page numbers.
type Range struct {
	Start int
	End   int
}

// Len returns the number of pages covered.
func (r Range) Len() int { return r.End - r.Start + 1 }

// PageRange validates 1 <= start <= end <= total.
func PageRange(start, end, total int) error {
	return PageRangePtr(&start, &end, total)
}

// PageRangePtr is PageRange for optional inputs, as read from empty form fields.
func PageRangePtr(start, end *int, total int) error {
	if start == nil {
		return apperr.Invalid("start", apperr.ReasonStartRequired, "Start page is required")
	}
	if end == nil {
		return apperr.Invalid("end", apperr.ReasonEndRequired, "End page is required")
	}
	s, e := *start, *end
	if s < 1 {
		return apperr.Invalid("start", apperr.ReasonStartBelowOne, "Start page must be at least 1")
	}
	if e < 1 {
		return apperr.Invalid("end", apperr.ReasonEndBelowOne, "End page must be at least 1")
	}
	if s > total {
		return apperr.Invalid("start", apperr.ReasonStartExceedsTotal, "Start page (%d) exceeds total pages (%d)", s, total)
	}
	if e > total {
		return apperr.Invalid("end", apperr.ReasonEndExceedsTotal, "End page (%d) exceeds total pages (%d)", e, total)
	}
	if s > e {
		return apperr.Invalid("range", apperr.ReasonStartAfterEnd, "Start page (%d) cannot be greater than end page (%d)", s, e)
	}
	return nil
}

// Filename validates a bare output filename for Windows compatibility.
// A trailing ".pdf" is ignored.
func Filename(name string) error {
	if strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name = name[:len(name)-4]
	}
	if name == "" {
		return apperr.Invalid("filename", apperr.ReasonEmptyName, "Filename cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return apperr.Invalid("filename", apperr.ReasonBlankName, "Filename cannot be only whitespace")
	}
	if invalidFilenameChars.MatchString(name) {
		return apperr.Invalid("filename", apperr.ReasonForbiddenChar, `Filename contains invalid characters: < > : " / \ | ? *`)
	}
	stem := strings.ToUpper(strings.SplitN(name, ".", 2)[0])
	if _, ok := reservedNames[stem]; ok {
		return apperr.Invalid("filename", apperr.ReasonReservedName, "'%s' is a reserved Windows filename", name)
	}
	if len(name) > MaxFilenameLen {
		return apperr.Invalid("filename", apperr.ReasonNameTooLong, "Filename is too long (max %d characters)", MaxFilenameLen)
	}
	if strings.HasPrefix(name, " ") || strings.HasSuffix(name, " ") {
		return apperr.Invalid("filename", apperr.ReasonSurroundingSpace, "Filename cannot start or end with spaces")
	}
	if strings.HasSuffix(name, ".") {
		return apperr.Invalid("filename", apperr.ReasonTrailingPeriod, "Filename cannot end with a period")
	}
	return nil
}

// EnsurePDFExt appends ".pdf" unless the name already ends with it (any case).
func EnsurePDFExt(name string) string {
	if strings.HasSuffix(strings.ToLower(name), ".pdf") {
		return name
	}
	return name + ".pdf"
}

// OutputPath validates a full destination path. The parent directory must exist
// or be creatable from an existing grandparent.
func OutputPath(path string) error {
	if path == "" {
		return apperr.Invalid("output", apperr.ReasonPathRequired, "Output path is required")
	}
	if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return apperr.Invalid("output", apperr.ReasonNotPDFSuffix, "Output file must have a .pdf extension")
	}

	dir := filepath.Dir(path)
	st, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		parent := filepath.Dir(dir)
		if _, perr := os.Stat(parent); perr != nil {
			return apperr.Invalid("output", apperr.ReasonMissingParent, "Parent directory does not exist: %s", parent)
		}
	case err != nil:
		return apperr.Invalid("output", apperr.ReasonNotDirectory, "Invalid directory path: %v", err)
	case !st.IsDir():
		return apperr.Invalid("output", apperr.ReasonNotDirectory, "Path is not a directory: %s", dir)
	case !dirWritable(dir):
		return apperr.Invalid("output", apperr.ReasonNotWritable, "No write permission for directory: %s", dir)
	}

	return Filename(filepath.Base(path))
}

// dirWritable probes the directory by creating and removing a file.
func dirWritable(dir string) bool {
	f, err := os.CreateTemp(dir, ".pdfplanner-probe-*")
	if err != nil {
		return false
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return true
}

// PDFFile checks that path names a readable file whose content is a PDF.
func PDFFile(path string) error {
	if path == "" {
		return apperr.Invalid("file", apperr.ReasonPathRequired, "No file selected")
	}
	st, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &apperr.DocumentError{Kind: apperr.DocNotFound, Path: path, Err: err}
		}
		return &apperr.DocumentError{Kind: apperr.DocNoAccess, Path: path, Err: err}
	}
	if !st.Mode().IsRegular() {
		return &apperr.DocumentError{Kind: apperr.DocNotFile, Path: path}
	}
	if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return &apperr.DocumentError{Kind: apperr.DocNotPDF, Path: path, Err: errors.New("must have .pdf extension")}
	}
	f, err := os.Open(path)
	if err != nil {
		return &apperr.DocumentError{Kind: apperr.DocNoAccess, Path: path, Err: err}
	}
	_ = f.Close()

	ok, err := filetype.New().IsPDF(path)
	if err != nil {
		return &apperr.DocumentError{Kind: apperr.DocNoAccess, Path: path, Err: err}
	}
	if !ok {
		return &apperr.DocumentError{Kind: apperr.DocNotPDF, Path: path}
	}
	return nil
}

// SanitizeFilename replaces forbidden characters and trims what Filename would reject.
func SanitizeFilename(name string) string {
	s := invalidFilenameChars.ReplaceAllString(name, "_")
	s = strings.Trim(s, " .")
	if s == "" {
		s = "extracted_pages"
	}
	if len(s) > MaxFilenameLen {
		s = s[:MaxFilenameLen]
	}
	stem := strings.ToUpper(strings.SplitN(s, ".", 2)[0])
	if _, ok := reservedNames[stem]; ok {
		s = "_" + s
	}
	return s
}
