package apperr

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across packages.
var (
	ErrEmptySelection = errors.New("no pages selected")
	ErrOutOfRange     = errors.New("page index out of range")
	ErrNoDocument     = errors.New("no document loaded")
	ErrCancelled      = errors.New("operation cancelled")
	ErrBusy           = errors.New("an extraction is already running")
)

// Reason identifies why an input failed validation.
type Reason string

const (
	ReasonStartRequired     Reason = "start_required"
	ReasonEndRequired       Reason = "end_required"
	ReasonStartBelowOne     Reason = "start_below_one"
	ReasonEndBelowOne       Reason = "end_below_one"
	ReasonStartExceedsTotal Reason = "start_exceeds_total"
	ReasonEndExceedsTotal   Reason = "end_exceeds_total"
	ReasonStartAfterEnd     Reason = "start_after_end"

	ReasonEmptyName        Reason = "empty_name"
	ReasonBlankName        Reason = "blank_name"
	ReasonForbiddenChar    Reason = "forbidden_char"
	ReasonReservedName     Reason = "reserved_name"
	ReasonNameTooLong      Reason = "name_too_long"
	ReasonSurroundingSpace Reason = "surrounding_space"
	ReasonTrailingPeriod   Reason = "trailing_period"

	ReasonPathRequired  Reason = "path_required"
	ReasonMissingParent Reason = "missing_parent"
	ReasonNotDirectory  Reason = "not_directory"
	ReasonNotWritable   Reason = "not_writable"
	ReasonNotPDFSuffix  Reason = "not_pdf_suffix"
	ReasonSameAsSource  Reason = "same_as_source"

	ReasonBadWidth    Reason = "bad_width"
	ReasonBadRotation Reason = "bad_rotation"
	ReasonBadPageSpec Reason = "bad_page_spec"
	ReasonBadQuality  Reason = "bad_quality"
)

// InputValidationError represents a rejected user input.
type InputValidationError struct {
	Field   string
	Reason  Reason
	Message string
}

func (e *InputValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Invalid builds an InputValidationError.
func Invalid(field string, reason Reason, format string, args ...any) *InputValidationError {
	return &InputValidationError{Field: field, Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// DocumentKind classifies a DocumentError.
type DocumentKind string

const (
	DocNotFound  DocumentKind = "not_found"
	DocNotPDF    DocumentKind = "not_pdf"
	DocEncrypted DocumentKind = "encrypted"
	DocCorrupt   DocumentKind = "corrupt"
	DocNotFile   DocumentKind = "not_file"
	DocNoAccess  DocumentKind = "no_access"
)

// DocumentError represents a failure to load or read a source PDF.
type DocumentError struct {
	Kind DocumentKind
	Path string
	Err  error
}

func (e *DocumentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("document %s (%s): %v", e.Kind, e.Path, e.Err)
	}
	return fmt.Sprintf("document %s (%s)", e.Kind, e.Path)
}

func (e *DocumentError) Unwrap() error { return e.Err }

// RenderFailure represents a failure to rasterize one page.
type RenderFailure struct {
	Page int
	Err  error
}

func (e *RenderFailure) Error() string {
	return fmt.Sprintf("render page %d: %v", e.Page+1, e.Err)
}

func (e *RenderFailure) Unwrap() error { return e.Err }

// IOFailure represents a filesystem failure while producing output.
type IOFailure struct {
	Op   string
	Path string
	Err  error
}

func (e *IOFailure) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOFailure) Unwrap() error { return e.Err }
