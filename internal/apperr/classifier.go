package apperr

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"syscall"
)

// Kind is the coarse category of an error, used by the UI to pick a message style.
type Kind string

const (
	KindNone       Kind = ""
	KindValidation Kind = "validation"
	KindDocument   Kind = "document"
	KindRender     Kind = "render"
	KindIO         Kind = "io"
	KindEmpty      Kind = "empty_selection"
	KindCancelled  Kind = "cancelled"
	KindOther      Kind = "other"
)

// KindOf classifies err into the taxonomy.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}

	if errors.Is(err, ErrEmptySelection) {
		return KindEmpty
	}
	if errors.Is(err, ErrCancelled) {
		return KindCancelled
	}

	var valErr *InputValidationError
	if errors.As(err, &valErr) {
		return KindValidation
	}
	if errors.Is(err, ErrOutOfRange) {
		return KindValidation
	}

	var docErr *DocumentError
	if errors.As(err, &docErr) {
		return KindDocument
	}

	var renderErr *RenderFailure
	if errors.As(err, &renderErr) {
		return KindRender
	}

	var ioErr *IOFailure
	if errors.As(err, &ioErr) {
		return KindIO
	}

	return KindOther
}

// IsDiskFull reports whether err is an out-of-space condition.
func IsDiskFull(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.ENOSPC) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no space left") || strings.Contains(msg, "not enough space")
}

// UserMessage renders err as a short sentence for the status bar.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var valErr *InputValidationError
	if errors.As(err, &valErr) {
		return valErr.Message
	}

	var docErr *DocumentError
	if errors.As(err, &docErr) {
		switch docErr.Kind {
		case DocNotFound:
			return "File not found"
		case DocNotPDF:
			return "File is not a PDF"
		case DocEncrypted:
			return "PDF is encrypted. Please provide an unencrypted PDF."
		case DocNotFile:
			return "Path is not a file"
		case DocNoAccess:
			return "No read permission for file"
		default:
			if docErr.Err != nil {
				return fmt.Sprintf("Invalid or corrupted PDF file: %v", docErr.Err)
			}
			return "Invalid or corrupted PDF file"
		}
	}

	var renderErr *RenderFailure
	if errors.As(err, &renderErr) {
		return fmt.Sprintf("Could not render page %d", renderErr.Page+1)
	}

	var ioErr *IOFailure
	if errors.As(err, &ioErr) {
		switch {
		case errors.Is(ioErr.Err, fs.ErrPermission):
			return "Permission denied. Cannot write to output location."
		case IsDiskFull(ioErr.Err):
			return "Disk full. Free some space and try again."
		default:
			return fmt.Sprintf("Could not write output: %v", ioErr.Err)
		}
	}

	switch {
	case errors.Is(err, ErrEmptySelection):
		return "Select at least one page to extract"
	case errors.Is(err, ErrCancelled):
		return "Extraction cancelled"
	case errors.Is(err, ErrNoDocument):
		return "No PDF loaded. Please load a PDF first."
	case errors.Is(err, ErrOutOfRange):
		return "Page is out of range"
	case errors.Is(err, ErrBusy):
		return "An extraction is already running"
	}

	return err.Error()
}
